package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/5sursyncIT/edusync-sub001/internal/dto"
	"github.com/5sursyncIT/edusync-sub001/internal/service"
	"github.com/5sursyncIT/edusync-sub001/internal/timetable"
	"github.com/5sursyncIT/edusync-sub001/pkg/response"
)

// EditingHandler serves editing sessions. Every route acts on the
// caller's own session.
type EditingHandler struct {
	svc service.EditingService
}

// NewEditingHandler creates an EditingHandler.
func NewEditingHandler(svc service.EditingService) *EditingHandler {
	return &EditingHandler{svc: svc}
}

// Open POST /api/v1/editing-sessions
func (h *EditingHandler) Open(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.OpenSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badBinding(c, err)
			return
		}
	}

	var id *timetable.TimetableID
	if req.TimetableID != "" {
		parsed, err := timetable.ParseTimetableID(req.TimetableID)
		if err != nil {
			response.BadRequest(c, response.CodeBadParams, err.Error())
			return
		}
		id = &parsed
	}

	resp, err := h.svc.Open(c.Request.Context(), userID, id)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.Created(c, resp)
}

// Get GET /api/v1/editing-sessions/:sid
func (h *EditingHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), userID, c.Param("sid"))
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Close DELETE /api/v1/editing-sessions/:sid
func (h *EditingHandler) Close(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Close(c.Request.Context(), userID, c.Param("sid")); err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, nil)
}

// UpdateDetails PUT /api/v1/editing-sessions/:sid/details
func (h *EditingHandler) UpdateDetails(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBinding(c, err)
		return
	}

	resp, err := h.svc.UpdateDetails(c.Request.Context(), userID, c.Param("sid"), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// AddSlot POST /api/v1/editing-sessions/:sid/slots
func (h *EditingHandler) AddSlot(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.SlotInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badBinding(c, err)
		return
	}

	resp, err := h.svc.AddSlot(c.Request.Context(), userID, c.Param("sid"), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.Created(c, resp)
}

// UpdateSlot PUT /api/v1/editing-sessions/:sid/slots/:slotId
func (h *EditingHandler) UpdateSlot(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	slotID, ok := mustSlotID(c)
	if !ok {
		return
	}
	var req dto.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBinding(c, err)
		return
	}

	resp, err := h.svc.UpdateSlot(c.Request.Context(), userID, c.Param("sid"), slotID, &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// RemoveSlot DELETE /api/v1/editing-sessions/:sid/slots/:slotId
func (h *EditingHandler) RemoveSlot(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	slotID, ok := mustSlotID(c)
	if !ok {
		return
	}

	resp, err := h.svc.RemoveSlot(c.Request.Context(), userID, c.Param("sid"), slotID)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Commit POST /api/v1/editing-sessions/:sid/commit
func (h *EditingHandler) Commit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Commit(c.Request.Context(), userID, c.Param("sid"))
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}
