package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/5sursyncIT/edusync-sub001/internal/dto"
	"github.com/5sursyncIT/edusync-sub001/internal/gateway"
	"github.com/5sursyncIT/edusync-sub001/internal/service"
	"github.com/5sursyncIT/edusync-sub001/internal/timetable"
	"github.com/5sursyncIT/edusync-sub001/pkg/response"
)

// TimetableHandler serves the timetable read views and whole-timetable
// actions.
type TimetableHandler struct {
	svc       service.TimetableService
	exportSvc service.ExportService
}

// NewTimetableHandler creates a TimetableHandler.
func NewTimetableHandler(svc service.TimetableService, exportSvc service.ExportService) *TimetableHandler {
	return &TimetableHandler{svc: svc, exportSvc: exportSvc}
}

// List GET /api/v1/timetables
func (h *TimetableHandler) List(c *gin.Context) {
	var req dto.ListTimetablesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badBinding(c, err)
		return
	}

	resp, err := h.svc.List(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Get GET /api/v1/timetables/:id
func (h *TimetableHandler) Get(c *gin.Context) {
	id, ok := mustTimetableID(c)
	if !ok {
		return
	}

	t, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, dto.NewTimetableResponse(t))
}

// Create POST /api/v1/timetables
func (h *TimetableHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.CreateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBinding(c, err)
		return
	}

	t, err := h.svc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.Created(c, dto.NewTimetableResponse(t))
}

// Delete DELETE /api/v1/timetables/:id
func (h *TimetableHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := mustTimetableID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, userID); err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, nil)
}

// Transition POST /api/v1/timetables/:id/transitions
func (h *TimetableHandler) Transition(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := mustTimetableID(c)
	if !ok {
		return
	}
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBinding(c, err)
		return
	}

	t, err := h.svc.Transition(c.Request.Context(), id, timetable.State(req.State), userID)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, dto.NewTimetableResponse(t))
}

// Week GET /api/v1/timetables/:id/week
func (h *TimetableHandler) Week(c *gin.Context) {
	id, ok := mustTimetableID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Week(c.Request.Context(), id)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Conflicts GET /api/v1/timetables/:id/conflicts
func (h *TimetableHandler) Conflicts(c *gin.Context) {
	id, ok := mustTimetableID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Conflicts(c.Request.Context(), id)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Occurrences GET /api/v1/timetables/:id/occurrences?tz=Africa/Dakar
func (h *TimetableHandler) Occurrences(c *gin.Context) {
	id, ok := mustTimetableID(c)
	if !ok {
		return
	}
	var req dto.OccurrencesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badBinding(c, err)
		return
	}

	resp, err := h.svc.Occurrences(c.Request.Context(), id, req.Timezone)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Export GET /api/v1/timetables/:id/export
func (h *TimetableHandler) Export(c *gin.Context) {
	id, ok := mustTimetableID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportWeek(c.Request.Context(), id)
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	const xlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, xlsx, buf.Bytes())
}

// Calendar GET /api/v1/timetables/:id/occurrences.ics?tz=Africa/Dakar
func (h *TimetableHandler) Calendar(c *gin.Context) {
	id, ok := mustTimetableID(c)
	if !ok {
		return
	}
	var req dto.OccurrencesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badBinding(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), id, req.Timezone)
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// ════════════════════════════════════════════════════════════
// error mapping
// ════════════════════════════════════════════════════════════

// handleTimetableError is shared by every timetable-facing handler.
func handleTimetableError(c *gin.Context, err error) {
	var (
		invalid    *timetable.InvalidTimetableError
		illegal    *timetable.IllegalTransitionError
		validation *gateway.ValidationFailedError
	)

	switch {
	// ── editing sessions ──
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, response.CodeSessionNotFound, err.Error())
	case errors.Is(err, service.ErrSessionForbidden):
		response.Forbidden(c, response.CodeSessionForbidden, err.Error())
	case errors.Is(err, timetable.ErrSlotNotFound):
		response.NotFound(c, response.CodeSlotNotFound, err.Error())
	case errors.Is(err, timetable.ErrCommitInFlight):
		response.Error(c, http.StatusConflict, response.CodeCommitInFlight, err.Error())

	// ── domain ──
	case errors.As(err, &invalid):
		code, status := response.CodeTimetableInvalid, http.StatusUnprocessableEntity
		if errors.Is(err, timetable.ErrSlotConflict) {
			code, status = response.CodeSlotConflict, http.StatusConflict
		}
		response.ErrorWithDetails(c, status, code, "timetable is invalid", invalid.Violations)
	case errors.As(err, &illegal):
		response.ErrorWithDetails(c, http.StatusConflict, response.CodeIllegalTransition, "illegal state transition", gin.H{
			"from": illegal.From,
			"to":   illegal.To,
		})
	case errors.Is(err, timetable.ErrSyntheticReadOnly):
		response.Error(c, http.StatusConflict, response.CodeSyntheticReadOnly, err.Error())
	case errors.Is(err, timetable.ErrNotEditable):
		response.Error(c, http.StatusConflict, response.CodeNotEditable, err.Error())
	case errors.Is(err, timetable.ErrInvalidID):
		response.BadRequest(c, response.CodeBadParams, err.Error())
	case errors.Is(err, timetable.ErrInvalidTimetable):
		response.Error(c, http.StatusUnprocessableEntity, response.CodeTimetableInvalid, err.Error())
	case errors.Is(err, service.ErrTimezoneInvalid):
		response.BadRequest(c, response.CodeBadTimezone, err.Error())

	// ── gateway ──
	case errors.Is(err, gateway.ErrNotFound):
		response.NotFound(c, response.CodeTimetableNotFound, "timetable not found")
	case errors.As(err, &validation):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, response.CodeBackendRejected, "rejected by the timetable backend", validation.Errors)
	case errors.Is(err, gateway.ErrTransport):
		response.ErrorWithDetails(c, http.StatusBadGateway, response.CodeBackendUnavailable, "timetable backend unavailable", err.Error())

	// ── export ──
	case errors.Is(err, service.ErrExportNoSlots):
		response.BadRequest(c, response.CodeExportNoSlots, err.Error())

	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
