package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/5sursyncIT/edusync-sub001/internal/api/middleware"
	"github.com/5sursyncIT/edusync-sub001/internal/dto"
	"github.com/5sursyncIT/edusync-sub001/internal/timetable"
	"github.com/5sursyncIT/edusync-sub001/pkg/response"
)

// MustGetUserID reads the user id set by the auth middleware. On false a
// 401 has been written and the caller should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.CtxUserID)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthorized, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "not authenticated")
		return "", false
	}
	return s, true
}

// mustTimetableID parses the :id path parameter.
func mustTimetableID(c *gin.Context) (timetable.TimetableID, bool) {
	id, err := timetable.ParseTimetableID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, response.CodeBadParams, err.Error())
		return timetable.TimetableID{}, false
	}
	return id, true
}

// mustSlotID parses the :slotId path parameter.
func mustSlotID(c *gin.Context) (timetable.SlotID, bool) {
	id, err := timetable.ParseSlotID(c.Param("slotId"))
	if err != nil {
		response.BadRequest(c, response.CodeBadParams, err.Error())
		return timetable.SlotID{}, false
	}
	return id, true
}

// badBinding reports a request that failed to bind, listing field errors
// when there are any.
func badBinding(c *gin.Context, err error) {
	if middleware.IsBodyTooLarge(err) {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "request body too large")
		return
	}
	if fields := dto.BindingErrors(err); len(fields) > 0 {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeBadParams, "invalid request parameters", fields)
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeBadParams, "invalid request body", err.Error())
}
