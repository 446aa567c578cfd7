package handler

import "github.com/5sursyncIT/edusync-sub001/internal/service"

// Handler aggregates every handler.
type Handler struct {
	Timetable *TimetableHandler
	Editing   *EditingHandler
	Health    *HealthHandler
}

// NewHandler creates the handler aggregate.
func NewHandler(svc *service.Service, checks map[string]HealthCheck) *Handler {
	return &Handler{
		Timetable: NewTimetableHandler(svc.Timetable, svc.Export),
		Editing:   NewEditingHandler(svc.Editing),
		Health:    NewHealthHandler(checks),
	}
}
