package service

import (
	"go.uber.org/zap"

	"github.com/5sursyncIT/edusync-sub001/config"
	"github.com/5sursyncIT/edusync-sub001/internal/gateway"
)

// Service aggregates every service.
type Service struct {
	Timetable TimetableService
	Editing   EditingService
	Export    ExportService
}

// NewService wires the services on top of a gateway. locker may be nil.
func NewService(cfg *config.Config, gw gateway.Gateway, locker CommitLocker, logger *zap.Logger) *Service {
	return &Service{
		Timetable: NewTimetableService(gw, cfg.Editing.EnforceConflicts, cfg.Server.Timezone, logger),
		Editing:   NewEditingService(gw, locker, cfg.Editing, logger),
		Export:    NewExportService(gw, cfg.Server.Timezone, logger),
	}
}
