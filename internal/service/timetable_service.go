package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/5sursyncIT/edusync-sub001/internal/dto"
	"github.com/5sursyncIT/edusync-sub001/internal/gateway"
	"github.com/5sursyncIT/edusync-sub001/internal/timetable"
)

// ── timetable service errors ──

var (
	ErrTimezoneInvalid = errors.New("unknown time zone")
)

// TimetableService reads timetables and applies whole-timetable actions
// (create, delete, state transitions). Slot-level editing goes through
// EditingService.
type TimetableService interface {
	List(ctx context.Context, req *dto.ListTimetablesRequest) (*dto.TimetableListResponse, error)
	Get(ctx context.Context, id timetable.TimetableID) (*timetable.Timetable, error)
	Create(ctx context.Context, req *dto.CreateTimetableRequest, userID string) (*timetable.Timetable, error)
	Delete(ctx context.Context, id timetable.TimetableID, userID string) error
	Transition(ctx context.Context, id timetable.TimetableID, to timetable.State, userID string) (*timetable.Timetable, error)
	Week(ctx context.Context, id timetable.TimetableID) (*dto.WeekResponse, error)
	Conflicts(ctx context.Context, id timetable.TimetableID) (*dto.ConflictsResponse, error)
	Occurrences(ctx context.Context, id timetable.TimetableID, tz string) (*dto.OccurrencesResponse, error)
}

type timetableService struct {
	gw               gateway.Gateway
	enforceConflicts bool
	defaultTZ        string
	logger           *zap.Logger
}

// NewTimetableService creates a TimetableService.
func NewTimetableService(gw gateway.Gateway, enforceConflicts bool, defaultTZ string, logger *zap.Logger) TimetableService {
	if defaultTZ == "" {
		defaultTZ = "UTC"
	}
	return &timetableService{gw: gw, enforceConflicts: enforceConflicts, defaultTZ: defaultTZ, logger: logger}
}

func (s *timetableService) List(ctx context.Context, req *dto.ListTimetablesRequest) (*dto.TimetableListResponse, error) {
	page, err := s.gw.List(ctx, gateway.ListQuery{
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Search:   req.Search,
		Filters:  req.Filters(),
	})
	if err != nil {
		s.logger.Warn("list timetables failed", zap.Error(err))
		return nil, err
	}

	list := make([]dto.TimetableResponse, 0, len(page.Timetables))
	for _, t := range page.Timetables {
		list = append(list, dto.NewTimetableResponse(t))
	}
	return &dto.TimetableListResponse{
		List: list,
		Pagination: dto.PaginationResponse{
			Page:       page.Pagination.Page,
			PageSize:   page.Pagination.Limit,
			Total:      page.Pagination.Total,
			TotalPages: page.Pagination.Pages,
		},
	}, nil
}

func (s *timetableService) Get(ctx context.Context, id timetable.TimetableID) (*timetable.Timetable, error) {
	return s.gw.Get(ctx, id)
}

// ════════════════════════════════════════════════════════════
// Create
// ════════════════════════════════════════════════════════════
//
// A direct create is a one-shot editing session: the same validation and
// conflict rules apply as for an interactive commit.

func (s *timetableService) Create(ctx context.Context, req *dto.CreateTimetableRequest, userID string) (*timetable.Timetable, error) {
	draft := req.ToTimetable()
	sess, err := timetable.NewSession(draft, timetable.WithConflictCheck(s.enforceConflicts))
	if err != nil {
		return nil, err
	}
	saved, err := sess.Commit(gateway.WithActor(ctx, userID), s.gw)
	if err != nil {
		s.logger.Info("create timetable refused", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}
	s.logger.Info("timetable created",
		zap.String("id", saved.ID.String()),
		zap.String("user_id", userID),
		zap.Int("slots", len(saved.Slots)),
	)
	return saved, nil
}

func (s *timetableService) Delete(ctx context.Context, id timetable.TimetableID, userID string) error {
	if err := s.gw.Delete(gateway.WithActor(ctx, userID), id); err != nil {
		return err
	}
	s.logger.Info("timetable deleted", zap.String("id", id.String()), zap.String("user_id", userID))
	return nil
}

// Transition moves the timetable along its lifecycle. The edge is checked
// locally first so an illegal request never reaches the backend.
func (s *timetableService) Transition(ctx context.Context, id timetable.TimetableID, to timetable.State, userID string) (*timetable.Timetable, error) {
	current, err := s.gw.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := current.Clone()
	if err := next.Transition(to); err != nil {
		return nil, err
	}

	saved, err := s.gw.Update(gateway.WithActor(ctx, userID), id, next)
	if err != nil {
		s.logger.Warn("timetable transition failed",
			zap.String("id", id.String()),
			zap.String("to", string(to)),
			zap.Error(err),
		)
		return nil, err
	}
	s.logger.Info("timetable transitioned",
		zap.String("id", id.String()),
		zap.String("from", string(current.State)),
		zap.String("to", string(saved.State)),
		zap.String("user_id", userID),
	)
	return saved, nil
}

func (s *timetableService) Week(ctx context.Context, id timetable.TimetableID) (*dto.WeekResponse, error) {
	t, err := s.gw.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewWeekResponse(t)
	return &resp, nil
}

func (s *timetableService) Conflicts(ctx context.Context, id timetable.TimetableID) (*dto.ConflictsResponse, error) {
	t, err := s.gw.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	conflicts := timetable.DetectConflicts(t.Slots)
	if conflicts == nil {
		conflicts = []timetable.Conflict{}
	}
	return &dto.ConflictsResponse{Count: len(conflicts), Conflicts: conflicts}, nil
}

func (s *timetableService) Occurrences(ctx context.Context, id timetable.TimetableID, tz string) (*dto.OccurrencesResponse, error) {
	loc, err := loadLocation(tz, s.defaultTZ)
	if err != nil {
		return nil, err
	}
	t, err := s.gw.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	occ, err := t.Occurrences(loc)
	if err != nil {
		return nil, err
	}
	return &dto.OccurrencesResponse{Timezone: loc.String(), Count: len(occ), Occurrences: occ}, nil
}

func loadLocation(tz, fallback string) (*time.Location, error) {
	if tz == "" {
		tz = fallback
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTimezoneInvalid, tz)
	}
	return loc, nil
}
