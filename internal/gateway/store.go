package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/5sursyncIT/edusync-sub001/internal/model"
	"github.com/5sursyncIT/edusync-sub001/internal/repository"
	"github.com/5sursyncIT/edusync-sub001/internal/timetable"
)

type actorKey struct{}

// WithActor records who is writing, for the audit columns.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFrom returns the actor set by WithActor, empty when none.
func ActorFrom(ctx context.Context) string {
	v, _ := ctx.Value(actorKey{}).(string)
	return v
}

// StoreGateway implements Gateway over PostgreSQL. Unlike the ERP it enforces
// validation and the lifecycle itself.
type StoreGateway struct {
	repo   repository.TimetableRepository
	logger *zap.Logger
}

var _ Gateway = (*StoreGateway)(nil)

// NewStoreGateway creates a StoreGateway.
func NewStoreGateway(repo repository.TimetableRepository, logger *zap.Logger) *StoreGateway {
	return &StoreGateway{repo: repo, logger: logger}
}

func (g *StoreGateway) List(ctx context.Context, q ListQuery) (*Page, error) {
	q = q.Normalize()
	filter := repository.TimetableFilter{Search: q.Search, State: q.Filters["state"]}
	if raw := q.Filters["batch_id"]; raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &ValidationFailedError{Errors: []string{fmt.Sprintf("batch_id %q is not a number", raw)}}
		}
		filter.BatchID = n
	}

	rows, total, err := g.repo.List(ctx, filter, (q.Page-1)*q.PageSize, q.PageSize)
	if err != nil {
		g.logger.Error("list timetables failed", zap.Error(err))
		return nil, fmt.Errorf("list timetables: %w", err)
	}
	page := &Page{
		Timetables: make([]*timetable.Timetable, 0, len(rows)),
		Pagination: NewPagination(q.Page, q.PageSize, total),
	}
	for i := range rows {
		page.Timetables = append(page.Timetables, fromModel(&rows[i]))
	}
	return page, nil
}

func (g *StoreGateway) Get(ctx context.Context, id timetable.TimetableID) (*timetable.Timetable, error) {
	if id.IsSynthetic() {
		// derived timetables only exist on the ERP
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	n, ok := id.Persisted()
	if !ok {
		return nil, fmt.Errorf("get: %w", timetable.ErrInvalidID)
	}
	row, err := g.repo.GetByID(ctx, n)
	if err != nil {
		return nil, g.mapError("get", n, err)
	}
	return fromModel(row), nil
}

func (g *StoreGateway) Create(ctx context.Context, t *timetable.Timetable) (*timetable.Timetable, error) {
	if err := rejectInvalid(t); err != nil {
		return nil, err
	}
	row, err := toModel(t)
	if err != nil {
		return nil, err
	}
	row.ID = 0
	row.State = string(timetable.StateDraft)
	row.CreatedBy = ActorFrom(ctx)
	row.UpdatedBy = row.CreatedBy
	if err := g.repo.Create(ctx, row); err != nil {
		g.logger.Error("create timetable failed", zap.String("name", t.Name), zap.Error(err))
		return nil, fmt.Errorf("create timetable: %w", err)
	}
	g.logger.Info("timetable created", zap.Int64("id", row.ID), zap.Int("slots", len(row.Slots)))
	return g.Get(ctx, timetable.PersistedID(row.ID))
}

// Update replaces the timetable. Drafts accept any change; other states
// only accept a legal state transition, everything else in the request is
// ignored. Content and state are written together. Activating a timetable
// archives the batch's previously active one.
func (g *StoreGateway) Update(ctx context.Context, id timetable.TimetableID, t *timetable.Timetable) (*timetable.Timetable, error) {
	n, err := persistedKey("update", id)
	if err != nil {
		return nil, err
	}
	current, err := g.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	target := t.State
	if target == "" {
		target = current.State
	}
	stateChange := target != current.State
	if stateChange && !timetable.CanTransition(current.State, target) {
		return nil, &timetable.IllegalTransitionError{From: current.State, To: target}
	}

	req := repository.SaveRequest{ID: n, UpdatedBy: ActorFrom(ctx)}
	if current.State == timetable.StateDraft {
		if err := rejectInvalid(t); err != nil {
			return nil, err
		}
		row, err := toModel(t)
		if err != nil {
			return nil, err
		}
		req.Content = row
	} else if !stateChange {
		return nil, fmt.Errorf("update %d: %w", n, timetable.ErrNotEditable)
	}
	if stateChange {
		req.State = string(target)
	}

	archived, err := g.repo.Save(ctx, req)
	if err != nil {
		return nil, g.mapError("update", n, err)
	}
	if stateChange {
		g.logger.Info("timetable state changed",
			zap.Int64("id", n),
			zap.String("from", string(current.State)),
			zap.String("to", string(target)),
			zap.Int64s("archived", archived),
		)
	}
	return g.Get(ctx, id)
}

func (g *StoreGateway) Delete(ctx context.Context, id timetable.TimetableID) error {
	n, err := persistedKey("delete", id)
	if err != nil {
		return err
	}
	if err := g.repo.Delete(ctx, n); err != nil {
		return g.mapError("delete", n, err)
	}
	g.logger.Info("timetable deleted", zap.Int64("id", n), zap.String("by", ActorFrom(ctx)))
	return nil
}

func (g *StoreGateway) mapError(op string, id int64, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	g.logger.Error("timetable store failed", zap.String("op", op), zap.Int64("id", id), zap.Error(err))
	return fmt.Errorf("%s %d: %w", op, id, err)
}

func rejectInvalid(t *timetable.Timetable) error {
	err := t.Validate()
	if err == nil {
		return nil
	}
	var inv *timetable.InvalidTimetableError
	if errors.As(err, &inv) {
		return &ValidationFailedError{Errors: inv.Messages()}
	}
	return &ValidationFailedError{Errors: []string{err.Error()}}
}

// ── model mapping ──

func toModel(t *timetable.Timetable) (*model.Timetable, error) {
	start, err := time.Parse(timetable.DateLayout, t.StartDate)
	if err != nil {
		return nil, &ValidationFailedError{Errors: []string{"start_date: " + err.Error()}}
	}
	end, err := time.Parse(timetable.DateLayout, t.EndDate)
	if err != nil {
		return nil, &ValidationFailedError{Errors: []string{"end_date: " + err.Error()}}
	}
	row := &model.Timetable{
		Name:        t.Name,
		StartDate:   start,
		EndDate:     end,
		Description: t.Description,
		State:       string(t.State),
		Slots:       make([]model.TimetableSlot, 0, len(t.Slots)),
	}
	if n, ok := t.ID.Persisted(); ok {
		row.ID = n
	}
	if t.Batch != nil {
		row.BatchID, row.BatchName = t.Batch.ID, t.Batch.Name
	}
	row.AcademicYearID, row.AcademicYearName = splitRef(t.AcademicYear)
	row.SemesterID, row.SemesterName = splitRef(t.Semester)
	row.FacultyID, row.FacultyName = splitRef(t.Faculty)

	for _, s := range t.Slots {
		slot := model.TimetableSlot{
			DayOfWeek:   s.DayOfWeek,
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			SessionType: string(s.SessionType),
			Topic:       s.Topic,
		}
		if slot.SessionType == "" {
			slot.SessionType = string(timetable.SessionLecture)
		}
		slot.SubjectID, slot.SubjectName = splitRef(s.Subject)
		slot.FacultyID, slot.FacultyName = splitRef(s.Faculty)
		slot.ClassroomID, slot.ClassroomName = splitRef(s.Classroom)
		row.Slots = append(row.Slots, slot)
	}
	return row, nil
}

func fromModel(row *model.Timetable) *timetable.Timetable {
	t := &timetable.Timetable{
		ID:           timetable.PersistedID(row.ID),
		Name:         row.Name,
		Batch:        joinRef(&row.BatchID, row.BatchName),
		AcademicYear: joinRef(row.AcademicYearID, row.AcademicYearName),
		Semester:     joinRef(row.SemesterID, row.SemesterName),
		Faculty:      joinRef(row.FacultyID, row.FacultyName),
		StartDate:    row.StartDate.Format(timetable.DateLayout),
		EndDate:      row.EndDate.Format(timetable.DateLayout),
		Description:  row.Description,
		State:        timetable.State(row.State),
		Slots:        make([]timetable.Slot, 0, len(row.Slots)),
	}
	for _, s := range row.Slots {
		t.Slots = append(t.Slots, timetable.Slot{
			ID:          timetable.PersistedSlotID(s.ID),
			DayOfWeek:   s.DayOfWeek,
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			SessionType: timetable.SessionType(s.SessionType),
			Topic:       s.Topic,
			Subject:     joinRef(s.SubjectID, s.SubjectName),
			Faculty:     joinRef(s.FacultyID, s.FacultyName),
			Classroom:   joinRef(s.ClassroomID, s.ClassroomName),
		})
	}
	return t
}

// splitRef stores only assigned relations; name-only refs are dropped.
func splitRef(r *timetable.Ref) (*int64, string) {
	if !r.Assigned() {
		return nil, ""
	}
	id := r.ID
	return &id, r.Name
}

func joinRef(id *int64, name string) *timetable.Ref {
	if id == nil || *id == 0 {
		return nil
	}
	return &timetable.Ref{ID: *id, Name: name}
}
