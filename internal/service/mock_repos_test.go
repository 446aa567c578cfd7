package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/5sursyncIT/edusync-sub001/internal/gateway"
	"github.com/5sursyncIT/edusync-sub001/internal/timetable"
)

// ── Mock Gateway ──

// mockGateway keeps timetables in memory. Create and Update assign
// persisted slot ids the way a backend would. onWrite, when set, runs
// before a write and may fail it.
type mockGateway struct {
	mu       sync.Mutex
	rows     map[int64]*timetable.Timetable
	nextID   int64
	nextSlot int64
	creates  int
	updates  int
	deletes  int
	actors   []string
	onWrite  func(t *timetable.Timetable) error
	// activateOnCreate mimics the ERP, which activates new timetables
	activateOnCreate bool
}

func newMockGateway() *mockGateway {
	return &mockGateway{rows: make(map[int64]*timetable.Timetable)}
}

func (m *mockGateway) seed(t *timetable.Timetable) timetable.TimetableID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c := t.Clone()
	c.ID = timetable.PersistedID(m.nextID)
	m.assignSlots(c)
	m.rows[m.nextID] = c
	return c.ID
}

func (m *mockGateway) assignSlots(t *timetable.Timetable) {
	for i := range t.Slots {
		if t.Slots[i].ID.IsTransient() || t.Slots[i].ID.IsZero() {
			m.nextSlot++
			t.Slots[i].ID = timetable.PersistedSlotID(m.nextSlot)
		}
	}
}

func (m *mockGateway) List(_ context.Context, q gateway.ListQuery) (*gateway.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q = q.Normalize()
	page := &gateway.Page{}
	for id := int64(1); id <= m.nextID; id++ {
		if t, ok := m.rows[id]; ok {
			page.Timetables = append(page.Timetables, t.Clone())
		}
	}
	page.Pagination = gateway.NewPagination(q.Page, q.PageSize, int64(len(page.Timetables)))
	return page, nil
}

func (m *mockGateway) Get(_ context.Context, id timetable.TimetableID) (*timetable.Timetable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := id.Persisted()
	if !ok {
		return nil, gateway.ErrNotFound
	}
	t, ok := m.rows[n]
	if !ok {
		return nil, fmt.Errorf("get %d: %w", n, gateway.ErrNotFound)
	}
	return t.Clone(), nil
}

func (m *mockGateway) Create(ctx context.Context, t *timetable.Timetable) (*timetable.Timetable, error) {
	if m.onWrite != nil {
		if err := m.onWrite(t); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	m.actors = append(m.actors, actorOf(ctx))
	m.nextID++
	c := t.Clone()
	c.ID = timetable.PersistedID(m.nextID)
	if m.activateOnCreate {
		c.State = timetable.StateActive
	}
	m.assignSlots(c)
	m.rows[m.nextID] = c
	return c.Clone(), nil
}

func (m *mockGateway) Update(ctx context.Context, id timetable.TimetableID, t *timetable.Timetable) (*timetable.Timetable, error) {
	if id.IsSynthetic() {
		return nil, timetable.ErrSyntheticReadOnly
	}
	if m.onWrite != nil {
		if err := m.onWrite(t); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := id.Persisted()
	if _, ok := m.rows[n]; !ok {
		return nil, gateway.ErrNotFound
	}
	m.updates++
	m.actors = append(m.actors, actorOf(ctx))
	c := t.Clone()
	c.ID = id
	m.assignSlots(c)
	m.rows[n] = c
	return c.Clone(), nil
}

func (m *mockGateway) Delete(ctx context.Context, id timetable.TimetableID) error {
	if id.IsSynthetic() {
		return timetable.ErrSyntheticReadOnly
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := id.Persisted()
	if _, ok := m.rows[n]; !ok {
		return gateway.ErrNotFound
	}
	m.deletes++
	m.actors = append(m.actors, actorOf(ctx))
	delete(m.rows, n)
	return nil
}

func (m *mockGateway) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates + m.updates
}

// actorOf reads the actor the services attach for the audit columns.
func actorOf(ctx context.Context) string {
	return gateway.ActorFrom(ctx)
}

var errBackendDown = errors.New("backend down")

// ── Mock CommitLocker ──

type failingLocker struct{ err error }

func (l failingLocker) AcquireLock(context.Context, string, string, time.Duration) (bool, error) {
	return false, l.err
}

func (l failingLocker) ReleaseLock(context.Context, string, string) error { return nil }

// ── fixtures ──

func sampleTimetable() *timetable.Timetable {
	return &timetable.Timetable{
		Name:         "Semester 1",
		Batch:        &timetable.Ref{ID: 3, Name: "L1-A"},
		AcademicYear: &timetable.Ref{ID: 1, Name: "2024-2025"},
		StartDate:    "2024-09-02",
		EndDate:      "2024-09-15",
		State:        timetable.StateDraft,
		Slots: []timetable.Slot{
			{DayOfWeek: 0, StartTime: "08:00", EndTime: "10:00", SessionType: timetable.SessionLecture,
				Subject: &timetable.Ref{ID: 4, Name: "Maths"}, Faculty: &timetable.Ref{ID: 7, Name: "Dr. Ba"},
				Classroom: &timetable.Ref{ID: 6, Name: "A1"}},
			{DayOfWeek: 2, StartTime: "10:00", EndTime: "12:00", SessionType: timetable.SessionPractical,
				Subject: &timetable.Ref{ID: 5, Name: "Physics"}, Classroom: &timetable.Ref{ID: 8, Name: "Lab 2"}},
			{DayOfWeek: 2, StartTime: "08:00", EndTime: "10:00", SessionType: timetable.SessionLecture,
				Subject: &timetable.Ref{ID: 4, Name: "Maths"}, Faculty: &timetable.Ref{ID: 7, Name: "Dr. Ba"}},
		},
	}
}
