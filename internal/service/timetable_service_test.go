package service

import (
	"context"
	"errors"
	"testing"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/5sursyncIT/edusync-sub001/internal/dto"
	"github.com/5sursyncIT/edusync-sub001/internal/gateway"
	"github.com/5sursyncIT/edusync-sub001/internal/timetable"
)

func setupTestTimetableService() (TimetableService, *mockGateway) {
	gw := newMockGateway()
	return NewTimetableService(gw, true, "Africa/Dakar", zap.NewNop()), gw
}

func intPtr(n int) *int { return &n }

func createRequest() *dto.CreateTimetableRequest {
	return &dto.CreateTimetableRequest{
		Name:      "Semester 1",
		Batch:     &dto.RefInput{ID: 3, Name: "L1-A"},
		StartDate: "2024-09-02",
		EndDate:   "2025-01-31",
		Slots: []dto.SlotInput{
			{DayOfWeek: intPtr(0), StartTime: "08:00", EndTime: "10:00", Faculty: &dto.RefInput{ID: 7, Name: "Dr. Ba"}},
			{DayOfWeek: intPtr(1), StartTime: "08:00", EndTime: "10:00", Faculty: &dto.RefInput{ID: 7, Name: "Dr. Ba"}},
		},
	}
}

// ── Create ──

func TestTimetableService_Create_Success(t *testing.T) {
	svc, gw := setupTestTimetableService()

	got, err := svc.Create(context.Background(), createRequest(), "user-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID.IsZero() {
		t.Fatal("created timetable should carry an id")
	}
	if len(got.Slots) != 2 {
		t.Errorf("expected 2 slots, got %d", len(got.Slots))
	}
	if got.Slots[0].SessionType != timetable.SessionLecture {
		t.Errorf("session type should default to lecture, got %q", got.Slots[0].SessionType)
	}
	if gw.creates != 1 || gw.actors[0] != "user-1" {
		t.Errorf("expected one create by user-1, got %d by %v", gw.creates, gw.actors)
	}
}

func TestTimetableService_Create_InvalidNeverReachesBackend(t *testing.T) {
	svc, gw := setupTestTimetableService()
	req := createRequest()
	req.EndDate = "2024-01-01"

	_, err := svc.Create(context.Background(), req, "user-1")
	if !errors.Is(err, timetable.ErrInvalidTimetable) {
		t.Fatalf("expected ErrInvalidTimetable, got %v", err)
	}
	if gw.writes() != 0 {
		t.Errorf("backend should not be called, got %d writes", gw.writes())
	}
}

func TestTimetableService_Create_RejectsConflicts(t *testing.T) {
	svc, gw := setupTestTimetableService()
	req := createRequest()
	req.Slots[1].DayOfWeek = intPtr(0)
	req.Slots[1].StartTime = "09:00"
	req.Slots[1].EndTime = "11:00"

	_, err := svc.Create(context.Background(), req, "user-1")
	if !errors.Is(err, timetable.ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}
	if gw.writes() != 0 {
		t.Error("backend should not be called")
	}

	lenient := NewTimetableService(gw, false, "", zap.NewNop())
	if _, err := lenient.Create(context.Background(), req, "user-1"); err != nil {
		t.Fatalf("conflicts are allowed when enforcement is off: %v", err)
	}
}

// ── Transition ──

func TestTimetableService_Transition(t *testing.T) {
	svc, gw := setupTestTimetableService()
	id := gw.seed(sampleTimetable())

	got, err := svc.Transition(context.Background(), id, timetable.StateActive, "user-1")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if got.State != timetable.StateActive {
		t.Errorf("expected active, got %s", got.State)
	}
	if len(got.Slots) != 3 {
		t.Errorf("slots must survive a transition, got %d", len(got.Slots))
	}
}

func TestTimetableService_Transition_Illegal(t *testing.T) {
	svc, gw := setupTestTimetableService()
	id := gw.seed(sampleTimetable())

	_, err := svc.Transition(context.Background(), id, timetable.StateArchived, "user-1")
	var ite *timetable.IllegalTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if ite.From != timetable.StateDraft || ite.To != timetable.StateArchived {
		t.Errorf("unexpected edge %s -> %s", ite.From, ite.To)
	}
	if gw.updates != 0 {
		t.Error("illegal transitions must not reach the backend")
	}
}

func TestTimetableService_Transition_NotFound(t *testing.T) {
	svc, _ := setupTestTimetableService()
	_, err := svc.Transition(context.Background(), timetable.PersistedID(99), timetable.StateActive, "user-1")
	if !errors.Is(err, gateway.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// ── Delete ──

func TestTimetableService_Delete_Synthetic(t *testing.T) {
	svc, gw := setupTestTimetableService()
	err := svc.Delete(context.Background(), timetable.SyntheticID("timetable_3"), "user-1")
	if !errors.Is(err, timetable.ErrSyntheticReadOnly) {
		t.Errorf("expected ErrSyntheticReadOnly, got %v", err)
	}
	if gw.deletes != 0 {
		t.Error("nothing should be deleted")
	}
}

// ── read views ──

func TestTimetableService_List(t *testing.T) {
	svc, gw := setupTestTimetableService()
	gw.seed(sampleTimetable())
	gw.seed(sampleTimetable())

	resp, err := svc.List(context.Background(), &dto.ListTimetablesRequest{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(resp.List) != 2 {
		t.Fatalf("expected 2 timetables, got %d", len(resp.List))
	}
	if resp.List[0].DisplayName != "Semester 1 - L1-A (2024-2025)" {
		t.Errorf("unexpected display name %q", resp.List[0].DisplayName)
	}
	if !resp.List[0].Editable {
		t.Error("draft should be editable")
	}
	if resp.Pagination.PageSize != 20 || resp.Pagination.Total != 2 || resp.Pagination.TotalPages != 1 {
		t.Errorf("unexpected pagination %+v", resp.Pagination)
	}
}

func TestTimetableService_Week(t *testing.T) {
	svc, gw := setupTestTimetableService()
	id := gw.seed(sampleTimetable())

	week, err := svc.Week(context.Background(), id)
	if err != nil {
		t.Fatalf("Week: %v", err)
	}
	if len(week.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week.Days))
	}
	wed := week.Days[2]
	if wed.Name != "Wednesday" || len(wed.Slots) != 2 {
		t.Fatalf("unexpected Wednesday %+v", wed)
	}
	if wed.Slots[0].StartTime != "08:00" {
		t.Errorf("Wednesday should be sorted by start time, first is %s", wed.Slots[0].StartTime)
	}
	if week.Days[6].Slots == nil {
		t.Error("empty days should render as empty lists")
	}
	want := timetable.Summary{Subjects: 2, Faculty: 1, Classrooms: 2, Slots: 3}
	if week.Summary != want {
		t.Errorf("expected summary %+v, got %+v", want, week.Summary)
	}
}

func TestTimetableService_Conflicts(t *testing.T) {
	svc, gw := setupTestTimetableService()
	tt := sampleTimetable()
	tt.Slots[1].DayOfWeek = 0
	tt.Slots[1].StartTime = "09:00"
	tt.Slots[1].Faculty = &timetable.Ref{ID: 7, Name: "Dr. Ba"}
	id := gw.seed(tt)

	resp, err := svc.Conflicts(context.Background(), id)
	if err != nil {
		t.Fatalf("Conflicts: %v", err)
	}
	if resp.Count != 1 || resp.Conflicts[0].Dimension != timetable.ConflictFaculty {
		t.Errorf("expected one faculty conflict, got %+v", resp.Conflicts)
	}
}

func TestTimetableService_Occurrences(t *testing.T) {
	svc, gw := setupTestTimetableService()
	id := gw.seed(sampleTimetable())

	resp, err := svc.Occurrences(context.Background(), id, "")
	if err != nil {
		t.Fatalf("Occurrences: %v", err)
	}
	if resp.Timezone != "Africa/Dakar" {
		t.Errorf("expected the default zone, got %s", resp.Timezone)
	}
	// two weeks, three weekly slots
	if resp.Count != 6 {
		t.Errorf("expected 6 occurrences, got %d", resp.Count)
	}

	_, err = svc.Occurrences(context.Background(), id, "Mars/Olympus")
	if !errors.Is(err, ErrTimezoneInvalid) {
		t.Errorf("expected ErrTimezoneInvalid, got %v", err)
	}
}
