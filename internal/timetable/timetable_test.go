package timetable

import (
	"errors"
	"testing"
)

func validTimetable() *Timetable {
	return &Timetable{
		ID:           PersistedID(12),
		Name:         "Semester 1",
		Batch:        &Ref{ID: 3, Name: "L1-A"},
		AcademicYear: &Ref{ID: 2, Name: "2024-2025"},
		StartDate:    "2024-09-02",
		EndDate:      "2025-01-31",
		State:        StateDraft,
		Slots: []Slot{
			{ID: PersistedSlotID(1), DayOfWeek: 0, StartTime: "08:00", EndTime: "10:00", SessionType: SessionLecture,
				Subject: &Ref{ID: 4, Name: "Maths"}, Faculty: &Ref{ID: 5, Name: "Doe"}, Classroom: &Ref{ID: 6, Name: "A1"}},
			{ID: PersistedSlotID(2), DayOfWeek: 2, StartTime: "14:00", EndTime: "15:00", SessionType: SessionTutorial},
		},
	}
}

func TestTimetable_Validate_OK(t *testing.T) {
	if err := validTimetable().Validate(); err != nil {
		t.Fatalf("expected valid timetable: %v", err)
	}
}

func TestTimetable_Validate_CollectsEverything(t *testing.T) {
	tt := validTimetable()
	tt.Name = "  "
	tt.Batch = nil
	tt.StartDate = "2025-02-01"
	tt.Slots[0].EndTime = "07:00"
	tt.Slots[1].DayOfWeek = 8

	err := tt.Validate()
	var inv *InvalidTimetableError
	if !errors.As(err, &inv) {
		t.Fatalf("expected *InvalidTimetableError, got %v", err)
	}
	if len(inv.Violations) != 5 {
		t.Errorf("expected 5 violations, got %d: %v", len(inv.Violations), inv.Messages())
	}
	for _, target := range []error{ErrInvalidTimetable, ErrInvalidSlotTime, ErrInvalidDay} {
		if !errors.Is(err, target) {
			t.Errorf("expected error to match %v", target)
		}
	}
	if errors.Is(err, ErrSlotConflict) {
		t.Error("no conflict was present")
	}
}

func TestTimetable_Validate_Dates(t *testing.T) {
	tt := validTimetable()
	tt.EndDate = tt.StartDate
	if err := tt.Validate(); err != nil {
		t.Errorf("equal dates are allowed: %v", err)
	}
	tt.StartDate = ""
	tt.EndDate = "02/09/2024"
	var inv *InvalidTimetableError
	if !errors.As(tt.Validate(), &inv) || len(inv.Violations) != 2 {
		t.Errorf("expected missing and malformed date violations, got %v", tt.Validate())
	}
}

func TestTimetable_Clone_IsDeep(t *testing.T) {
	orig := validTimetable()
	c := orig.Clone()
	c.Name = "other"
	c.Batch.Name = "changed"
	c.Slots[0].Subject.Name = "changed"
	c.Slots = append(c.Slots, Slot{})

	if orig.Name != "Semester 1" || orig.Batch.Name != "L1-A" || orig.Slots[0].Subject.Name != "Maths" {
		t.Error("clone shares memory with the original")
	}
	if len(orig.Slots) != 2 {
		t.Error("clone shares the slot slice")
	}
}

func TestTimetable_DisplayName(t *testing.T) {
	tt := validTimetable()
	if got := tt.DisplayName(); got != "Semester 1 - L1-A (2024-2025)" {
		t.Errorf("unexpected display name %q", got)
	}
	tt.AcademicYear = nil
	if got := tt.DisplayName(); got != "Semester 1 - L1-A" {
		t.Errorf("unexpected display name %q", got)
	}
}
