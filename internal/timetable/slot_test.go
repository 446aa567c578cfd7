package timetable

import (
	"errors"
	"testing"
	"time"
)

// ── Validate ──

func TestSlot_Validate_Valid(t *testing.T) {
	for day := 0; day <= 6; day++ {
		s := Slot{DayOfWeek: day, StartTime: "08:00", EndTime: "09:00"}
		if err := s.Validate(); err != nil {
			t.Errorf("day %d should be valid: %v", day, err)
		}
	}
}

func TestSlot_Validate_DayOutOfRange(t *testing.T) {
	for _, day := range []int{-1, 7, 42} {
		s := Slot{DayOfWeek: day, StartTime: "08:00", EndTime: "09:00"}
		err := s.Validate()
		if !errors.Is(err, ErrInvalidDay) {
			t.Errorf("day %d: expected ErrInvalidDay, got %v", day, err)
		}
		if errors.Is(err, ErrInvalidSlotTime) {
			t.Errorf("day %d: time range is fine, got %v", day, err)
		}
	}
}

func TestSlot_Validate_EndNotAfterStart(t *testing.T) {
	cases := [][2]string{{"09:00", "09:00"}, {"10:00", "09:59"}, {"23:59", "00:00"}}
	for _, c := range cases {
		s := Slot{DayOfWeek: 1, StartTime: c[0], EndTime: c[1]}
		if err := s.Validate(); !errors.Is(err, ErrInvalidSlotTime) {
			t.Errorf("%s-%s: expected ErrInvalidSlotTime, got %v", c[0], c[1], err)
		}
	}
}

func TestSlot_Validate_MalformedTime(t *testing.T) {
	cases := []string{"", "8:00", "24:00", "08:60", "0800", "ab:cd"}
	for _, start := range cases {
		s := Slot{DayOfWeek: 1, StartTime: start, EndTime: "23:00"}
		if err := s.Validate(); !errors.Is(err, ErrInvalidSlotTime) {
			t.Errorf("start %q: expected ErrInvalidSlotTime, got %v", start, err)
		}
	}
}

func TestSlot_Validate_ReportsBothProblems(t *testing.T) {
	s := Slot{DayOfWeek: 9, StartTime: "10:00", EndTime: "09:00"}
	err := s.Validate()
	if !errors.Is(err, ErrInvalidDay) || !errors.Is(err, ErrInvalidSlotTime) {
		t.Fatalf("expected both errors, got %v", err)
	}
}

// Validate succeeds iff the day is in range and start < end.
func TestSlot_Validate_MatchesPredicate(t *testing.T) {
	times := []string{"00:00", "07:30", "08:00", "08:30", "12:00", "23:59"}
	for day := -1; day <= 7; day++ {
		for _, start := range times {
			for _, end := range times {
				s := Slot{DayOfWeek: day, StartTime: start, EndTime: end}
				want := day >= 0 && day <= 6 && start < end
				if got := s.Validate() == nil; got != want {
					t.Errorf("day=%d %s-%s: valid=%v, want %v", day, start, end, got, want)
				}
			}
		}
	}
}

// ── identity and helpers ──

func TestSlot_SameEntity(t *testing.T) {
	a := Slot{ID: PersistedSlotID(3), DayOfWeek: 0, StartTime: "08:00", EndTime: "09:00"}
	b := a
	b.Topic = "changed"
	if !a.SameEntity(b) {
		t.Error("slots with the same id are the same entity")
	}
	c := a
	c.ID = TransientSlotID(3)
	if a.SameEntity(c) {
		t.Error("transient 3 must never equal persisted 3")
	}
	if (Slot{}).SameEntity(Slot{}) {
		t.Error("slots without id are never the same entity")
	}
}

func TestSlot_DurationAndLabel(t *testing.T) {
	s := Slot{DayOfWeek: 0, StartTime: "08:00", EndTime: "09:30", Subject: &Ref{ID: 1, Name: "Maths"}}
	if got := s.Duration(); got != 90*time.Minute {
		t.Errorf("expected 90m, got %s", got)
	}
	if got := s.Label(); got != "Monday 08:00-09:30 - Maths" {
		t.Errorf("unexpected label %q", got)
	}
	s.StartTime = "bad"
	if s.Duration() != 0 {
		t.Error("invalid slot has zero duration")
	}
}

func TestSlot_Overlaps(t *testing.T) {
	a := Slot{DayOfWeek: 0, StartTime: "08:00", EndTime: "09:00"}
	if !a.Overlaps(Slot{DayOfWeek: 0, StartTime: "08:30", EndTime: "09:30"}) {
		t.Error("expected overlap")
	}
	if a.Overlaps(Slot{DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00"}) {
		t.Error("touching slots do not overlap")
	}
	if a.Overlaps(Slot{DayOfWeek: 1, StartTime: "08:00", EndTime: "09:00"}) {
		t.Error("different days never overlap")
	}
}

func TestSlotPatch_PreservesIdentity(t *testing.T) {
	s := Slot{ID: PersistedSlotID(5), DayOfWeek: 0, StartTime: "08:00", EndTime: "09:00",
		Topic: "intro", Faculty: &Ref{ID: 2, Name: "Doe"}, Classroom: &Ref{ID: 9, Name: "A1"}}
	end := "10:00"
	SlotPatch{EndTime: &end, ClearClassroom: true}.apply(&s)

	if s.ID != PersistedSlotID(5) {
		t.Errorf("id changed to %s", s.ID)
	}
	if s.EndTime != "10:00" || s.StartTime != "08:00" || s.Topic != "intro" {
		t.Errorf("unexpected fields after patch: %+v", s)
	}
	if s.Classroom != nil {
		t.Error("classroom should be cleared")
	}
	if s.Faculty == nil || s.Faculty.ID != 2 {
		t.Error("faculty should be untouched")
	}
}

// ── ids ──

func TestParseSlotID(t *testing.T) {
	id, err := ParseSlotID("tmp-7")
	if err != nil || !id.IsTransient() || id.String() != "tmp-7" {
		t.Fatalf("unexpected transient parse: %v %v", id, err)
	}
	id, err = ParseSlotID("42")
	if err != nil || id.IsTransient() || id.String() != "42" {
		t.Fatalf("unexpected persisted parse: %v %v", id, err)
	}
	if n, ok := id.Persisted(); !ok || n != 42 {
		t.Errorf("expected persisted 42, got %d %v", n, ok)
	}
	for _, bad := range []string{"", "tmp-", "x", "-1", "0"} {
		if _, err := ParseSlotID(bad); !errors.Is(err, ErrInvalidID) {
			t.Errorf("%q: expected ErrInvalidID, got %v", bad, err)
		}
	}
}

func TestParseTimetableID(t *testing.T) {
	id, err := ParseTimetableID("timetable_42")
	if err != nil || !id.IsSynthetic() {
		t.Fatalf("expected synthetic id, got %v %v", id, err)
	}
	if _, ok := id.Persisted(); ok {
		t.Error("synthetic id is not persisted")
	}
	id, err = ParseTimetableID("17")
	if err != nil || id.IsSynthetic() || id.String() != "17" {
		t.Fatalf("expected persisted 17, got %v %v", id, err)
	}
	if _, err := ParseTimetableID("abc"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}
