package timetable

import (
	"errors"
	"testing"
	"time"
)

func TestOccurrences_ExpandsByWeekday(t *testing.T) {
	tt := &Timetable{
		StartDate: "2024-09-02", // Monday
		EndDate:   "2024-09-15", // Sunday, two weeks later
		Slots: []Slot{
			{ID: PersistedSlotID(1), DayOfWeek: 0, StartTime: "08:00", EndTime: "09:00"},
			{ID: PersistedSlotID(2), DayOfWeek: 2, StartTime: "14:00", EndTime: "15:30"},
			{ID: PersistedSlotID(3), DayOfWeek: 0, StartTime: "07:00", EndTime: "08:00"},
		},
	}
	occ, err := tt.Occurrences(nil)
	if err != nil {
		t.Fatalf("Occurrences: %v", err)
	}
	if len(occ) != 6 {
		t.Fatalf("expected 6 occurrences, got %d", len(occ))
	}
	if occ[0].Date != "2024-09-02" || occ[0].SlotID != PersistedSlotID(3) {
		t.Errorf("expected the 07:00 slot first, got %+v", occ[0])
	}
	want := time.Date(2024, 9, 4, 14, 0, 0, 0, time.UTC)
	if !occ[2].Start.Equal(want) || occ[2].End.Sub(occ[2].Start) != 90*time.Minute {
		t.Errorf("unexpected wednesday occurrence %+v", occ[2])
	}
	if occ[5].Date != "2024-09-11" {
		t.Errorf("expected last occurrence on 2024-09-11, got %s", occ[5].Date)
	}
}

func TestOccurrences_SingleDay(t *testing.T) {
	tt := &Timetable{
		StartDate: "2024-09-02",
		EndDate:   "2024-09-02",
		Slots: []Slot{
			{DayOfWeek: 0, StartTime: "08:00", EndTime: "09:00"},
			{DayOfWeek: 1, StartTime: "08:00", EndTime: "09:00"},
		},
	}
	occ, err := tt.Occurrences(nil)
	if err != nil || len(occ) != 1 {
		t.Fatalf("expected one occurrence, got %d (%v)", len(occ), err)
	}
}

func TestOccurrences_InvalidRange(t *testing.T) {
	tt := &Timetable{StartDate: "2024-09-10", EndDate: "2024-09-01"}
	if _, err := tt.Occurrences(nil); !errors.Is(err, ErrInvalidTimetable) {
		t.Errorf("expected ErrInvalidTimetable, got %v", err)
	}
	tt = &Timetable{StartDate: "", EndDate: "2024-09-01"}
	if _, err := tt.Occurrences(nil); !errors.Is(err, ErrInvalidTimetable) {
		t.Errorf("expected ErrInvalidTimetable, got %v", err)
	}
}

func TestOccurrences_SpanTooLong(t *testing.T) {
	tt := &Timetable{
		StartDate: "0001-01-01",
		EndDate:   "9999-12-31",
		Slots:     []Slot{{DayOfWeek: 0, StartTime: "08:00", EndTime: "09:00"}},
	}
	occ, err := tt.Occurrences(nil)
	if !errors.Is(err, ErrSpanTooLong) || !errors.Is(err, ErrInvalidTimetable) {
		t.Fatalf("expected ErrSpanTooLong, got %v", err)
	}
	if occ != nil {
		t.Errorf("expected no occurrences, got %d", len(occ))
	}

	// a full academic year still expands
	tt.StartDate, tt.EndDate = "2024-09-01", "2025-08-31"
	occ, err = tt.Occurrences(nil)
	if err != nil {
		t.Fatalf("Occurrences: %v", err)
	}
	if len(occ) != 52 {
		t.Errorf("expected 52 mondays, got %d", len(occ))
	}
}
