package timetable

import (
	"math/rand"
	"testing"
)

func sampleSlots() []Slot {
	return []Slot{
		{ID: PersistedSlotID(1), DayOfWeek: 2, StartTime: "10:00", EndTime: "11:00", Topic: "a"},
		{ID: PersistedSlotID(2), DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00", Topic: "b"},
		{ID: PersistedSlotID(3), DayOfWeek: 0, StartTime: "08:00", EndTime: "09:00", Topic: "c"},
		{ID: PersistedSlotID(4), DayOfWeek: 2, StartTime: "10:00", EndTime: "12:00", Topic: "d"},
		{ID: PersistedSlotID(5), DayOfWeek: 6, StartTime: "14:00", EndTime: "15:00", Topic: "e"},
		{ID: PersistedSlotID(6), DayOfWeek: 2, StartTime: "08:00", EndTime: "09:00", Topic: "f"},
		{ID: PersistedSlotID(7), DayOfWeek: 2, StartTime: "10:00", EndTime: "10:30", Topic: "g"},
	}
}

func TestGroupByDay_AllBucketsPresent(t *testing.T) {
	w := GroupByDay(nil)
	for d, bucket := range w {
		if bucket == nil {
			t.Errorf("bucket %d is nil", d)
		}
	}
}

func TestGroupByDay_Partition(t *testing.T) {
	slots := sampleSlots()
	w := GroupByDay(slots)

	if w.Len() != len(slots) {
		t.Fatalf("expected %d slots, got %d", len(slots), w.Len())
	}
	seen := make(map[SlotID]int)
	for d, bucket := range w {
		for _, s := range bucket {
			if s.DayOfWeek != d {
				t.Errorf("slot %s of day %d in bucket %d", s.ID, s.DayOfWeek, d)
			}
			seen[s.ID]++
		}
	}
	for _, s := range slots {
		if seen[s.ID] != 1 {
			t.Errorf("slot %s appears %d times", s.ID, seen[s.ID])
		}
	}
}

func TestGroupByDay_SortedAndStable(t *testing.T) {
	w := GroupByDay(sampleSlots())

	var topics string
	for _, s := range w[2] {
		topics += s.Topic
	}
	// f starts first; a, d and g share 10:00 and keep input order
	if topics != "fadg" {
		t.Errorf("expected fadg, got %s", topics)
	}
	if w[0][0].Topic != "c" || w[0][1].Topic != "b" {
		t.Errorf("monday not sorted: %+v", w[0])
	}
}

func TestGroupByDay_RandomInputs(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	clocks := []string{"08:00", "09:00", "10:00", "11:00"}
	for round := 0; round < 50; round++ {
		n := r.Intn(30)
		slots := make([]Slot, n)
		for i := range slots {
			slots[i] = Slot{
				ID:        PersistedSlotID(int64(i + 1)),
				DayOfWeek: r.Intn(7),
				StartTime: clocks[r.Intn(len(clocks))],
				EndTime:   "23:00",
			}
		}
		w := GroupByDay(slots)
		if w.Len() != n {
			t.Fatalf("round %d: lost slots", round)
		}
		for _, bucket := range w {
			for i := 1; i < len(bucket); i++ {
				prev, cur := bucket[i-1], bucket[i]
				if prev.StartTime > cur.StartTime {
					t.Fatalf("round %d: not sorted", round)
				}
				if prev.StartTime == cur.StartTime && prev.ID.value > cur.ID.value {
					t.Fatalf("round %d: tie order not preserved", round)
				}
			}
		}
	}
}

func TestGroupByDay_DoesNotReorderInput(t *testing.T) {
	slots := sampleSlots()
	GroupByDay(slots)
	if slots[0].ID != PersistedSlotID(1) || slots[2].ID != PersistedSlotID(3) {
		t.Error("input slice was reordered")
	}
}

func TestSummarize(t *testing.T) {
	slots := []Slot{
		{Subject: &Ref{ID: 1, Name: "Maths"}, Faculty: &Ref{ID: 10, Name: "Doe"}, Classroom: &Ref{ID: 100, Name: "A1"}},
		{Subject: &Ref{ID: 1, Name: "Maths"}, Faculty: &Ref{ID: 11, Name: "Roe"}},
		{Subject: &Ref{ID: 2, Name: "Physics"}, Classroom: &Ref{Name: "Lab"}},
		{},
	}
	got := Summarize(slots)
	want := Summary{Subjects: 2, Faculty: 2, Classrooms: 2, Slots: 4}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestDayName(t *testing.T) {
	if DayName(0) != "Monday" || DayName(6) != "Sunday" || DayName(7) != "Unknown" {
		t.Error("unexpected day names")
	}
}

func TestPartitionByDay_ReportsOutOfRange(t *testing.T) {
	slots := []Slot{
		{ID: PersistedSlotID(1), DayOfWeek: 0, StartTime: "08:00", EndTime: "09:00"},
		{ID: PersistedSlotID(2), DayOfWeek: 7, StartTime: "08:00", EndTime: "09:00"},
		{ID: PersistedSlotID(3), DayOfWeek: 6, StartTime: "08:00", EndTime: "09:00"},
		{ID: PersistedSlotID(4), DayOfWeek: -1, StartTime: "08:00", EndTime: "09:00"},
	}
	w, rejected := PartitionByDay(slots)
	if w.Len()+len(rejected) != len(slots) {
		t.Fatalf("expected %d slots accounted for, got %d", len(slots), w.Len()+len(rejected))
	}
	if len(rejected) != 2 || rejected[0].ID != PersistedSlotID(2) || rejected[1].ID != PersistedSlotID(4) {
		t.Errorf("unexpected rejects %+v", rejected)
	}
	if g := GroupByDay(slots); g.Len() != 2 {
		t.Errorf("GroupByDay should keep the two valid slots, got %d", g.Len())
	}
}
