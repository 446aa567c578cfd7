package timetable

import "sort"

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayName returns the English weekday name for 0=Monday ... 6=Sunday.
func DayName(day int) string {
	if day < 0 || day > 6 {
		return "Unknown"
	}
	return dayNames[day]
}

// Week holds one bucket per weekday, index 0 being Monday.
type Week [7][]Slot

// GroupByDay partitions slots by day. Every bucket is present (possibly
// empty) and ordered by start time; slots starting at the same time keep
// their input order. Callers with unvalidated input should use PartitionByDay,
// GroupByDay silently leaves out slots whose day is outside 0-6.
func GroupByDay(slots []Slot) Week {
	w, _ := PartitionByDay(slots)
	return w
}

// PartitionByDay is GroupByDay that also returns, in input order, the slots
// whose day is outside 0-6. The week plus the rejects always hold every
// input slot.
func PartitionByDay(slots []Slot) (Week, []Slot) {
	var (
		w        Week
		rejected []Slot
	)
	for d := range w {
		w[d] = []Slot{}
	}
	for _, s := range slots {
		if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
			rejected = append(rejected, s)
			continue
		}
		w[s.DayOfWeek] = append(w[s.DayOfWeek], s)
	}
	for d := range w {
		bucket := w[d]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].StartTime < bucket[j].StartTime
		})
	}
	return w, rejected
}

// Len counts all slots in the week.
func (w Week) Len() int {
	n := 0
	for _, b := range w {
		n += len(b)
	}
	return n
}

// Summary is the statistics block of the detail screen.
type Summary struct {
	Subjects   int `json:"subjects"`
	Faculty    int `json:"faculty"`
	Classrooms int `json:"classrooms"`
	Slots      int `json:"slots"`
}

// Summarize counts distinct assigned subjects, faculty and classrooms.
// Unassigned relations are not counted.
func Summarize(slots []Slot) Summary {
	subjects := make(map[string]struct{})
	faculty := make(map[string]struct{})
	rooms := make(map[string]struct{})
	for _, s := range slots {
		if k := s.Subject.key(); k != "" {
			subjects[k] = struct{}{}
		}
		if k := s.Faculty.key(); k != "" {
			faculty[k] = struct{}{}
		}
		if k := s.Classroom.key(); k != "" {
			rooms[k] = struct{}{}
		}
	}
	return Summary{
		Subjects:   len(subjects),
		Faculty:    len(faculty),
		Classrooms: len(rooms),
		Slots:      len(slots),
	}
}
