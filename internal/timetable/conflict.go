package timetable

import "fmt"

// Conflict dimensions.
const (
	ConflictFaculty   = "faculty"
	ConflictClassroom = "classroom"
)

// Conflict is a pair of same-day overlapping slots that share a faculty
// member or a classroom.
type Conflict struct {
	Day       int    `json:"day_of_week"`
	First     SlotID `json:"first_slot_id"`
	Second    SlotID `json:"second_slot_id"`
	Dimension string `json:"dimension"`
	RefID     int64  `json:"ref_id"`
	RefName   string `json:"ref_name"`
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s %s %q is booked twice on %s (slots %s and %s)",
		ErrSlotConflict.Error(), c.Dimension, c.RefName, DayName(c.Day), c.First, c.Second)
}

// DetectConflicts checks every same-day pair. A pair sharing both the
// faculty and the classroom is reported once per dimension.
func DetectConflicts(slots []Slot) []Conflict {
	var out []Conflict
	week := GroupByDay(slots)
	for day, bucket := range week {
		for i := 0; i < len(bucket); i++ {
			a := bucket[i]
			for j := i + 1; j < len(bucket); j++ {
				b := bucket[j]
				// bucket is sorted by start: nothing later can overlap a
				if b.StartTime >= a.EndTime {
					break
				}
				if !a.Overlaps(b) {
					continue
				}
				if a.Faculty.Assigned() && b.Faculty.Assigned() && a.Faculty.ID == b.Faculty.ID {
					out = append(out, Conflict{
						Day: day, First: a.ID, Second: b.ID,
						Dimension: ConflictFaculty, RefID: a.Faculty.ID, RefName: a.Faculty.Name,
					})
				}
				if a.Classroom.Assigned() && b.Classroom.Assigned() && a.Classroom.ID == b.Classroom.ID {
					out = append(out, Conflict{
						Day: day, First: a.ID, Second: b.ID,
						Dimension: ConflictClassroom, RefID: a.Classroom.ID, RefName: a.Classroom.Name,
					})
				}
			}
		}
	}
	return out
}

func conflictViolations(conflicts []Conflict) []Violation {
	out := make([]Violation, 0, len(conflicts))
	for _, c := range conflicts {
		id := c.Second
		out = append(out, Violation{
			Field:   c.Dimension + "_id",
			SlotID:  &id,
			Message: c.String(),
			Err:     ErrSlotConflict,
		})
	}
	return out
}
