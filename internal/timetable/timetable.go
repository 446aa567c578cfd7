package timetable

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of timetable dates.
const DateLayout = "2006-01-02"

// Timetable is a named, dated collection of weekly slots for one batch.
type Timetable struct {
	ID           TimetableID `json:"id"`
	Name         string      `json:"name"`
	Batch        *Ref        `json:"batch,omitempty"`
	AcademicYear *Ref        `json:"academic_year,omitempty"`
	Semester     *Ref        `json:"semester,omitempty"`
	Faculty      *Ref        `json:"faculty,omitempty"`
	StartDate    string      `json:"start_date"`
	EndDate      string      `json:"end_date"`
	Description  string      `json:"description"`
	State        State       `json:"state"`
	Slots        []Slot      `json:"slots"`
}

// NewDraft returns an empty timetable in the initial state.
func NewDraft() *Timetable {
	return &Timetable{State: StateDraft, Slots: []Slot{}}
}

// Clone returns a deep copy; edits to the copy never reach the original.
func (t *Timetable) Clone() *Timetable {
	c := *t
	c.Batch = t.Batch.clone()
	c.AcademicYear = t.AcademicYear.clone()
	c.Semester = t.Semester.clone()
	c.Faculty = t.Faculty.clone()
	c.Slots = make([]Slot, len(t.Slots))
	for i, s := range t.Slots {
		c.Slots[i] = s.Clone()
	}
	return &c
}

// DisplayName renders "name - batch (year)" the way list screens show it.
func (t *Timetable) DisplayName() string {
	name := t.Name
	if name == "" {
		name = "New timetable"
	}
	if t.Batch == nil || t.Batch.Name == "" {
		return name
	}
	if t.AcademicYear != nil && t.AcademicYear.Name != "" {
		return fmt.Sprintf("%s - %s (%s)", name, t.Batch.Name, t.AcademicYear.Name)
	}
	return fmt.Sprintf("%s - %s", name, t.Batch.Name)
}

// Validate collects every problem so a UI can show them all at once.
// It returns nil or an *InvalidTimetableError.
func (t *Timetable) Validate() error {
	violations := t.violations()
	if len(violations) == 0 {
		return nil
	}
	return &InvalidTimetableError{Violations: violations}
}

func (t *Timetable) violations() []Violation {
	var out []Violation
	if strings.TrimSpace(t.Name) == "" {
		out = append(out, Violation{Field: "name", Message: "name is required", Err: ErrInvalidTimetable})
	}
	if !t.Batch.Assigned() {
		out = append(out, Violation{Field: "batch_id", Message: "batch is required", Err: ErrInvalidTimetable})
	}
	start, startOK := parseDate(&out, "start_date", t.StartDate)
	end, endOK := parseDate(&out, "end_date", t.EndDate)
	if startOK && endOK && start.After(end) {
		out = append(out, Violation{
			Field:   "end_date",
			Message: fmt.Sprintf("end date %s is before start date %s", t.EndDate, t.StartDate),
			Err:     ErrInvalidTimetable,
		})
	}
	if t.State != "" && !t.State.Valid() {
		out = append(out, Violation{Field: "state", Message: fmt.Sprintf("unknown state %q", t.State), Err: ErrInvalidTimetable})
	}
	for _, s := range t.Slots {
		out = append(out, s.violations()...)
	}
	return out
}

func parseDate(out *[]Violation, field, value string) (time.Time, bool) {
	if value == "" {
		*out = append(*out, Violation{Field: field, Message: field + " is required", Err: ErrInvalidTimetable})
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		*out = append(*out, Violation{Field: field, Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", value), Err: ErrInvalidTimetable})
		return time.Time{}, false
	}
	return d, true
}

// FindSlot returns the index of the slot with the given id, or -1.
func (t *Timetable) FindSlot(id SlotID) int {
	for i := range t.Slots {
		if t.Slots[i].ID == id {
			return i
		}
	}
	return -1
}

// Week groups the timetable's slots for display.
func (t *Timetable) Week() Week { return GroupByDay(t.Slots) }

// DetailsPatch carries header fields to change; nil fields are untouched.
type DetailsPatch struct {
	Name         *string
	Batch        *Ref
	AcademicYear *Ref
	Semester     *Ref
	Faculty      *Ref
	StartDate    *string
	EndDate      *string
	Description  *string
}

func (p DetailsPatch) apply(t *Timetable) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Batch != nil {
		t.Batch = p.Batch.clone()
	}
	if p.AcademicYear != nil {
		t.AcademicYear = p.AcademicYear.clone()
	}
	if p.Semester != nil {
		t.Semester = p.Semester.clone()
	}
	if p.Faculty != nil {
		t.Faculty = p.Faculty.clone()
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
}
