package timetable

import (
	"errors"
	"fmt"
	"time"
)

// SessionType is the kind of class held in a slot.
type SessionType string

const (
	SessionLecture   SessionType = "lecture"
	SessionPractical SessionType = "practical"
	SessionTutorial  SessionType = "tutorial"
	SessionExam      SessionType = "exam"
	SessionOther     SessionType = "other"
)

// Valid reports whether t is one of the known session types.
func (t SessionType) Valid() bool {
	switch t {
	case SessionLecture, SessionPractical, SessionTutorial, SessionExam, SessionOther:
		return true
	}
	return false
}

// Ref is a reference to another ERP entity with its denormalised name.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Assigned reports whether the reference points at a real record.
func (r *Ref) Assigned() bool { return r != nil && r.ID != 0 }

// key identifies the referenced entity for counting; the name is used when
// the backend only sent a name.
func (r *Ref) key() string {
	if r == nil {
		return ""
	}
	if r.ID != 0 {
		return fmt.Sprintf("#%d", r.ID)
	}
	return r.Name
}

func (r *Ref) clone() *Ref {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// Slot is one weekly occurrence in a timetable.
type Slot struct {
	ID          SlotID      `json:"id"`
	DayOfWeek   int         `json:"day_of_week"` // 0=Monday ... 6=Sunday
	StartTime   string      `json:"start_time"`  // "HH:MM"
	EndTime     string      `json:"end_time"`    // "HH:MM"
	SessionType SessionType `json:"session_type"`
	Topic       string      `json:"topic"`
	Subject     *Ref        `json:"subject,omitempty"`
	Faculty     *Ref        `json:"faculty,omitempty"`
	Classroom   *Ref        `json:"classroom,omitempty"`
}

// Validate checks the day range and the time range. Both problems are
// reported when both are present.
func (s Slot) Validate() error {
	var errs []error
	if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidDay, s.DayOfWeek))
	}
	if err := checkTimeRange(s.StartTime, s.EndTime); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s Slot) violations() []Violation {
	var out []Violation
	id := s.ID
	if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
		out = append(out, Violation{Field: "day_of_week", SlotID: &id, Message: ErrInvalidDay.Error(), Err: ErrInvalidDay})
	}
	if err := checkTimeRange(s.StartTime, s.EndTime); err != nil {
		out = append(out, Violation{Field: "end_time", SlotID: &id, Message: err.Error(), Err: ErrInvalidSlotTime})
	}
	return out
}

func checkTimeRange(start, end string) error {
	if !IsClock(start) {
		return fmt.Errorf("%w: start time %q is not HH:MM", ErrInvalidSlotTime, start)
	}
	if !IsClock(end) {
		return fmt.Errorf("%w: end time %q is not HH:MM", ErrInvalidSlotTime, end)
	}
	// zero-padded 24h strings order the same way as the times they denote
	if start >= end {
		return fmt.Errorf("%w: %s-%s", ErrInvalidSlotTime, start, end)
	}
	return nil
}

// IsClock reports whether s is a zero-padded 24h "HH:MM" wall-clock time.
func IsClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// SameEntity reports identity, not value equality.
func (s Slot) SameEntity(other Slot) bool {
	return !s.ID.IsZero() && s.ID == other.ID
}

// Duration of one occurrence; zero when the times are invalid.
func (s Slot) Duration() time.Duration {
	start, err1 := time.Parse("15:04", s.StartTime)
	end, err2 := time.Parse("15:04", s.EndTime)
	if err1 != nil || err2 != nil || !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

// Label renders "Monday 08:00-09:00 - Maths".
func (s Slot) Label() string {
	label := fmt.Sprintf("%s %s-%s", DayName(s.DayOfWeek), s.StartTime, s.EndTime)
	if s.Subject != nil && s.Subject.Name != "" {
		label += " - " + s.Subject.Name
	}
	return label
}

// Overlaps reports whether both slots share a day and their [start, end)
// intervals intersect.
func (s Slot) Overlaps(other Slot) bool {
	if s.DayOfWeek != other.DayOfWeek {
		return false
	}
	return s.StartTime < other.EndTime && other.StartTime < s.EndTime
}

// Clone returns a deep copy.
func (s Slot) Clone() Slot {
	c := s
	c.Subject = s.Subject.clone()
	c.Faculty = s.Faculty.clone()
	c.Classroom = s.Classroom.clone()
	return c
}

// SlotPatch carries the fields to change; nil fields are left untouched.
// Clear* flags unassign a relation.
type SlotPatch struct {
	DayOfWeek      *int
	StartTime      *string
	EndTime        *string
	SessionType    *SessionType
	Topic          *string
	Subject        *Ref
	Faculty        *Ref
	Classroom      *Ref
	ClearSubject   bool
	ClearFaculty   bool
	ClearClassroom bool
}

// apply changes only the patched fields, identity is preserved.
func (p SlotPatch) apply(s *Slot) {
	if p.DayOfWeek != nil {
		s.DayOfWeek = *p.DayOfWeek
	}
	if p.StartTime != nil {
		s.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		s.EndTime = *p.EndTime
	}
	if p.SessionType != nil {
		s.SessionType = *p.SessionType
	}
	if p.Topic != nil {
		s.Topic = *p.Topic
	}
	switch {
	case p.ClearSubject:
		s.Subject = nil
	case p.Subject != nil:
		s.Subject = p.Subject.clone()
	}
	switch {
	case p.ClearFaculty:
		s.Faculty = nil
	case p.Faculty != nil:
		s.Faculty = p.Faculty.clone()
	}
	switch {
	case p.ClearClassroom:
		s.Classroom = nil
	case p.Classroom != nil:
		s.Classroom = p.Classroom.clone()
	}
}
