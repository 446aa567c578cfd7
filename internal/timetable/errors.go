package timetable

import (
	"errors"
	"fmt"
	"strings"
)

// ── Domain errors ──

var (
	ErrInvalidSlotTime        = errors.New("slot end time must be after its start time")
	ErrInvalidDay             = errors.New("day of week must be between 0 (Monday) and 6 (Sunday)")
	ErrInvalidTimetable       = errors.New("timetable is invalid")
	ErrIllegalStateTransition = errors.New("illegal timetable state transition")
	ErrSyntheticReadOnly      = errors.New("timetable is generated from sessions and is read-only; edit or delete the underlying sessions instead")
	ErrNotEditable            = errors.New("timetable can only be edited while in draft")
	ErrSlotNotFound           = errors.New("slot not found in the working copy")
	ErrSlotConflict           = errors.New("slots overlap on the same faculty or classroom")
	ErrCommitInFlight         = errors.New("a commit for this timetable is already in progress")
	ErrInvalidID              = errors.New("invalid identifier")
	ErrSpanTooLong            = errors.New("date range is too long to expand")
)

// Violation is one problem found while validating a timetable.
// Field names follow the backend payload keys so a UI can highlight them.
type Violation struct {
	Field   string  `json:"field"`
	SlotID  *SlotID `json:"slot_id,omitempty"`
	Message string  `json:"message"`
	Err     error   `json:"-"`
}

func (v Violation) String() string {
	if v.SlotID != nil {
		return fmt.Sprintf("slot %s: %s: %s", v.SlotID, v.Field, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// InvalidTimetableError lists every violation found, not only the first.
type InvalidTimetableError struct {
	Violations []Violation
}

func (e *InvalidTimetableError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("%s: %s", ErrInvalidTimetable.Error(), strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrInvalidTimetable) and errors.Is(err, <cause>)
// work for any violation cause.
func (e *InvalidTimetableError) Is(target error) bool {
	if target == ErrInvalidTimetable {
		return true
	}
	for _, v := range e.Violations {
		if v.Err != nil && errors.Is(v.Err, target) {
			return true
		}
	}
	return false
}

// Messages returns the human readable violation list.
func (e *InvalidTimetableError) Messages() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.String())
	}
	return out
}

// IllegalTransitionError reports a refused lifecycle transition.
type IllegalTransitionError struct {
	From State
	To   State
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrIllegalStateTransition.Error(), e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalStateTransition }
