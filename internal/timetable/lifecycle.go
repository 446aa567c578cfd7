package timetable

// State is the lifecycle state of a timetable.
type State string

const (
	StateDraft     State = "draft"
	StateActive    State = "active"
	StateArchived  State = "archived"
	StateCancelled State = "cancelled"
)

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StateDraft, StateActive, StateArchived, StateCancelled:
		return true
	}
	return false
}

// Terminal reports states with no way out.
func (s State) Terminal() bool {
	return s == StateArchived || s == StateCancelled
}

// transitions lists every allowed edge; anything missing is refused.
var transitions = map[State][]State{
	StateDraft:  {StateActive, StateCancelled},
	StateActive: {StateArchived, StateCancelled},
}

// CanTransition is the pure predicate consulted before every transition.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the states reachable from the timetable's
// current state; always empty for synthetic timetables.
func (t *Timetable) AllowedTransitions() []State {
	if t.ID.IsSynthetic() {
		return []State{}
	}
	out := make([]State, 0, 2)
	out = append(out, transitions[t.State]...)
	return out
}

// CanTransitionTo applies CanTransition, except that synthetic timetables
// refuse every transition.
func (t *Timetable) CanTransitionTo(to State) bool {
	if t.ID.IsSynthetic() {
		return false
	}
	return CanTransition(t.State, to)
}

// Transition moves the timetable to the target state or leaves it unchanged
// and returns why not.
func (t *Timetable) Transition(to State) error {
	if t.ID.IsSynthetic() {
		return ErrSyntheticReadOnly
	}
	if !CanTransition(t.State, to) {
		return &IllegalTransitionError{From: t.State, To: to}
	}
	t.State = to
	return nil
}

// CanEdit reports whether slots, dates and details may be changed.
func (t *Timetable) CanEdit() bool {
	return t.CheckEditable() == nil
}

// CheckEditable explains why a timetable cannot be edited.
func (t *Timetable) CheckEditable() error {
	if t.ID.IsSynthetic() {
		return ErrSyntheticReadOnly
	}
	if t.State != StateDraft {
		return ErrNotEditable
	}
	return nil
}
