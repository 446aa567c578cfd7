package timetable

import (
	"errors"
	"testing"
)

var allStates = []State{StateDraft, StateActive, StateArchived, StateCancelled}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]State]bool{
		{StateDraft, StateActive}:     true,
		{StateDraft, StateCancelled}:  true,
		{StateActive, StateArchived}:  true,
		{StateActive, StateCancelled}: true,
	}
	for _, from := range allStates {
		for _, to := range allStates {
			if got := CanTransition(from, to); got != allowed[[2]State{from, to}] {
				t.Errorf("%s -> %s: got %v", from, to, got)
			}
		}
	}
	if CanTransition(StateActive, StateDraft) {
		t.Error("active -> draft must be refused")
	}
}

func TestCanTransition_TerminalStates(t *testing.T) {
	for _, from := range []State{StateArchived, StateCancelled} {
		if !from.Terminal() {
			t.Errorf("%s should be terminal", from)
		}
		for _, to := range allStates {
			if CanTransition(from, to) {
				t.Errorf("%s -> %s must be refused", from, to)
			}
		}
	}
}

func TestTransition_Synthetic(t *testing.T) {
	tt := &Timetable{ID: SyntheticID("timetable_42"), State: StateDraft}
	for _, to := range allStates {
		if tt.CanTransitionTo(to) {
			t.Errorf("synthetic timetable cannot move to %s", to)
		}
	}
	if err := tt.Transition(StateActive); !errors.Is(err, ErrSyntheticReadOnly) {
		t.Errorf("expected ErrSyntheticReadOnly, got %v", err)
	}
	if tt.State != StateDraft {
		t.Error("state changed on failure")
	}
	if len(tt.AllowedTransitions()) != 0 {
		t.Error("synthetic timetable has no allowed transitions")
	}
}

func TestTransition_IllegalIsAtomic(t *testing.T) {
	tt := &Timetable{ID: PersistedID(1), State: StateArchived}
	err := tt.Transition(StateActive)
	if !errors.Is(err, ErrIllegalStateTransition) {
		t.Fatalf("expected ErrIllegalStateTransition, got %v", err)
	}
	var ite *IllegalTransitionError
	if !errors.As(err, &ite) || ite.From != StateArchived || ite.To != StateActive {
		t.Errorf("unexpected error detail %v", err)
	}
	if tt.State != StateArchived {
		t.Error("state changed on failure")
	}
}

func TestTransition_Legal(t *testing.T) {
	tt := &Timetable{ID: PersistedID(1), State: StateDraft}
	if err := tt.Transition(StateActive); err != nil {
		t.Fatalf("draft -> active: %v", err)
	}
	if err := tt.Transition(StateArchived); err != nil {
		t.Fatalf("active -> archived: %v", err)
	}
	if tt.State != StateArchived {
		t.Errorf("expected archived, got %s", tt.State)
	}
}

func TestCheckEditable(t *testing.T) {
	if err := (&Timetable{State: StateDraft}).CheckEditable(); err != nil {
		t.Errorf("draft is editable: %v", err)
	}
	for _, s := range []State{StateActive, StateArchived, StateCancelled} {
		if err := (&Timetable{ID: PersistedID(1), State: s}).CheckEditable(); !errors.Is(err, ErrNotEditable) {
			t.Errorf("%s: expected ErrNotEditable, got %v", s, err)
		}
	}
	syn := &Timetable{ID: SyntheticID("timetable_3"), State: StateDraft}
	if syn.CanEdit() {
		t.Error("synthetic timetable is never editable")
	}
}
