package timetable

import (
	"context"
	"fmt"
	"sync"
)

// Committer persists a whole timetable. It is satisfied by the gateways.
type Committer interface {
	Create(ctx context.Context, t *Timetable) (*Timetable, error)
	Update(ctx context.Context, id TimetableID, t *Timetable) (*Timetable, error)
}

// Option configures a Session.
type Option func(*Session)

// WithConflictCheck makes Commit refuse timetables whose slots double-book
// a faculty member or a classroom. Enabled by default.
func WithConflictCheck(enabled bool) Option {
	return func(s *Session) { s.checkConflicts = enabled }
}

// Session accumulates slot and detail edits on an isolated working copy
// and saves them in one whole-resource commit.
type Session struct {
	mu             sync.Mutex
	base           *Timetable
	working        *Timetable
	lastTransient  int64
	revision       uint64
	savedRevision  uint64
	committing     bool
	checkConflicts bool
}

// NewSession opens a session on base, or on a fresh draft when base is nil.
// base itself is never modified.
func NewSession(base *Timetable, opts ...Option) (*Session, error) {
	s := &Session{checkConflicts: true}
	for _, opt := range opts {
		opt(s)
	}
	if base == nil {
		s.working = NewDraft()
		return s, nil
	}
	if err := base.CheckEditable(); err != nil {
		return nil, err
	}
	s.base = base.Clone()
	s.working = base.Clone()
	for _, slot := range s.working.Slots {
		if slot.ID.IsTransient() && slot.ID.value > s.lastTransient {
			s.lastTransient = slot.ID.value
		}
	}
	return s, nil
}

// Working returns a snapshot of the working copy.
func (s *Session) Working() *Timetable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.Clone()
}

// Base returns the last saved timetable, nil for a session that has not
// been committed yet.
func (s *Session) Base() *Timetable {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.base == nil {
		return nil
	}
	return s.base.Clone()
}

// Dirty reports edits made since the session was opened or last committed.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision != s.savedRevision
}

// Committing reports whether a commit is in flight.
func (s *Session) Committing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committing
}

// AddSlot appends a copy of draft under a fresh transient id and returns
// that id. Whatever id draft carried is discarded.
func (s *Session) AddSlot(draft Slot) (SlotID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.working.CheckEditable(); err != nil {
		return SlotID{}, err
	}
	s.lastTransient++
	id := TransientSlotID(s.lastTransient)
	slot := draft.Clone()
	slot.ID = id
	if slot.SessionType == "" {
		slot.SessionType = SessionLecture
	}
	s.working.Slots = append(s.working.Slots, slot)
	s.revision++
	return id, nil
}

// UpdateSlot applies patch to the slot with the given id.
func (s *Session) UpdateSlot(id SlotID, patch SlotPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.working.CheckEditable(); err != nil {
		return err
	}
	i := s.working.FindSlot(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSlotNotFound, id)
	}
	patch.apply(&s.working.Slots[i])
	s.revision++
	return nil
}

// RemoveSlot drops the slot with the given id from the working copy.
func (s *Session) RemoveSlot(id SlotID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.working.CheckEditable(); err != nil {
		return err
	}
	i := s.working.FindSlot(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSlotNotFound, id)
	}
	s.working.Slots = append(s.working.Slots[:i], s.working.Slots[i+1:]...)
	s.revision++
	return nil
}

// UpdateDetails changes header fields such as name and dates.
func (s *Session) UpdateDetails(patch DetailsPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.working.CheckEditable(); err != nil {
		return err
	}
	patch.apply(s.working)
	s.revision++
	return nil
}

// Validate checks the working copy the way Commit will.
func (s *Session) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validate(s.working)
}

func (s *Session) validate(t *Timetable) error {
	violations := t.violations()
	if s.checkConflicts {
		violations = append(violations, conflictViolations(DetectConflicts(t.Slots))...)
	}
	if len(violations) == 0 {
		return nil
	}
	return &InvalidTimetableError{Violations: violations}
}

// Commit validates the working copy and submits it in full, creating the
// timetable when it has no id yet. The lock is not held during the call,
// so edits stay possible while it runs; a second Commit fails with
// ErrCommitInFlight. On failure the working copy is left exactly as it was.
// On success the session is rebased onto the saved timetable: if nothing
// was edited meanwhile the working copy becomes the saved copy, otherwise
// the pending edits are kept and only what the backend decides (id and
// state) is adopted. A backend that activates on save thereby ends the
// editing.
func (s *Session) Commit(ctx context.Context, c Committer) (*Timetable, error) {
	s.mu.Lock()
	if s.committing {
		s.mu.Unlock()
		return nil, ErrCommitInFlight
	}
	if err := s.working.CheckEditable(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	snapshot := s.working.Clone()
	if err := s.validate(snapshot); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.committing = true
	rev := s.revision
	s.mu.Unlock()

	var (
		saved *Timetable
		err   error
	)
	if snapshot.ID.IsZero() {
		saved, err = c.Create(ctx, snapshot)
	} else {
		saved, err = c.Update(ctx, snapshot.ID, snapshot)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.committing = false
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("commit timetable: empty response")
	}
	s.base = saved.Clone()
	if s.revision == rev {
		s.working = saved.Clone()
		s.savedRevision = s.revision
	} else {
		s.working.ID = saved.ID
		s.working.State = saved.State
	}
	return saved.Clone(), nil
}
