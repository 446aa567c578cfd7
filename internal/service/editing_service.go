package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/5sursyncIT/edusync-sub001/config"
	"github.com/5sursyncIT/edusync-sub001/internal/dto"
	"github.com/5sursyncIT/edusync-sub001/internal/gateway"
	"github.com/5sursyncIT/edusync-sub001/internal/timetable"
)

// ── editing session errors ──

var (
	ErrSessionNotFound  = errors.New("editing session not found or expired")
	ErrSessionForbidden = errors.New("editing session belongs to another user")
)

// EditingService keeps interactive editing sessions in memory. Each
// session is owned by the user who opened it and expires after a period of
// inactivity.
type EditingService interface {
	Open(ctx context.Context, userID string, id *timetable.TimetableID) (*dto.SessionResponse, error)
	Get(ctx context.Context, userID, sid string) (*dto.SessionResponse, error)
	Close(ctx context.Context, userID, sid string) error
	UpdateDetails(ctx context.Context, userID, sid string, req *dto.UpdateDetailsRequest) (*dto.SessionResponse, error)
	AddSlot(ctx context.Context, userID, sid string, req *dto.SlotInput) (*dto.SlotAddedResponse, error)
	UpdateSlot(ctx context.Context, userID, sid string, slotID timetable.SlotID, req *dto.UpdateSlotRequest) (*dto.SessionResponse, error)
	RemoveSlot(ctx context.Context, userID, sid string, slotID timetable.SlotID) (*dto.SessionResponse, error)
	Commit(ctx context.Context, userID, sid string) (*dto.SessionResponse, error)

	// Sweep drops expired sessions and returns how many were dropped.
	Sweep() int
	// Start runs the periodic sweeper; Stop waits for a running sweep.
	Start() error
	Stop(ctx context.Context) error
}

type sessionEntry struct {
	id       string
	owner    string
	session  *timetable.Session
	lastUsed time.Time
}

type editingService struct {
	gw     gateway.Gateway
	locker CommitLocker
	cfg    config.EditingConfig
	logger *zap.Logger
	clock  func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry

	cron *cron.Cron
}

// NewEditingService creates an EditingService. A nil locker falls back to
// an in-process one.
func NewEditingService(gw gateway.Gateway, locker CommitLocker, cfg config.EditingConfig, logger *zap.Logger) EditingService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if cfg.CommitLockTTL <= 0 {
		cfg.CommitLockTTL = 30 * time.Second
	}
	return &editingService{
		gw:       gw,
		locker:   locker,
		cfg:      cfg,
		logger:   logger,
		clock:    time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// ════════════════════════════════════════════════════════════
// session registry
// ════════════════════════════════════════════════════════════

func (s *editingService) Open(ctx context.Context, userID string, id *timetable.TimetableID) (*dto.SessionResponse, error) {
	var base *timetable.Timetable
	if id != nil && !id.IsZero() {
		t, err := s.gw.Get(ctx, *id)
		if err != nil {
			return nil, err
		}
		base = t
	}

	sess, err := timetable.NewSession(base, timetable.WithConflictCheck(s.cfg.EnforceConflicts))
	if err != nil {
		return nil, err
	}

	entry := &sessionEntry{
		id:       uuid.New().String(),
		owner:    userID,
		session:  sess,
		lastUsed: s.clock(),
	}
	s.mu.Lock()
	s.sessions[entry.id] = entry
	s.mu.Unlock()

	target := "new"
	if base != nil {
		target = base.ID.String()
	}
	s.logger.Info("editing session opened",
		zap.String("session_id", entry.id),
		zap.String("user_id", userID),
		zap.String("timetable_id", target),
	)
	return s.describe(entry), nil
}

// lookup returns the caller's live session and refreshes its expiry.
func (s *editingService) lookup(userID, sid string) (*sessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sid]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := s.clock()
	if s.expired(entry, now) {
		delete(s.sessions, sid)
		return nil, ErrSessionNotFound
	}
	if entry.owner != userID {
		return nil, ErrSessionForbidden
	}
	entry.lastUsed = now
	return entry, nil
}

func (s *editingService) expired(e *sessionEntry, now time.Time) bool {
	return !e.session.Committing() && now.Sub(e.lastUsed) > s.cfg.SessionTTL
}

func (s *editingService) describe(e *sessionEntry) *dto.SessionResponse {
	s.mu.Lock()
	last := e.lastUsed
	s.mu.Unlock()
	return &dto.SessionResponse{
		SessionID:  e.id,
		Timetable:  dto.NewTimetableResponse(e.session.Working()),
		Dirty:      e.session.Dirty(),
		Committing: e.session.Committing(),
		ExpiresAt:  last.Add(s.cfg.SessionTTL),
	}
}

func (s *editingService) Get(_ context.Context, userID, sid string) (*dto.SessionResponse, error) {
	entry, err := s.lookup(userID, sid)
	if err != nil {
		return nil, err
	}
	return s.describe(entry), nil
}

func (s *editingService) Close(_ context.Context, userID, sid string) error {
	if _, err := s.lookup(userID, sid); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, sid)
	s.mu.Unlock()
	s.logger.Info("editing session closed", zap.String("session_id", sid), zap.String("user_id", userID))
	return nil
}

// ════════════════════════════════════════════════════════════
// edits
// ════════════════════════════════════════════════════════════

func (s *editingService) UpdateDetails(_ context.Context, userID, sid string, req *dto.UpdateDetailsRequest) (*dto.SessionResponse, error) {
	entry, err := s.lookup(userID, sid)
	if err != nil {
		return nil, err
	}
	if err := entry.session.UpdateDetails(req.ToPatch()); err != nil {
		return nil, err
	}
	return s.describe(entry), nil
}

func (s *editingService) AddSlot(_ context.Context, userID, sid string, req *dto.SlotInput) (*dto.SlotAddedResponse, error) {
	entry, err := s.lookup(userID, sid)
	if err != nil {
		return nil, err
	}
	slotID, err := entry.session.AddSlot(req.ToSlot())
	if err != nil {
		return nil, err
	}
	return &dto.SlotAddedResponse{SlotID: slotID, Session: *s.describe(entry)}, nil
}

func (s *editingService) UpdateSlot(_ context.Context, userID, sid string, slotID timetable.SlotID, req *dto.UpdateSlotRequest) (*dto.SessionResponse, error) {
	entry, err := s.lookup(userID, sid)
	if err != nil {
		return nil, err
	}
	if err := entry.session.UpdateSlot(slotID, req.ToPatch()); err != nil {
		return nil, err
	}
	return s.describe(entry), nil
}

func (s *editingService) RemoveSlot(_ context.Context, userID, sid string, slotID timetable.SlotID) (*dto.SessionResponse, error) {
	entry, err := s.lookup(userID, sid)
	if err != nil {
		return nil, err
	}
	if err := entry.session.RemoveSlot(slotID); err != nil {
		return nil, err
	}
	return s.describe(entry), nil
}

// ════════════════════════════════════════════════════════════
// Commit
// ════════════════════════════════════════════════════════════
//
// Commits of an existing timetable take a lock keyed by its id so two
// sessions on the same timetable cannot interleave their writes. New
// drafts have nothing to collide with and skip the lock.

func (s *editingService) Commit(ctx context.Context, userID, sid string) (*dto.SessionResponse, error) {
	entry, err := s.lookup(userID, sid)
	if err != nil {
		return nil, err
	}

	working := entry.session.Working()
	if !working.ID.IsZero() && !working.ID.IsSynthetic() {
		key := commitLockKey(working.ID.String())
		token := uuid.New().String()
		ok, err := s.locker.AcquireLock(ctx, key, token, s.cfg.CommitLockTTL)
		if err != nil {
			s.logger.Error("acquire commit lock failed", zap.String("key", key), zap.Error(err))
			return nil, fmt.Errorf("acquire commit lock: %w", err)
		}
		if !ok {
			return nil, timetable.ErrCommitInFlight
		}
		defer func() {
			// the request context may already be cancelled
			if err := s.locker.ReleaseLock(context.Background(), key, token); err != nil {
				s.logger.Warn("release commit lock failed", zap.String("key", key), zap.Error(err))
			}
		}()
	}

	saved, err := entry.session.Commit(gateway.WithActor(ctx, userID), s.gw)
	if err != nil {
		s.logger.Info("commit refused",
			zap.String("session_id", sid),
			zap.String("timetable_id", working.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.mu.Lock()
	entry.lastUsed = s.clock()
	s.mu.Unlock()

	s.logger.Info("timetable committed",
		zap.String("session_id", sid),
		zap.String("timetable_id", saved.ID.String()),
		zap.String("state", string(saved.State)),
		zap.Int("slots", len(saved.Slots)),
	)
	return s.describe(entry), nil
}

// ════════════════════════════════════════════════════════════
// expiry
// ════════════════════════════════════════════════════════════

func (s *editingService) Sweep() int {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.logger.Info("expired editing sessions dropped", zap.Int("count", n), zap.Int("live", len(s.sessions)))
	}
	return n
}

func (s *editingService) Start() error {
	spec := s.cfg.SweepSpec
	if spec == "" {
		spec = "@every 1m"
	}
	cronLogger := cron.PrintfLogger(zap.NewStdLog(s.logger))
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger)))
	if _, err := c.AddFunc(spec, func() { s.Sweep() }); err != nil {
		return fmt.Errorf("schedule session sweeper %q: %w", spec, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("editing session sweeper started", zap.String("schedule", spec), zap.Duration("ttl", s.cfg.SessionTTL))
	return nil
}

func (s *editingService) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
