package service

import (
	"context"
	"sync"
	"time"
)

// CommitLocker serialises commits of the same timetable across editing
// sessions. *redis.Client satisfies it for multi-replica deployments.
type CommitLocker interface {
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

func commitLockKey(id string) string {
	return "timetable:commit:" + id
}

// localLocker is the in-process CommitLocker used without Redis.
type localLocker struct {
	mu    sync.Mutex
	held  map[string]localLock
	clock func() time.Time
}

type localLock struct {
	token   string
	expires time.Time
}

// NewLocalLocker returns a process-local CommitLocker.
func NewLocalLocker() CommitLocker {
	return &localLocker{held: make(map[string]localLock), clock: time.Now}
}

func (l *localLocker) AcquireLock(_ context.Context, key, token string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	if cur, ok := l.held[key]; ok && now.Before(cur.expires) {
		return false, nil
	}
	l.held[key] = localLock{token: token, expires: now.Add(ttl)}
	return true, nil
}

func (l *localLocker) ReleaseLock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.held[key]; ok && cur.token == token {
		delete(l.held, key)
	}
	return nil
}
