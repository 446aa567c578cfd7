package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/5sursyncIT/edusync-sub001/pkg/redis"
	"github.com/5sursyncIT/edusync-sub001/pkg/response"
)

// RateLimit caps requests per user and route within a fixed window. With
// Redis the count is shared across replicas; without it a process-local
// counter is used. A limit <= 0 disables the check.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	local := newWindowCounter(window)

	return func(c *gin.Context) {
		who := c.GetString(CtxUserID)
		if who == "" {
			who = c.ClientIP()
		}
		key := fmt.Sprintf("rate_limit:%s:%s", who, c.FullPath())

		allowed := true
		if rdb != nil {
			ok, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
			if err != nil {
				// redis down: fall through to the local counter
				logger.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
				allowed = local.hit(key, limit)
			} else {
				allowed = ok
			}
		} else {
			allowed = local.hit(key, limit)
		}

		if !allowed {
			response.AbortWithError(c, http.StatusTooManyRequests, response.CodeRateLimited, "too many requests, retry later")
			return
		}

		c.Next()
	}
}

type windowCounter struct {
	mu        sync.Mutex
	window    time.Duration
	counts    map[string]*windowCount
	lastSweep time.Time
	now       func() time.Time
}

type windowCount struct {
	start time.Time
	n     int
}

func newWindowCounter(window time.Duration) *windowCounter {
	return &windowCounter{window: window, counts: make(map[string]*windowCount), now: time.Now}
}

func (w *windowCounter) hit(key string, limit int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	if now.Sub(w.lastSweep) >= w.window {
		w.sweep(now)
	}
	wc, ok := w.counts[key]
	if !ok || now.Sub(wc.start) >= w.window {
		wc = &windowCount{start: now}
		w.counts[key] = wc
	}
	wc.n++
	return wc.n <= limit
}

// sweep drops every key whose window has ended. Runs at most once per window.
func (w *windowCounter) sweep(now time.Time) {
	for k, wc := range w.counts {
		if now.Sub(wc.start) >= w.window {
			delete(w.counts, k)
		}
	}
	w.lastSweep = now
}
