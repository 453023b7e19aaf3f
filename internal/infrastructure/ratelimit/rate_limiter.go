package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Actions limited per caller.
const (
	ActionSendMessage = "send_message"
	ActionIssueToken  = "issue_token"
)

type Limit struct {
	PerMinute int64
	Burst     int64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per user and action.
type RateLimiter struct {
	limits   map[string]Limit
	fallback Limit
	buckets  map[string]*bucket
	mutex    sync.Mutex
	now      func() time.Time
}

// NewRateLimiter creates a limiter; actions without an entry in limits use fallback.
func NewRateLimiter(limits map[string]Limit, fallback Limit) *RateLimiter {
	return &RateLimiter{
		limits:   limits,
		fallback: fallback,
		buckets:  make(map[string]*bucket),
		now:      time.Now,
	}
}

func (l Limit) every() rate.Limit {
	if l.PerMinute <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(l.PerMinute))
}

// Allow consumes a token for the user's action. When none is available it
// reports how long until one will be.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	key := userID + ":" + action
	now := rl.now()

	rl.mutex.Lock()
	b, exists := rl.buckets[key]
	if !exists {
		limit, ok := rl.limits[action]
		if !ok {
			limit = rl.fallback
		}
		burst := int(limit.Burst)
		if burst < 1 {
			burst = 1
		}
		b = &bucket{limiter: rate.NewLimiter(limit.every(), burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	rl.mutex.Unlock()

	reservation := b.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, 0
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup removes buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > maxIdle {
			delete(rl.buckets, key)
		}
	}
}

// StartCleanupRoutine prunes idle buckets every 30 minutes until ctx is done.
func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-ctx.Done():
				return
			}
		}
	}()
}
