// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/pickpool/auth"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// JoinLimiter is a per-key token bucket with periodic eviction of idle keys
type JoinLimiter struct {
	mu           sync.Mutex
	entries      map[string]*limiterEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type LimiterOption func(*JoinLimiter)

func WithIdleTTL(d time.Duration) LimiterOption {
	return func(l *JoinLimiter) { l.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) LimiterOption {
	return func(l *JoinLimiter) { l.cleanupEvery = d }
}

func NewJoinLimiter(rps float64, burst int, opts ...LimiterOption) *JoinLimiter {
	l := &JoinLimiter{
		entries:      make(map[string]*limiterEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether key may make another attempt now
func (l *JoinLimiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	ent, ok := l.entries[key]
	if !ok {
		ent = &limiterEntry{lim: rate.NewLimiter(l.rps, l.burst)}
		l.entries[key] = ent
	}
	ent.lastSeen = now
	l.mu.Unlock()

	return ent.lim.AllowN(now, 1)
}

// Len returns the number of tracked keys
func (l *JoinLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Cleanup drops keys not seen within the idle TTL
func (l *JoinLimiter) Cleanup() {
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, ent := range l.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// StartJanitor runs Cleanup periodically until ctx is cancelled
func (l *JoinLimiter) StartJanitor(ctx context.Context) {
	if l.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(l.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}

// JoinStats counts allowed and denied join attempts in Redis.
// A nil *JoinStats records nothing.
type JoinStats struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewJoinStats(rdb *redis.Client, prefix string, ttl time.Duration) *JoinStats {
	if prefix == "" {
		prefix = "pickpool:joins"
	}
	return &JoinStats{rdb: rdb, prefix: strings.Trim(prefix, ":"), ttl: ttl}
}

// Record increments the running total, the per-minute bucket and the per-key counters
func (s *JoinStats) Record(ctx context.Context, key string, allowed bool, at time.Time) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	field := "denied"
	if allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucketKey, s.ttl)
	}

	if key != "" {
		keyKey := s.prefix + ":key:" + key
		pipe.HIncrBy(ctx, keyKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, keyKey, s.ttl)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

// LimitJoins throttles join attempts per caller. Authenticated callers are
// keyed by user id, everyone else by a salted hash of their address.
func LimitJoins(l *JoinLimiter, stats *JoinStats, salt string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := "ip:" + auth.HashIP(GetClientIP(r), salt)
		if id, ok := IdentityFrom(r.Context()); ok {
			key = "user:" + id.UserID
		}

		allowed := l.Allow(key)
		if err := stats.Record(r.Context(), key, allowed, time.Now()); err != nil {
			slog.Warn("failed to record join stats", "error", err)
		}

		if !allowed {
			w.Header().Set("Retry-After", "1")
			ErrorResponse(w, http.StatusTooManyRequests, "Too many join attempts, try again later")
			return
		}

		next(w, r)
	}
}
