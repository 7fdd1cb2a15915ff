// Package ratelimit implements the three-window (minute/hour/burst) request
// rate limiter the sync/async gateway applies to every tenant-scoped
// request, backed by Redis INCR/EXPIRE pipelines.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window identifies one of the three rate limit windows checked per
// request, in the order they are evaluated.
type Window string

const (
	WindowMinute Window = "minute"
	WindowHour   Window = "hour"
	WindowBurst  Window = "burst"
)

var windowDurations = map[Window]time.Duration{
	WindowMinute: 60 * time.Second,
	WindowHour:   3600 * time.Second,
	WindowBurst:  10 * time.Second,
}

// windowOrder is the evaluation order: minute, then hour, then burst, with
// an early return on the first violated window.
var windowOrder = []Window{WindowMinute, WindowHour, WindowBurst}

// Limits configures the per-window request ceilings for one check.
type Limits struct {
	PerMinute int
	PerHour   int
	PerBurst  int
}

func (l Limits) forWindow(w Window) int {
	switch w {
	case WindowMinute:
		return l.PerMinute
	case WindowHour:
		return l.PerHour
	case WindowBurst:
		return l.PerBurst
	}
	return 0
}

// Result is the outcome of a rate limit check.
type Result struct {
	Allowed         bool   `json:"allowed"`
	LimitType       Window `json:"limit_type,omitempty"`
	RetryAfter      int64  `json:"retry_after,omitempty"` // seconds
	RemainingMinute int    `json:"remaining_minute"`
	RemainingHour   int    `json:"remaining_hour"`
	CurrentUsage    int    `json:"current_usage,omitempty"`
}

// Limiter checks and enforces per-tenant, per-user, per-endpoint rate
// limits using Redis counters keyed by window.
type Limiter struct {
	client *redis.Client
}

// NewLimiter constructs a Limiter over an existing Redis client.
func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

func rateLimitKey(tenantID, userID, endpoint string, window Window) string {
	return fmt.Sprintf("rate_limit:%s:%s:%s:%s", tenantID, userID, endpoint, window)
}

// Check increments each window's counter in order (minute, hour, burst) and
// returns on the first window whose limit is exceeded, leaving later
// windows' counters untouched for that request.
func (l *Limiter) Check(ctx context.Context, tenantID, userID, endpoint string, limits Limits) (*Result, error) {
	var minuteCount, hourCount int

	for _, window := range windowOrder {
		limit := limits.forWindow(window)
		if limit <= 0 {
			continue
		}

		key := rateLimitKey(tenantID, userID, endpoint, window)
		ttl := windowDurations[window]

		pipe := l.client.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("rate limit pipeline for window %s: %w", window, err)
		}

		count := int(incr.Val())
		switch window {
		case WindowMinute:
			minuteCount = count
		case WindowHour:
			hourCount = count
		}

		if count > limit {
			retryAfter, err := l.client.TTL(ctx, key).Result()
			if err != nil {
				retryAfter = ttl
			}
			return &Result{
				Allowed:         false,
				LimitType:       window,
				RetryAfter:      int64(retryAfter.Seconds()),
				RemainingMinute: max0(limits.PerMinute - minuteCount),
				RemainingHour:   max0(limits.PerHour - hourCount),
				CurrentUsage:    count,
			}, nil
		}
	}

	return &Result{
		Allowed:         true,
		RemainingMinute: max0(limits.PerMinute - minuteCount),
		RemainingHour:   max0(limits.PerHour - hourCount),
	}, nil
}

// Status performs a read-only check of current usage without incrementing
// any counter.
func (l *Limiter) Status(ctx context.Context, tenantID, userID, endpoint string, limits Limits) (*Result, error) {
	minuteCount, err := l.getCount(ctx, tenantID, userID, endpoint, WindowMinute)
	if err != nil {
		return nil, err
	}
	hourCount, err := l.getCount(ctx, tenantID, userID, endpoint, WindowHour)
	if err != nil {
		return nil, err
	}

	return &Result{
		Allowed:         true,
		RemainingMinute: max0(limits.PerMinute - minuteCount),
		RemainingHour:   max0(limits.PerHour - hourCount),
	}, nil
}

func (l *Limiter) getCount(ctx context.Context, tenantID, userID, endpoint string, window Window) (int, error) {
	key := rateLimitKey(tenantID, userID, endpoint, window)
	val, err := l.client.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("get rate limit status for %s: %w", key, err)
	}
	return val, nil
}

// Reset is an admin operation that clears all rate limit counters matching
// tenantID/userID/endpoint. Passing "" for endpoint clears every endpoint.
func (l *Limiter) Reset(ctx context.Context, tenantID, userID, endpoint string) error {
	pattern := fmt.Sprintf("rate_limit:%s:%s:%s:*", tenantID, userID, endpointOrWildcard(endpoint))

	iter := l.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan rate limit keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := l.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete rate limit keys: %w", err)
	}
	return nil
}

func endpointOrWildcard(endpoint string) string {
	if endpoint == "" {
		return "*"
	}
	return endpoint
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
