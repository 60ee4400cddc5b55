package pdfstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Rate-limit window durations.
const (
	hourWindow = time.Hour
	dayWindow  = 24 * time.Hour
)

// RateLimiter enforces hourly and daily upload quotas per client identity.
// Counters live in a RecordStore keyed by a window index derived from the
// current time, with a TTL equal to the window duration so they self-expire.
//
// The check-then-increment sequence is deliberately not atomic: two
// concurrent requests from the same client can both pass admission before
// either records usage. The transient over-admission is bounded by the
// number of in-flight requests and is accepted in exchange for keeping the
// store interface to plain get/put.
type RateLimiter struct {
	store       RecordStore
	hourlyLimit int
	dailyLimit  int
	now         func() time.Time
}

// NewRateLimiter creates a rate limiter over the given record store. The
// store should be namespaced by the caller so counter keys cannot collide
// with other record families.
func NewRateLimiter(store RecordStore, hourlyLimit, dailyLimit int) *RateLimiter {
	return &RateLimiter{
		store:       store,
		hourlyLimit: hourlyLimit,
		dailyLimit:  dailyLimit,
		now:         time.Now,
	}
}

// HourlyLimit returns the configured hourly quota.
func (rl *RateLimiter) HourlyLimit() int { return rl.hourlyLimit }

// DailyLimit returns the configured daily quota.
func (rl *RateLimiter) DailyLimit() int { return rl.dailyLimit }

// CheckAdmission reports whether clientID may perform another upload. A
// *RateLimitError is returned when either window is exhausted. A failing
// record store admits the request: availability wins over strict
// enforcement here.
func (rl *RateLimiter) CheckAdmission(ctx context.Context, clientID string) error {
	hourly, err := rl.readCounter(ctx, rl.hourKey(clientID))
	if err != nil {
		slog.Warn("rate limit check failed, admitting request", "client_id", clientID, "error", err)
		return nil
	}
	if hourly >= rl.hourlyLimit {
		return &RateLimitError{Scope: "hourly", Limit: rl.hourlyLimit, RetryAfter: int(hourWindow.Seconds())}
	}

	daily, err := rl.readCounter(ctx, rl.dayKey(clientID))
	if err != nil {
		slog.Warn("rate limit check failed, admitting request", "client_id", clientID, "error", err)
		return nil
	}
	if daily >= rl.dailyLimit {
		return &RateLimitError{Scope: "daily", Limit: rl.dailyLimit, RetryAfter: int(dayWindow.Seconds())}
	}

	return nil
}

// RecordUsage increments both window counters for clientID. Store failures
// are logged and swallowed; the counters may undercount.
func (rl *RateLimiter) RecordUsage(ctx context.Context, clientID string) {
	if err := rl.bumpCounter(ctx, rl.hourKey(clientID), hourWindow); err != nil {
		slog.Error("failed to update hourly rate limit counter", "client_id", clientID, "error", err)
	}
	if err := rl.bumpCounter(ctx, rl.dayKey(clientID), dayWindow); err != nil {
		slog.Error("failed to update daily rate limit counter", "client_id", clientID, "error", err)
	}
}

func (rl *RateLimiter) hourKey(clientID string) string {
	return fmt.Sprintf("%s:hour:%d", clientID, rl.now().Unix()/int64(hourWindow.Seconds()))
}

func (rl *RateLimiter) dayKey(clientID string) string {
	return fmt.Sprintf("%s:day:%d", clientID, rl.now().Unix()/int64(dayWindow.Seconds()))
}

func (rl *RateLimiter) readCounter(ctx context.Context, key string) (int, error) {
	raw, err := rl.store.Get(ctx, key)
	if errors.Is(err, ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("corrupt counter %s: %w", key, err)
	}
	return count, nil
}

func (rl *RateLimiter) bumpCounter(ctx context.Context, key string, window time.Duration) error {
	count, err := rl.readCounter(ctx, key)
	if err != nil {
		return err
	}
	return rl.store.Put(ctx, key, []byte(strconv.Itoa(count+1)), window)
}
