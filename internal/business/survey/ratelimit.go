package survey

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/util"
)

// LastSubmitKeyPrefix namespaces rate limiter entries in the key-value store.
const LastSubmitKeyPrefix = "last_submit_time"

// DefaultSubmitInterval is the minimum time between two submissions from one client.
const DefaultSubmitInterval = 30 * time.Second

// KeyValueStore persists small string values by key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Clock abstracts time so tests can move it by hand.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// RateLimiter enforces a minimum interval between successful submissions per client.
// The last submission time is stored as epoch milliseconds.
type RateLimiter struct {
	store    KeyValueStore
	clock    Clock
	interval time.Duration
}

func NewRateLimiter(store KeyValueStore, clock Clock, interval time.Duration) *RateLimiter {
	if clock == nil {
		clock = SystemClock{}
	}
	if interval < 0 {
		interval = DefaultSubmitInterval
	}
	return &RateLimiter{store: store, clock: clock, interval: interval}
}

// Interval returns the configured minimum resubmission interval.
func (l *RateLimiter) Interval() time.Duration {
	return l.interval
}

// Remaining returns how long the client still has to wait. Zero means it may submit.
// A corrupt stored value is treated as absent.
func (l *RateLimiter) Remaining(ctx context.Context, clientID string) (time.Duration, error) {
	if l.interval == 0 {
		return 0, nil
	}
	raw, ok, err := l.store.Get(ctx, storageKey(clientID))
	if err != nil {
		return 0, fmt.Errorf("read last submit time: %w", err)
	}
	if !ok {
		return 0, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	elapsed := l.clock.Now().Sub(time.UnixMilli(ms))
	if elapsed < 0 || elapsed >= l.interval {
		return 0, nil
	}
	return l.interval - elapsed, nil
}

// MarkSubmitted records a successful submission at the current clock time.
func (l *RateLimiter) MarkSubmitted(ctx context.Context, clientID string) error {
	now := strconv.FormatInt(l.clock.Now().UnixMilli(), 10)
	if err := l.store.Set(ctx, storageKey(clientID), now); err != nil {
		return fmt.Errorf("write last submit time: %w", err)
	}
	return nil
}

// RemainingSeconds rounds a wait up to whole seconds.
func RemainingSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}

func storageKey(clientID string) string {
	return util.HashClientKey(LastSubmitKeyPrefix, clientID)
}
