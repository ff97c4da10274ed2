// Package throttle tracks failed login attempts per identifier and
// enforces a temporary lockout. It is advisory rate limiting, not a
// security boundary: the backing store may evict counters at any time.
package throttle

import (
	"context"
	"fmt"
	"time"
)

// Store is a key-value counter store with TTL semantics. Get returns 0
// for an absent key; Set always refreshes the expiry.
type Store interface {
	Get(ctx context.Context, key string) (int64, error)
	Set(ctx context.Context, key string, value int64, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type LoginThrottle struct {
	store     Store
	threshold int64
	window    time.Duration
}

func NewLoginThrottle(store Store, threshold int64, window time.Duration) *LoginThrottle {
	if threshold <= 0 {
		threshold = 5
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &LoginThrottle{
		store:     store,
		threshold: threshold,
		window:    window,
	}
}

func (t *LoginThrottle) key(identifier string) string {
	return fmt.Sprintf("login_attempts:%s", identifier)
}

// RecordFailure increments the failure counter for the identifier and
// refreshes the lockout window. The read-then-write pair is deliberately
// not atomic; racing failures may undercount, which only ever throttles
// less.
func (t *LoginThrottle) RecordFailure(ctx context.Context, identifier string) (int64, error) {
	attempts, err := t.store.Get(ctx, t.key(identifier))
	if err != nil {
		return 0, fmt.Errorf("failed to read attempt count: %w", err)
	}

	attempts++
	if err := t.store.Set(ctx, t.key(identifier), attempts, t.window); err != nil {
		return 0, fmt.Errorf("failed to record attempt: %w", err)
	}
	return attempts, nil
}

// IsLocked reports whether the identifier has reached the failure
// threshold within the current window. Credentials are not checked for
// a locked identifier.
func (t *LoginThrottle) IsLocked(ctx context.Context, identifier string) (bool, error) {
	attempts, err := t.store.Get(ctx, t.key(identifier))
	if err != nil {
		return false, fmt.Errorf("failed to read attempt count: %w", err)
	}
	return attempts >= t.threshold, nil
}

// Reset clears the counter for an identifier. Login success does not
// call this; the window expiry is the only automatic reset.
func (t *LoginThrottle) Reset(ctx context.Context, identifier string) error {
	if err := t.store.Delete(ctx, t.key(identifier)); err != nil {
		return fmt.Errorf("failed to reset attempt count: %w", err)
	}
	return nil
}
