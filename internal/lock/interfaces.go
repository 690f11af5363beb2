// Package lock provides per-key mutual exclusion for read-modify-write cycles
// on a single account's aggregates. Single-node deployments use MemoryLocker;
// multi-node deployments use RedisLocker.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired is returned by WithLock when the lock could not be obtained
// within the configured retries.
var ErrNotAcquired = errors.New("lock: not acquired")

// Locker defines the locking contract shared by the memory and Redis backends.
type Locker interface {
	// Acquire attempts to take the lock once. It returns false if another holder owns it.
	// The lock expires automatically after ttl.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// AcquireWithRetry retries Acquire up to maxRetries times, waiting retryDelay between attempts.
	AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (bool, error)

	// Release drops the lock. It returns false if the lock was not held.
	Release(ctx context.Context, key string) (bool, error)

	// IsHeld reports whether the lock is currently held by anyone.
	IsHeld(ctx context.Context, key string) (bool, error)
}

// Options controls how WithLock acquires a lock.
type Options struct {
	TTL        time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultOptions waits up to roughly five seconds for a lock that expires after ten.
func DefaultOptions() Options {
	return Options{
		TTL:        10 * time.Second,
		MaxRetries: 250,
		RetryDelay: 20 * time.Millisecond,
	}
}

// WithLock runs fn while holding key. The lock is released when fn returns,
// even if fn panics.
func WithLock(ctx context.Context, l Locker, key string, opts Options, fn func() error) error {
	acquired, err := l.AcquireWithRetry(ctx, key, opts.TTL, opts.MaxRetries, opts.RetryDelay)
	if err != nil {
		return err
	}
	if !acquired {
		return ErrNotAcquired
	}
	defer func() {
		// Release with a fresh context so a cancelled request does not strand the lock until TTL.
		_, _ = l.Release(context.WithoutCancel(ctx), key)
	}()
	return fn()
}

// acquireWithRetry is the retry loop shared by the Locker implementations.
func acquireWithRetry(ctx context.Context, maxRetries int, retryDelay time.Duration, try func() (bool, error)) (bool, error) {
	for i := 0; i <= maxRetries; i++ {
		acquired, err := try()
		if err != nil {
			return false, err
		}
		if acquired {
			return true, nil
		}

		if i < maxRetries {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return false, nil
}

// Keys provides lock key generation for account-scoped aggregates.
var Keys = lockKeys{}

type lockKeys struct{}

// Cart returns the lock key guarding a user's cart.
func (lockKeys) Cart(userID string) string {
	return "lock:cart:" + userID
}

// Wishlist returns the lock key guarding a user's wishlist.
func (lockKeys) Wishlist(userID string) string {
	return "lock:wishlist:" + userID
}

// Login returns the lock key serializing login attempts for one account.
func (lockKeys) Login(userID string) string {
	return "lock:login:" + userID
}
