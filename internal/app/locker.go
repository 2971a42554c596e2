package app

import (
	"context"
	"sort"
	"time"
)

// Locker serializes mutations that belong to the same key. Implementations
// live in internal/infra/lock.
type Locker interface {
	// Lock blocks until the key is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

// NoopLocker returns a Locker that never blocks.
func NoopLocker() Locker { return noopLocker{} }

type boundedLocker struct {
	Locker
	wait time.Duration
}

func (b boundedLocker) Lock(ctx context.Context, key string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, b.wait)
	defer cancel()
	return b.Locker.Lock(ctx, key)
}

// WithWait bounds every acquisition on l to wait. A key that stays held longer
// fails with context.DeadlineExceeded.
func WithWait(l Locker, wait time.Duration) Locker {
	return boundedLocker{Locker: l, wait: wait}
}

func subscriberLockKey(id string) string { return "subscriber:" + id }

func emailLockKey(email string) string { return "email:" + email }

// lockAll acquires keys in sorted order so two callers locking the same pair cannot deadlock.
func lockAll(ctx context.Context, l Locker, keys ...string) (func(), error) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	var unlocks []func()
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for i, key := range sorted {
		if i > 0 && key == sorted[i-1] {
			continue
		}
		unlock, err := l.Lock(ctx, key)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}
