// Package memory is an in-process record store. Records are kept in insertion
// order and copied on the way in and out, so callers never share state with it.
package memory

import (
	"context"
	"sync"
	"time"

	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/subscriber"
	"mobile_usage_tracker/internal/domain/usage"
)

type Store struct {
	mu sync.RWMutex

	subscribers []subscriber.Subscriber
	cycles      []cycle.Cycle
	entries     []usage.Entry
}

func New() *Store {
	return &Store{}
}

func (s *Store) Subscribers() *SubscriberRepository { return &SubscriberRepository{s: s} }
func (s *Store) Cycles() *CycleRepository           { return &CycleRepository{s: s} }
func (s *Store) Usage() *UsageRepository            { return &UsageRepository{s: s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// ==================== Subscribers ====================

type SubscriberRepository struct{ s *Store }

var _ subscriber.Repository = (*SubscriberRepository)(nil)

func (r *SubscriberRepository) Create(_ context.Context, sub *subscriber.Subscriber) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.subscribers {
		if existing.Email == sub.Email {
			return subscriber.ErrDuplicateEmail
		}
	}
	r.s.subscribers = append(r.s.subscribers, *sub)
	return nil
}

func (r *SubscriberRepository) GetByID(_ context.Context, id string) (*subscriber.Subscriber, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, existing := range r.s.subscribers {
		if existing.ID == id {
			found := existing
			return &found, nil
		}
	}
	return nil, subscriber.ErrNotFound
}

func (r *SubscriberRepository) GetByEmail(_ context.Context, email string) (*subscriber.Subscriber, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, existing := range r.s.subscribers {
		if existing.Email == email {
			found := existing
			return &found, nil
		}
	}
	return nil, subscriber.ErrNotFound
}

func (r *SubscriberRepository) Update(_ context.Context, sub *subscriber.Subscriber) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	idx := -1
	for i, existing := range r.s.subscribers {
		if existing.ID == sub.ID {
			idx = i
		} else if existing.Email == sub.Email {
			return subscriber.ErrDuplicateEmail
		}
	}
	if idx < 0 {
		return subscriber.ErrNotFound
	}
	r.s.subscribers[idx] = *sub
	return nil
}

func (r *SubscriberRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, existing := range r.s.subscribers {
		if existing.ID == id {
			r.s.subscribers = append(r.s.subscribers[:i], r.s.subscribers[i+1:]...)
			return nil
		}
	}
	return subscriber.ErrNotFound
}

func (r *SubscriberRepository) ListAll(_ context.Context) ([]*subscriber.Subscriber, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*subscriber.Subscriber, 0, len(r.s.subscribers))
	for _, existing := range r.s.subscribers {
		found := existing
		result = append(result, &found)
	}
	return result, nil
}

// ==================== Cycles ====================

type CycleRepository struct{ s *Store }

var _ cycle.Repository = (*CycleRepository)(nil)

func (r *CycleRepository) Create(_ context.Context, c *cycle.Cycle) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.cycles = append(r.s.cycles, *c)
	return nil
}

func (r *CycleRepository) GetByID(_ context.Context, id string) (*cycle.Cycle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, existing := range r.s.cycles {
		if existing.ID == id {
			found := existing
			return &found, nil
		}
	}
	return nil, cycle.ErrNotFound
}

func (r *CycleRepository) ListBySubscriberAndMDN(_ context.Context, subscriberID, mdn string) ([]*cycle.Cycle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*cycle.Cycle, 0)
	for _, existing := range r.s.cycles {
		if existing.SubscriberID == subscriberID && existing.MDN == mdn {
			found := existing
			result = append(result, &found)
		}
	}
	return result, nil
}

func (r *CycleRepository) ListAll(_ context.Context) ([]*cycle.Cycle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*cycle.Cycle, 0, len(r.s.cycles))
	for _, existing := range r.s.cycles {
		found := existing
		result = append(result, &found)
	}
	return result, nil
}

func (r *CycleRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, existing := range r.s.cycles {
		if existing.ID == id {
			r.s.cycles = append(r.s.cycles[:i], r.s.cycles[i+1:]...)
			return nil
		}
	}
	return cycle.ErrNotFound
}

func (r *CycleRepository) DeleteBySubscriber(_ context.Context, subscriberID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.cycles[:0]
	var removed int64
	for _, existing := range r.s.cycles {
		if existing.SubscriberID == subscriberID {
			removed++
			continue
		}
		kept = append(kept, existing)
	}
	r.s.cycles = kept
	return removed, nil
}

// ==================== Usage ====================

type UsageRepository struct{ s *Store }

var _ usage.Repository = (*UsageRepository)(nil)

func (r *UsageRepository) Create(_ context.Context, e *usage.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.entries {
		if existing.SubscriberID == e.SubscriberID && existing.MDN == e.MDN && existing.UsageDate.Equal(e.UsageDate) {
			return usage.ErrDuplicate
		}
	}
	r.s.entries = append(r.s.entries, *e)
	return nil
}

func (r *UsageRepository) GetByID(_ context.Context, id string) (*usage.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, existing := range r.s.entries {
		if existing.ID == id {
			found := existing
			return &found, nil
		}
	}
	return nil, usage.ErrNotFound
}

func (r *UsageRepository) GetByDateAndMDN(_ context.Context, usageDate time.Time, mdn string) (*usage.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, existing := range r.s.entries {
		if existing.MDN == mdn && existing.UsageDate.Equal(usageDate) {
			found := existing
			return &found, nil
		}
	}
	return nil, usage.ErrNotFound
}

func (r *UsageRepository) ListBySubscriberAndMDN(_ context.Context, subscriberID, mdn string) ([]*usage.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*usage.Entry, 0)
	for _, existing := range r.s.entries {
		if existing.SubscriberID == subscriberID && existing.MDN == mdn {
			found := existing
			result = append(result, &found)
		}
	}
	return result, nil
}

func (r *UsageRepository) ListAll(_ context.Context) ([]*usage.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*usage.Entry, 0, len(r.s.entries))
	for _, existing := range r.s.entries {
		found := existing
		result = append(result, &found)
	}
	return result, nil
}

func (r *UsageRepository) Update(_ context.Context, e *usage.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, existing := range r.s.entries {
		if existing.ID == e.ID {
			r.s.entries[i] = *e
			return nil
		}
	}
	return usage.ErrNotFound
}

func (r *UsageRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, existing := range r.s.entries {
		if existing.ID == id {
			r.s.entries = append(r.s.entries[:i], r.s.entries[i+1:]...)
			return nil
		}
	}
	return usage.ErrNotFound
}

func (r *UsageRepository) DeleteBySubscriber(_ context.Context, subscriberID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.entries[:0]
	var removed int64
	for _, existing := range r.s.entries {
		if existing.SubscriberID == subscriberID {
			removed++
			continue
		}
		kept = append(kept, existing)
	}
	r.s.entries = kept
	return removed, nil
}
