package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/subscriber"
	"mobile_usage_tracker/internal/domain/usage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ActiveCycleFinder resolves the window that scopes usage history.
type ActiveCycleFinder interface {
	ActiveCycle(ctx context.Context, subscriberID, mdn string) (*cycle.Cycle, error)
}

// UsageService records daily usage and scopes history to the active cycle.
type UsageService struct {
	entries     usage.Repository
	subscribers subscriber.Repository
	cycles      ActiveCycleFinder
	locker      Locker
	strictMDN   bool
	logger      *logrus.Entry
}

// NewUsageService creates a UsageService. With strictMDN set, entries whose number
// differs from the subscriber's current number are rejected.
func NewUsageService(
	ur usage.Repository,
	sr subscriber.Repository,
	cycles ActiveCycleFinder,
	locker Locker,
	strictMDN bool,
	logger *logrus.Entry,
) *UsageService {
	return &UsageService{
		entries:     ur,
		subscribers: sr,
		cycles:      cycles,
		locker:      locker,
		strictMDN:   strictMDN,
		logger:      logger.WithField("component", "usage_service"),
	}
}

// RecordUsage stores a usage entry unless one already exists for the same
// subscriber, number and date. The existing amount does not matter.
func (s *UsageService) RecordUsage(ctx context.Context, candidate *usage.Entry) (*usage.Entry, error) {
	log := s.logger.WithFields(logrus.Fields{
		"subscriber_id": candidate.SubscriberID,
		"mdn":           candidate.MDN,
		"usage_date":    candidate.UsageDate.Format(time.DateOnly),
	})

	unlock, err := s.locker.Lock(ctx, subscriberLockKey(candidate.SubscriberID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock subscriber %s: %w", candidate.SubscriberID, err)
	}
	defer unlock()

	owner, err := requireSubscriber(ctx, s.subscribers, candidate.SubscriberID)
	if err != nil {
		return nil, err
	}
	if s.strictMDN {
		if err := requireMatchingMDN(owner, candidate.MDN); err != nil {
			log.Info("Usage rejected: number mismatch")
			return nil, err
		}
	}
	if candidate.UsedInMB < 0 {
		return nil, ErrInvalidAmount
	}

	existing, err := s.entries.ListBySubscriberAndMDN(ctx, candidate.SubscriberID, candidate.MDN)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage entries: %w", err)
	}
	for _, old := range existing {
		if old.UsageDate.Equal(candidate.UsageDate) {
			log.WithField("existing_entry_id", old.ID).Info("Usage rejected: date already recorded")
			return nil, ErrDuplicateUsage
		}
	}

	stored := *candidate
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if err := s.entries.Create(ctx, &stored); err != nil {
		if errors.Is(err, usage.ErrDuplicate) {
			return nil, ErrDuplicateUsage
		}
		return nil, fmt.Errorf("failed to create usage entry: %w", err)
	}
	log.WithField("entry_id", stored.ID).Debug("Usage recorded")
	return &stored, nil
}

// History returns the entries that fall inside the active cycle, bounds included.
// ErrNoActiveCycle is returned when the pair has no cycle at all.
func (s *UsageService) History(ctx context.Context, subscriberID, mdn string) ([]*usage.Entry, error) {
	active, err := s.cycles.ActiveCycle(ctx, subscriberID, mdn)
	if err != nil {
		return nil, err
	}

	entries, err := s.entries.ListBySubscriberAndMDN(ctx, subscriberID, mdn)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage entries: %w", err)
	}

	scoped := make([]*usage.Entry, 0, len(entries))
	for _, e := range entries {
		if active.Contains(e.UsageDate) {
			scoped = append(scoped, e)
		}
	}
	return scoped, nil
}

// UpdateAmount overwrites the amount of the entry recorded for (usageDate, mdn).
// The lookup is not scoped by subscriber.
func (s *UsageService) UpdateAmount(ctx context.Context, usageDate time.Time, mdn string, amount int) (*usage.Entry, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}

	entry, err := s.entries.GetByDateAndMDN(ctx, usageDate, mdn)
	if err != nil {
		if errors.Is(err, usage.ErrNotFound) {
			return nil, ErrUsageNotFound
		}
		return nil, fmt.Errorf("failed to find usage entry: %w", err)
	}

	entry.UsedInMB = amount
	if err := s.entries.Update(ctx, entry); err != nil {
		if errors.Is(err, usage.ErrNotFound) {
			return nil, ErrUsageNotFound
		}
		return nil, fmt.Errorf("failed to update usage entry %s: %w", entry.ID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"entry_id":   entry.ID,
		"used_in_mb": amount,
	}).Info("Usage amount updated")
	return entry, nil
}

func (s *UsageService) DeleteUsage(ctx context.Context, id string) error {
	if err := s.entries.Delete(ctx, id); err != nil {
		if errors.Is(err, usage.ErrNotFound) {
			return ErrUsageNotFound
		}
		return fmt.Errorf("failed to delete usage entry %s: %w", id, err)
	}
	return nil
}

func (s *UsageService) ListAll(ctx context.Context) ([]*usage.Entry, error) {
	entries, err := s.entries.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage entries: %w", err)
	}
	return entries, nil
}
