package app

import (
	"context"
	"errors"
	"fmt"

	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/subscriber"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CycleService admits billing cycles and answers active-cycle queries.
type CycleService struct {
	cycles      cycle.Repository
	subscribers subscriber.Repository
	locker      Locker
	logger      *logrus.Entry
}

func NewCycleService(cr cycle.Repository, sr subscriber.Repository, locker Locker, logger *logrus.Entry) *CycleService {
	return &CycleService{
		cycles:      cr,
		subscribers: sr,
		locker:      locker,
		logger:      logger.WithField("component", "cycle_service"),
	}
}

// AdmitCycle validates a candidate cycle and stores it. Checks run in order and
// the first failure rejects the candidate without writing anything:
// unknown subscriber, number mismatch, inverted range, overlap, duplicate.
func (s *CycleService) AdmitCycle(ctx context.Context, candidate *cycle.Cycle) (*cycle.Cycle, error) {
	log := s.logger.WithFields(logrus.Fields{
		"subscriber_id": candidate.SubscriberID,
		"mdn":           candidate.MDN,
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
	if err := requireMatchingMDN(owner, candidate.MDN); err != nil {
		log.WithField("current_mdn", owner.MDN).Info("Cycle rejected: number mismatch")
		return nil, err
	}
	if candidate.StartDate.After(candidate.EndDate) {
		return nil, ErrInvalidRange
	}

	existing, err := s.cycles.ListBySubscriberAndMDN(ctx, candidate.SubscriberID, candidate.MDN)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	for _, old := range existing {
		if err := checkAdmissible(candidate, old); err != nil {
			log.WithField("existing_cycle_id", old.ID).WithError(err).Info("Cycle rejected")
			return nil, err
		}
	}

	stored := *candidate
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if err := s.cycles.Create(ctx, &stored); err != nil {
		return nil, fmt.Errorf("failed to create cycle: %w", err)
	}
	log.WithField("cycle_id", stored.ID).Info("Cycle admitted")
	return &stored, nil
}

// checkAdmissible applies the overlap and duplicate rules against one existing cycle.
// Only the candidate's start is tested against the existing span; a candidate that
// begins earlier and runs into an existing cycle is accepted.
func checkAdmissible(candidate, existing *cycle.Cycle) error {
	if existing.Contains(candidate.StartDate) {
		return ErrCycleOverlap
	}
	if existing.StartDate.Equal(candidate.StartDate) && existing.EndDate.Equal(candidate.EndDate) {
		return ErrDuplicateCycle
	}
	return nil
}

// ActiveCycle returns the cycle with the latest end date for the pair, or ErrNoActiveCycle.
func (s *CycleService) ActiveCycle(ctx context.Context, subscriberID, mdn string) (*cycle.Cycle, error) {
	cycles, err := s.cycles.ListBySubscriberAndMDN(ctx, subscriberID, mdn)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	active := pickActive(cycles)
	if active == nil {
		return nil, ErrNoActiveCycle
	}
	return active, nil
}

// pickActive returns the cycle with the latest end. Ties go to the later start,
// then to the greater ID, so the answer does not depend on store order.
func pickActive(cycles []*cycle.Cycle) *cycle.Cycle {
	var best *cycle.Cycle
	for _, c := range cycles {
		if best == nil || isLaterCycle(c, best) {
			best = c
		}
	}
	return best
}

func isLaterCycle(a, b *cycle.Cycle) bool {
	if !a.EndDate.Equal(b.EndDate) {
		return a.EndDate.After(b.EndDate)
	}
	if !a.StartDate.Equal(b.StartDate) {
		return a.StartDate.After(b.StartDate)
	}
	return a.ID > b.ID
}

// History lists every cycle recorded for a subscriber and number.
func (s *CycleService) History(ctx context.Context, subscriberID, mdn string) ([]*cycle.Cycle, error) {
	cycles, err := s.cycles.ListBySubscriberAndMDN(ctx, subscriberID, mdn)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycle history: %w", err)
	}
	return cycles, nil
}

func (s *CycleService) ListAll(ctx context.Context) ([]*cycle.Cycle, error) {
	cycles, err := s.cycles.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	return cycles, nil
}

func (s *CycleService) DeleteCycle(ctx context.Context, id string) error {
	if err := s.cycles.Delete(ctx, id); err != nil {
		if errors.Is(err, cycle.ErrNotFound) {
			return ErrCycleNotFound
		}
		return fmt.Errorf("failed to delete cycle %s: %w", id, err)
	}
	s.logger.WithField("cycle_id", id).Info("Cycle deleted")
	return nil
}
