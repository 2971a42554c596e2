package app

import (
	"context"
	"errors"
	"fmt"

	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/subscriber"
	"mobile_usage_tracker/internal/domain/usage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CascadeStep records one completed step of a subscriber deletion.
type CascadeStep struct {
	Name    string `json:"name"`
	Removed int64  `json:"removed"`
}

// CascadeReport lists the steps a subscriber deletion completed. When Delete
// returns an error the report still holds every step finished before it.
type CascadeReport struct {
	SubscriberID string        `json:"subscriberId"`
	Steps        []CascadeStep `json:"steps"`
}

// Cascade step names
const (
	StepCycles     = "cycles"
	StepUsage      = "usage_entries"
	StepSubscriber = "subscriber"
)

type SubscriberService struct {
	subscribers subscriber.Repository
	cycles      cycle.Repository
	entries     usage.Repository
	locker      Locker
	logger      *logrus.Entry
}

func NewSubscriberService(sr subscriber.Repository, cr cycle.Repository, ur usage.Repository, locker Locker, logger *logrus.Entry) *SubscriberService {
	return &SubscriberService{
		subscribers: sr,
		cycles:      cr,
		entries:     ur,
		locker:      locker,
		logger:      logger.WithField("component", "subscriber_service"),
	}
}

// Create stores a new subscriber unless the email is already taken.
func (s *SubscriberService) Create(ctx context.Context, candidate *subscriber.Subscriber) (*subscriber.Subscriber, error) {
	unlock, err := s.locker.Lock(ctx, emailLockKey(candidate.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to lock email: %w", err)
	}
	defer unlock()

	_, err = s.subscribers.GetByEmail(ctx, candidate.Email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, subscriber.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing subscriber: %w", err)
	}

	stored := *candidate
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if err := s.subscribers.Create(ctx, &stored); err != nil {
		if errors.Is(err, subscriber.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create subscriber: %w", err)
	}
	s.logger.WithField("subscriber_id", stored.ID).Info("Subscriber created")
	return &stored, nil
}

// Update overwrites email, names and password. The phone number only changes through TransferMDN.
func (s *SubscriberService) Update(ctx context.Context, id string, patch *subscriber.Subscriber) (*subscriber.Subscriber, error) {
	unlock, err := lockAll(ctx, s.locker, subscriberLockKey(id), emailLockKey(patch.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to lock subscriber %s: %w", id, err)
	}
	defer unlock()

	target, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.subscribers.GetByEmail(ctx, patch.Email)
	switch {
	case err == nil && owner.ID != id:
		return nil, ErrEmailTaken
	case err != nil && !errors.Is(err, subscriber.ErrNotFound):
		return nil, fmt.Errorf("failed to check email owner: %w", err)
	}

	target.Email = patch.Email
	target.FirstName = patch.FirstName
	target.LastName = patch.LastName
	target.Password = patch.Password

	if err := s.subscribers.Update(ctx, target); err != nil {
		switch {
		case errors.Is(err, subscriber.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		case errors.Is(err, subscriber.ErrNotFound):
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("failed to update subscriber %s: %w", id, err)
	}
	s.logger.WithField("subscriber_id", id).Info("Subscriber updated")
	return target, nil
}

// Delete removes the subscriber's cycles, then usage entries, then the subscriber.
// Steps are not rolled back: if one fails, the earlier ones stay applied and the
// returned report says which.
func (s *SubscriberService) Delete(ctx context.Context, id string) (*CascadeReport, error) {
	unlock, err := s.locker.Lock(ctx, subscriberLockKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock subscriber %s: %w", id, err)
	}
	defer unlock()

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	log := s.logger.WithField("subscriber_id", id)
	report := &CascadeReport{SubscriberID: id}

	removed, err := s.cycles.DeleteBySubscriber(ctx, id)
	if err != nil {
		log.WithError(err).Error("Cascade stopped while deleting cycles")
		return report, fmt.Errorf("failed to delete cycles of subscriber %s: %w", id, err)
	}
	report.Steps = append(report.Steps, CascadeStep{Name: StepCycles, Removed: removed})

	removed, err = s.entries.DeleteBySubscriber(ctx, id)
	if err != nil {
		log.WithError(err).Error("Cascade stopped while deleting usage entries")
		return report, fmt.Errorf("failed to delete usage entries of subscriber %s: %w", id, err)
	}
	report.Steps = append(report.Steps, CascadeStep{Name: StepUsage, Removed: removed})

	if err := s.subscribers.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Cascade stopped while deleting subscriber record")
		if errors.Is(err, subscriber.ErrNotFound) {
			return report, ErrSubscriberNotFound
		}
		return report, fmt.Errorf("failed to delete subscriber %s: %w", id, err)
	}
	report.Steps = append(report.Steps, CascadeStep{Name: StepSubscriber, Removed: 1})

	log.WithField("steps", len(report.Steps)).Info("Subscriber deleted with cascade")
	return report, nil
}

// TransferMDN moves the source subscriber's number to the target and clears the source.
// The two writes are independent; if the second fails both subscribers hold the number.
func (s *SubscriberService) TransferMDN(ctx context.Context, targetID, sourceID string) (*subscriber.Subscriber, *subscriber.Subscriber, error) {
	if targetID == sourceID {
		return nil, nil, ErrSameSubscriber
	}

	unlock, err := lockAll(ctx, s.locker, subscriberLockKey(targetID), subscriberLockKey(sourceID))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock subscribers: %w", err)
	}
	defer unlock()

	target, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	source, err := s.Get(ctx, sourceID)
	if err != nil {
		return nil, nil, err
	}
	if !source.HasMDN() {
		return nil, nil, ErrEmptyMDN
	}

	log := s.logger.WithFields(logrus.Fields{
		"target_id": targetID,
		"source_id": sourceID,
		"mdn":       source.MDN,
	})

	target.MDN = source.MDN
	if err := s.subscribers.Update(ctx, target); err != nil {
		return nil, nil, fmt.Errorf("failed to assign number to subscriber %s: %w", targetID, err)
	}
	source.MDN = ""
	if err := s.subscribers.Update(ctx, source); err != nil {
		log.WithError(err).Warn("Number assigned to target but not cleared from source")
		return nil, nil, fmt.Errorf("failed to clear number from subscriber %s: %w", sourceID, err)
	}

	log.Info("Number transferred")
	return target, source, nil
}

func (s *SubscriberService) Get(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	found, err := s.subscribers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, subscriber.ErrNotFound) {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("failed to get subscriber %s: %w", id, err)
	}
	return found, nil
}

func (s *SubscriberService) GetByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error) {
	found, err := s.subscribers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, subscriber.ErrNotFound) {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("failed to get subscriber by email: %w", err)
	}
	return found, nil
}

func (s *SubscriberService) ListAll(ctx context.Context) ([]*subscriber.Subscriber, error) {
	all, err := s.subscribers.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return all, nil
}
