package app

import (
	"context"
	"errors"
	"fmt"

	"mobile_usage_tracker/internal/domain/subscriber"
)

// requireSubscriber is the foreign-key check run before every insert that
// references a subscriber. The store does not enforce it.
func requireSubscriber(ctx context.Context, subscribers subscriber.Repository, id string) (*subscriber.Subscriber, error) {
	owner, err := subscribers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, subscriber.ErrNotFound) {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("failed to load subscriber %s: %w", id, err)
	}
	return owner, nil
}

// requireMatchingMDN checks that a dependent record carries the owner's current number.
func requireMatchingMDN(owner *subscriber.Subscriber, mdn string) error {
	if owner.MDN != mdn {
		return ErrMDNMismatch
	}
	return nil
}
