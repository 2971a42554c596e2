package cycle

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("cycle not found")

// Repository defines operations for billing cycles.
type Repository interface {
	Create(ctx context.Context, c *Cycle) error
	GetByID(ctx context.Context, id string) (*Cycle, error)
	ListBySubscriberAndMDN(ctx context.Context, subscriberID, mdn string) ([]*Cycle, error)
	ListAll(ctx context.Context) ([]*Cycle, error)
	Delete(ctx context.Context, id string) error
	// DeleteBySubscriber removes every cycle owned by the subscriber and returns how many were removed.
	DeleteBySubscriber(ctx context.Context, subscriberID string) (int64, error)
}
