package usage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("usage entry not found")

// ErrDuplicate is returned when the store already holds an entry for the same
// subscriber, phone number and date.
var ErrDuplicate = errors.New("usage entry for this subscriber, number and date already exists")

// Repository defines operations for daily usage entries.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id string) (*Entry, error)
	// GetByDateAndMDN is not scoped by subscriber; numbers are assumed not to be shared on the same day.
	GetByDateAndMDN(ctx context.Context, usageDate time.Time, mdn string) (*Entry, error)
	ListBySubscriberAndMDN(ctx context.Context, subscriberID, mdn string) ([]*Entry, error)
	ListAll(ctx context.Context) ([]*Entry, error)
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id string) error
	DeleteBySubscriber(ctx context.Context, subscriberID string) (int64, error)
}
