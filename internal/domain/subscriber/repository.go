package subscriber

import (
	"context"
	"errors"
)

// Errors returned by every Repository implementation.
var ErrNotFound = errors.New("subscriber not found")
var ErrDuplicateEmail = errors.New("subscriber with this email already exists")

// Repository defines the operations for persisting and retrieving Subscriber entities.
type Repository interface {
	Create(ctx context.Context, s *Subscriber) error
	GetByID(ctx context.Context, id string) (*Subscriber, error)
	GetByEmail(ctx context.Context, email string) (*Subscriber, error)
	Update(ctx context.Context, s *Subscriber) error // Overwrites every field of the stored record
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*Subscriber, error)
}
