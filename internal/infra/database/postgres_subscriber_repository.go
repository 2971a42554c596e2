package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mobile_usage_tracker/internal/domain/subscriber"
)

type PostgresSubscriberRepository struct {
	db *sql.DB
}

var _ subscriber.Repository = (*PostgresSubscriberRepository)(nil)

func NewPostgresSubscriberRepository(db *sql.DB) *PostgresSubscriberRepository {
	return &PostgresSubscriberRepository{db: db}
}

const subscriberColumns = `id, mdn, first_name, last_name, email, password`

func (r *PostgresSubscriberRepository) Create(ctx context.Context, s *subscriber.Subscriber) error {
	query := `INSERT INTO subscribers (id, mdn, first_name, last_name, email, password)
               VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, s.ID, s.MDN, s.FirstName, s.LastName, s.Email, s.Password)
	if err != nil {
		if isUniqueViolation(err, subscribersEmailKey) {
			return subscriber.ErrDuplicateEmail
		}
		return fmt.Errorf("error creating subscriber: %w", err)
	}
	return nil
}

func (r *PostgresSubscriberRepository) GetByID(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE id = $1`
	s := &subscriber.Subscriber{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.MDN, &s.FirstName, &s.LastName, &s.Email, &s.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, subscriber.ErrNotFound
		}
		return nil, fmt.Errorf("error getting subscriber by ID: %w", err)
	}
	return s, nil
}

func (r *PostgresSubscriberRepository) GetByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE email = $1`
	s := &subscriber.Subscriber{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&s.ID, &s.MDN, &s.FirstName, &s.LastName, &s.Email, &s.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, subscriber.ErrNotFound
		}
		return nil, fmt.Errorf("error getting subscriber by email: %w", err)
	}
	return s, nil
}

func (r *PostgresSubscriberRepository) Update(ctx context.Context, s *subscriber.Subscriber) error {
	query := `UPDATE subscribers
               SET mdn = $1, first_name = $2, last_name = $3, email = $4, password = $5, updated_at = NOW()
               WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query, s.MDN, s.FirstName, s.LastName, s.Email, s.Password, s.ID)
	if err != nil {
		if isUniqueViolation(err, subscribersEmailKey) {
			return subscriber.ErrDuplicateEmail
		}
		return fmt.Errorf("error updating subscriber: %w", err)
	}
	return requireAffected(result, subscriber.ErrNotFound)
}

func (r *PostgresSubscriberRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subscribers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting subscriber: %w", err)
	}
	return requireAffected(result, subscriber.ErrNotFound)
}

func (r *PostgresSubscriberRepository) ListAll(ctx context.Context) ([]*subscriber.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing subscribers: %w", err)
	}
	defer rows.Close()

	subscribers := make([]*subscriber.Subscriber, 0)
	for rows.Next() {
		s := &subscriber.Subscriber{}
		if err := rows.Scan(&s.ID, &s.MDN, &s.FirstName, &s.LastName, &s.Email, &s.Password); err != nil {
			return nil, fmt.Errorf("error scanning subscriber: %w", err)
		}
		subscribers = append(subscribers, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscribers: %w", err)
	}
	return subscribers, nil
}

// requireAffected maps a zero-row write to notFound.
func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
