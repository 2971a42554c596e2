package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mobile_usage_tracker/internal/domain/usage"
)

type PostgresUsageRepository struct {
	db *sql.DB
}

var _ usage.Repository = (*PostgresUsageRepository)(nil)

func NewPostgresUsageRepository(db *sql.DB) *PostgresUsageRepository {
	return &PostgresUsageRepository{db: db}
}

const usageColumns = `id, subscriber_id, mdn, usage_date, used_in_mb`

func (r *PostgresUsageRepository) Create(ctx context.Context, e *usage.Entry) error {
	query := `INSERT INTO usage_entries (id, subscriber_id, mdn, usage_date, used_in_mb)
               VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.SubscriberID, e.MDN, e.UsageDate, e.UsedInMB)
	if err != nil {
		if isUniqueViolation(err, usageSubscriberMDNDateKey) {
			return usage.ErrDuplicate
		}
		return fmt.Errorf("error creating usage entry: %w", err)
	}
	return nil
}

func (r *PostgresUsageRepository) GetByID(ctx context.Context, id string) (*usage.Entry, error) {
	query := `SELECT ` + usageColumns + ` FROM usage_entries WHERE id = $1`
	e := &usage.Entry{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.SubscriberID, &e.MDN, &e.UsageDate, &e.UsedInMB)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usage.ErrNotFound
		}
		return nil, fmt.Errorf("error getting usage entry by ID: %w", err)
	}
	return e, nil
}

// GetByDateAndMDN returns the first entry recorded for the number on that date.
func (r *PostgresUsageRepository) GetByDateAndMDN(ctx context.Context, usageDate time.Time, mdn string) (*usage.Entry, error) {
	query := `SELECT ` + usageColumns + ` FROM usage_entries
               WHERE usage_date = $1 AND mdn = $2 ORDER BY created_at, id LIMIT 1`
	e := &usage.Entry{}
	err := r.db.QueryRowContext(ctx, query, usageDate, mdn).Scan(&e.ID, &e.SubscriberID, &e.MDN, &e.UsageDate, &e.UsedInMB)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usage.ErrNotFound
		}
		return nil, fmt.Errorf("error getting usage entry by date: %w", err)
	}
	return e, nil
}

func (r *PostgresUsageRepository) ListBySubscriberAndMDN(ctx context.Context, subscriberID, mdn string) ([]*usage.Entry, error) {
	query := `SELECT ` + usageColumns + ` FROM usage_entries
               WHERE subscriber_id = $1 AND mdn = $2 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, subscriberID, mdn)
	if err != nil {
		return nil, fmt.Errorf("error querying usage entries by subscriber: %w", err)
	}
	defer rows.Close()
	return scanUsageEntries(rows)
}

func (r *PostgresUsageRepository) ListAll(ctx context.Context) ([]*usage.Entry, error) {
	query := `SELECT ` + usageColumns + ` FROM usage_entries ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying all usage entries: %w", err)
	}
	defer rows.Close()
	return scanUsageEntries(rows)
}

func (r *PostgresUsageRepository) Update(ctx context.Context, e *usage.Entry) error {
	query := `UPDATE usage_entries SET used_in_mb = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, e.UsedInMB, e.ID)
	if err != nil {
		return fmt.Errorf("error updating usage entry: %w", err)
	}
	return requireAffected(result, usage.ErrNotFound)
}

func (r *PostgresUsageRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM usage_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting usage entry: %w", err)
	}
	return requireAffected(result, usage.ErrNotFound)
}

func (r *PostgresUsageRepository) DeleteBySubscriber(ctx context.Context, subscriberID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM usage_entries WHERE subscriber_id = $1`, subscriberID)
	if err != nil {
		return 0, fmt.Errorf("error deleting usage entries by subscriber: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading deleted usage count: %w", err)
	}
	return n, nil
}

func scanUsageEntries(rows *sql.Rows) ([]*usage.Entry, error) {
	entries := make([]*usage.Entry, 0)
	for rows.Next() {
		e := usage.Entry{}
		if err := rows.Scan(&e.ID, &e.SubscriberID, &e.MDN, &e.UsageDate, &e.UsedInMB); err != nil {
			return nil, fmt.Errorf("error scanning usage row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage rows: %w", err)
	}
	return entries, nil
}
