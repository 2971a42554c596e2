package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mobile_usage_tracker/internal/domain/cycle"
)

type PostgresCycleRepository struct {
	db *sql.DB
}

var _ cycle.Repository = (*PostgresCycleRepository)(nil)

func NewPostgresCycleRepository(db *sql.DB) *PostgresCycleRepository {
	return &PostgresCycleRepository{db: db}
}

func (r *PostgresCycleRepository) Create(ctx context.Context, c *cycle.Cycle) error {
	query := `INSERT INTO cycles (id, subscriber_id, mdn, start_date, end_date)
               VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.SubscriberID, c.MDN, c.StartDate, c.EndDate); err != nil {
		return fmt.Errorf("error creating cycle: %w", err)
	}
	return nil
}

func (r *PostgresCycleRepository) GetByID(ctx context.Context, id string) (*cycle.Cycle, error) {
	query := `SELECT id, subscriber_id, mdn, start_date, end_date FROM cycles WHERE id = $1`
	c := &cycle.Cycle{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.SubscriberID, &c.MDN, &c.StartDate, &c.EndDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cycle.ErrNotFound
		}
		return nil, fmt.Errorf("error getting cycle by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresCycleRepository) ListBySubscriberAndMDN(ctx context.Context, subscriberID, mdn string) ([]*cycle.Cycle, error) {
	query := `SELECT id, subscriber_id, mdn, start_date, end_date FROM cycles
               WHERE subscriber_id = $1 AND mdn = $2 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, subscriberID, mdn)
	if err != nil {
		return nil, fmt.Errorf("error querying cycles by subscriber: %w", err)
	}
	defer rows.Close()
	return scanCycles(rows)
}

func (r *PostgresCycleRepository) ListAll(ctx context.Context) ([]*cycle.Cycle, error) {
	query := `SELECT id, subscriber_id, mdn, start_date, end_date FROM cycles ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying all cycles: %w", err)
	}
	defer rows.Close()
	return scanCycles(rows)
}

func (r *PostgresCycleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cycles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting cycle: %w", err)
	}
	return requireAffected(result, cycle.ErrNotFound)
}

func (r *PostgresCycleRepository) DeleteBySubscriber(ctx context.Context, subscriberID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cycles WHERE subscriber_id = $1`, subscriberID)
	if err != nil {
		return 0, fmt.Errorf("error deleting cycles by subscriber: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading deleted cycle count: %w", err)
	}
	return n, nil
}

// Helper to scan multiple rows
func scanCycles(rows *sql.Rows) ([]*cycle.Cycle, error) {
	cycles := make([]*cycle.Cycle, 0)
	for rows.Next() {
		c := cycle.Cycle{}
		if err := rows.Scan(&c.ID, &c.SubscriberID, &c.MDN, &c.StartDate, &c.EndDate); err != nil {
			return nil, fmt.Errorf("error scanning cycle row: %w", err)
		}
		cycles = append(cycles, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cycle rows: %w", err)
	}
	return cycles, nil
}
