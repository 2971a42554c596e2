package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Constraint names the repositories match on when mapping unique violations.
const (
	subscribersEmailKey       = "subscribers_email_key"
	usageSubscriberMDNDateKey = "usage_entries_subscriber_mdn_date_key"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS subscribers (
		id         TEXT PRIMARY KEY,
		mdn        TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name  TEXT NOT NULL DEFAULT '',
		email      TEXT NOT NULL,
		password   TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT subscribers_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS cycles (
		id            TEXT PRIMARY KEY,
		subscriber_id TEXT NOT NULL,
		mdn           TEXT NOT NULL,
		start_date    TIMESTAMPTZ NOT NULL,
		end_date      TIMESTAMPTZ NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS cycles_subscriber_mdn_idx ON cycles (subscriber_id, mdn)`,
	`CREATE TABLE IF NOT EXISTS usage_entries (
		id            TEXT PRIMARY KEY,
		subscriber_id TEXT NOT NULL,
		mdn           TEXT NOT NULL,
		usage_date    TIMESTAMPTZ NOT NULL,
		used_in_mb    INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT usage_entries_subscriber_mdn_date_key UNIQUE (subscriber_id, mdn, usage_date)
	)`,
	`CREATE INDEX IF NOT EXISTS usage_entries_mdn_date_idx ON usage_entries (mdn, usage_date)`,
}

// Migrate creates the tables and indexes if they do not exist yet. It runs in
// a single transaction and is safe to call on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}
