package main

import (
	"context"
	"database/sql"
	"fmt"

	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/subscriber"
	"mobile_usage_tracker/internal/domain/usage"
	"mobile_usage_tracker/internal/infra/config"
	"mobile_usage_tracker/internal/infra/database"
	"mobile_usage_tracker/internal/infra/memory"
	"mobile_usage_tracker/internal/infra/mongostore"
)

// backend bundles the repositories of one store together with its lifecycle hooks.
type backend struct {
	name        string
	subscribers subscriber.Repository
	cycles      cycle.Repository
	usage       usage.Repository
	ping        func(ctx context.Context) error
	migrate     func(ctx context.Context) error
	close       func(ctx context.Context) error
}

// Ping lets the backend serve as the health checker.
func (b *backend) Ping(ctx context.Context) error {
	return b.ping(ctx)
}

func openBackend(ctx context.Context, cfg *config.AppConfig) (*backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &backend{
			name:        config.BackendMongo,
			subscribers: store.Subscribers(),
			cycles:      store.Cycles(),
			usage:       store.Usage(),
			ping:        store.Ping,
			migrate:     store.Migrate,
			close:       store.Close,
		}, nil

	case config.BackendPostgres:
		db, err := database.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &backend{
			name:        config.BackendPostgres,
			subscribers: database.NewPostgresSubscriberRepository(db),
			cycles:      database.NewPostgresCycleRepository(db),
			usage:       database.NewPostgresUsageRepository(db),
			ping:        db.PingContext,
			migrate:     func(ctx context.Context) error { return database.Migrate(ctx, db) },
			close:       closeSQL(db),
		}, nil

	case config.BackendMemory:
		store := memory.New()
		return &backend{
			name:        config.BackendMemory,
			subscribers: store.Subscribers(),
			cycles:      store.Cycles(),
			usage:       store.Usage(),
			ping:        store.Ping,
			migrate:     func(context.Context) error { return nil },
			close:       func(context.Context) error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func closeSQL(db *sql.DB) func(context.Context) error {
	return func(context.Context) error { return db.Close() }
}
