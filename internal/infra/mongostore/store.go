// Package mongostore keeps subscribers, cycles and usage entries in MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection name constants.
const (
	colSubscribers = "subscriber"
	colCycles      = "cycle"
	colUsage       = "daily_usage"
)

// Store owns the client and hands out one repository per collection.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, pings the primary and selects the database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Subscribers() *SubscriberRepository {
	return &SubscriberRepository{col: s.db.Collection(colSubscribers)}
}

func (s *Store) Cycles() *CycleRepository {
	return &CycleRepository{col: s.db.Collection(colCycles)}
}

func (s *Store) Usage() *UsageRepository {
	return &UsageRepository{col: s.db.Collection(colUsage)}
}

// Migrate creates indexes for all collections.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if len(models) == 0 {
			continue
		}
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongostore: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// insertionOrder sorts documents the way they were written.
var insertionOrder = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

// migrationIndexes returns the index definitions for all collections.
// The unique usage index turns a racing duplicate insert into a rejection.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colSubscribers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colCycles: {
			{Keys: bson.D{{Key: "subscriber_id", Value: 1}, {Key: "mdn", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: 1}}},
		},
		colUsage: {
			{
				Keys:    bson.D{{Key: "subscriber_id", Value: 1}, {Key: "mdn", Value: 1}, {Key: "usage_date", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "mdn", Value: 1}, {Key: "usage_date", Value: 1}}},
		},
	}
}
