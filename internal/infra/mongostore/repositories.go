package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/subscriber"
	"mobile_usage_tracker/internal/domain/usage"
)

// ==================== Subscriber Store ====================

type SubscriberRepository struct {
	col *mongo.Collection
}

var _ subscriber.Repository = (*SubscriberRepository)(nil)

func (r *SubscriberRepository) Create(ctx context.Context, s *subscriber.Subscriber) error {
	if _, err := r.col.InsertOne(ctx, toSubscriberModel(s)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return subscriber.ErrDuplicateEmail
		}
		return fmt.Errorf("mongostore: create subscriber: %w", err)
	}
	return nil
}

func (r *SubscriberRepository) GetByID(ctx context.Context, id string) (*subscriber.Subscriber, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *SubscriberRepository) GetByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *SubscriberRepository) findOne(ctx context.Context, filter bson.M) (*subscriber.Subscriber, error) {
	var m subscriberModel
	if err := r.col.FindOne(ctx, filter).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, subscriber.ErrNotFound
		}
		return nil, fmt.Errorf("mongostore: get subscriber: %w", err)
	}
	return fromSubscriberModel(&m), nil
}

func (r *SubscriberRepository) Update(ctx context.Context, s *subscriber.Subscriber) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": s.ID}, bson.M{"$set": bson.M{
		"mdn":        s.MDN,
		"first_name": s.FirstName,
		"last_name":  s.LastName,
		"email":      s.Email,
		"password":   s.Password,
		"updated_at": now(),
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return subscriber.ErrDuplicateEmail
		}
		return fmt.Errorf("mongostore: update subscriber: %w", err)
	}
	if res.MatchedCount == 0 {
		return subscriber.ErrNotFound
	}
	return nil
}

func (r *SubscriberRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongostore: delete subscriber: %w", err)
	}
	if res.DeletedCount == 0 {
		return subscriber.ErrNotFound
	}
	return nil
}

func (r *SubscriberRepository) ListAll(ctx context.Context) ([]*subscriber.Subscriber, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(insertionOrder))
	if err != nil {
		return nil, fmt.Errorf("mongostore: list subscribers: %w", err)
	}
	var models []subscriberModel
	if err := cur.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("mongostore: decode subscribers: %w", err)
	}

	result := make([]*subscriber.Subscriber, len(models))
	for i := range models {
		result[i] = fromSubscriberModel(&models[i])
	}
	return result, nil
}

// ==================== Cycle Store ====================

type CycleRepository struct {
	col *mongo.Collection
}

var _ cycle.Repository = (*CycleRepository)(nil)

func (r *CycleRepository) Create(ctx context.Context, c *cycle.Cycle) error {
	if _, err := r.col.InsertOne(ctx, toCycleModel(c)); err != nil {
		return fmt.Errorf("mongostore: create cycle: %w", err)
	}
	return nil
}

func (r *CycleRepository) GetByID(ctx context.Context, id string) (*cycle.Cycle, error) {
	var m cycleModel
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, cycle.ErrNotFound
		}
		return nil, fmt.Errorf("mongostore: get cycle: %w", err)
	}
	return fromCycleModel(&m), nil
}

func (r *CycleRepository) ListBySubscriberAndMDN(ctx context.Context, subscriberID, mdn string) ([]*cycle.Cycle, error) {
	return r.find(ctx, bson.M{"subscriber_id": subscriberID, "mdn": mdn})
}

func (r *CycleRepository) ListAll(ctx context.Context) ([]*cycle.Cycle, error) {
	return r.find(ctx, bson.M{})
}

func (r *CycleRepository) find(ctx context.Context, filter bson.M) ([]*cycle.Cycle, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(insertionOrder))
	if err != nil {
		return nil, fmt.Errorf("mongostore: list cycles: %w", err)
	}
	var models []cycleModel
	if err := cur.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("mongostore: decode cycles: %w", err)
	}

	result := make([]*cycle.Cycle, len(models))
	for i := range models {
		result[i] = fromCycleModel(&models[i])
	}
	return result, nil
}

func (r *CycleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongostore: delete cycle: %w", err)
	}
	if res.DeletedCount == 0 {
		return cycle.ErrNotFound
	}
	return nil
}

func (r *CycleRepository) DeleteBySubscriber(ctx context.Context, subscriberID string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"subscriber_id": subscriberID})
	if err != nil {
		return 0, fmt.Errorf("mongostore: delete cycles of %s: %w", subscriberID, err)
	}
	return res.DeletedCount, nil
}

// ==================== Usage Store ====================

type UsageRepository struct {
	col *mongo.Collection
}

var _ usage.Repository = (*UsageRepository)(nil)

func (r *UsageRepository) Create(ctx context.Context, e *usage.Entry) error {
	if _, err := r.col.InsertOne(ctx, toUsageModel(e)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usage.ErrDuplicate
		}
		return fmt.Errorf("mongostore: create usage entry: %w", err)
	}
	return nil
}

func (r *UsageRepository) GetByID(ctx context.Context, id string) (*usage.Entry, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByDateAndMDN returns the earliest written entry for the number on that date.
func (r *UsageRepository) GetByDateAndMDN(ctx context.Context, usageDate time.Time, mdn string) (*usage.Entry, error) {
	return r.findOne(ctx, bson.M{"usage_date": usageDate.UTC(), "mdn": mdn})
}

func (r *UsageRepository) findOne(ctx context.Context, filter bson.M) (*usage.Entry, error) {
	var m usageModel
	err := r.col.FindOne(ctx, filter, options.FindOne().SetSort(insertionOrder)).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, usage.ErrNotFound
		}
		return nil, fmt.Errorf("mongostore: get usage entry: %w", err)
	}
	return fromUsageModel(&m), nil
}

func (r *UsageRepository) ListBySubscriberAndMDN(ctx context.Context, subscriberID, mdn string) ([]*usage.Entry, error) {
	return r.find(ctx, bson.M{"subscriber_id": subscriberID, "mdn": mdn})
}

func (r *UsageRepository) ListAll(ctx context.Context) ([]*usage.Entry, error) {
	return r.find(ctx, bson.M{})
}

func (r *UsageRepository) find(ctx context.Context, filter bson.M) ([]*usage.Entry, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(insertionOrder))
	if err != nil {
		return nil, fmt.Errorf("mongostore: list usage entries: %w", err)
	}
	var models []usageModel
	if err := cur.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("mongostore: decode usage entries: %w", err)
	}

	result := make([]*usage.Entry, len(models))
	for i := range models {
		result[i] = fromUsageModel(&models[i])
	}
	return result, nil
}

func (r *UsageRepository) Update(ctx context.Context, e *usage.Entry) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": e.ID}, bson.M{"$set": bson.M{
		"used_in_mb": e.UsedInMB,
		"updated_at": now(),
	}})
	if err != nil {
		return fmt.Errorf("mongostore: update usage entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return usage.ErrNotFound
	}
	return nil
}

func (r *UsageRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongostore: delete usage entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return usage.ErrNotFound
	}
	return nil
}

func (r *UsageRepository) DeleteBySubscriber(ctx context.Context, subscriberID string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"subscriber_id": subscriberID})
	if err != nil {
		return 0, fmt.Errorf("mongostore: delete usage entries of %s: %w", subscriberID, err)
	}
	return res.DeletedCount, nil
}
