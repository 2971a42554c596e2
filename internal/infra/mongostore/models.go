package mongostore

import (
	"time"

	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/subscriber"
	"mobile_usage_tracker/internal/domain/usage"
)

// ==================== Subscriber models ====================

type subscriberModel struct {
	ID        string    `bson:"_id"`
	MDN       string    `bson:"mdn"`
	FirstName string    `bson:"first_name"`
	LastName  string    `bson:"last_name"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toSubscriberModel(s *subscriber.Subscriber) *subscriberModel {
	t := now()
	return &subscriberModel{
		ID:        s.ID,
		MDN:       s.MDN,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Password:  s.Password,
		CreatedAt: t,
		UpdatedAt: t,
	}
}

func fromSubscriberModel(m *subscriberModel) *subscriber.Subscriber {
	return &subscriber.Subscriber{
		ID:        m.ID,
		MDN:       m.MDN,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Password:  m.Password,
	}
}

// ==================== Cycle models ====================

type cycleModel struct {
	ID           string    `bson:"_id"`
	SubscriberID string    `bson:"subscriber_id"`
	MDN          string    `bson:"mdn"`
	StartDate    time.Time `bson:"start_date"`
	EndDate      time.Time `bson:"end_date"`
	CreatedAt    time.Time `bson:"created_at"`
}

func toCycleModel(c *cycle.Cycle) *cycleModel {
	return &cycleModel{
		ID:           c.ID,
		SubscriberID: c.SubscriberID,
		MDN:          c.MDN,
		StartDate:    c.StartDate.UTC(),
		EndDate:      c.EndDate.UTC(),
		CreatedAt:    now(),
	}
}

func fromCycleModel(m *cycleModel) *cycle.Cycle {
	return &cycle.Cycle{
		ID:           m.ID,
		SubscriberID: m.SubscriberID,
		MDN:          m.MDN,
		StartDate:    m.StartDate.UTC(),
		EndDate:      m.EndDate.UTC(),
	}
}

// ==================== Usage models ====================

type usageModel struct {
	ID           string    `bson:"_id"`
	SubscriberID string    `bson:"subscriber_id"`
	MDN          string    `bson:"mdn"`
	UsageDate    time.Time `bson:"usage_date"`
	UsedInMB     int       `bson:"used_in_mb"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toUsageModel(e *usage.Entry) *usageModel {
	t := now()
	return &usageModel{
		ID:           e.ID,
		SubscriberID: e.SubscriberID,
		MDN:          e.MDN,
		UsageDate:    e.UsageDate.UTC(),
		UsedInMB:     e.UsedInMB,
		CreatedAt:    t,
		UpdatedAt:    t,
	}
}

func fromUsageModel(m *usageModel) *usage.Entry {
	return &usage.Entry{
		ID:           m.ID,
		SubscriberID: m.SubscriberID,
		MDN:          m.MDN,
		UsageDate:    m.UsageDate.UTC(),
		UsedInMB:     m.UsedInMB,
	}
}

func now() time.Time {
	return time.Now().UTC()
}
