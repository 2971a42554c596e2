package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/subscriber"
	"mobile_usage_tracker/internal/domain/usage"
	"mobile_usage_tracker/internal/infra/memory"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store       *memory.Store
	subscribers *SubscriberService
	cycles      *CycleService
	usage       *UsageService
	stats       *StatsService
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	return newFixtureWith(store.Subscribers(), store.Cycles(), store.Usage(), store)
}

func newFixtureWith(sr subscriber.Repository, cr cycle.Repository, ur usage.Repository, store *memory.Store) *fixture {
	return newFixtureWithLocker(sr, cr, ur, store, NoopLocker())
}

func newFixtureWithLocker(sr subscriber.Repository, cr cycle.Repository, ur usage.Repository, store *memory.Store, locker Locker) *fixture {
	log := quietLogger()
	cycles := NewCycleService(cr, sr, locker, log)
	return &fixture{
		store:       store,
		subscribers: NewSubscriberService(sr, cr, ur, locker, log),
		cycles:      cycles,
		usage:       NewUsageService(ur, sr, cycles, locker, true, log),
		stats:       NewStatsService(sr, cr, ur),
	}
}

func (f *fixture) mustSubscriber(t *testing.T, email, mdn string) *subscriber.Subscriber {
	t.Helper()
	created, err := f.subscribers.Create(context.Background(), &subscriber.Subscriber{
		Email:     email,
		MDN:       mdn,
		FirstName: "Test",
		LastName:  "User",
		Password:  "secret",
	})
	require.NoError(t, err)
	return created
}

func (f *fixture) mustCycle(t *testing.T, sub *subscriber.Subscriber, start, end time.Time) *cycle.Cycle {
	t.Helper()
	admitted, err := f.cycles.AdmitCycle(context.Background(), &cycle.Cycle{
		SubscriberID: sub.ID,
		MDN:          sub.MDN,
		StartDate:    start,
		EndDate:      end,
	})
	require.NoError(t, err)
	return admitted
}

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}

var errStoreDown = errors.New("store unavailable")

// failingUsageRepo wraps a usage repository and fails bulk deletes.
type failingUsageRepo struct {
	usage.Repository
}

func (failingUsageRepo) DeleteBySubscriber(context.Context, string) (int64, error) {
	return 0, errStoreDown
}

// flakySubscriberRepo fails the failOn-th call to Update and passes every other call through.
type flakySubscriberRepo struct {
	subscriber.Repository
	mu      sync.Mutex
	updates int
	failOn  int
}

func (r *flakySubscriberRepo) Update(ctx context.Context, s *subscriber.Subscriber) error {
	r.mu.Lock()
	r.updates++
	fail := r.updates == r.failOn
	r.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return r.Repository.Update(ctx, s)
}

// recordingLocker counts acquisitions per key and tracks how many are held.
type recordingLocker struct {
	mu       sync.Mutex
	acquired []string
	held     int
}

func (l *recordingLocker) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquired = append(l.acquired, key)
	l.held++
	return func() {
		l.mu.Lock()
		l.held--
		l.mu.Unlock()
	}, nil
}

type refusingLocker struct{}

func (refusingLocker) Lock(ctx context.Context, _ string) (func(), error) {
	return nil, context.DeadlineExceeded
}
