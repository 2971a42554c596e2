package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/usage"
	"mobile_usage_tracker/internal/infra/lock"
	"mobile_usage_tracker/internal/infra/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const concurrentWriters = 50

func newLockedFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	return newFixtureWithLocker(store.Subscribers(), store.Cycles(), store.Usage(), store, lock.NewLocal())
}

// runConcurrently starts n calls of fn at once and returns how many succeeded
// alongside the distinct errors of the rest.
func runConcurrently(n int, fn func() error) (int, []error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		failures []error
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := fn()
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
				return
			}
			failures = append(failures, err)
		}()
	}
	close(start)
	wg.Wait()
	return accepted, failures
}

func TestAdmitCycle_ConcurrentSameWindowAdmitsOne(t *testing.T) {
	ctx := context.Background()
	f := newLockedFixture(t)
	u := f.mustSubscriber(t, "race@example.com", "5551000")

	accepted, failures := runConcurrently(concurrentWriters, func() error {
		_, err := f.cycles.AdmitCycle(ctx, &cycle.Cycle{
			SubscriberID: u.ID, MDN: u.MDN, StartDate: day(1, 1), EndDate: day(1, 31),
		})
		return err
	})

	assert.Equal(t, 1, accepted)
	require.Len(t, failures, concurrentWriters-1)
	for _, err := range failures {
		assert.True(t, errors.Is(err, ErrCycleOverlap) || errors.Is(err, ErrDuplicateCycle), err)
	}

	stored, err := f.cycles.History(ctx, u.ID, u.MDN)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestRecordUsage_ConcurrentSameDateRecordsOne(t *testing.T) {
	ctx := context.Background()
	f := newLockedFixture(t)
	u := f.mustSubscriber(t, "race@example.com", "5551000")
	f.mustCycle(t, u, day(1, 1), day(1, 31))

	accepted, failures := runConcurrently(concurrentWriters, func() error {
		_, err := f.usage.RecordUsage(ctx, &usage.Entry{
			SubscriberID: u.ID, MDN: u.MDN, UsageDate: day(1, 10), UsedInMB: 500,
		})
		return err
	})

	assert.Equal(t, 1, accepted)
	for _, err := range failures {
		assert.ErrorIs(t, err, ErrDuplicateUsage)
	}

	history, err := f.usage.History(ctx, u.ID, u.MDN)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
