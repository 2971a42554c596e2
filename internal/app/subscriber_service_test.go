package app

import (
	"context"
	"testing"

	"mobile_usage_tracker/internal/domain/subscriber"
	"mobile_usage_tracker/internal/domain/usage"
	"mobile_usage_tracker/internal/infra/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSubscriber_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mustSubscriber(t, "dup@example.com", "5551000")

	_, err := f.subscribers.Create(ctx, &subscriber.Subscriber{Email: "dup@example.com", MDN: "5552000"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	// case-sensitive match
	_, err = f.subscribers.Create(ctx, &subscriber.Subscriber{Email: "DUP@example.com"})
	assert.NoError(t, err)

	all, err := f.subscribers.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateSubscriber(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.mustSubscriber(t, "a@example.com", "5551000")
	f.mustSubscriber(t, "b@example.com", "5552000")

	updated, err := f.subscribers.Update(ctx, a.ID, &subscriber.Subscriber{
		Email:     "a2@example.com",
		FirstName: "Ann",
		LastName:  "Lee",
		Password:  "changed",
		MDN:       "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "a2@example.com", updated.Email)
	assert.Equal(t, "Ann", updated.FirstName)
	assert.Equal(t, "5551000", updated.MDN)

	// keeping its own email is not a conflict
	_, err = f.subscribers.Update(ctx, a.ID, &subscriber.Subscriber{Email: "a2@example.com", FirstName: "Anne"})
	assert.NoError(t, err)

	_, err = f.subscribers.Update(ctx, a.ID, &subscriber.Subscriber{Email: "b@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = f.subscribers.Update(ctx, "missing", &subscriber.Subscriber{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrSubscriberNotFound)

	found, err := f.subscribers.GetByEmail(ctx, "a2@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Anne", found.FirstName)

	_, err = f.subscribers.GetByEmail(ctx, "a@example.com")
	assert.ErrorIs(t, err, ErrSubscriberNotFound)
}

func TestDeleteSubscriber_Cascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	gone := f.mustSubscriber(t, "gone@example.com", "5551000")
	kept := f.mustSubscriber(t, "kept@example.com", "5552000")

	f.mustCycle(t, gone, day(1, 1), day(1, 31))
	f.mustCycle(t, gone, day(2, 1), day(2, 28))
	f.mustCycle(t, kept, day(1, 1), day(1, 31))
	_, err := f.usage.RecordUsage(ctx, &usage.Entry{SubscriberID: gone.ID, MDN: gone.MDN, UsageDate: day(1, 5), UsedInMB: 1})
	require.NoError(t, err)
	_, err = f.usage.RecordUsage(ctx, &usage.Entry{SubscriberID: kept.ID, MDN: kept.MDN, UsageDate: day(1, 5), UsedInMB: 1})
	require.NoError(t, err)

	report, err := f.subscribers.Delete(ctx, gone.ID)
	require.NoError(t, err)
	assert.Equal(t, []CascadeStep{
		{Name: StepCycles, Removed: 2},
		{Name: StepUsage, Removed: 1},
		{Name: StepSubscriber, Removed: 1},
	}, report.Steps)

	cycles, err := f.cycles.History(ctx, gone.ID, gone.MDN)
	require.NoError(t, err)
	assert.Empty(t, cycles)

	allCycles, err := f.cycles.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, allCycles, 1)
	assert.Equal(t, kept.ID, allCycles[0].SubscriberID)

	allUsage, err := f.usage.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, allUsage, 1)
	assert.Equal(t, kept.ID, allUsage[0].SubscriberID)

	_, err = f.subscribers.Get(ctx, gone.ID)
	assert.ErrorIs(t, err, ErrSubscriberNotFound)

	_, err = f.subscribers.Delete(ctx, gone.ID)
	assert.ErrorIs(t, err, ErrSubscriberNotFound)
}

func TestDeleteSubscriber_PartialCascadeIsReported(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	f := newFixtureWith(store.Subscribers(), store.Cycles(), failingUsageRepo{store.Usage()}, store)
	u := f.mustSubscriber(t, "partial@example.com", "5551000")
	f.mustCycle(t, u, day(1, 1), day(1, 31))

	report, err := f.subscribers.Delete(ctx, u.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	require.NotNil(t, report)
	assert.Equal(t, []CascadeStep{{Name: StepCycles, Removed: 1}}, report.Steps)

	// the cycles step is not rolled back and the subscriber is still there
	allCycles, err := f.cycles.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, allCycles)

	_, err = f.subscribers.Get(ctx, u.ID)
	assert.NoError(t, err)
}

func TestTransferMDN(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.mustSubscriber(t, "a@example.com", "")
	b := f.mustSubscriber(t, "b@example.com", "555-0100")

	target, source, err := f.subscribers.TransferMDN(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", target.MDN)
	assert.Equal(t, "", source.MDN)

	storedA, err := f.subscribers.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", storedA.MDN)

	storedB, err := f.subscribers.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, storedB.HasMDN())
}

func TestTransferMDN_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.mustSubscriber(t, "a@example.com", "5551000")
	empty := f.mustSubscriber(t, "empty@example.com", "")

	_, _, err := f.subscribers.TransferMDN(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, ErrSameSubscriber)

	_, _, err = f.subscribers.TransferMDN(ctx, "missing", a.ID)
	assert.ErrorIs(t, err, ErrSubscriberNotFound)

	_, _, err = f.subscribers.TransferMDN(ctx, a.ID, "missing")
	assert.ErrorIs(t, err, ErrSubscriberNotFound)

	_, _, err = f.subscribers.TransferMDN(ctx, a.ID, empty.ID)
	assert.ErrorIs(t, err, ErrEmptyMDN)

	stored, err := f.subscribers.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "5551000", stored.MDN)
}

func TestTransferMDN_SecondWriteFails(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	flaky := &flakySubscriberRepo{Repository: store.Subscribers(), failOn: 2}
	f := newFixtureWith(flaky, store.Cycles(), store.Usage(), store)
	a := f.mustSubscriber(t, "a@example.com", "")
	b := f.mustSubscriber(t, "b@example.com", "555-0100")

	target, source, err := f.subscribers.TransferMDN(ctx, a.ID, b.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Nil(t, target)
	assert.Nil(t, source)

	// no rollback: the target write stays and the source keeps its number
	storedA, err := f.subscribers.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", storedA.MDN)

	storedB, err := f.subscribers.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", storedB.MDN)
}

func TestTransferMDN_LocksBothSubscribersInOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	locker := &recordingLocker{}
	svc := NewSubscriberService(store.Subscribers(), store.Cycles(), store.Usage(), locker, quietLogger())

	a, err := svc.Create(ctx, &subscriber.Subscriber{ID: "bbb", Email: "a@example.com"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, &subscriber.Subscriber{ID: "aaa", Email: "b@example.com", MDN: "5551000"})
	require.NoError(t, err)
	locker.acquired = nil

	_, _, err = svc.TransferMDN(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"subscriber:aaa", "subscriber:bbb"}, locker.acquired)
	assert.Zero(t, locker.held)
}
