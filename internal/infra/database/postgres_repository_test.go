package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/subscriber"
	"mobile_usage_tracker/internal/domain/usage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, func() error, *PostgresSubscriberRepository, *PostgresCycleRepository, *PostgresUsageRepository) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, mock.ExpectationsWereMet,
		NewPostgresSubscriberRepository(db),
		NewPostgresCycleRepository(db),
		NewPostgresUsageRepository(db)
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	for range schemaStatements {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS subscribers").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err = Migrate(context.Background(), db)
	assert.ErrorContains(t, err, "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberRepository_CreateDuplicateEmail(t *testing.T) {
	mock, met, subs, _, _ := newMock(t)

	mock.ExpectExec("INSERT INTO subscribers").
		WithArgs("s1", "5551000", "Ann", "Lee", "a@example.com", "pw").
		WillReturnError(&pq.Error{Code: "23505", Constraint: subscribersEmailKey})

	err := subs.Create(context.Background(), &subscriber.Subscriber{
		ID: "s1", MDN: "5551000", FirstName: "Ann", LastName: "Lee", Email: "a@example.com", Password: "pw",
	})
	assert.ErrorIs(t, err, subscriber.ErrDuplicateEmail)
	assert.NoError(t, met())
}

func TestSubscriberRepository_GetByEmail(t *testing.T) {
	mock, met, subs, _, _ := newMock(t)

	mock.ExpectQuery("SELECT (.+) FROM subscribers WHERE email = ").
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "mdn", "first_name", "last_name", "email", "password"}).
			AddRow("s1", "5551000", "Ann", "Lee", "a@example.com", "pw"))
	mock.ExpectQuery("SELECT (.+) FROM subscribers WHERE email = ").
		WithArgs("missing@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "mdn", "first_name", "last_name", "email", "password"}))

	found, err := subs.GetByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "s1", found.ID)
	assert.Equal(t, "5551000", found.MDN)

	_, err = subs.GetByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, subscriber.ErrNotFound)
	assert.NoError(t, met())
}

func TestSubscriberRepository_UpdateMissing(t *testing.T) {
	mock, met, subs, _, _ := newMock(t)

	mock.ExpectExec("UPDATE subscribers").WillReturnResult(sqlmock.NewResult(0, 0))

	err := subs.Update(context.Background(), &subscriber.Subscriber{ID: "nope", Email: "x@example.com"})
	assert.ErrorIs(t, err, subscriber.ErrNotFound)
	assert.NoError(t, met())
}

func TestCycleRepository_ListAndCascade(t *testing.T) {
	mock, met, _, cycles, _ := newMock(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM cycles WHERE subscriber_id = (.+) AND mdn = (.+) ORDER BY created_at, id").
		WithArgs("s1", "5551000").
		WillReturnRows(sqlmock.NewRows([]string{"id", "subscriber_id", "mdn", "start_date", "end_date"}).
			AddRow("c1", "s1", "5551000", start, end))
	mock.ExpectExec("DELETE FROM cycles WHERE subscriber_id").
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM cycles WHERE id").
		WithArgs("c9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	list, err := cycles.ListBySubscriberAndMDN(context.Background(), "s1", "5551000")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].EndDate.Equal(end))

	removed, err := cycles.DeleteBySubscriber(context.Background(), "s1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)

	assert.ErrorIs(t, cycles.Delete(context.Background(), "c9"), cycle.ErrNotFound)
	assert.NoError(t, met())
}

func TestUsageRepository_CreateAndUpdate(t *testing.T) {
	mock, met, _, _, entries := newMock(t)
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO usage_entries").
		WithArgs("e1", "s1", "5551000", date, 500).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO usage_entries").
		WillReturnError(&pq.Error{Code: "23505", Constraint: usageSubscriberMDNDateKey})
	mock.ExpectQuery("SELECT (.+) FROM usage_entries WHERE usage_date = (.+) AND mdn = ").
		WithArgs(date, "5551000").
		WillReturnRows(sqlmock.NewRows([]string{"id", "subscriber_id", "mdn", "usage_date", "used_in_mb"}).
			AddRow("e1", "s1", "5551000", date, 500))
	mock.ExpectExec("UPDATE usage_entries SET used_in_mb").
		WithArgs(800, "e1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.NoError(t, entries.Create(ctx, &usage.Entry{ID: "e1", SubscriberID: "s1", MDN: "5551000", UsageDate: date, UsedInMB: 500}))

	err := entries.Create(ctx, &usage.Entry{ID: "e2", SubscriberID: "s1", MDN: "5551000", UsageDate: date, UsedInMB: 700})
	assert.ErrorIs(t, err, usage.ErrDuplicate)

	found, err := entries.GetByDateAndMDN(ctx, date, "5551000")
	require.NoError(t, err)
	found.UsedInMB = 800
	require.NoError(t, entries.Update(ctx, found))
	assert.NoError(t, met())
}

func TestUsageRepository_ListInInsertionOrder(t *testing.T) {
	mock, met, _, _, entries := newMock(t)
	later := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM usage_entries WHERE subscriber_id = (.+) AND mdn = (.+) ORDER BY created_at, id").
		WithArgs("s1", "5551000").
		WillReturnRows(sqlmock.NewRows([]string{"id", "subscriber_id", "mdn", "usage_date", "used_in_mb"}).
			AddRow("e1", "s1", "5551000", later, 100).
			AddRow("e2", "s1", "5551000", earlier, 200))

	list, err := entries.ListBySubscriberAndMDN(context.Background(), "s1", "5551000")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "e1", list[0].ID, "rows come back as stored, not sorted by date")
	assert.Equal(t, "e2", list[1].ID)
	assert.NoError(t, met())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505", Constraint: "a"}, "a"))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23505", Constraint: "b"}, "a"))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503", Constraint: "a"}, "a"))
	assert.False(t, isUniqueViolation(errors.New("boom"), "a"))
}
