package telegram

import (
	"testing"
	"time"

	"mobile_usage_tracker/internal/app"
	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/subscriber"
	"mobile_usage_tracker/internal/domain/usage"

	"github.com/stretchr/testify/assert"
)

func date(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFormatStats(t *testing.T) {
	text := FormatStats(app.Stats{Subscribers: 3, SubscribersWithoutMDN: 1, Cycles: 4, UsageEntries: 2, UsageTotalMB: 350})
	assert.Equal(t, "Subscribers: 3 (1 without a number)\nCycles: 4\nUsage entries: 2, total 350 MB", text)
}

func TestFormatSubscriber(t *testing.T) {
	text := FormatSubscriber(&subscriber.Subscriber{ID: "u1", Email: "a@example.com", FirstName: "Ann", LastName: "Lee", MDN: "5551000"})
	assert.Equal(t, "Ann Lee\nID: u1\nEmail: a@example.com\nNumber: 5551000", text)

	bare := FormatSubscriber(&subscriber.Subscriber{ID: "u2", Email: "b@example.com"})
	assert.Contains(t, bare, "(no name)")
	assert.Contains(t, bare, "Number: (none)")
}

func TestFormatCycles(t *testing.T) {
	assert.Equal(t, "No cycles.", FormatCycles(nil, nil))

	jan := &cycle.Cycle{ID: "c1", StartDate: date(1, 1), EndDate: date(1, 31)}
	feb := &cycle.Cycle{ID: "c2", StartDate: date(2, 1), EndDate: date(2, 29)}
	assert.Equal(t, "2024-01-01 .. 2024-01-31\n2024-02-01 .. 2024-02-29 (active)", FormatCycles([]*cycle.Cycle{jan, feb}, feb))
}

func TestFormatUsage(t *testing.T) {
	entries := []*usage.Entry{
		{UsageDate: date(1, 2), UsedInMB: 100},
		{UsageDate: date(1, 3), UsedInMB: 250},
	}
	assert.Equal(t,
		"Usage 2024-01-01 .. 2024-01-31\n2024-01-02: 100 MB\n2024-01-03: 250 MB\nTotal: 350 MB",
		FormatUsage(entries, date(1, 1), date(1, 31)))

	assert.Equal(t, "Usage 2024-01-01 .. 2024-01-31\nTotal: 0 MB", FormatUsage(nil, date(1, 1), date(1, 31)))
}
