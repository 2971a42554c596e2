package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"

	"mobile_usage_tracker/internal/app"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	st  app.Stats
	err error
}

func (f fakeStats) Snapshot(context.Context) (app.Stats, error) { return f.st, f.err }

type fakeSink struct {
	calls int
	last  app.Stats
}

func (f *fakeSink) SetRecordCounts(st app.Stats) {
	f.calls++
	f.last = st
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeNotifier struct {
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) SendMessage(recipientChatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{recipientChatID, text})
	return nil
}

func quietEntry() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestRefreshMetrics(t *testing.T) {
	sink := &fakeSink{}
	s := NewUsageScheduler(fakeStats{st: app.Stats{Subscribers: 2}}, sink, nil, 0, quietEntry(), "@every 1m", "0 9 * * *")

	s.refreshMetrics()
	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, 2, sink.last.Subscribers)

	s.stats = fakeStats{err: errors.New("store down")}
	s.refreshMetrics()
	assert.Equal(t, 1, sink.calls, "a failed snapshot must not reset the gauges")
}

func TestSendDigest(t *testing.T) {
	notifier := &fakeNotifier{}
	s := NewUsageScheduler(fakeStats{st: app.Stats{Subscribers: 1, Cycles: 2}}, &fakeSink{}, notifier, 42, quietEntry(), "@every 1m", "0 9 * * *")

	s.sendDigest()
	require.Len(t, notifier.sent, 1)
	assert.EqualValues(t, 42, notifier.sent[0].chatID)
	assert.Contains(t, notifier.sent[0].text, "Daily digest\n")
	assert.Contains(t, notifier.sent[0].text, "Cycles: 2")

	notifier.err = errors.New("blocked by user")
	assert.NotPanics(t, s.sendDigest)
}

func TestStart(t *testing.T) {
	sink := &fakeSink{}
	s := NewUsageScheduler(fakeStats{}, sink, nil, 0, quietEntry(), "@every 1m", "0 9 * * *")
	require.NoError(t, s.Start())
	assert.Len(t, s.cronEngine.Entries(), 1, "digest job needs a notifier")
	assert.Equal(t, 1, sink.calls, "gauges are filled before the first tick")
	s.Stop()

	withDigest := NewUsageScheduler(fakeStats{}, &fakeSink{}, &fakeNotifier{}, 1, quietEntry(), "@every 1m", "0 9 * * *")
	require.NoError(t, withDigest.Start())
	assert.Len(t, withDigest.cronEngine.Entries(), 2)
	withDigest.Stop()

	bad := NewUsageScheduler(fakeStats{}, &fakeSink{}, nil, 0, quietEntry(), "not a spec", "0 9 * * *")
	assert.Error(t, bad.Start())
}
