package scheduler

import (
	"context"
	"fmt"
	"time"

	"mobile_usage_tracker/internal/app"
	"mobile_usage_tracker/internal/domain/telegram"
	tgfmt "mobile_usage_tracker/internal/infra/telegram"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StatsSource produces a store snapshot.
type StatsSource interface {
	Snapshot(ctx context.Context) (app.Stats, error)
}

// StatsSink receives snapshots for publication, e.g. as gauges.
type StatsSink interface {
	SetRecordCounts(st app.Stats)
}

const (
	refreshTimeout = 30 * time.Second
	digestTimeout  = 1 * time.Minute
)

type UsageScheduler struct {
	cronEngine      *cron.Cron
	stats           StatsSource
	sink            StatsSink
	notifier        telegram.Client // nil disables the digest job
	operatorChatID  int64
	logger          *logrus.Entry
	cronSpecMetrics string
	cronSpecDigest  string
}

func NewUsageScheduler(
	stats StatsSource,
	sink StatsSink,
	notifier telegram.Client,
	operatorChatID int64,
	logger *logrus.Entry,
	cronSpecMetrics string, // e.g., "@every 1m"
	cronSpecDigest string, // e.g., "0 9 * * *" (9 AM daily)
) *UsageScheduler {
	return &UsageScheduler{
		cronEngine:      cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		stats:           stats,
		sink:            sink,
		notifier:        notifier,
		operatorChatID:  operatorChatID,
		logger:          logger.WithField("component", "scheduler"),
		cronSpecMetrics: cronSpecMetrics,
		cronSpecDigest:  cronSpecDigest,
	}
}

// Start registers the jobs and starts the cron engine. The metrics gauges are
// refreshed once immediately so /metrics is populated before the first tick.
func (s *UsageScheduler) Start() error {
	s.logger.Info("Starting scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecMetrics, s.refreshMetrics); err != nil {
		return fmt.Errorf("could not add metrics refresh job: %w", err)
	}

	if s.notifier != nil {
		if _, err := s.cronEngine.AddFunc(s.cronSpecDigest, s.sendDigest); err != nil {
			return fmt.Errorf("could not add digest job: %w", err)
		}
	} else {
		s.logger.Info("No notifier configured, digest job disabled")
	}

	s.refreshMetrics()
	s.cronEngine.Start()
	s.logger.WithField("jobs", len(s.cronEngine.Entries())).Info("Scheduler started with jobs.")
	return nil
}

func (s *UsageScheduler) refreshMetrics() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	st, err := s.stats.Snapshot(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to refresh record metrics")
		return
	}
	s.sink.SetRecordCounts(st)
	s.logger.WithFields(logrus.Fields{
		"subscribers":   st.Subscribers,
		"cycles":        st.Cycles,
		"usage_entries": st.UsageEntries,
	}).Debug("Record metrics refreshed")
}

func (s *UsageScheduler) sendDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()

	st, err := s.stats.Snapshot(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to build daily digest")
		return
	}

	text := "Daily digest\n" + tgfmt.FormatStats(st)
	if err := s.notifier.SendMessage(s.operatorChatID, text); err != nil {
		s.logger.WithError(err).WithField("chat_id", s.operatorChatID).Error("Failed to send daily digest")
		return
	}
	s.logger.Info("Daily digest sent")
}

func (s *UsageScheduler) Stop() {
	s.logger.Info("Stopping scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Scheduler gracefully stopped.")
}
