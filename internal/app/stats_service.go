package app

import (
	"context"
	"fmt"

	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/subscriber"
	"mobile_usage_tracker/internal/domain/usage"
)

// Stats is a point-in-time count of stored records.
type Stats struct {
	Subscribers           int
	SubscribersWithoutMDN int
	Cycles                int
	UsageEntries          int
	UsageTotalMB          int64
}

// StatsService summarizes the store for metrics and the operator digest.
type StatsService struct {
	subscribers subscriber.Repository
	cycles      cycle.Repository
	entries     usage.Repository
}

func NewStatsService(sr subscriber.Repository, cr cycle.Repository, ur usage.Repository) *StatsService {
	return &StatsService{subscribers: sr, cycles: cr, entries: ur}
}

func (s *StatsService) Snapshot(ctx context.Context) (Stats, error) {
	var st Stats

	subs, err := s.subscribers.ListAll(ctx)
	if err != nil {
		return st, fmt.Errorf("failed to count subscribers: %w", err)
	}
	st.Subscribers = len(subs)
	for _, sub := range subs {
		if !sub.HasMDN() {
			st.SubscribersWithoutMDN++
		}
	}

	cycles, err := s.cycles.ListAll(ctx)
	if err != nil {
		return st, fmt.Errorf("failed to count cycles: %w", err)
	}
	st.Cycles = len(cycles)

	entries, err := s.entries.ListAll(ctx)
	if err != nil {
		return st, fmt.Errorf("failed to count usage entries: %w", err)
	}
	st.UsageEntries = len(entries)
	for _, e := range entries {
		st.UsageTotalMB += int64(e.UsedInMB)
	}
	return st, nil
}
