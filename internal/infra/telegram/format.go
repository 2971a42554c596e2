package telegram

import (
	"fmt"
	"strings"
	"time"

	"mobile_usage_tracker/internal/app"
	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/subscriber"
	"mobile_usage_tracker/internal/domain/usage"
)

const dateLayout = "2006-01-02"

// FormatStats renders a store snapshot as a short multi-line message.
func FormatStats(st app.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subscribers: %d (%d without a number)\n", st.Subscribers, st.SubscribersWithoutMDN)
	fmt.Fprintf(&b, "Cycles: %d\n", st.Cycles)
	fmt.Fprintf(&b, "Usage entries: %d, total %d MB", st.UsageEntries, st.UsageTotalMB)
	return b.String()
}

func FormatSubscriber(s *subscriber.Subscriber) string {
	mdn := s.MDN
	if !s.HasMDN() {
		mdn = "(none)"
	}
	name := strings.TrimSpace(s.FirstName + " " + s.LastName)
	if name == "" {
		name = "(no name)"
	}
	return fmt.Sprintf("%s\nID: %s\nEmail: %s\nNumber: %s", name, s.ID, s.Email, mdn)
}

// FormatCycles lists cycles one per line and marks the active one.
func FormatCycles(cycles []*cycle.Cycle, active *cycle.Cycle) string {
	if len(cycles) == 0 {
		return "No cycles."
	}
	var b strings.Builder
	for i, c := range cycles {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s .. %s", c.StartDate.Format(dateLayout), c.EndDate.Format(dateLayout))
		if active != nil && c.ID == active.ID {
			b.WriteString(" (active)")
		}
	}
	return b.String()
}

// FormatUsage lists entries one per line followed by the window total.
func FormatUsage(entries []*usage.Entry, from, to time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage %s .. %s", from.Format(dateLayout), to.Format(dateLayout))
	var total int64
	for _, e := range entries {
		fmt.Fprintf(&b, "\n%s: %d MB", e.UsageDate.Format(dateLayout), e.UsedInMB)
		total += int64(e.UsedInMB)
	}
	fmt.Fprintf(&b, "\nTotal: %d MB", total)
	return b.String()
}
