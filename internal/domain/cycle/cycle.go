package cycle

import "time"

// Cycle is a billing period for one subscriber and phone number.
// Both boundaries are inclusive.
type Cycle struct {
	ID           string
	SubscriberID string // Foreign key to subscribers
	MDN          string // Snapshot of the subscriber's number at creation time
	StartDate    time.Time
	EndDate      time.Time
}

// Contains reports whether t lies within [StartDate, EndDate].
func (c *Cycle) Contains(t time.Time) bool {
	return !t.Before(c.StartDate) && !t.After(c.EndDate)
}
