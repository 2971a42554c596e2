package usage

import "time"

// Entry is the data consumed by one phone number on one day.
type Entry struct {
	ID           string
	SubscriberID string // Foreign key to subscribers
	MDN          string
	UsageDate    time.Time
	UsedInMB     int
}
