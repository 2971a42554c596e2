package subscriber

// Subscriber represents a mobile-line account holder.
type Subscriber struct {
	ID        string
	MDN       string // Blank while the subscriber awaits a number
	FirstName string
	LastName  string
	Email     string // Unique across all subscribers, compared case-sensitively
	Password  string
}

// HasMDN reports whether a phone number is currently assigned.
func (s *Subscriber) HasMDN() bool {
	return s.MDN != ""
}
