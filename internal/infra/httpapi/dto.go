package httpapi

import (
	"fmt"
	"time"

	"mobile_usage_tracker/internal/app"
	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/subscriber"
	"mobile_usage_tracker/internal/domain/usage"
)

type subscriberRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	MDN       string `json:"mdn"`
}

func (req subscriberRequest) validate() error {
	if req.Email == "" {
		return fmt.Errorf("email is required")
	}
	return nil
}

func (req subscriberRequest) toDomain() *subscriber.Subscriber {
	return &subscriber.Subscriber{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		MDN:       req.MDN,
	}
}

// subscriberResponse never carries the password.
type subscriberResponse struct {
	ID        string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	MDN       string `json:"mdn"`
}

func toSubscriberResponse(s *subscriber.Subscriber) subscriberResponse {
	return subscriberResponse{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		MDN:       s.MDN,
	}
}

func toSubscriberResponses(subs []*subscriber.Subscriber) []subscriberResponse {
	out := make([]subscriberResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, toSubscriberResponse(s))
	}
	return out
}

type transferResponse struct {
	Target subscriberResponse `json:"target"`
	Source subscriberResponse `json:"source"`
}

type deleteSubscriberResponse struct {
	Report *app.CascadeReport `json:"report"`
	Error  string             `json:"error,omitempty"`
}

type cycleRequest struct {
	UserID    string `json:"userId"`
	MDN       string `json:"mdn"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (req cycleRequest) toDomain() (*cycle.Cycle, error) {
	start, err := parseInstant("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseInstant("endDate", req.EndDate)
	if err != nil {
		return nil, err
	}
	return &cycle.Cycle{
		SubscriberID: req.UserID,
		MDN:          req.MDN,
		StartDate:    start,
		EndDate:      end,
	}, nil
}

type cycleResponse struct {
	ID        string    `json:"cycleId"`
	UserID    string    `json:"userId"`
	MDN       string    `json:"mdn"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

func toCycleResponse(c *cycle.Cycle) cycleResponse {
	return cycleResponse{
		ID:        c.ID,
		UserID:    c.SubscriberID,
		MDN:       c.MDN,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
	}
}

func toCycleResponses(cycles []*cycle.Cycle) []cycleResponse {
	out := make([]cycleResponse, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, toCycleResponse(c))
	}
	return out
}

type usageRequest struct {
	UserID    string `json:"userId"`
	MDN       string `json:"mdn"`
	UsageDate string `json:"usageDate"`
	UsedInMB  int    `json:"usedInMb"`
}

func (req usageRequest) toDomain() (*usage.Entry, error) {
	date, err := parseInstant("usageDate", req.UsageDate)
	if err != nil {
		return nil, err
	}
	return &usage.Entry{
		SubscriberID: req.UserID,
		MDN:          req.MDN,
		UsageDate:    date,
		UsedInMB:     req.UsedInMB,
	}, nil
}

type amountRequest struct {
	UsedInMB *int `json:"usedInMb"`
}

type usageResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	MDN       string    `json:"mdn"`
	UsageDate time.Time `json:"usageDate"`
	UsedInMB  int       `json:"usedInMb"`
}

func toUsageResponse(e *usage.Entry) usageResponse {
	return usageResponse{
		ID:        e.ID,
		UserID:    e.SubscriberID,
		MDN:       e.MDN,
		UsageDate: e.UsageDate,
		UsedInMB:  e.UsedInMB,
	}
}

func toUsageResponses(entries []*usage.Entry) []usageResponse {
	out := make([]usageResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toUsageResponse(e))
	}
	return out
}

// parseInstant accepts a calendar date or an RFC 3339 timestamp. Dates are
// read as midnight UTC.
func parseInstant(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD or RFC 3339", field)
	}
	return t.UTC(), nil
}
