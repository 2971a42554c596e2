package telegram

import (
	"context"
	"errors"

	"mobile_usage_tracker/internal/app"
	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/subscriber"
	"mobile_usage_tracker/internal/domain/usage"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// OperatorQueries are the read-only lookups the operator bot exposes.
type OperatorQueries struct {
	Subscribers interface {
		GetByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error)
	}
	Cycles interface {
		History(ctx context.Context, subscriberID, mdn string) ([]*cycle.Cycle, error)
		ActiveCycle(ctx context.Context, subscriberID, mdn string) (*cycle.Cycle, error)
	}
	Usage interface {
		History(ctx context.Context, subscriberID, mdn string) ([]*usage.Entry, error)
	}
	Stats interface {
		Snapshot(ctx context.Context) (app.Stats, error)
	}
}

const (
	msgUnauthorized = "You are not allowed to use this bot."
	msgFailure      = "Lookup failed, please try again later."
	helpText        = "Commands:\n" +
		"/subscriber <email> - show a subscriber\n" +
		"/cycles <userId> <mdn> - list billing cycles\n" +
		"/usage <userId> <mdn> - usage in the active cycle\n" +
		"/stats - record counts"
)

type operatorHandlers struct {
	queries    OperatorQueries
	operatorID int64
	logger     *logrus.Entry
}

// RegisterOperatorHandlers registers the operator commands. Every command
// except /start answers only the configured operator.
func RegisterOperatorHandlers(ctx context.Context, b *telebot.Bot, queries OperatorQueries, operatorID int64, baseLogger *logrus.Entry) {
	h := &operatorHandlers{
		queries:    queries,
		operatorID: operatorID,
		logger:     baseLogger.WithField("handler_group", "operator"),
	}

	commands := map[string]func(ctx context.Context, args []string) string{
		"/help":       func(context.Context, []string) string { return helpText },
		"/subscriber": h.subscriberReply,
		"/cycles":     h.cyclesReply,
		"/usage":      h.usageReply,
		"/stats":      h.statsReply,
	}

	b.Handle("/start", func(c telebot.Context) error {
		if c.Sender().ID != operatorID {
			return c.Send(msgUnauthorized)
		}
		return c.Send("Hello " + c.Sender().FirstName + ". " + helpText)
	})

	for command, reply := range commands {
		command, reply := command, reply
		b.Handle(command, func(c telebot.Context) error {
			handlerLogger := h.logger.WithFields(logrus.Fields{
				"handler":   command,
				"sender_id": c.Sender().ID,
			})
			handlerLogger.Info("Command received")

			if !h.authorized(c.Sender().ID) {
				handlerLogger.Warn("Unauthorized access attempt")
				return c.Send(msgUnauthorized)
			}
			return c.Send(reply(ctx, c.Args()))
		})
	}
}

func (h *operatorHandlers) authorized(senderID int64) bool {
	return senderID == h.operatorID
}

func (h *operatorHandlers) subscriberReply(ctx context.Context, args []string) string {
	if len(args) != 1 {
		return "Usage: /subscriber <email>"
	}
	found, err := h.queries.Subscribers.GetByEmail(ctx, args[0])
	if err != nil {
		return h.failureText(err, "/subscriber")
	}
	return FormatSubscriber(found)
}

func (h *operatorHandlers) cyclesReply(ctx context.Context, args []string) string {
	if len(args) != 2 {
		return "Usage: /cycles <userId> <mdn>"
	}
	cycles, err := h.queries.Cycles.History(ctx, args[0], args[1])
	if err != nil {
		return h.failureText(err, "/cycles")
	}
	active, err := h.queries.Cycles.ActiveCycle(ctx, args[0], args[1])
	if err != nil && !errors.Is(err, app.ErrNoActiveCycle) {
		return h.failureText(err, "/cycles")
	}
	return FormatCycles(cycles, active)
}

func (h *operatorHandlers) usageReply(ctx context.Context, args []string) string {
	if len(args) != 2 {
		return "Usage: /usage <userId> <mdn>"
	}
	active, err := h.queries.Cycles.ActiveCycle(ctx, args[0], args[1])
	if err != nil {
		return h.failureText(err, "/usage")
	}
	entries, err := h.queries.Usage.History(ctx, args[0], args[1])
	if err != nil {
		return h.failureText(err, "/usage")
	}
	return FormatUsage(entries, active.StartDate, active.EndDate)
}

func (h *operatorHandlers) statsReply(ctx context.Context, _ []string) string {
	st, err := h.queries.Stats.Snapshot(ctx)
	if err != nil {
		return h.failureText(err, "/stats")
	}
	return FormatStats(st)
}

// failureText shows business errors to the operator and hides store failures.
func (h *operatorHandlers) failureText(err error, command string) string {
	if errors.Is(err, app.ErrNotFound) || errors.Is(err, app.ErrConflict) || errors.Is(err, app.ErrInvalidInput) {
		return err.Error()
	}
	h.logger.WithError(err).WithField("handler", command).Error("Operator lookup failed")
	return msgFailure
}
