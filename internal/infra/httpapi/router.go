// Package httpapi exposes the subscriber, cycle and usage operations over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"mobile_usage_tracker/internal/app"
	"mobile_usage_tracker/internal/domain/cycle"
	"mobile_usage_tracker/internal/domain/subscriber"
	"mobile_usage_tracker/internal/domain/usage"
	"mobile_usage_tracker/internal/infra/metrics"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type SubscriberService interface {
	Create(ctx context.Context, candidate *subscriber.Subscriber) (*subscriber.Subscriber, error)
	Update(ctx context.Context, id string, patch *subscriber.Subscriber) (*subscriber.Subscriber, error)
	Delete(ctx context.Context, id string) (*app.CascadeReport, error)
	TransferMDN(ctx context.Context, targetID, sourceID string) (*subscriber.Subscriber, *subscriber.Subscriber, error)
	GetByEmail(ctx context.Context, email string) (*subscriber.Subscriber, error)
	ListAll(ctx context.Context) ([]*subscriber.Subscriber, error)
}

type CycleService interface {
	AdmitCycle(ctx context.Context, candidate *cycle.Cycle) (*cycle.Cycle, error)
	ActiveCycle(ctx context.Context, subscriberID, mdn string) (*cycle.Cycle, error)
	History(ctx context.Context, subscriberID, mdn string) ([]*cycle.Cycle, error)
	ListAll(ctx context.Context) ([]*cycle.Cycle, error)
	DeleteCycle(ctx context.Context, id string) error
}

type UsageService interface {
	RecordUsage(ctx context.Context, candidate *usage.Entry) (*usage.Entry, error)
	History(ctx context.Context, subscriberID, mdn string) ([]*usage.Entry, error)
	UpdateAmount(ctx context.Context, usageDate time.Time, mdn string, amount int) (*usage.Entry, error)
	DeleteUsage(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*usage.Entry, error)
}

// HealthChecker is implemented by every store backend.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the router needs. Metrics and StaticDir may be empty.
type Deps struct {
	Subscribers SubscriberService
	Cycles      CycleService
	Usage       UsageService
	Health      HealthChecker
	Metrics     *metrics.Metrics
	StaticDir   string
	Logger      *logrus.Entry
}

// NewRouter wires every route: the JSON API under /api, the page views,
// /healthz and /metrics.
func NewRouter(d Deps) *mux.Router {
	logger := d.Logger.WithField("component", "http")
	router := mux.NewRouter()
	router.Use(requestMiddleware(logger, d.Metrics), recoverMiddleware(logger))

	h := &handlers{
		subscribers: d.Subscribers,
		cycles:      d.Cycles,
		usage:       d.Usage,
		health:      d.Health,
		metrics:     d.Metrics,
		logger:      logger,
	}
	h.RegisterRoutes(router.PathPrefix("/api").Subrouter())
	router.HandleFunc("/healthz", h.healthz).Methods("GET")

	if d.Metrics != nil {
		router.Handle("/metrics", d.Metrics.Handler()).Methods("GET")
	}
	if d.StaticDir != "" {
		registerViews(router, d.StaticDir)
	}
	return router
}

type handlers struct {
	subscribers SubscriberService
	cycles      CycleService
	usage       UsageService
	health      HealthChecker
	metrics     *metrics.Metrics
	logger      *logrus.Entry
}

// RegisterRoutes registers the JSON API routes on an /api subrouter.
func (h *handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/user", h.listSubscribers).Methods("GET")
	router.HandleFunc("/user/create", h.createSubscriber).Methods("POST")
	router.HandleFunc("/user/update/{userId}", h.updateSubscriber).Methods("POST", "PUT")
	router.HandleFunc("/user/delete/{userId}", h.deleteSubscriber).Methods("DELETE")
	router.HandleFunc("/user/search/{email}", h.searchSubscriber).Methods("GET")
	router.HandleFunc("/user/transfer/{targetId}/{sourceId}", h.transferMDN).Methods("POST")

	router.HandleFunc("/cycle/add", h.addCycle).Methods("POST")
	router.HandleFunc("/cycle/delete/{cycleId}", h.deleteCycle).Methods("DELETE")
	router.HandleFunc("/cycle/all", h.listCycles).Methods("GET")
	router.HandleFunc("/cycle/history/{userId}/{mdn}", h.cycleHistory).Methods("GET")
	router.HandleFunc("/cycle/active/{userId}/{mdn}", h.activeCycle).Methods("GET")

	router.HandleFunc("/daily-usage/add", h.addUsage).Methods("POST")
	router.HandleFunc("/daily-usage/delete/{usageId}", h.deleteUsage).Methods("DELETE")
	router.HandleFunc("/daily-usage/update/{mdn}/{usageDate}", h.updateUsage).Methods("PUT")
	router.HandleFunc("/daily-usage/all", h.listUsage).Methods("GET")
	router.HandleFunc("/daily-usage/history/{userId}/{mdn}", h.usageHistory).Methods("GET")
}

// healthz handles GET /healthz
func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			h.logger.WithError(err).Warn("Health check failed")
			writeErrorMessage(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
