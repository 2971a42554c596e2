// Package metrics exposes Prometheus metrics for the HTTP API and the record store.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"mobile_usage_tracker/internal/app"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Record kinds used as the "kind" label of the records gauge.
const (
	KindSubscribers           = "subscribers"
	KindSubscribersWithoutMDN = "subscribers_without_mdn"
	KindCycles                = "cycles"
	KindUsageEntries          = "usage_entries"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	RejectionsTotal *prometheus.CounterVec
	RecordsTotal    *prometheus.GaugeVec
	UsageTotalMB    prometheus.Gauge
	LastRefresh     prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "usage_tracker_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "usage_tracker_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "usage_tracker_rejections_total",
				Help: "Operations rejected by a business rule",
			},
			[]string{"operation", "category"},
		),
		RecordsTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "usage_tracker_records",
				Help: "Stored records by kind, as of the last refresh",
			},
			[]string{"kind"},
		),
		UsageTotalMB: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "usage_tracker_usage_total_mb",
			Help: "Sum of recorded daily usage in megabytes",
		}),
		LastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "usage_tracker_records_refreshed_timestamp_seconds",
			Help: "Unix time of the last record count refresh",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RejectionsTotal,
		m.RecordsTotal,
		m.UsageTotalMB,
		m.LastRefresh,
	)
	return m
}

// NewDefault returns metrics on a fresh registry that also carries Go runtime
// and process collectors.
func NewDefault() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewMetrics(registry)
}

// ObserveHTTPRequest records one served request. path should be the route
// template, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordRejection(operation, category string) {
	m.RejectionsTotal.WithLabelValues(operation, category).Inc()
}

// SetRecordCounts publishes a store snapshot.
func (m *Metrics) SetRecordCounts(st app.Stats) {
	m.RecordsTotal.WithLabelValues(KindSubscribers).Set(float64(st.Subscribers))
	m.RecordsTotal.WithLabelValues(KindSubscribersWithoutMDN).Set(float64(st.SubscribersWithoutMDN))
	m.RecordsTotal.WithLabelValues(KindCycles).Set(float64(st.Cycles))
	m.RecordsTotal.WithLabelValues(KindUsageEntries).Set(float64(st.UsageEntries))
	m.UsageTotalMB.Set(float64(st.UsageTotalMB))
	m.LastRefresh.SetToCurrentTime()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
