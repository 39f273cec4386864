package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides observability for the capsule API.
// Each Metrics owns its registry so servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP requests by route, method and status
	Requests *prometheus.CounterVec

	// HTTP request latency by route and method
	RequestDuration *prometheus.HistogramVec

	// Capsules created by type
	CapsulesCreated *prometheus.CounterVec

	// View outcomes: revealed, locked, location_mismatch
	Views *prometheus.CounterVec

	// Mint outcomes: minted, authority_mismatch, already_minted, ledger_error
	Mints *prometheus.CounterVec

	// Ledger call latency
	LedgerDuration prometheus.Histogram
}

// NewMetrics creates a Metrics instance with all API metrics registered.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memoreal_http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "memoreal_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and method",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method"}),

		CapsulesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memoreal_capsules_created_total",
			Help: "Total capsules created by type",
		}, []string{"type"}),

		Views: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memoreal_capsule_views_total",
			Help: "Total capsule view attempts by outcome",
		}, []string{"outcome"}),

		Mints: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "memoreal_capsule_mints_total",
			Help: "Total capsule mint attempts by outcome",
		}, []string{"outcome"}),

		LedgerDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "memoreal_ledger_mint_duration_seconds",
			Help:    "Duration of ledger mint calls",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.Requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// IncrementCreated records a created capsule.
func (m *Metrics) IncrementCreated(capsuleType string) {
	if m != nil {
		m.CapsulesCreated.WithLabelValues(capsuleType).Inc()
	}
}

// IncrementView records a view outcome.
func (m *Metrics) IncrementView(outcome string) {
	if m != nil {
		m.Views.WithLabelValues(outcome).Inc()
	}
}

// IncrementMint records a mint outcome.
func (m *Metrics) IncrementMint(outcome string) {
	if m != nil {
		m.Mints.WithLabelValues(outcome).Inc()
	}
}

// ObserveLedgerLatency records the duration of a ledger mint call.
func (m *Metrics) ObserveLedgerLatency(d time.Duration) {
	if m != nil {
		m.LedgerDuration.Observe(d.Seconds())
	}
}
