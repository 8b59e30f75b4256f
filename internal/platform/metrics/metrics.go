package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "laisee"

// Metrics holds the collectors for the API process on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	gatewayCalls   *prometheus.CounterVec
	gatewayLatency *prometheus.HistogramVec
	submissions    *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	recordsServed  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "calls_total",
			Help:      "Calls to the spreadsheet endpoint by operation and outcome.",
		}, []string{"op", "outcome"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sheet",
			Name:      "call_duration_seconds",
			Help:      "Latency of spreadsheet endpoint calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"op"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Survey submission attempts by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		recordsServed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_last_fetch",
			Help:      "Number of survey records returned by the last successful fetch.",
		}),
	}
	m.registry.MustRegister(
		m.gatewayCalls,
		m.gatewayLatency,
		m.submissions,
		m.httpRequests,
		m.recordsServed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveFetch records one read of the sheet.
func (m *Metrics) ObserveFetch(outcome string, elapsed time.Duration) {
	m.gatewayCalls.WithLabelValues("fetch", outcome).Inc()
	m.gatewayLatency.WithLabelValues("fetch").Observe(elapsed.Seconds())
}

// ObserveSubmit records one write to the sheet.
func (m *Metrics) ObserveSubmit(outcome string, elapsed time.Duration) {
	m.gatewayCalls.WithLabelValues("submit", outcome).Inc()
	m.gatewayLatency.WithLabelValues("submit").Observe(elapsed.Seconds())
}

// CountSubmission records the outcome of a submission attempt at the API edge.
func (m *Metrics) CountSubmission(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

// CountRequest records one served HTTP request.
func (m *Metrics) CountRequest(method, route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

// SetRecords records the size of the latest record set.
func (m *Metrics) SetRecords(n int) {
	m.recordsServed.Set(float64(n))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
