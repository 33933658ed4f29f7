// Package metrics exposes the Prometheus collectors of the application.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "financeiro"

// Command results
const (
	ResultOK         = "ok"
	ResultInvalid    = "invalid"
	ResultSaveFailed = "save_failed"
	ResultNotFound   = "not_found"
)

// Metrics owns a private registry so tests and multiple binaries never clash
// on the global one.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	commands      *prometheus.CounterVec
	reports       prometheus.Counter
	reportPages   prometheus.Histogram
	mirrors       *prometheus.CounterVec
	activeSession prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_commands_total",
			Help:      "Ledger commands by name and result.",
		}, []string{"command", "result"}),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_rendered_total",
			Help:      "PDF reports rendered.",
		}),
		reportPages: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_pages",
			Help:      "Pages per rendered report.",
			Buckets:   []float64{1, 2, 3, 5, 10, 20},
		}),
		mirrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheet_mirrors_total",
			Help:      "Ledger mirrors written to Google Sheets by result.",
		}, []string{"result"}),
		activeSession: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_cached",
			Help:      "Sessions currently held in the session cache.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.commands,
		m.reports,
		m.reportPages,
		m.mirrors,
		m.activeSession,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Command records the outcome of a ledger command.
func (m *Metrics) Command(name, result string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(name, result).Inc()
}

// ReportRendered records a rendered report and its page count.
func (m *Metrics) ReportRendered(pages int) {
	if m == nil {
		return
	}
	m.reports.Inc()
	m.reportPages.Observe(float64(pages))
}

// Mirror records the outcome of a Sheets mirror.
func (m *Metrics) Mirror(result string) {
	if m == nil {
		return
	}
	m.mirrors.WithLabelValues(result).Inc()
}

// SessionsCached sets the session cache size.
func (m *Metrics) SessionsCached(n int) {
	if m == nil {
		return
	}
	m.activeSession.Set(float64(n))
}
