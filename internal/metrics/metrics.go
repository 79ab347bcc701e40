// Package metrics exposes Prometheus collectors for chat turns and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emsi-platform/studyhub/internal/apperr"
)

const namespace = "studyhub"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry   *prometheus.Registry
	turns      *prometheus.CounterVec
	extraction *prometheus.HistogramVec
	completion prometheus.Histogram
	requests   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "Chat turns by route (generic, document) and outcome.",
		}, []string{"route", "outcome"}),
		extraction: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Document text extraction latency.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"format", "outcome"}),
		completion: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Language model completion latency.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route template and status.",
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		m.turns, m.extraction, m.completion, m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.KindOf(err).String()
}

func (m *Metrics) ObserveTurn(route string, err error) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(route, outcome(err)).Inc()
}

func (m *Metrics) ObserveExtraction(format string, d time.Duration, err error) {
	if m == nil {
		return
	}
	o := "ok"
	if err != nil {
		o = "error"
	}
	m.extraction.WithLabelValues(format, o).Observe(d.Seconds())
}

func (m *Metrics) ObserveCompletion(d time.Duration) {
	if m == nil {
		return
	}
	m.completion.Observe(d.Seconds())
}

func (m *Metrics) ObserveRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
