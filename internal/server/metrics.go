package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type httpMetrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	appraisals *prometheus.CounterVec
	aiCalls    *prometheus.CounterVec
}

func newHTTPMetrics(registry *prometheus.Registry) *httpMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &httpMetrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appraisal",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "appraisal",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		appraisals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appraisal",
			Name:      "appraisals_total",
			Help:      "Appraisals served, split by whether the result came from the cache.",
		}, []string{"cached"}),
		aiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appraisal",
			Name:      "ai_requests_total",
			Help:      "AI extraction and analysis calls by outcome.",
		}, []string{"operation", "outcome"}),
	}
	registry.MustRegister(m.requests, m.duration, m.appraisals, m.aiCalls)
	return m
}

func (m *httpMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *httpMetrics) observe(route, method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *httpMetrics) appraisal(cached bool) {
	m.appraisals.WithLabelValues(strconv.FormatBool(cached)).Inc()
}

func (m *httpMetrics) ai(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.aiCalls.WithLabelValues(operation, outcome).Inc()
}
