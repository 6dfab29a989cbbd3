package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"statbasket/domain/stats"
)

// Metrics holds the API's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	tests    *prometheus.CounterVec
	samples  prometheus.Histogram
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statbasket_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "statbasket_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		tests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statbasket_hypothesis_tests_total",
			Help: "Hypothesis tests by test kind and decision",
		}, []string{"test", "decision"}),
		samples: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "statbasket_sample_size",
			Help:    "Number of observations per submitted sample",
			Buckets: prometheus.ExponentialBuckets(2, 4, 10),
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.tests,
		m.samples,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Instrument records request counts and latency labelled by chi route pattern.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveTest counts a completed hypothesis test.
func (m *Metrics) ObserveTest(outcome *stats.HypothesisOutcome) {
	decision := "fail_to_reject"
	if outcome.RejectNull {
		decision = "reject"
	}
	m.tests.WithLabelValues(string(outcome.Test), decision).Inc()
}

// ObserveSamples records the sizes of the non-empty samples in a request.
func (m *Metrics) ObserveSamples(samples ...stats.Sample) {
	for _, s := range samples {
		if len(s) > 0 {
			m.samples.Observe(float64(len(s)))
		}
	}
}
