package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "onboard", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "onboard", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	SessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "onboard", Name: "session_events_total", Help: "Session lifecycle events."},
		[]string{"event"}, // event: created|completed|abandoned
	)
	StepValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "onboard", Name: "step_validations_total", Help: "Step submissions by outcome."},
		[]string{"step", "outcome"}, // outcome: accepted|rejected
	)
	ImageAnalyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "onboard", Name: "image_analyses_total", Help: "Image quality analyses."},
		[]string{"outcome"}, // outcome: ok|failed
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "onboard", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"},
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, SessionEvents, StepValidations, ImageAnalyses, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveSession(event string) { SessionEvents.WithLabelValues(event).Inc() }

func ObserveValidation(step, outcome string) { StepValidations.WithLabelValues(step, outcome).Inc() }

func ObserveAnalysis(outcome string) { ImageAnalyses.WithLabelValues(outcome).Inc() }

func ObserveCache(cache, event string) { CacheEvents.WithLabelValues(cache, event).Inc() }
