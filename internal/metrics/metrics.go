// Package metrics exposes Prometheus collectors for the screener and the notifier.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UnmatchedRoute labels requests that matched no route, so unknown paths share one series
const UnmatchedRoute = "unmatched"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "screener",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screener",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "screener",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "path"},
	)

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screener",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream market-data requests by outcome (success, retry, failure).",
		},
		[]string{"outcome"},
	)

	pipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screener",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Screening pipeline invocations by scenario and result (cache_hit, computed, error).",
		},
		[]string{"scenario", "result"},
	)

	pipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "screener",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Duration of computed (non-cached) pipeline runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"scenario"},
	)

	candidatesReturned = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "screener",
			Subsystem: "pipeline",
			Name:      "candidates",
			Help:      "Number of candidates in the latest computed result.",
		},
		[]string{"scenario"},
	)

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screener",
			Subsystem: "notifier",
			Name:      "messages_total",
			Help:      "Alert messages delivered by the notifier.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		upstreamRequests,
		pipelineRuns,
		pipelineDuration,
		candidatesReturned,
		notificationsSent,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records HTTP metrics labelled by the matched route template.
// Register it with Router.Use and wrap the router's NotFound and MethodNotAllowed
// handlers with it; requests outside any route are labelled UnmatchedRoute.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := routeLabel(r)
		if path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordUpstream counts one upstream request outcome.
func RecordUpstream(outcome string) {
	upstreamRequests.WithLabelValues(outcome).Inc()
}

// RecordPipelineRun records a pipeline invocation. Duration is only observed for computed runs.
func RecordPipelineRun(scenario, result string, duration time.Duration) {
	pipelineRuns.WithLabelValues(scenario, result).Inc()
	if result == "computed" {
		pipelineDuration.WithLabelValues(scenario).Observe(duration.Seconds())
	}
}

// SetCandidates publishes the size of the latest computed result for a scenario.
func SetCandidates(scenario string, n int) {
	candidatesReturned.WithLabelValues(scenario).Set(float64(n))
}

// RecordNotification counts a delivered or failed alert message.
func RecordNotification(success bool) {
	result := "failed"
	if success {
		result = "sent"
	}
	notificationsSent.WithLabelValues(result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// routeLabel returns the route template (/api/analysis/{symbol}), never the raw URL path
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return UnmatchedRoute
}
