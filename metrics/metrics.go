package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the exchange's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "stylar_exchange",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stylar_exchange",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stylar_exchange",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	investments = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stylar_exchange",
			Subsystem: "economy",
			Name:      "investments_total",
			Help:      "Total number of investments recorded.",
		},
	)

	investedCoins = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stylar_exchange",
			Subsystem: "economy",
			Name:      "invested_coins_total",
			Help:      "StyleCoins moved into stylars.",
		},
	)

	votes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stylar_exchange",
			Subsystem: "battles",
			Name:      "votes_total",
			Help:      "Battle votes cast, by outcome.",
		},
		[]string{"result"},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stylar_exchange",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Background job runs.",
		},
		[]string{"job", "success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		investments,
		investedCoins,
		votes,
		jobRuns,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordInvestment(amount int64) {
	investments.Inc()
	investedCoins.Add(float64(amount))
}

// RecordVote counts a vote attempt; result is "accepted", "duplicate" or "rejected".
func RecordVote(result string) {
	votes.WithLabelValues(result).Inc()
}

func RecordJobRun(job string, ok bool) {
	success := "false"
	if ok {
		success = "true"
	}
	jobRuns.WithLabelValues(job, success).Inc()
}

// HTTP request instrumentation, called by the fiber middleware.
func RequestStarted() { httpInFlight.Inc() }

func RequestFinished(method, route, status string, seconds float64) {
	httpInFlight.Dec()
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(seconds)
}
