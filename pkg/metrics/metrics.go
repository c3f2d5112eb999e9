package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "greencoin"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	reportTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "transitions_total",
			Help:      "Report lifecycle transitions, including creation.",
		},
		[]string{"from", "to"},
	)

	coinsMoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "coins",
			Name:      "moved_total",
			Help:      "Absolute coin amounts written to the ledger.",
		},
		[]string{"type"},
	)

	notificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "failures_total",
			Help:      "Post-commit notifications that could not be delivered.",
		},
		[]string{"sink"},
	)

	ledgerDrift = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "drifted_users",
			Help:      "Users whose balance differs from their ledger total at the last reconciliation.",
		},
	)

	reconcileRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "reconcile_runs_total",
			Help:      "Ledger reconciliation runs.",
		},
		[]string{"success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		reportTransitions,
		coinsMoved,
		notificationFailures,
		ledgerDrift,
		reconcileRuns,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted tracks an in-flight request; call the returned func when done.
func RequestStarted() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// RecordHTTPRequest records one finished request.
func RecordHTTPRequest(method, route, status string, seconds float64) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordTransition counts a report moving between statuses. Creation uses an
// empty from.
func RecordTransition(from, to string) {
	if from == "" {
		from = "NONE"
	}
	reportTransitions.WithLabelValues(from, to).Inc()
}

// RecordCoins counts coins written to the ledger for a transaction type.
func RecordCoins(txType string, amount int64) {
	if amount < 0 {
		amount = -amount
	}
	coinsMoved.WithLabelValues(txType).Add(float64(amount))
}

// RecordNotificationFailure counts an undelivered notification.
func RecordNotificationFailure(sink string) {
	notificationFailures.WithLabelValues(sink).Inc()
}

// RecordReconcile stores the outcome of a reconciliation run.
func RecordReconcile(drifted int, err error) {
	if err != nil {
		reconcileRuns.WithLabelValues("false").Inc()
		return
	}
	reconcileRuns.WithLabelValues("true").Inc()
	ledgerDrift.Set(float64(drifted))
}
