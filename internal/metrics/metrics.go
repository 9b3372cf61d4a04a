package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supersoniq_runs_total",
		Help: "Transcription runs by outcome",
	}, []string{"outcome"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "supersoniq_run_duration_seconds",
		Help:    "End-to-end duration of successful runs",
		Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1800},
	})

	activeRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "supersoniq_active_runs",
		Help: "Runs currently in progress (0 or 1)",
	})

	vendorRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supersoniq_vendor_requests_total",
		Help: "Vendor HTTP calls by provider, operation and status class",
	}, []string{"provider", "op", "status"})

	vendorLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "supersoniq_vendor_latency_seconds",
		Help:    "Vendor HTTP call latency",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"provider", "op"})

	pollChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supersoniq_poll_checks_total",
		Help: "Transcription status checks by reported status",
	}, []string{"status"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supersoniq_errors_total",
		Help: "Failed runs by error source and kind",
	}, []string{"source", "kind"})
)

// RecordRunStart marks a run as active.
func RecordRunStart() {
	activeRuns.Inc()
}

// RecordRunEnd records the outcome of a run started with RecordRunStart.
func RecordRunEnd(outcome string, d time.Duration) {
	activeRuns.Dec()
	runsTotal.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		runDuration.Observe(d.Seconds())
	}
}

// RecordRejectedRun counts a run refused before it started.
func RecordRejectedRun() {
	runsTotal.WithLabelValues("rejected").Inc()
}

// RecordVendorCall records one HTTP exchange with a vendor. status is the
// HTTP status, or 0 for a transport failure.
func RecordVendorCall(provider, op string, status int, d time.Duration) {
	vendorRequests.WithLabelValues(provider, op, statusClass(status)).Inc()
	vendorLatency.WithLabelValues(provider, op).Observe(d.Seconds())
}

func RecordPollCheck(status string) {
	pollChecks.WithLabelValues(status).Inc()
}

func RecordError(source, kind string) {
	if source == "" {
		source = "none"
	}
	errorsTotal.WithLabelValues(source, kind).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func statusClass(status int) string {
	switch {
	case status == 0:
		return "network_error"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
