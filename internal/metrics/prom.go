package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "hktmcp_build_info",
			Help:        "Build information",
			ConstLabels: prometheus.Labels{"component": "mcp"},
		},
		[]string{"date", "sha", "version"},
	)

	runtimeCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hktmcp_runtime_calls_total",
			Help: "Runtime bridge calls by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	runtimeCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hktmcp_runtime_call_duration_seconds",
			Help:    "Runtime bridge call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	runtimePending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hktmcp_runtime_pending_calls",
			Help: "Calls awaiting a runtime response",
		},
	)

	runtimeReconnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hktmcp_runtime_reconnects_total",
			Help: "Automatic reconnect attempts by result",
		},
		[]string{"result"},
	)

	runtimeConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hktmcp_runtime_connected",
			Help: "1 while the runtime bridge connection is up",
		},
	)

	runtimeFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hktmcp_runtime_frames_total",
			Help: "Inbound runtime frames by kind",
		},
		[]string{"kind"},
	)

	editorCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hktmcp_editor_calls_total",
			Help: "Remote Control function calls by function and success",
		},
		[]string{"function", "success"},
	)
)

// Outcome labels for runtime calls.
const (
	OutcomeSuccess      = "success"
	OutcomeRemoteError  = "remote_error"
	OutcomeTimeout      = "timeout"
	OutcomeNotConnected = "not_connected"
	OutcomeCanceled     = "canceled"
)

// Register registers all metrics with the provided registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, runtimeCalls, runtimeCallDuration, runtimePending, runtimeReconnects, runtimeConnected, runtimeFrames, editorCalls)
}

// SetBuildInfo sets the build info metric.
func SetBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordRuntimeCall counts a finished runtime call and observes its latency.
func RecordRuntimeCall(method, outcome string, d time.Duration) {
	runtimeCalls.WithLabelValues(method, outcome).Inc()
	runtimeCallDuration.WithLabelValues(method).Observe(d.Seconds())
}

// SetPendingCalls records the size of the correlation table.
func SetPendingCalls(n int) {
	runtimePending.Set(float64(n))
}

// RecordReconnect counts an automatic reconnect attempt.
func RecordReconnect(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	runtimeReconnects.WithLabelValues(result).Inc()
}

// SetConnected flips the connection gauge.
func SetConnected(up bool) {
	if up {
		runtimeConnected.Set(1)
		return
	}
	runtimeConnected.Set(0)
}

// RecordFrame counts an inbound frame (result, error, notification, malformed, unmatched).
func RecordFrame(kind string) {
	runtimeFrames.WithLabelValues(kind).Inc()
}

// RecordEditorCall counts a Remote Control function call.
func RecordEditorCall(function string, success bool) {
	s := "true"
	if !success {
		s = "false"
	}
	editorCalls.WithLabelValues(function, s).Inc()
}
