package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPromMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)
	SetBuildInfo("1.0.0", "abc", "2026-01-01")
	RecordRuntimeCall("metrics_test", OutcomeSuccess, 100*time.Millisecond)
	RecordRuntimeCall("metrics_test", OutcomeTimeout, time.Second)
	SetPendingCalls(3)
	RecordReconnect(false)
	SetConnected(true)
	RecordFrame("metrics_test")
	RecordEditorCall("McpMetricsTest", true)

	if v := testutil.ToFloat64(runtimeCalls.WithLabelValues("metrics_test", OutcomeSuccess)); v != 1 {
		t.Fatalf("runtime calls: %v", v)
	}
	if v := testutil.ToFloat64(runtimeCalls.WithLabelValues("metrics_test", OutcomeTimeout)); v != 1 {
		t.Fatalf("runtime timeouts: %v", v)
	}
	if v := testutil.ToFloat64(runtimePending); v != 3 {
		t.Fatalf("pending: %v", v)
	}
	if v := testutil.ToFloat64(runtimeConnected); v != 1 {
		t.Fatalf("connected: %v", v)
	}
	if v := testutil.ToFloat64(runtimeFrames.WithLabelValues("metrics_test")); v != 1 {
		t.Fatalf("frames: %v", v)
	}
	if v := testutil.ToFloat64(editorCalls.WithLabelValues("McpMetricsTest", "true")); v != 1 {
		t.Fatalf("editor calls: %v", v)
	}
	if v := testutil.ToFloat64(buildInfo.WithLabelValues("2026-01-01", "abc", "1.0.0")); v != 1 {
		t.Fatalf("build info: %v", v)
	}
	if n := testutil.CollectAndCount(runtimeCallDuration, "hktmcp_runtime_call_duration_seconds"); n != 1 {
		t.Fatalf("duration series: %d", n)
	}
}
