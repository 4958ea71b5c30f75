package status

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hktproto/hktmcp/internal/metrics"
	"github.com/hktproto/hktmcp/internal/notify"
	"github.com/hktproto/hktmcp/internal/runtimebridge"
)

type fakeProbe struct{ up bool }

func (f fakeProbe) BaseURL() string           { return "http://127.0.0.1:30010" }
func (f fakeProbe) Ping(context.Context) bool { return f.up }

func newReporter() *Reporter {
	return &Reporter{
		Version: "test",
		Started: time.Now(),
		Bridge:  runtimebridge.New(runtimebridge.Options{URL: "ws://127.0.0.1:1"}),
		Editor:  fakeProbe{up: true},
		Hub:     notify.NewHub(5),
	}
}

func TestHealthz(t *testing.T) {
	ts := httptest.NewServer(NewRouter(Options{}))
	defer ts.Close()
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("got %d %q", resp.StatusCode, body)
	}
}

func TestStatusDocument(t *testing.T) {
	rep := newReporter()
	defer rep.Hub.Close(context.Background())
	rep.Hub.Publish(notify.Event{Method: "level_loaded"})

	ts := httptest.NewServer(NewRouter(Options{Reporter: rep}))
	defer ts.Close()
	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var doc Report
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.Runtime.State != "disconnected" || doc.Runtime.URL != "ws://127.0.0.1:1" {
		t.Fatalf("runtime %+v", doc.Runtime)
	}
	if doc.Editor == nil || !doc.Editor.Reachable {
		t.Fatalf("editor %+v", doc.Editor)
	}
	if doc.Notifications == nil || doc.Notifications.Total != 1 {
		t.Fatalf("notifications %+v", doc.Notifications)
	}
	if doc.Version != "test" {
		t.Fatalf("version %q", doc.Version)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.Register(reg)
	metrics.SetBuildInfo("test", "abc", "today")

	ts := httptest.NewServer(NewRouter(Options{Gatherer: reg}))
	defer ts.Close()
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "hktmcp_build_info") {
		t.Fatalf("metrics body missing build info")
	}
}

func TestMetricsAbsentWithoutGatherer(t *testing.T) {
	ts := httptest.NewServer(NewRouter(Options{}))
	defer ts.Close()
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := httptest.NewServer(NewRouter(Options{AllowedOrigins: []string{"http://localhost:3000"}}))
	defer ts.Close()
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/status", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow origin %q", got)
	}
}

func TestServeUntilContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	addr, err := ServeUntilContext(ctx, "127.0.0.1:0", NewRouter(Options{}))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := http.Get("http://" + addr + "/healthz"); err != nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server still answering after cancel")
}
