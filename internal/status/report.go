// Package status serves health, status and metrics endpoints next to the
// stdio MCP server.
package status

import (
	"context"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/hktproto/hktmcp/internal/notify"
	"github.com/hktproto/hktmcp/internal/runtimebridge"
)

const editorProbeTimeout = 2 * time.Second

// EditorProbe checks whether the editor answers.
type EditorProbe interface {
	BaseURL() string
	Ping(ctx context.Context) bool
}

// Reporter assembles status documents from the live components.
type Reporter struct {
	Version string
	Started time.Time
	Bridge  *runtimebridge.Bridge
	Editor  EditorProbe
	Hub     *notify.Hub
}

// EditorStatus reports whether the Remote Control endpoint answers.
type EditorStatus struct {
	URL       string `json:"url"`
	Reachable bool   `json:"reachable"`
}

// ProcessStatus holds resource usage of this process.
type ProcessStatus struct {
	PID        int     `json:"pid"`
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	Threads    int32   `json:"threads"`
}

// Report is the document served at /status and as unreal://server/status.
type Report struct {
	Version       string                      `json:"version"`
	Uptime        string                      `json:"uptime"`
	Runtime       runtimebridge.Status        `json:"runtime"`
	PendingCalls  []runtimebridge.PendingInfo `json:"pending_calls"`
	Editor        *EditorStatus               `json:"editor,omitempty"`
	Notifications *notify.Stats               `json:"notifications,omitempty"`
	Process       *ProcessStatus              `json:"process,omitempty"`
}

// Report gathers the current state. The editor probe is bounded by a short timeout.
func (r *Reporter) Report(ctx context.Context) Report {
	rep := Report{
		Version:      r.Version,
		Uptime:       time.Since(r.Started).Truncate(time.Second).String(),
		PendingCalls: []runtimebridge.PendingInfo{},
	}
	if r.Bridge != nil {
		rep.Runtime = r.Bridge.Status()
		rep.PendingCalls = r.Bridge.Pending().Snapshot()
	}
	if r.Editor != nil {
		pctx, cancel := context.WithTimeout(ctx, editorProbeTimeout)
		rep.Editor = &EditorStatus{URL: r.Editor.BaseURL(), Reachable: r.Editor.Ping(pctx)}
		cancel()
	}
	if r.Hub != nil {
		st := r.Hub.Stats()
		rep.Notifications = &st
	}
	rep.Process = processStatus(ctx)
	return rep
}

func processStatus(ctx context.Context) *ProcessStatus {
	pid := os.Getpid()
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return nil
	}
	ps := &ProcessStatus{PID: pid}
	if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		ps.RSSBytes = mem.RSS
	}
	if cpu, err := p.CPUPercentWithContext(ctx); err == nil {
		ps.CPUPercent = cpu
	}
	if n, err := p.NumThreadsWithContext(ctx); err == nil {
		ps.Threads = n
	}
	return ps
}
