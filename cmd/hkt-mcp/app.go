package main

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hktproto/hktmcp/internal/config"
	"github.com/hktproto/hktmcp/internal/editor"
	"github.com/hktproto/hktmcp/internal/game"
	"github.com/hktproto/hktmcp/internal/logx"
	"github.com/hktproto/hktmcp/internal/metrics"
	"github.com/hktproto/hktmcp/internal/notify"
	"github.com/hktproto/hktmcp/internal/remotecontrol"
	"github.com/hktproto/hktmcp/internal/runtimebridge"
	"github.com/hktproto/hktmcp/internal/status"
	"github.com/hktproto/hktmcp/internal/tools"
)

// app owns every long-lived component for one process.
type app struct {
	cfg      config.BridgeConfig
	rc       *remotecontrol.Client
	bridge   *runtimebridge.Bridge
	hub      *notify.Hub
	registry *prometheus.Registry
	reporter *status.Reporter
	mcp      *server.MCPServer
}

func newApp(ctx context.Context, cfg config.BridgeConfig) (*app, error) {
	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}
	metrics.Register(a.registry)
	metrics.SetBuildInfo(version, buildSHA, buildDate)

	var sinks []notify.Sink
	if cfg.RedisAddr != "" {
		sink, err := notify.NewRedisSink(ctx, cfg.RedisAddr, cfg.NotifyChannel, notify.DefaultCapacity)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	a.hub = notify.NewHub(notify.DefaultCapacity, sinks...)

	a.rc = remotecontrol.New(cfg.EditorURL(), nil)
	a.bridge = runtimebridge.New(runtimebridge.OptionsFromConfig(cfg))
	a.bridge.SetNotificationHandler(func(n runtimebridge.Notification) {
		a.hub.Publish(notify.Event{Method: n.Method, Params: n.Params, Raw: n.Raw, Received: n.Received})
	})

	a.reporter = &status.Reporter{
		Version: version,
		Started: time.Now(),
		Bridge:  a.bridge,
		Editor:  a.rc,
		Hub:     a.hub,
	}
	a.mcp = tools.NewServer(tools.Deps{
		Editor:        editor.New(a.rc, cfg.ProjectName, cfg.ProjectPath),
		Game:          game.New(a.bridge),
		Runtime:       a.bridge,
		Notifications: a.hub,
		Status:        func(ctx context.Context) any { return a.reporter.Report(ctx) },
	}, version)
	return a, nil
}

// startStatus serves the status router when an address is configured.
func (a *app) startStatus(ctx context.Context) (string, error) {
	if a.cfg.StatusAddr == "" {
		return "", nil
	}
	h := status.NewRouter(status.Options{
		Reporter:       a.reporter,
		Gatherer:       a.registry,
		AllowedOrigins: a.cfg.AllowedOrigins,
		MCP:            a.mcp,
	})
	addr, err := status.ServeUntilContext(ctx, a.cfg.StatusAddr, h)
	if err != nil {
		return "", err
	}
	logx.Log.Info().Str("addr", addr).Msg("status server listening")
	return addr, nil
}

// close disconnects the runtime and flushes notification sinks.
func (a *app) close(ctx context.Context) {
	if err := a.bridge.Disconnect(ctx); err != nil {
		logx.Log.Debug().Err(err).Msg("runtime disconnect")
	}
	if err := a.hub.Close(ctx); err != nil {
		logx.Log.Warn().Err(err).Msg("close notification sinks")
	}
}
