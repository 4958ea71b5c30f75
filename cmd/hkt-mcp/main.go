package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hktproto/hktmcp/internal/config"
	"github.com/hktproto/hktmcp/internal/logx"
)

var (
	version   = "dev"
	buildSHA  = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "hkt-mcp version=%s sha=%s date=%s\n\n", version, buildSHA, buildDate)
		flag.PrintDefaults()
	}
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if *showVersion {
		fmt.Printf("hkt-mcp version=%s sha=%s date=%s\n", version, buildSHA, buildDate)
		return
	}
	if err != nil {
		logx.Log.Fatal().Err(err).Msg("load config")
	}
	logx.Configure(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		logx.Log.Fatal().Err(err).Msg("init")
	}
	if _, err := a.startStatus(ctx); err != nil {
		logx.Log.Fatal().Err(err).Str("addr", cfg.StatusAddr).Msg("status server")
	}

	logx.Log.Info().
		Str("version", version).
		Str("editor", cfg.EditorURL()).
		Str("runtime", cfg.WebSocketURL()).
		Msg("hkt-mcp starting on stdio")
	serveErr := server.NewStdioServer(a.mcp).Listen(ctx, os.Stdin, os.Stdout)

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	a.close(shutdown)
	cancel()
	if serveErr != nil && ctx.Err() == nil {
		logx.Log.Error().Err(serveErr).Msg("stdio server stopped")
		os.Exit(1)
	}
	logx.Log.Info().Msg("hkt-mcp stopped")
}
