package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/mcp-pdf-figures/internal/config"
	"github.com/a3tai/mcp-pdf-figures/internal/document"
	"github.com/a3tai/mcp-pdf-figures/internal/mcp"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// newLogger builds the process logger. Logs always go to stderr so stdio
// mode keeps stdout for the MCP protocol.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsDebug() {
		opts.AddSource = true
	}
	return slog.New(slog.NewTextHandler(w, opts)).With("service", cfg.ServerName)
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)
	logger.Debug("starting", "config", cfg.String())

	svc, err := document.NewService(document.Options{
		Directory:     cfg.Directory,
		MaxFileSize:   cfg.MaxFileSize,
		ContextWindow: cfg.ContextWindow,
		Workers:       cfg.Workers,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("failed to create document service", "error", err)
		os.Exit(1)
	}

	server, err := mcp.NewServer(cfg, svc)
	if err != nil {
		logger.Error("failed to create MCP server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := server.Run(ctx); err != nil {
		logger.Error("server stopped with error", "mode", cfg.Mode, "error", err)
		stop()
		os.Exit(1)
	}

	if cfg.IsServerMode() {
		logger.Info("server stopped successfully")
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP PDF Figures\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
