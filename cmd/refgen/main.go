package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/refgen/internal/config"
	"git.home.luguber.info/inful/refgen/internal/history"
	"git.home.luguber.info/inful/refgen/internal/logfields"
	"git.home.luguber.info/inful/refgen/internal/metrics"
	"git.home.luguber.info/inful/refgen/internal/pipeline"
	"git.home.luguber.info/inful/refgen/internal/watch"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"refgen.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Generate struct{} `cmd:"" default:"1" help:"Generate RST reference pages for all configured modules"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Watch struct {
		Every         time.Duration `help:"Also rebuild on this interval (e.g. 10m)"`
		MetricsListen string        `help:"Serve Prometheus metrics on this address (overrides config)"`
	} `cmd:"" help:"Regenerate pages whenever module sources change"`

	History struct {
		Limit int `default:"10" help:"Number of runs to show"`
	} `cmd:"" help:"Show recent generation runs"`
}

func main() {
	ctx := kong.Parse(&CLI)

	switch ctx.Command() {
	case "generate":
		os.Exit(runGenerate())
	case "init":
		setupLogging(config.LogLevelInfo, config.LogFormatText)
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", logfields.Error(err))
			os.Exit(1)
		}
		slog.Info("Wrote example configuration", logfields.Path(CLI.Config))
	case "watch":
		os.Exit(runWatch())
	case "history":
		os.Exit(runHistory())
	}
}

// loadConfig loads the configuration and applies the logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		setupLogging(config.LogLevelInfo, config.LogFormatText)
		return nil, err
	}
	level := config.NormalizeLogLevel(cfg.Logging.Level)
	if CLI.Verbose {
		level = config.LogLevelDebug
	}
	setupLogging(level, config.NormalizeLogFormat(cfg.Logging.Format))
	return cfg, nil
}

func setupLogging(level config.LogLevel, format config.LogFormat) {
	opts := &slog.HandlerOptions{Level: level.SlogLevel()}
	var handler slog.Handler
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func runGenerate() int {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", logfields.Error(err))
		return 1
	}

	generator := pipeline.NewGenerator(cfg)
	if store := openHistory(cfg); store != nil {
		defer store.Close()
		generator.WithHistory(store)
	}

	report, err := generator.Run(context.Background())
	if err != nil {
		slog.Error("Generation run aborted", logfields.Error(err))
		return 1
	}
	if !report.Success() {
		fmt.Fprintf(os.Stderr, "Failed modules: %s\n", strings.Join(report.FailedModules(), ", "))
	}
	return report.ExitCode()
}

func runWatch() int {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", logfields.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	generator := pipeline.NewGenerator(cfg)
	if store := openHistory(cfg); store != nil {
		defer store.Close()
		generator.WithHistory(store)
	}

	listen := CLI.Watch.MetricsListen
	if listen == "" {
		listen = cfg.Metrics.Listen
	}
	var registry *prom.Registry
	if listen != "" {
		registry = prom.NewRegistry()
		generator.WithRecorder(metrics.NewPrometheusRecorder(registry))
	}

	watcher, err := watch.New(cfg, generator, watch.Options{
		Interval:      CLI.Watch.Every,
		MetricsListen: listen,
		Registry:      registry,
	})
	if err != nil {
		slog.Error("Failed to start watcher", logfields.Error(err))
		return 1
	}
	if err := watcher.Start(ctx); err != nil {
		slog.Error("Watcher stopped", logfields.Error(err))
		return 1
	}
	return 0
}

func runHistory() int {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", logfields.Error(err))
		return 1
	}
	if cfg.History.Path == "" {
		fmt.Fprintln(os.Stderr, "History is not configured (set history.path in the configuration)")
		return 1
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		slog.Error("Failed to open history store", logfields.Error(err))
		return 1
	}
	defer store.Close()

	runs, err := store.RecentRuns(context.Background(), CLI.History.Limit)
	if err != nil {
		slog.Error("Failed to query history", logfields.Error(err))
		return 1
	}
	for _, run := range runs {
		status := "ok"
		if run.Failed > 0 {
			status = "failed: " + strings.Join(run.FailedModules, ", ")
		}
		fmt.Printf("%s  %s  %d generated  %v  %s\n",
			run.Started.Format(time.RFC3339), run.RunID, run.Succeeded, run.Duration.Round(time.Millisecond), status)
	}
	return 0
}

// openHistory opens the run-history store when configured; history failures
// never block generation.
func openHistory(cfg *config.Config) *history.Store {
	if cfg.History.Path == "" {
		return nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		slog.Warn("Run history disabled", logfields.Error(err))
		return nil
	}
	return store
}
