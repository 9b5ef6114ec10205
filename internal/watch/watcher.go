// Package watch regenerates documentation when module sources change, and
// optionally on a fixed interval.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/refgen/internal/config"
	"git.home.luguber.info/inful/refgen/internal/logfields"
	"git.home.luguber.info/inful/refgen/internal/metrics"
	"git.home.luguber.info/inful/refgen/internal/pipeline"
)

// Options tune the watcher.
type Options struct {
	Debounce      time.Duration // coalesces rapid file changes; defaults to 2s
	Interval      time.Duration // optional periodic rebuild; zero disables
	MetricsListen string        // optional promhttp address; empty disables
	Registry      *prom.Registry
}

// Watcher rebuilds pages when watched sources change. Rebuilds serialize
// through a mutex; there is never more than one run in flight.
type Watcher struct {
	cfg       *config.Config
	generator *pipeline.Generator
	watcher   *fsnotify.Watcher
	opts      Options
	rebuildMu sync.Mutex
}

// New creates a Watcher over the configured module source directories.
func New(cfg *config.Config, generator *pipeline.Generator, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = 2 * time.Second
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{cfg: cfg, generator: generator, watcher: fsw, opts: opts}

	// Watch directories rather than files; editors replace files on save.
	for _, dir := range WatchDirs(cfg) {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to watch source directory %s: %w", dir, err)
		}
	}
	return w, nil
}

// WatchDirs returns the distinct directories holding configured module
// sources, in first-seen order.
func WatchDirs(cfg *config.Config) []string {
	var dirs []string
	seen := make(map[string]bool)
	for _, m := range cfg.Modules {
		dir := filepath.Dir(m.Source)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// IsRelevant reports whether a filesystem event should trigger a rebuild:
// writes, creates, renames and removals of Nim sources.
func IsRelevant(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".nim") {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Rename) || event.Op.Has(fsnotify.Remove)
}

// Start runs an initial generation, then blocks rebuilding on changes until
// ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.watcher.Close()

	if w.opts.MetricsListen != "" {
		w.serveMetrics(ctx)
	}

	var scheduler gocron.Scheduler
	if w.opts.Interval > 0 {
		var err error
		scheduler, err = gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		if _, err := scheduler.NewJob(
			gocron.DurationJob(w.opts.Interval),
			gocron.NewTask(func() { w.rebuild(ctx, "interval") }),
			gocron.WithName("interval-rebuild"),
		); err != nil {
			return fmt.Errorf("failed to schedule interval rebuild: %w", err)
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				slog.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	slog.Info("Watching for source changes",
		slog.Any("dirs", WatchDirs(w.cfg)),
		slog.Duration("debounce", w.opts.Debounce))

	w.rebuild(ctx, "initial")

	var debounce *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !IsRelevant(event) {
				continue
			}
			slog.Debug("Source change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if debounce == nil {
				debounce = time.NewTimer(w.opts.Debounce)
				debounceC = debounce.C
			} else {
				debounce.Reset(w.opts.Debounce)
			}
		case <-debounceC:
			debounce = nil
			debounceC = nil
			w.rebuild(ctx, "change")
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context, trigger string) {
	w.rebuildMu.Lock()
	defer w.rebuildMu.Unlock()

	slog.Info("Rebuilding documentation", slog.String("trigger", trigger))
	report, err := w.generator.Run(ctx)
	if err != nil {
		slog.Error("Rebuild aborted", logfields.Error(err))
		return
	}
	if !report.Success() {
		slog.Warn("Rebuild finished with failures", slog.Any("failed_modules", report.FailedModules()))
	}
}

func (w *Watcher) serveMetrics(ctx context.Context) {
	reg := w.opts.Registry
	if reg == nil {
		reg = prom.NewRegistry()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	server := &http.Server{Addr: w.opts.MetricsListen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		slog.Info("Serving metrics", slog.String("addr", w.opts.MetricsListen))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Warn("Metrics server stopped", logfields.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
