// Package pipeline orchestrates the generation run: exporter invocation,
// bundle loading, page assembly, and index writing, with per-module
// failure isolation.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/refgen/internal/config"
	"git.home.luguber.info/inful/refgen/internal/docmodel"
	rgerrors "git.home.luguber.info/inful/refgen/internal/errors"
	"git.home.luguber.info/inful/refgen/internal/exporter"
	"git.home.luguber.info/inful/refgen/internal/history"
	"git.home.luguber.info/inful/refgen/internal/logfields"
	"git.home.luguber.info/inful/refgen/internal/metrics"
	"git.home.luguber.info/inful/refgen/internal/retry"
	"git.home.luguber.info/inful/refgen/internal/rst"
)

// diagnosticLimit caps per-module failure diagnostics in logs.
const diagnosticLimit = 300

// Exporter produces the JSON bundle for one module. Satisfied by
// *exporter.Runner; tests inject stubs.
type Exporter interface {
	Export(ctx context.Context, moduleName, sourcePath, outPath string) error
}

// Generator runs the whole pipeline for a configuration.
type Generator struct {
	cfg      *config.Config
	exporter Exporter
	recorder metrics.Recorder
	history  *history.Store
}

// NewGenerator builds a Generator with the real exporter runner and no-op
// metrics.
func NewGenerator(cfg *config.Config) *Generator {
	policy := retry.NewPolicy(
		retry.NormalizeBackoffMode(cfg.Exporter.Backoff),
		0, 0,
		cfg.Exporter.MaxRetries,
	)
	return &Generator{
		cfg:      cfg,
		exporter: exporter.NewRunner(cfg.Exporter.Binary, cfg.Exporter.TimeoutDuration(), policy),
		recorder: metrics.NoopRecorder{},
	}
}

// WithExporter injects a custom exporter (for testing).
func (g *Generator) WithExporter(e Exporter) *Generator {
	g.exporter = e
	return g
}

// WithRecorder injects a metrics recorder.
func (g *Generator) WithRecorder(r metrics.Recorder) *Generator {
	if r != nil {
		g.recorder = r
	}
	return g
}

// WithHistory injects a run-history store.
func (g *Generator) WithHistory(h *history.Store) *Generator {
	g.history = h
	return g
}

// Run processes every configured module in order. Module failures are
// non-fatal: they are logged, recorded in the report, and the loop
// continues. The returned error is non-nil only for run-fatal conditions
// (output directories or the index page cannot be written).
func (g *Generator) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
	g.recorder.SetModulesConfigured(len(g.cfg.Modules))

	slog.Info("Starting generation run",
		logfields.RunID(report.RunID),
		slog.Int("modules", len(g.cfg.Modules)),
		logfields.Path(g.cfg.Output.Directory))

	for _, dir := range []string{g.cfg.Output.Directory, g.cfg.Output.CacheDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			slog.Error("Cannot create output directory",
				logfields.Stage(string(StagePrepareOutput)),
				logfields.Path(dir),
				logfields.Error(err))
			return report, rgerrors.OutputDirError(dir, err)
		}
	}

	for _, module := range g.cfg.Modules {
		start := time.Now()

		if err := ctx.Err(); err != nil {
			g.failModule(report, module.Name, StageExport, rgerrors.Wrap(err, rgerrors.CategoryRuntime, rgerrors.SeverityError, "run canceled"), start)
			continue
		}

		jsonPath := filepath.Join(g.cfg.Output.CacheDir, module.Name+".json")
		if err := g.exporter.Export(ctx, module.Name, module.Source, jsonPath); err != nil {
			g.failModule(report, module.Name, StageExport, err, start)
			continue
		}

		bundle, err := docmodel.Load(jsonPath)
		if err != nil {
			g.failModule(report, module.Name, StageLoadBundle, err, start)
			continue
		}
		g.reportBundleOddities(module.Name, bundle)

		page := rst.AssemblePage(module.Name, module.Title, bundle)
		pagePath := filepath.Join(g.cfg.Output.Directory, module.Name+"."+g.cfg.Output.Extension)
		if err := os.WriteFile(pagePath, []byte(page), 0o644); err != nil {
			g.failModule(report, module.Name, StageWritePage, rgerrors.PageWriteError(pagePath, err), start)
			continue
		}

		elapsed := time.Since(start)
		report.Generated = append(report.Generated, module.Name)
		g.recorder.ObserveModuleDuration(module.Name, elapsed, true)
		g.recorder.IncModuleOutcome(metrics.OutcomeSuccess)
		slog.Info("Generated module page",
			logfields.Module(module.Name),
			logfields.Path(pagePath),
			logfields.DurationMS(float64(elapsed.Milliseconds())))
	}

	indexPath := filepath.Join(g.cfg.Output.Directory, "index."+g.cfg.Output.Extension)
	if err := os.WriteFile(indexPath, []byte(rst.AssembleIndex(report.Generated)), 0o644); err != nil {
		return report, rgerrors.PageWriteError(indexPath, err)
	}
	slog.Info("Generated index page", logfields.Stage(string(StageIndex)), logfields.Path(indexPath), logfields.Count(len(report.Generated)))

	report.Duration = time.Since(report.Started)
	g.finishRun(ctx, report)
	return report, nil
}

// failModule records a module-scoped failure and keeps the run going.
func (g *Generator) failModule(report *RunReport, moduleName string, stage StageName, err error, start time.Time) {
	report.Failures = append(report.Failures, ModuleFailure{Module: moduleName, Err: err})
	g.recorder.ObserveModuleDuration(moduleName, time.Since(start), false)
	g.recorder.IncModuleOutcome(metrics.OutcomeFailed)
	slog.Error("Module generation failed",
		logfields.Module(moduleName),
		logfields.Stage(string(stage)),
		slog.String("diagnostic", exporter.Truncate(err.Error(), diagnosticLimit)))
}

// reportBundleOddities surfaces loader leniencies as warnings and stripped
// markup as debug detail.
func (g *Generator) reportBundleOddities(moduleName string, bundle *docmodel.DocBundle) {
	if bundle.DefaultedKinds > 0 {
		slog.Warn("Entries without a kind tag defaulted to skProc",
			logfields.Module(moduleName),
			logfields.Count(bundle.DefaultedKinds))
	}
	if unknown := bundle.UnknownKinds(); len(unknown) > 0 {
		kinds := make([]string, len(unknown))
		for i, k := range unknown {
			kinds[i] = string(k)
		}
		slog.Warn("Entries with unrecognized kinds will be skipped",
			logfields.Module(moduleName),
			slog.Any("kinds", kinds))
	}
	if tags := rst.UnknownTags(bundle.ModuleDescription); len(tags) > 0 {
		slog.Debug("Stripped unrecognized tags from module description",
			logfields.Module(moduleName),
			slog.Any("tags", tags))
	}
}

func (g *Generator) finishRun(ctx context.Context, report *RunReport) {
	g.recorder.ObserveRunDuration(report.Duration)
	outcome := metrics.OutcomeSuccess
	if !report.Success() {
		outcome = metrics.OutcomeFailed
	}
	g.recorder.IncRunOutcome(outcome)

	if g.history != nil {
		err := g.history.RecordRun(ctx, history.RunRecord{
			RunID:         report.RunID,
			Started:       report.Started,
			Duration:      report.Duration,
			Succeeded:     len(report.Generated),
			Failed:        len(report.Failures),
			FailedModules: report.FailedModules(),
		})
		if err != nil {
			slog.Warn("Failed to record run history", logfields.Error(err))
		}
	}

	if report.Success() {
		slog.Info("Generation run complete",
			logfields.RunID(report.RunID),
			logfields.Count(len(report.Generated)),
			logfields.DurationMS(float64(report.Duration.Milliseconds())))
	} else {
		slog.Error("Generation run finished with failures",
			logfields.RunID(report.RunID),
			slog.Any("failed_modules", report.FailedModules()),
			logfields.DurationMS(float64(report.Duration.Milliseconds())))
	}
}
