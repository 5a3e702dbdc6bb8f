package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdrpinto/balance"
	"github.com/pdrpinto/balance/internal/config"
	"github.com/pdrpinto/balance/internal/ctxlog"
	"github.com/pdrpinto/balance/internal/display"
	"github.com/pdrpinto/balance/internal/manifest"
	"github.com/pdrpinto/balance/internal/metrics"
	"github.com/pdrpinto/balance/internal/plan"
)

var (
	// ErrManifestNotFound is returned when the manifest file does not exist.
	ErrManifestNotFound = errors.New("manifest not found")
	// ErrNoSolution wraps every search failure.
	ErrNoSolution = errors.New("failed to find solution")
)

// Summary is what a session produced.
type Summary struct {
	RunID     string
	Manifest  string
	Status    balance.Status
	Moves     []balance.Move
	TotalCost int
	Imbalance int
	Outbound  string
	PlanPath  string
}

// App encapsulates one session's configuration, outputs and collectors.
type App struct {
	cfg     config.Config
	out     io.Writer
	logger  *slog.Logger
	color   bool
	runID   string
	now     func() time.Time
	reg     *prometheus.Registry
	metrics *metrics.PrometheusCollector

	transcript *os.File
}

// Option customizes an App.
type Option func(*App)

// WithClock sets the clock used to stamp output files.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(a *App) { a.runID = id }
}

// New builds an App writing its transcript to outW and, when configured, to
// the transcript file. Call Close when done.
func New(cfg config.Config, outW io.Writer, opts ...Option) (*App, error) {
	a := &App{
		cfg:   cfg,
		out:   outW,
		runID: uuid.NewString(),
		now:   time.Now,
		reg:   prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.color = colorEnabled(cfg.Color, outW)

	if cfg.Transcript != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Transcript), 0o755); err != nil {
			return nil, fmt.Errorf("transcript: %w", err)
		}
		f, err := os.OpenFile(cfg.Transcript, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("transcript: %w", err)
		}
		a.transcript = f
		a.out = io.MultiWriter(outW, f)
		if cfg.Color == "auto" {
			a.color = false
		}
	}

	a.logger = newLogger(cfg.LogLevel, cfg.LogFormat, a.out).With("run_id", a.runID)
	a.metrics = metrics.NewPrometheus(a.reg, "")
	a.logger.Debug("session configured", "time_limit", cfg.Limit(), "color", a.color)
	return a, nil
}

// Close releases the transcript file.
func (a *App) Close() error {
	if a.transcript == nil {
		return nil
	}
	return a.transcript.Close()
}

// RunID returns the session's run id.
func (a *App) RunID() string { return a.runID }

// Resolve maps a bare file name into the dataset directory.
func (a *App) Resolve(name string) string {
	if filepath.Dir(name) == "." && !filepath.IsAbs(name) && a.cfg.DatasetDir != "" {
		return filepath.Join(a.cfg.DatasetDir, name)
	}
	return name
}

// Run balances the manifest named by name.
func (a *App) Run(ctx context.Context, name string) (Summary, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	log := ctxlog.FromContext(ctx)

	path := a.Resolve(name)
	sum := Summary{RunID: a.runID}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return sum, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
	}

	log.Info("program starts", "manifest", path)
	m, err := manifest.Load(path)
	if err != nil {
		return sum, err
	}
	sum.Manifest = m.Name
	log.Info("file open", "name", m.Name, "containers", m.Grid.Containers(), "skipped_lines", m.Skipped)

	p := balance.NewProblem(m.Grid, m.Blocked)
	p.Reference.Ratio = a.cfg.ToleranceRatio

	switch {
	case m.Grid.Containers() == 0:
		log.Info("ship is empty, already balanced")
		return a.unchanged(ctx, m, sum)
	case m.Grid.Containers() == 1:
		log.Info("ship has one container, already balanced")
		return a.unchanged(ctx, m, sum)
	case balance.IsBalanced(m.Grid, p.Reference):
		w := balance.WeightsOf(m.Grid)
		log.Info("ship is already balanced", "port", w.Port, "ship", w.Ship)
		return a.unchanged(ctx, m, sum)
	}

	res, err := balance.Search(ctx, p,
		balance.WithTimeLimit(a.cfg.Limit()),
		balance.WithProgressEvery(a.cfg.ProgressEvery),
		balance.WithLogger(log),
		balance.WithMetrics(a.metrics),
	)
	sum.Status = res.Status
	if err != nil {
		log.Error("failed to find solution", "status", res.Status, "examined", res.Examined, "error", err)
		if merr := a.writeMetrics(); merr != nil {
			log.Warn("metrics file not written", "error", merr)
		}
		return sum, fmt.Errorf("%w: %w", ErrNoSolution, err)
	}
	if res.Status == balance.StatusFallback {
		log.Warn("plan does not fully balance the ship", "imbalance", res.Imbalance)
	}

	for i, mv := range res.Moves {
		log.Info(fmt.Sprintf("Move %d: %s -> %s", i+1, mv.From, mv.To), "cost", mv.Cost, "weight", mv.Weight, "label", mv.Label)
	}
	log.Info("finished a cycle", "total_cost", res.TotalCost)
	fmt.Fprint(a.out, display.Render(res.Final, m.Blocked, "Balanced grid", display.Options{Color: a.color}))

	sum, err = a.finish(ctx, m, res, sum)
	if err != nil {
		return sum, err
	}
	log.Info("program ends", "total_cost", res.TotalCost, "elapsed", res.Elapsed)
	return sum, nil
}

// unchanged writes the inbound grid back out with an empty plan.
func (a *App) unchanged(ctx context.Context, m *manifest.Manifest, sum Summary) (Summary, error) {
	w := balance.WeightsOf(m.Grid)
	res := balance.Result{
		Status:    balance.StatusBalanced,
		Final:     m.Grid,
		Weights:   w,
		Imbalance: w.Imbalance(),
	}
	a.metrics.RecordOutcome(string(res.Status), 0)
	sum.Status = res.Status

	sum, err := a.finish(ctx, m, res, sum)
	if err != nil {
		return sum, err
	}
	ctxlog.FromContext(ctx).Info("program ends", "total_cost", 0)
	return sum, nil
}

// finish writes the outbound manifest, the plan and the metrics file.
func (a *App) finish(ctx context.Context, m *manifest.Manifest, res balance.Result, sum Summary) (Summary, error) {
	log := ctxlog.FromContext(ctx)
	sum.Moves = res.Moves
	sum.TotalCost = res.TotalCost
	sum.Imbalance = res.Imbalance

	now := a.now()
	out, err := m.Save(a.cfg.OutputDir, res.Final, now)
	if err != nil {
		return sum, fmt.Errorf("write outbound manifest: %w", err)
	}
	sum.Outbound = out
	log.Info("file was written to output directory", "path", out)

	if a.cfg.PlanOut != "" {
		if err := plan.Write(a.cfg.PlanOut, plan.New(a.runID, m.Name, res, now)); err != nil {
			return sum, fmt.Errorf("write plan: %w", err)
		}
		sum.PlanPath = a.cfg.PlanOut
		log.Info("plan exported", "path", a.cfg.PlanOut, "moves", len(res.Moves))
	}

	if err := a.writeMetrics(); err != nil {
		return sum, fmt.Errorf("write metrics: %w", err)
	}
	return sum, nil
}

func (a *App) writeMetrics() error {
	if a.cfg.MetricsFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(a.cfg.MetricsFile), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(a.cfg.MetricsFile, a.reg)
}
