package balance

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTimeLimit is the wall-clock budget of a search.
const DefaultTimeLimit = 180 * time.Second

// DefaultProgressEvery is how many examined nodes pass between progress reports.
const DefaultProgressEvery = 100

// Problem is the input of a search. Grid and Blocked are treated as read-only.
type Problem struct {
	Grid      Grid
	Blocked   Blocked
	Reference Reference
}

// NewProblem uses the current weights of grid as the reference.
func NewProblem(grid Grid, blocked Blocked) Problem {
	return Problem{Grid: grid, Blocked: blocked, Reference: NewReference(WeightsOf(grid))}
}

// Status tells how a search ended.
type Status string

const (
	StatusBalanced         Status = "balanced"
	StatusFallback         Status = "fallback"
	StatusDeadlineExceeded Status = "deadline_exceeded"
	StatusExhausted        Status = "exhausted"
)

// Result contains the outcome of a search.
type Result struct {
	Status    Status
	Moves     []Move
	TotalCost int
	Final     Grid
	Weights   Weights
	Imbalance int

	Examined  int
	Expanded  int
	Generated int
	Pruned    int
	Elapsed   time.Duration
}

// Progress is the periodic status handed to the progress callback.
type Progress struct {
	Examined  int
	Imbalance int
	Moves     int
	Open      int
	Closed    int
}

// Options defines parameters for the search.
type Options struct {
	TimeLimit     time.Duration
	ProgressEvery int
	Logger        *slog.Logger
	Metrics       MetricsCollector
	OnProgress    func(Progress)
	Clock         func() time.Time
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithTimeLimit sets the wall-clock budget.
func WithTimeLimit(d time.Duration) Option {
	return func(o *Options) { o.TimeLimit = d }
}

// WithProgressEvery sets how many examined nodes pass between progress reports.
func WithProgressEvery(n int) Option {
	return func(o *Options) { o.ProgressEvery = n }
}

// WithLogger sets the logger for progress and outcome messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithProgress registers a callback invoked at every progress report.
func WithProgress(fn func(Progress)) Option {
	return func(o *Options) { o.OnProgress = fn }
}

// WithClock replaces time.Now for deadline accounting.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Clock = now }
}

func buildOptions(options []Option) Options {
	o := Options{
		TimeLimit:     DefaultTimeLimit,
		ProgressEvery: DefaultProgressEvery,
	}
	for _, option := range options {
		option(&o)
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = DefaultProgressEvery
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Metrics == nil {
		o.Metrics = nopMetrics{}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Search runs a best-first search for a move sequence that balances
// p.Grid within p.Reference's tolerance.
//
// When the budget runs out (or ctx is done) the lowest-imbalance move
// sequence seen so far is returned with StatusFallback. Without one, Search
// returns ErrDeadlineExceeded; when no state is left to examine it returns
// ErrExhausted. The returned Result carries search statistics in every case.
func Search(ctx context.Context, p Problem, options ...Option) (Result, error) {
	opts := buildOptions(options)
	if err := p.Grid.Validate(p.Blocked); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidProblem, err)
	}

	start := opts.Clock()
	if IsBalanced(p.Grid, p.Reference) {
		opts.Logger.Info("grid already balanced", "imbalance", WeightsOf(p.Grid).Imbalance())
		res := newResult(StatusBalanced, &node{grid: p.Grid.Clone()})
		opts.Metrics.RecordOutcome(string(res.Status), 0)
		return res, nil
	}

	e := newEngine(p, opts)
	for {
		elapsed := opts.Clock().Sub(start)
		if elapsed > opts.TimeLimit || ctx.Err() != nil {
			opts.Logger.Warn("time limit reached", "elapsed", elapsed, "examined", e.examined)
			if fb := e.fallback(); fb != nil {
				opts.Logger.Info("returning best solution so far", "moves", len(fb.moves), "imbalance", e.bestImbalance)
				return e.finish(StatusFallback, fb, elapsed), nil
			}
			return e.finish(StatusDeadlineExceeded, nil, elapsed), ErrDeadlineExceeded
		}

		n, kind := e.step()
		switch kind {
		case stepGoal:
			res := e.finish(StatusBalanced, n, elapsed)
			opts.Logger.Info("solution found",
				"elapsed", elapsed,
				"moves", len(res.Moves),
				"port", res.Weights.Port,
				"ship", res.Weights.Ship,
				"imbalance", res.Imbalance,
			)
			return res, nil
		case stepExhausted:
			opts.Logger.Warn("no solution found", "examined", e.examined)
			return e.finish(StatusExhausted, nil, elapsed), ErrExhausted
		}
	}
}

func newResult(status Status, n *node) Result {
	res := Result{Status: status}
	if n == nil {
		return res
	}
	w := WeightsOf(n.grid)
	res.Moves = n.moves
	res.TotalCost = TotalCost(n.moves)
	res.Final = n.grid
	res.Weights = w
	res.Imbalance = w.Imbalance()
	return res
}
