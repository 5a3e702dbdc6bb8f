package balance

import (
	"container/heap"
	"math"
	"time"
)

type stepKind int

const (
	stepExpanded stepKind = iota
	stepPruned
	stepGoal
	stepExhausted
)

// engine owns the open set, the closed table and the best-so-far node of a
// single search. It is driven either by Search or by a Stepper.
type engine struct {
	problem Problem
	opts    Options

	open   priorityQueue
	closed map[Key]int
	seq    uint64

	// best is the node with the lowest imbalance popped so far; it becomes
	// the fallback once it carries at least one move.
	best          *node
	bestImbalance int

	examined  int
	expanded  int
	generated int
	pruned    int
}

func newEngine(p Problem, opts Options) *engine {
	e := &engine{
		problem:       p,
		opts:          opts,
		open:          make(priorityQueue, 0, 64),
		closed:        make(map[Key]int),
		bestImbalance: math.MaxInt,
	}
	heap.Init(&e.open)
	e.push(p.Grid.Clone(), 0, nil, CraneHome)
	return e
}

func (e *engine) push(g Grid, cost int, moves []Move, crane Position) {
	h := Estimate(g, e.problem.Reference)
	heap.Push(&e.open, &node{
		f:     float64(cost) + h,
		seq:   e.seq,
		g:     cost,
		grid:  g,
		moves: moves,
		crane: crane,
	})
	e.seq++
}

// step pops the lowest-priority node and processes it: goal test, fallback
// bookkeeping, duplicate pruning and expansion.
func (e *engine) step() (*node, stepKind) {
	if e.open.Len() == 0 {
		return nil, stepExhausted
	}
	n := heap.Pop(&e.open).(*node)
	e.examined++

	w := WeightsOf(n.grid)
	if e.examined%e.opts.ProgressEvery == 0 {
		e.report(w, n)
	}
	if w.within(e.problem.Reference) {
		return n, stepGoal
	}
	if imb := w.Imbalance(); imb < e.bestImbalance {
		e.bestImbalance = imb
		e.best = n
	}

	key := StateKey(n.grid)
	if g, ok := e.closed[key]; ok && g <= n.g {
		e.pruned++
		e.opts.Metrics.RecordPruned("pop")
		return n, stepPruned
	}
	e.closed[key] = n.g

	for _, c := range CandidateMoves(n.grid, e.problem.Blocked, e.problem.Reference) {
		child, m, crane := ApplyMove(n.grid, c, n.crane)
		cost := n.g + m.Cost
		if g, ok := e.closed[StateKey(child)]; ok && g <= cost {
			e.pruned++
			e.opts.Metrics.RecordPruned("child")
			continue
		}
		e.push(child, cost, appendMove(n.moves, m), crane)
		e.generated++
	}
	e.expanded++
	e.opts.Metrics.RecordExpansion()
	e.opts.Metrics.SetOpenSize(e.open.Len())
	return n, stepExpanded
}

func (e *engine) report(w Weights, n *node) {
	p := Progress{
		Examined:  e.examined,
		Imbalance: w.Imbalance(),
		Moves:     len(n.moves),
		Open:      e.open.Len(),
		Closed:    len(e.closed),
	}
	e.opts.Logger.Info("search progress",
		"nodes", p.Examined,
		"imbalance", p.Imbalance,
		"moves", p.Moves,
		"open", p.Open,
	)
	if e.opts.OnProgress != nil {
		e.opts.OnProgress(p)
	}
}

// fallback returns the best node seen if it improves on the initial grid.
func (e *engine) fallback() *node {
	if e.best == nil || len(e.best.moves) == 0 {
		return nil
	}
	return e.best
}

func (e *engine) finish(status Status, n *node, elapsed time.Duration) Result {
	res := newResult(status, n)
	res.Examined = e.examined
	res.Expanded = e.expanded
	res.Generated = e.generated
	res.Pruned = e.pruned
	res.Elapsed = elapsed
	e.opts.Metrics.RecordOutcome(string(status), elapsed.Seconds())
	return res
}

// appendMove extends moves into a new backing array so sibling nodes never
// share one.
func appendMove(moves []Move, m Move) []Move {
	out := make([]Move, len(moves), len(moves)+1)
	copy(out, moves)
	return append(out, m)
}
