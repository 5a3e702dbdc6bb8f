package balance

import "fmt"

// StepSnapshot exposes the per-iteration state of the search
type StepSnapshot struct {
	StepIndex int      `json:"step"`
	Current   Grid     `json:"-"`
	Crane     Position `json:"crane"`
	Moves     []Move   `json:"moves,omitempty"`
	Imbalance int      `json:"imbalance"`
	Open      int      `json:"open"`
	Closed    int      `json:"closed"`
	Pruned    bool     `json:"pruned"`
	Done      bool     `json:"done"`
	Found     bool     `json:"found"`
	Best      []Move   `json:"best,omitempty"`
}

// Stepper advances a search one popped node at a time. It has no deadline;
// the caller decides when to stop.
type Stepper struct {
	e     *engine
	done  bool
	found bool
	last  StepSnapshot
}

// NewStepper creates a Stepper over the same engine Search uses. The time
// limit and clock options are ignored.
func NewStepper(p Problem, options ...Option) (*Stepper, error) {
	if err := p.Grid.Validate(p.Blocked); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProblem, err)
	}
	return &Stepper{e: newEngine(p, buildOptions(options))}, nil
}

// Done reports whether the search has found a balanced state or run out of
// states.
func (s *Stepper) Done() bool { return s.done }

// Step advances the search by one node and returns a snapshot. Once done,
// it keeps returning the final snapshot.
func (s *Stepper) Step() StepSnapshot {
	if s.done {
		return s.last
	}

	n, kind := s.e.step()
	snap := StepSnapshot{
		StepIndex: s.e.examined,
		Open:      s.e.open.Len(),
		Closed:    len(s.e.closed),
		Pruned:    kind == stepPruned,
	}
	if n != nil {
		snap.Current = n.grid
		snap.Crane = n.crane
		snap.Moves = n.moves
		snap.Imbalance = WeightsOf(n.grid).Imbalance()
	}
	if fb := s.e.fallback(); fb != nil {
		snap.Best = fb.moves
	}

	switch kind {
	case stepGoal:
		s.done, s.found = true, true
	case stepExhausted:
		s.done = true
	}
	snap.Done, snap.Found = s.done, s.found
	s.last = snap
	return snap
}
