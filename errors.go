package balance

import "errors"

// Sentinel errors returned by Search and NewStepper.
var (
	// ErrDeadlineExceeded is returned when the time budget ran out before any
	// improving move sequence was found.
	ErrDeadlineExceeded = errors.New("search deadline exceeded without a fallback")

	// ErrExhausted is returned when every reachable state was examined and
	// none is balanced.
	ErrExhausted = errors.New("search exhausted without a balanced state")

	// ErrInvalidProblem wraps input grids that break the grid invariants.
	ErrInvalidProblem = errors.New("invalid problem")
)
