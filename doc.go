// Package balance finds a low-cost sequence of crane moves that brings the
// port and ship halves of an 8x12 storage grid within weight tolerance.
//
// It exposes two main entry points:
//
//   - Search: run the best-first search under a time budget and get a Result.
//   - Stepper: advance the same search one expansion at a time to drive UIs or debugging tools.
//
// The building blocks used by the search (WeightsOf, IsBalanced, MovableItems,
// CanPlace, CandidateMoves, ApplyMove, Estimate and StateKey) are exported so
// callers can inspect or replay individual decisions.
//
// The search is single-threaded and deterministic: identical inputs produce
// identical move sequences. Every node owns its own grid snapshot, and ties in
// priority are broken by insertion order.
package balance
