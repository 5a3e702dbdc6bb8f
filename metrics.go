package balance

// MetricsCollector receives search instrumentation. Calls happen on the
// goroutine running the search.
type MetricsCollector interface {
	// RecordExpansion counts a node whose successors were generated.
	RecordExpansion()

	// RecordPruned counts a dominated duplicate; stage is "pop" or "child".
	RecordPruned(stage string)

	// SetOpenSize reports the number of nodes waiting in the open set.
	SetOpenSize(n int)

	// RecordOutcome reports how a search ended and how long it took in seconds.
	RecordOutcome(status string, seconds float64)
}

type nopMetrics struct{}

func (nopMetrics) RecordExpansion()              {}
func (nopMetrics) RecordPruned(string)           {}
func (nopMetrics) SetOpenSize(int)               {}
func (nopMetrics) RecordOutcome(string, float64) {}
