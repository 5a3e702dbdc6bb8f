package balance

// DefaultToleranceRatio is the share of the initial total weight the two
// sides may differ by.
const DefaultToleranceRatio = 0.10

// Weights holds the aggregate weight on each side of the grid.
type Weights struct {
	Port int `json:"port"`
	Ship int `json:"ship"`
}

// Total returns Port + Ship.
func (w Weights) Total() int { return w.Port + w.Ship }

// Imbalance returns |Port - Ship|.
func (w Weights) Imbalance() int {
	if w.Port > w.Ship {
		return w.Port - w.Ship
	}
	return w.Ship - w.Port
}

// WeightsOf sums item weights per side.
func WeightsOf(g Grid) Weights {
	var w Weights
	for p, it := range g {
		if p.Port() {
			w.Port += it.Weight
		} else {
			w.Ship += it.Weight
		}
	}
	return w
}

// Reference is the initial weight distribution a search is measured against.
// The tolerance derived from it stays fixed while items move.
type Reference struct {
	Port  int
	Ship  int
	Ratio float64 // zero means DefaultToleranceRatio
}

// NewReference freezes w as the reference with the default ratio.
func NewReference(w Weights) Reference {
	return Reference{Port: w.Port, Ship: w.Ship, Ratio: DefaultToleranceRatio}
}

// Tolerance is the largest imbalance still considered balanced.
func (r Reference) Tolerance() float64 {
	ratio := r.Ratio
	if ratio == 0 {
		ratio = DefaultToleranceRatio
	}
	return ratio * float64(r.Port+r.Ship)
}

// IsBalanced reports whether g is within ref's tolerance.
func IsBalanced(g Grid, ref Reference) bool {
	return WeightsOf(g).within(ref)
}

func (w Weights) within(ref Reference) bool {
	return float64(w.Imbalance()) <= ref.Tolerance()
}
