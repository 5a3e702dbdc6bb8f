package balance

import "math"

// unreachable returns the estimate for a state in which no item on the
// heavier side can be lifted: positive infinity.
func unreachable() float64 { return math.Inf(1) }

// Estimate guesses the cost still needed to balance g. It looks one move
// ahead: pick the movable item on the heavier side whose weight best matches
// half the excess imbalance, then charge its lateral distance to the near
// edge of the other side plus a crane round trip from CraneHome.
//
// The estimate is not a proven lower bound. It is 0 for balanced grids,
// +Inf when the heavier side has nothing movable, and at least 1
// otherwise.
func Estimate(g Grid, ref Reference) float64 {
	w := WeightsOf(g)
	if w.within(ref) {
		return 0
	}

	target := (float64(w.Imbalance()) - ref.Tolerance()) / 2
	fromPort := w.Port > w.Ship

	var (
		best  Position
		found bool
		gap   float64
	)
	for _, m := range MovableItems(g) {
		if m.Pos.Port() != fromPort {
			continue
		}
		d := math.Abs(float64(m.Item.Weight) - target)
		if !found || d < gap {
			best, gap, found = m.Pos, d, true
		}
	}
	if !found {
		return unreachable()
	}

	lateral := best.Col - PortCols
	if fromPort {
		lateral = PortCols + 1 - best.Col
	}
	total := lateral + 2*Manhattan(CraneHome, best)
	return math.Max(1, float64(total))
}
