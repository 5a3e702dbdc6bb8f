package balance

// Manhattan returns the grid travel distance between a and b.
func Manhattan(a, b Position) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

// ApplyMove relocates c.Item on a copy of g. The crane travels empty from
// crane to c.From and then carries the item to c.To, where it stays; the
// return trip is not charged.
func ApplyMove(g Grid, c Candidate, crane Position) (Grid, Move, Position) {
	next := g.Clone()
	delete(next, c.From)
	next[c.To] = c.Item

	m := Move{
		From:   c.From,
		To:     c.To,
		Weight: c.Item.Weight,
		Label:  c.Item.Label,
		Cost:   Manhattan(crane, c.From) + Manhattan(c.From, c.To),
	}
	return next, m, c.To
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
