package balance

import "slices"

// Movable is the topmost item of a column, the only one the crane can lift.
type Movable struct {
	Pos  Position
	Item Item
}

// Candidate is a legal relocation that has not been applied yet.
type Candidate struct {
	From Position
	To   Position
	Item Item
}

// MovableItems returns the topmost item of every non-empty column, ordered by
// column.
func MovableItems(g Grid) []Movable {
	tops := make(map[int]Position, Cols)
	for p := range g {
		if top, ok := tops[p.Col]; !ok || p.Row > top.Row {
			tops[p.Col] = p
		}
	}
	out := make([]Movable, 0, len(tops))
	for _, p := range tops {
		out = append(out, Movable{Pos: p, Item: g[p]})
	}
	slices.SortFunc(out, func(a, b Movable) int { return a.Pos.Col - b.Pos.Col })
	return out
}

// CanPlace returns the row an item dropped into col would land on. It fails
// for columns outside the grid, full columns and when the landing cell is
// blocked; blocked cells are never skipped.
func CanPlace(g Grid, blocked Blocked, col int) (int, bool) {
	if col < 1 || col > Cols {
		return 0, false
	}
	row := g.Height(col) + 1
	if row > Rows {
		return 0, false
	}
	if blocked.Has(Position{Row: row, Col: col}) {
		return 0, false
	}
	return row, true
}

// CandidateMoves lists every relocation of a movable item from the heavier
// side to a legal slot on the lighter side. A balanced grid has none.
func CandidateMoves(g Grid, blocked Blocked, ref Reference) []Candidate {
	w := WeightsOf(g)
	if w.within(ref) {
		return nil
	}

	fromPort := w.Port > w.Ship
	var dests []Position
	for col := 1; col <= Cols; col++ {
		if (col <= PortCols) == fromPort {
			continue
		}
		if row, ok := CanPlace(g, blocked, col); ok {
			dests = append(dests, Position{Row: row, Col: col})
		}
	}
	if len(dests) == 0 {
		return nil
	}

	var out []Candidate
	for _, m := range MovableItems(g) {
		if m.Pos.Port() != fromPort {
			continue
		}
		for _, to := range dests {
			out = append(out, Candidate{From: m.Pos, To: to, Item: m.Item})
		}
	}
	return out
}
