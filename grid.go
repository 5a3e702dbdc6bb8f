package balance

import (
	"fmt"
	"slices"
)

// Grid dimensions. Rows count from the bottom of a stack; columns 1..PortCols
// form the port side and the rest the ship side.
const (
	Rows     = 8
	Cols     = 12
	PortCols = 6
)

// CraneHome is the dock the crane starts from. Column 0 lies outside the grid.
var CraneHome = Position{Row: 8, Col: 0}

// Position is a (row, column) cell of the grid.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string { return fmt.Sprintf("[%d, %d]", p.Row, p.Col) }

// InGrid reports whether p addresses a real cell.
func (p Position) InGrid() bool {
	return p.Row >= 1 && p.Row <= Rows && p.Col >= 1 && p.Col <= Cols
}

// Port reports whether p sits on the port side.
func (p Position) Port() bool { return p.Col <= PortCols }

// Item is the payload stored in one cell.
type Item struct {
	Weight int    `json:"weight"`
	Label  string `json:"label"`
}

// Grid maps occupied positions to their items. A Grid handed to the search is
// never modified; every derived state is a fresh copy.
type Grid map[Position]Item

// Clone returns an independent copy of g.
func (g Grid) Clone() Grid {
	c := make(Grid, len(g))
	for p, it := range g {
		c[p] = it
	}
	return c
}

// Containers returns the number of occupied cells.
func (g Grid) Containers() int { return len(g) }

// Height returns the number of items stacked in col.
func (g Grid) Height(col int) int {
	h := 0
	for p := range g {
		if p.Col == col && p.Row > h {
			h = p.Row
		}
	}
	return h
}

// Positions returns the occupied positions sorted by row, then column.
func (g Grid) Positions() []Position {
	ps := make([]Position, 0, len(g))
	for p := range g {
		ps = append(ps, p)
	}
	slices.SortFunc(ps, comparePositions)
	return ps
}

// Validate checks that every item is inside the grid, off blocked slots and
// non-negative in weight, and that every column is a gapless stack starting
// at row 1.
func (g Grid) Validate(blocked Blocked) error {
	heights := make(map[int]int, Cols)
	for p, it := range g {
		if !p.InGrid() {
			return fmt.Errorf("position %s outside %dx%d grid", p, Rows, Cols)
		}
		if blocked.Has(p) {
			return fmt.Errorf("position %s is blocked", p)
		}
		if it.Weight < 0 {
			return fmt.Errorf("position %s has negative weight %d", p, it.Weight)
		}
		if p.Row > heights[p.Col] {
			heights[p.Col] = p.Row
		}
	}
	counts := make(map[int]int, len(heights))
	for p := range g {
		counts[p.Col]++
	}
	for col, h := range heights {
		if counts[col] != h {
			return fmt.Errorf("column %d has a gap below row %d", col, h)
		}
	}
	return nil
}

// Blocked is the immutable set of cells that can never hold an item.
type Blocked map[Position]struct{}

// NewBlocked builds a Blocked set from ps.
func NewBlocked(ps ...Position) Blocked {
	b := make(Blocked, len(ps))
	for _, p := range ps {
		b[p] = struct{}{}
	}
	return b
}

// Has reports whether p is blocked. A nil set blocks nothing.
func (b Blocked) Has(p Position) bool {
	_, ok := b[p]
	return ok
}

// Move records one applied relocation and the crane travel it cost.
type Move struct {
	From   Position `json:"from"`
	To     Position `json:"to"`
	Weight int      `json:"weight"`
	Label  string   `json:"label"`
	Cost   int      `json:"cost"`
}

// TotalCost sums the cost of moves.
func TotalCost(moves []Move) int {
	total := 0
	for _, m := range moves {
		total += m.Cost
	}
	return total
}

// Replay applies moves in order to a copy of initial.
func Replay(initial Grid, moves []Move) (Grid, error) {
	g := initial.Clone()
	for i, m := range moves {
		it, ok := g[m.From]
		if !ok {
			return nil, fmt.Errorf("move %d: no item at %s", i+1, m.From)
		}
		if _, taken := g[m.To]; taken {
			return nil, fmt.Errorf("move %d: %s already occupied", i+1, m.To)
		}
		delete(g, m.From)
		g[m.To] = it
	}
	return g, nil
}

func comparePositions(a, b Position) int {
	if a.Row != b.Row {
		return a.Row - b.Row
	}
	return a.Col - b.Col
}
