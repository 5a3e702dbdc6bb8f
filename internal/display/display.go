// Package display renders a grid the way the operator reads it: top row
// first, one bracketed line per row, -1 for blocked slots and 0 for empty
// ones.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdrpinto/balance"
)

// Options controls rendering.
type Options struct {
	// Color styles occupied and blocked cells. Leave it off for files and pipes.
	Color bool
}

var (
	portStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	shipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
)

// Render returns title followed by rows Rows..1 of g.
func Render(g balance.Grid, blocked balance.Blocked, title string, opts Options) string {
	var b strings.Builder
	if title != "" {
		if opts.Color {
			title = titleStyle.Render(title)
		}
		b.WriteString(title)
		b.WriteByte('\n')
	}

	cells := make([]string, balance.Cols)
	for row := balance.Rows; row >= 1; row-- {
		for col := 1; col <= balance.Cols; col++ {
			cells[col-1] = cell(g, blocked, balance.Position{Row: row, Col: col}, opts.Color)
		}
		b.WriteByte('[')
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("]\n")
	}
	return b.String()
}

func cell(g balance.Grid, blocked balance.Blocked, p balance.Position, color bool) string {
	if blocked.Has(p) {
		s := fmt.Sprintf("%4d", -1)
		if color {
			return blockedStyle.Render(s)
		}
		return s
	}
	it, ok := g[p]
	if !ok {
		return fmt.Sprintf("%4d", 0)
	}
	s := fmt.Sprintf("%4d", it.Weight)
	if !color {
		return s
	}
	if p.Port() {
		return portStyle.Render(s)
	}
	return shipStyle.Render(s)
}
