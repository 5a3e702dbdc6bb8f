package display

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/balance"
)

func TestRender_Plain(t *testing.T) {
	t.Parallel()

	g := balance.Grid{
		{Row: 1, Col: 1}: {Weight: 120, Label: "a"},
		{Row: 2, Col: 1}: {Weight: 7, Label: "b"},
		{Row: 1, Col: 12}: {Weight: 9999, Label: "c"},
	}
	blocked := balance.NewBlocked(balance.Position{Row: 1, Col: 2})

	out := Render(g, blocked, "Final grid:", Options{})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	require.Len(t, lines, balance.Rows+1)
	require.Equal(t, "Final grid:", lines[0])
	require.Equal(t, "[   0    0    0    0    0    0    0    0    0    0    0    0]", lines[1], "row 8 first")
	require.Equal(t, "[   7    0    0    0    0    0    0    0    0    0    0    0]", lines[7])
	require.Equal(t, "[ 120   -1    0    0    0    0    0    0    0    0    0 9999]", lines[8])
}

func TestRender_NoTitle(t *testing.T) {
	t.Parallel()

	out := Render(balance.Grid{}, nil, "", Options{})
	require.Equal(t, balance.Rows, strings.Count(out, "\n"))
	require.True(t, strings.HasPrefix(out, "["))
}

func TestRender_ColorKeepsValues(t *testing.T) {
	t.Parallel()

	g := balance.Grid{{Row: 1, Col: 7}: {Weight: 42, Label: "x"}}

	out := Render(g, balance.NewBlocked(balance.Position{Row: 1, Col: 1}), "grid", Options{Color: true})

	require.Contains(t, out, "42")
	require.Contains(t, out, "-1")
	require.Contains(t, out, "grid")
}
