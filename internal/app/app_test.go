package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/balance"
	"github.com/pdrpinto/balance/internal/config"
	"github.com/pdrpinto/balance/internal/manifest"
	"github.com/pdrpinto/balance/internal/plan"
)

var fixedNow = time.Date(2024, time.June, 3, 14, 30, 0, 0, time.UTC)

func testConfig(t *testing.T, dir string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DatasetDir = dir
	cfg.OutputDir = filepath.Join(dir, "Output")
	cfg.Color = "never"
	cfg.SetLimit(10 * time.Second)
	require.NoError(t, cfg.Validate())
	return cfg
}

func writeManifest(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	body := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func newTestApp(t *testing.T, cfg config.Config, out *bytes.Buffer) *App {
	t.Helper()
	a, err := New(cfg, out, WithClock(func() time.Time { return fixedNow }), WithRunID("run-test"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestRun_SolvesAndWritesOutputs(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeManifest(t, dir, "ShipCase1.txt",
		"[01,01], {00400}, Rice",
		"[01,02], {00000}, NAN",
		"[01,07], {00300}, Beans",
		"[02,01], {00100}, Cat food",
		"[02,07], {00000}, UNUSED",
	)
	cfg := testConfig(t, dir)
	cfg.Transcript = filepath.Join(dir, "logs", "transcript.log")
	cfg.PlanOut = filepath.Join(dir, "plans", "plan.json.zst")
	cfg.MetricsFile = filepath.Join(dir, "metrics.prom")
	out := &bytes.Buffer{}
	a := newTestApp(t, cfg, out)

	// --- Act ---
	sum, err := a.Run(context.Background(), "ShipCase1.txt")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, balance.StatusBalanced, sum.Status)
	require.Equal(t, "run-test", sum.RunID)
	require.Len(t, sum.Moves, 1)
	require.Equal(t, 13, sum.TotalCost)
	require.Equal(t, filepath.Join(cfg.OutputDir, "ShipCase1_06_03_2024_1430OUTBOUND.txt"), sum.Outbound)

	require.Contains(t, out.String(), "Move 1: [2, 1] -> [2, 7]")
	require.Contains(t, out.String(), "Balanced grid")
	require.Contains(t, out.String(), "run_id=run-test")

	transcript, err := os.ReadFile(cfg.Transcript)
	require.NoError(t, err)
	require.Equal(t, out.String(), string(transcript))

	outbound, err := manifest.Load(sum.Outbound)
	require.NoError(t, err)
	require.Equal(t, balance.Item{Weight: 100, Label: "Cat food"}, outbound.Grid[balance.Position{Row: 2, Col: 7}])
	require.True(t, outbound.Blocked.Has(balance.Position{Row: 1, Col: 2}))

	p, err := plan.Read(cfg.PlanOut)
	require.NoError(t, err)
	require.Equal(t, "ShipCase1", p.Manifest)
	require.Equal(t, sum.Moves, p.Moves)

	prom, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	require.Contains(t, string(prom), "balance_search_expansions_total")
	require.Contains(t, string(prom), `balance_search_outcomes_total{status="balanced"} 1`)
}

func TestRun_ShortCircuits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		log   string
	}{
		{
			name:  "empty",
			lines: []string{"[01,01], {00000}, UNUSED"},
			log:   "ship is empty",
		},
		{
			name:  "one container",
			lines: []string{"[01,01], {00900}, Heavy", "[01,07], {00000}, UNUSED"},
			log:   "ship has one container",
		},
		{
			name:  "balanced",
			lines: []string{"[01,01], {00100}, A", "[01,07], {00105}, B"},
			log:   "ship is already balanced",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeManifest(t, dir, "case.txt", tt.lines...)
			out := &bytes.Buffer{}
			a := newTestApp(t, testConfig(t, dir), out)

			sum, err := a.Run(context.Background(), "case.txt")

			require.NoError(t, err)
			require.Equal(t, balance.StatusBalanced, sum.Status)
			require.Empty(t, sum.Moves)
			require.Zero(t, sum.TotalCost)
			require.Contains(t, out.String(), tt.log)

			got, err := os.ReadFile(sum.Outbound)
			require.NoError(t, err)
			require.Equal(t, strings.Join(tt.lines, "\n")+"\n", string(got))
		})
	}
}

func TestRun_NoSolution(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, "stuck.csv", "1,1,500,A", "1,7,300,B")
	cfg := testConfig(t, dir)
	cfg.LogFormat = "json"
	out := &bytes.Buffer{}
	a := newTestApp(t, cfg, out)

	sum, err := a.Run(context.Background(), "stuck.csv")

	require.ErrorIs(t, err, ErrNoSolution)
	require.ErrorIs(t, err, balance.ErrExhausted)
	require.Equal(t, balance.StatusExhausted, sum.Status)
	require.NoFileExists(t, filepath.Join(cfg.OutputDir, manifest.OutboundName("stuck", fixedNow)))

	var last map[string]any
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	require.Equal(t, "failed to find solution", last["msg"])
	require.Equal(t, "exhausted", last["status"])
}

func TestRun_ManifestNotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := newTestApp(t, testConfig(t, dir), &bytes.Buffer{})

	_, err := a.Run(context.Background(), "missing.txt")
	require.ErrorIs(t, err, ErrManifestNotFound)
	require.ErrorContains(t, err, filepath.Join(dir, "missing.txt"))
}

func TestApp_Resolve(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.DatasetDir = "data"
	a := &App{cfg: cfg}

	require.Equal(t, filepath.Join("data", "ShipCase1.txt"), a.Resolve("ShipCase1.txt"))
	require.Equal(t, filepath.Join("other", "x.csv"), a.Resolve(filepath.Join("other", "x.csv")))
	require.Equal(t, "/abs/x.txt", a.Resolve("/abs/x.txt"))
}

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	l := newLogger("warn", "json", out)
	l.Info("hidden")
	l.Warn("shown", "k", 1)

	require.NotContains(t, out.String(), "hidden")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	require.Equal(t, "shown", rec["msg"])
	require.Equal(t, "WARN", rec["level"])
}

func TestColorEnabled(t *testing.T) {
	t.Parallel()

	require.True(t, colorEnabled("always", &bytes.Buffer{}))
	require.False(t, colorEnabled("never", os.Stdout))
	require.False(t, colorEnabled("auto", &bytes.Buffer{}))
}
