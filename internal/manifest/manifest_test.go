package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/balance"
)

const bracketed = `[01,01], {00000}, NAN
[01,02], {00120}, Cat food
[01,03], {00035}, Dog, treats
[01,04], {00000}, UNUSED

garbage line
[02,02], {00050}, Bird seed
`

func TestParse_Bracketed(t *testing.T) {
	t.Parallel()

	m, err := Parse(strings.NewReader(bracketed), Bracketed)

	require.NoError(t, err)
	want := balance.Grid{
		{Row: 1, Col: 2}: {Weight: 120, Label: "Cat food"},
		{Row: 1, Col: 3}: {Weight: 35, Label: "Dog, treats"},
		{Row: 2, Col: 2}: {Weight: 50, Label: "Bird seed"},
	}
	if diff := cmp.Diff(want, m.Grid); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
	require.True(t, m.Blocked.Has(balance.Position{Row: 1, Col: 1}))
	require.Len(t, m.Blocked, 1)
	require.Equal(t, 1, m.Skipped)
}

func TestParse_CSV(t *testing.T) {
	t.Parallel()

	in := "1,1,0,NAN\n1,2,120,Cat food\n1,3,35,Dog, treats\nrow,col,weight,label\n1,4,0,UNUSED\n"

	m, err := Parse(strings.NewReader(in), CSV)

	require.NoError(t, err)
	want := balance.Grid{
		{Row: 1, Col: 2}: {Weight: 120, Label: "Cat food"},
		{Row: 1, Col: 3}: {Weight: 35, Label: "Dog, treats"},
	}
	if diff := cmp.Diff(want, m.Grid); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, m.Blocked, 1)
	require.Equal(t, 1, m.Skipped, "header line is skipped")
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("\nnothing here\n"), Bracketed)
	require.ErrorIs(t, err, ErrEmptyManifest)
}

func TestManifest_Write(t *testing.T) {
	t.Parallel()

	m, err := Parse(strings.NewReader(bracketed), Bracketed)
	require.NoError(t, err)
	final := balance.Grid{
		{Row: 1, Col: 2}: {Weight: 120, Label: "Cat food"},
		{Row: 1, Col: 4}: {Weight: 50, Label: "Bird seed"},
		{Row: 1, Col: 3}: {Weight: 35, Label: "Dog, treats"},
	}

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf, final))

	want := `[01,01], {00000}, NAN
[01,02], {00120}, Cat food
[01,03], {00035}, Dog, treats
[01,04], {00050}, Bird seed

garbage line
[02,02], {00000}, UNUSED
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("outbound mismatch (-want +got):\n%s", diff)
	}
}

func TestManifest_WriteCSV(t *testing.T) {
	t.Parallel()

	m, err := Parse(strings.NewReader("1,1,0,NAN\n1,2,10,a\n1,7,0,UNUSED\n"), CSV)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf, balance.Grid{{Row: 1, Col: 7}: {Weight: 10, Label: "a"}}))

	require.Equal(t, "1,1,0,NAN\n1,2,0,UNUSED\n1,7,10,a\n", buf.String())
}

func TestOutboundName(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, time.March, 7, 9, 5, 0, 0, time.UTC)
	require.Equal(t, "ShipCase1_03_07_2024_0905OUTBOUND.txt", OutboundName("ShipCase1", ts))
}

func TestLoadAndSave(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "ShipCase2.txt")
	require.NoError(t, os.WriteFile(in, []byte(bracketed), 0o600))

	m, err := Load(in)
	require.NoError(t, err)
	require.Equal(t, "ShipCase2", m.Name)
	require.Equal(t, Bracketed, m.Format)

	ts := time.Date(2024, time.January, 2, 15, 4, 0, 0, time.UTC)
	out, err := m.Save(filepath.Join(dir, "Output"), m.Grid, ts)
	require.NoError(t, err)
	require.Equal(t, "ShipCase2_01_02_2024_1504OUTBOUND.txt", filepath.Base(out))

	again, err := Load(out)
	require.NoError(t, err)
	if diff := cmp.Diff(m.Grid, again.Grid); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
