// Package manifest reads and writes the two storage manifest formats.
//
// The bracketed format has one cell per line:
//
//	[01,02], {00120}, Cat food
//
// The CSV format carries the same fields as row,col,weight,label; the label
// may itself contain commas. A NAN label marks a blocked slot and UNUSED an
// empty one. Lines that cannot be parsed are skipped on read and copied
// verbatim on write.
package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdrpinto/balance"
)

// Format selects the manifest line syntax.
type Format int

const (
	Bracketed Format = iota
	CSV
)

func (f Format) String() string {
	if f == CSV {
		return "csv"
	}
	return "bracketed"
}

// FormatFor picks the format from a file name's extension.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return CSV
	}
	return Bracketed
}

const (
	blockedLabel = "NAN"
	emptyLabel   = "UNUSED"
)

// ErrEmptyManifest is returned when a file has no parseable cell lines.
var ErrEmptyManifest = errors.New("manifest has no cells")

// Manifest is a parsed manifest. It keeps the inbound lines so the outbound
// file mirrors the inbound layout.
type Manifest struct {
	Name    string
	Format  Format
	Grid    balance.Grid
	Blocked balance.Blocked
	Skipped int

	lines []string
}

type cell struct {
	pos    balance.Position
	weight int
	label  string
}

// Load parses the manifest at path. Name is the file name without extension.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Parse(f, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return m, nil
}

// Parse reads a manifest in format f.
func Parse(r io.Reader, f Format) (*Manifest, error) {
	m := &Manifest{
		Format:  f,
		Grid:    balance.Grid{},
		Blocked: balance.Blocked{},
	}
	cells := 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		m.lines = append(m.lines, line)
		if line == "" {
			continue
		}
		c, ok := parseLine(line, f)
		if !ok {
			m.Skipped++
			continue
		}
		cells++
		switch c.label {
		case blockedLabel:
			m.Blocked[c.pos] = struct{}{}
		case emptyLabel:
		default:
			m.Grid[c.pos] = balance.Item{Weight: c.weight, Label: c.label}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if cells == 0 {
		return nil, ErrEmptyManifest
	}
	return m, nil
}

func parseLine(line string, f Format) (cell, bool) {
	if f == CSV {
		return parseCSV(line)
	}
	return parseBracketed(line)
}

func parseCSV(line string) (cell, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < 4 {
		return cell{}, false
	}
	var nums [3]int
	for i := range nums {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return cell{}, false
		}
		nums[i] = n
	}
	return cell{
		pos:    balance.Position{Row: nums[0], Col: nums[1]},
		weight: nums[2],
		label:  strings.TrimSpace(strings.Join(parts[3:], ",")),
	}, true
}

func parseBracketed(line string) (cell, bool) {
	if !strings.HasPrefix(line, "[") {
		return cell{}, false
	}
	end := strings.Index(line, "]")
	if end < 0 {
		return cell{}, false
	}
	row, col, ok := parsePair(line[1:end])
	if !ok {
		return cell{}, false
	}

	rest := line[end:]
	open := strings.Index(rest, "{")
	if open < 0 {
		return cell{}, false
	}
	rest = rest[open+1:]
	closing := strings.Index(rest, "}")
	if closing < 0 {
		return cell{}, false
	}
	weight, err := strconv.Atoi(strings.TrimSpace(rest[:closing]))
	if err != nil {
		return cell{}, false
	}

	rest = rest[closing:]
	comma := strings.Index(rest, ",")
	if comma < 0 {
		return cell{}, false
	}
	return cell{
		pos:    balance.Position{Row: row, Col: col},
		weight: weight,
		label:  strings.TrimSpace(rest[comma+1:]),
	}, true
}

func parsePair(s string) (int, int, bool) {
	a, b, found := strings.Cut(s, ",")
	if !found {
		return 0, 0, false
	}
	row, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, false
	}
	col, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, false
	}
	return row, col, true
}

// Write re-emits the manifest with the contents of final. Occupied cells are
// rewritten, blocked lines are kept, every other cell becomes UNUSED.
func (m *Manifest) Write(w io.Writer, final balance.Grid) error {
	bw := bufio.NewWriter(w)
	for _, line := range m.lines {
		if _, err := bw.WriteString(m.outboundLine(line, final)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (m *Manifest) outboundLine(line string, final balance.Grid) string {
	if line == "" {
		return line
	}
	c, ok := parseLine(line, m.Format)
	if !ok {
		return line
	}
	if it, occupied := final[c.pos]; occupied {
		return formatCell(m.Format, c.pos, it.Weight, it.Label)
	}
	if c.label == blockedLabel {
		return line
	}
	return formatCell(m.Format, c.pos, 0, emptyLabel)
}

func formatCell(f Format, p balance.Position, weight int, label string) string {
	if f == CSV {
		return fmt.Sprintf("%d,%d,%d,%s", p.Row, p.Col, weight, label)
	}
	return fmt.Sprintf("[%02d,%02d], {%05d}, %s", p.Row, p.Col, weight, label)
}

// OutboundName is the file name of the balanced manifest written at t.
func OutboundName(base string, t time.Time) string {
	return fmt.Sprintf("%s_%sOUTBOUND.txt", base, t.Format("01_02_2006_1504"))
}

// Save writes the outbound manifest for final into dir and returns its path.
func (m *Manifest) Save(dir string, final balance.Grid, t time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, OutboundName(m.Name, t))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := m.Write(f, final); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}
