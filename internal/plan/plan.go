// Package plan exports a solved move sequence as JSON. Paths ending in .zst
// are written as a zstd stream.
package plan

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/pdrpinto/balance"
)

// Version is written into every plan so readers can reject unknown layouts.
const Version = 1

// ErrVersion is returned by Read for plans written with another layout.
var ErrVersion = errors.New("unsupported plan version")

// Plan is the exported outcome of one session.
type Plan struct {
	Version   int             `json:"version"`
	RunID     string          `json:"run_id"`
	Manifest  string          `json:"manifest"`
	Status    string          `json:"status"`
	Created   time.Time       `json:"created"`
	TotalCost int             `json:"total_cost"`
	Imbalance int             `json:"imbalance"`
	Weights   balance.Weights `json:"weights"`
	Moves     []balance.Move  `json:"moves"`
}

// New builds a plan from a search result.
func New(runID, manifest string, res balance.Result, created time.Time) Plan {
	moves := res.Moves
	if moves == nil {
		moves = []balance.Move{}
	}
	return Plan{
		Version:   Version,
		RunID:     runID,
		Manifest:  manifest,
		Status:    string(res.Status),
		Created:   created.UTC(),
		TotalCost: res.TotalCost,
		Imbalance: res.Imbalance,
		Weights:   res.Weights,
		Moves:     moves,
	}
}

func compressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zst")
}

// Write stores p at path, creating parent directories.
func Write(path string, p Plan) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := encode(f, compressed(path), p); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// encode writes p as JSON to w. With compress set the stream is wrapped in
// zstd; the frame is only complete once the encoder is closed.
func encode(w io.Writer, compress bool, p Plan) error {
	if !compress {
		return encodeJSON(w, p)
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if err := encodeJSON(enc, p); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func encodeJSON(w io.Writer, p Plan) error {
	bw := bufio.NewWriter(w)
	e := json.NewEncoder(bw)
	e.SetIndent("", "  ")
	if err := e.Encode(p); err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	return bw.Flush()
}

// Read loads a plan written by Write.
func Read(path string) (Plan, error) {
	var p Plan
	f, err := os.Open(path)
	if err != nil {
		return p, err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed(path) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return p, err
		}
		defer dec.Close()
		r = dec
	}

	if err := json.NewDecoder(bufio.NewReader(r)).Decode(&p); err != nil {
		return p, fmt.Errorf("decode plan: %w", err)
	}
	if p.Version != Version {
		return p, fmt.Errorf("%w: %d", ErrVersion, p.Version)
	}
	return p, nil
}
