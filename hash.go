package balance

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// Key identifies a grid state independently of map iteration order.
type Key = xxh3.Uint128

// StateKey serializes g in row-then-column order and hashes the bytes.
// Two grids share a key exactly when they hold the same labels and weights in
// the same cells.
func StateKey(g Grid) Key {
	buf := make([]byte, 0, len(g)*24)
	for _, p := range g.Positions() {
		it := g[p]
		buf = binary.AppendUvarint(buf, uint64(p.Row))
		buf = binary.AppendUvarint(buf, uint64(p.Col))
		buf = binary.AppendVarint(buf, int64(it.Weight))
		buf = binary.AppendUvarint(buf, uint64(len(it.Label)))
		buf = append(buf, it.Label...)
	}
	return xxh3.Hash128(buf)
}
