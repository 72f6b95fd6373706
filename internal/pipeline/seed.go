package pipeline

import (
	"encoding/binary"
	"hash/fnv"
	"time"

	"github.com/rickgao/rampsim/internal/model"
)

// stepSeed derives the generator seed for one step. The same base seed,
// table and date always yield the same rows.
func stepSeed(base uint64, table model.Table, date time.Time) uint64 {
	h := fnv.New64a()
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], base)
	h.Write(b[:])
	h.Write([]byte(table))
	if !date.IsZero() {
		h.Write([]byte(date.Format(time.DateOnly)))
	}
	return h.Sum64()
}
