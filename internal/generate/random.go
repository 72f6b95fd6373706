package generate

import (
	"encoding/binary"
	"math/rand/v2"
)

// weighted is one outcome of a categorical draw. Weights are relative.
type weighted[T any] struct {
	value  T
	weight int
}

func pick[T any](r *rand.Rand, choices []weighted[T]) T {
	total := 0
	for _, c := range choices {
		total += c.weight
	}
	n := r.IntN(total)
	for _, c := range choices {
		if n < c.weight {
			return c.value
		}
		n -= c.weight
	}
	return choices[len(choices)-1].value
}

func oneOf[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}

// chance returns true with probability p.
func chance(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}

// between returns a uniform int64 in [lo, hi].
func between(r *rand.Rand, lo, hi int64) int64 {
	return lo + r.Int64N(hi-lo+1)
}

// randReader adapts a seeded source to io.Reader for uuid generation.
type randReader struct {
	r *rand.Rand
}

func (rr randReader) Read(p []byte) (int, error) {
	var buf [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(buf[:], rr.r.Uint64())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}
