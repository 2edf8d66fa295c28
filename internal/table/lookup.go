package table

import (
	"math"

	"github.com/grafana/lfmap/internal/word"
)

// lookup linear-probes from hash, examining at most size slots. found
// reports whether the key cell at idx already
// holds key; when found is false, idx is a reservation candidate
// (the first KEY_NONE slot seen) unless idx == noIndex, which means
// probing exhausted the whole table without finding either the key or
// a free slot (the table is full).
func (g *Generation[K, V]) lookup(key K, hash uint64) (idx uint64, found bool) {
	start := hash & g.mask
	for i := uint64(0); i < g.size; i++ {
		idx = (start + i) & g.mask
		kw := word.Load(&g.slots[idx].key)
		if kw == word.None {
			g.recordProbe(i + 1)
			return idx, false
		}
		if g.cfg.KeyEqual(g.cfg.KeyCodec.Decode(kw), key) {
			g.recordProbe(i + 1)
			return idx, true
		}
	}
	g.isFull.Store(true)
	return noIndex, false
}

// recordProbe updates the running minimum remaining-probe budget and
// sets is-full once the heuristic threshold is crossed.
func (g *Generation[K, V]) recordProbe(examined uint64) {
	remaining := clampRemaining(examined, g.size)
	g.lowerMaxProbe(remaining)

	upper := g.upperKeyCount()
	if g.maxProbe.Load() < int64(g.size-upper) && uint64(max64(g.approxAlive.Load(), 0)) >= upper {
		g.isFull.Store(true)
	}
}

func (g *Generation[K, V]) lowerMaxProbe(remaining int64) {
	for {
		cur := g.maxProbe.Load()
		if remaining >= cur {
			return
		}
		if g.maxProbe.CompareAndSwap(cur, remaining) {
			return
		}
	}
}

// upperKeyCount is the upper key-count bound:
// min(size, ceil(min(0.7, 2d) * size)).
func (g *Generation[K, V]) upperKeyCount() uint64 {
	f := 2 * g.cfg.Density
	if f > 0.7 {
		f = 0.7
	}
	bound := uint64(math.Ceil(f * float64(g.size)))
	if bound > g.size {
		bound = g.size
	}
	return bound
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
