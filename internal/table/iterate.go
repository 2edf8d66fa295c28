package table

import "github.com/grafana/lfmap/internal/word"

// Pair is one (key, value) observed while walking a generation.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Snapshot walks this generation's slots in array order and returns
// every pair whose value is neither a reserved sentinel nor mid-copy.
// Single-threaded use only; no stability guarantee under concurrent
// mutation.
func (g *Generation[K, V]) Snapshot(out []Pair[K, V]) []Pair[K, V] {
	for i := uint64(0); i < g.size; i++ {
		kw := word.Load(&g.slots[i].key)
		if kw == word.None {
			continue
		}
		vw := word.Load(&g.slots[i].val)
		if word.IsCopying(vw) {
			continue
		}
		pure := word.Pure(vw)
		if word.IsReserved(pure) {
			continue
		}
		out = append(out, Pair[K, V]{
			Key:   g.cfg.KeyCodec.Decode(kw),
			Value: g.cfg.ValueCodec.Decode(pure),
		})
	}
	return out
}
