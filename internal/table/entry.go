package table

import "github.com/grafana/lfmap/internal/word"

// GetStatus is the outcome of a Get against one generation.
type GetStatus uint8

const (
	// Found: the value was resolved in this generation.
	Found GetStatus = iota
	// NotHere: this generation definitely has no live value for the
	// key (it was never installed, or was deleted and never re-put).
	NotHere
	// ConsultNext: this generation cannot answer (full, or the slot
	// was migrated away); the caller must try the next generation.
	ConsultNext
)

// Get resolves key against this generation alone.
func (g *Generation[K, V]) Get(key K, hash uint64) (V, GetStatus) {
	idx, found := g.lookup(key, hash)
	if found {
		return g.getEntry(idx)
	}
	if idx == noIndex || g.isFull.Load() {
		var zero V
		return zero, ConsultNext
	}
	var zero V
	return zero, NotHere
}

// getEntry resolves one slot already known to hold this key.
func (g *Generation[K, V]) getEntry(idx uint64) (V, GetStatus) {
	raw := word.Load(&g.slots[idx].val)
	if word.IsCopying(raw) {
		g.copy(idx)
		raw = word.Load(&g.slots[idx].val)
	}

	pure := word.Pure(raw)
	switch pure {
	case word.Copied, word.Deleted:
		var zero V
		return zero, ConsultNext
	case word.None, word.Baby:
		// Both resolve to "no live value here" for the facade (BABY is
		// distinguished from NONE only for IF_ABSENT during copies); see
		// DESIGN.md for this resolved ambiguity.
		var zero V
		return zero, NotHere
	default:
		v := g.cfg.ValueCodec.Decode(pure)
		if g.cfg.ValueManager != nil {
			v = g.cfg.ValueManager.CloneAndRef(v)
		}
		return v, Found
	}
}
