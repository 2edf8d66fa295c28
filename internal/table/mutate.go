package table

import (
	"github.com/grafana/lfmap/internal/guard"
	"github.com/grafana/lfmap/internal/word"
)

// Outcome is the result of a conditional Put/Delete against one
// generation.
type Outcome[V any] struct {
	Result   Result
	Prior    V    // decoded prior value, valid only if PriorLive
	PriorLive bool
}

// Put applies one conditional write against a single generation.
// isDelete requests storing the VALUE_NONE sentinel instead of
// encoding value (Delete is "put NONE").
func (g *Generation[K, V]) Put(rec *guard.Record, key K, hash uint64, cond Condition, value V, isDelete bool, expected V) Outcome[V] {
	for {
		idx, found := g.lookup(key, hash)
		if idx == noIndex && !found {
			return Outcome[V]{Result: Full}
		}

		if !found {
			if cond == IfExists || cond == IfMatch {
				return Outcome[V]{Result: Rejected}
			}
			newKey := g.cfg.KeyCodec.Encode(key)
			if !word.CAS(&g.slots[idx].key, word.None, newKey) {
				continue // another writer won the key-install race; retry lookup
			}
			if rec != nil {
				rec.AddKeyInstall(1)
			}
		}

		cell := &g.slots[idx].val
		raw := word.Load(cell)

		for {
			if word.IsCopying(raw) {
				g.copy(idx)
				return Outcome[V]{Result: Full}
			}

			prior := word.Pure(raw)
			priorLive := prior != word.None && prior != word.Baby

			if !g.conditionHolds(cond, priorLive, prior, expected) {
				return Outcome[V]{Result: Rejected}
			}

			var newRaw word.Word
			if isDelete {
				newRaw = word.None
			} else {
				newRaw = g.cfg.ValueCodec.Encode(value)
			}

			if word.CAS(cell, raw, newRaw) {
				out := Outcome[V]{Result: OK, PriorLive: priorLive}
				if priorLive {
					// decode before afterPut: it may release prior's box
					out.Prior = g.cfg.ValueCodec.Decode(prior)
				}
				g.afterPut(rec, priorLive, prior, !isDelete)
				return out
			}

			raw = word.Load(cell) // lost the CAS race; retry step 4 with the fresh prior
		}
	}
}

func (g *Generation[K, V]) conditionHolds(cond Condition, priorLive bool, prior word.Word, expected V) bool {
	switch cond {
	case Always:
		return true
	case IfAbsent:
		return !priorLive
	case IfExists:
		return priorLive
	case IfMatch:
		if !priorLive {
			return false
		}
		decoded := g.cfg.ValueCodec.Decode(prior)
		ref := decoded
		if g.cfg.ValueManager != nil {
			// decoded is a read of the live slot's current value, which a
			// concurrent Put/Delete in another goroutine can still free
			// out from under us; ReadAndRef must take its reference on
			// that slot-sourced value, not on the caller's own expected,
			// which is already safe. The temporary ref is dropped again
			// immediately after the comparison below.
			ref = g.cfg.ValueManager.ReadAndRef(decoded)
			defer g.cfg.ValueManager.Unref(ref, 1)
		}
		return g.cfg.ValueEqual(ref, expected)
	default:
		return false
	}
}

// wordReleaser is implemented by codecs that box their payload on the
// heap (word.BoxCodec) and need the raw encoded Word, not the decoded
// value, to release their internal registry entry. Codecs that don't
// need this (IntCodec) simply don't implement it.
type wordReleaser interface {
	Release(word.Word)
}

func (g *Generation[K, V]) afterPut(rec *guard.Record, wasLive bool, priorPure word.Word, nowLive bool) {
	if wasLive != nowLive {
		if nowLive {
			g.approxAlive.Add(1)
			if rec != nil {
				rec.AddLive(1)
			}
		} else {
			g.approxAlive.Add(-1)
			if rec != nil {
				rec.AddLive(-1)
			}
		}
	}
	if wasLive {
		if g.cfg.ValueManager != nil {
			g.cfg.ValueManager.Unref(g.cfg.ValueCodec.Decode(priorPure), 1)
		}
		if rel, ok := g.cfg.ValueCodec.(wordReleaser); ok {
			rel.Release(priorPure)
		}
	}
}

// installCopy is the internal COPYING-conditioned put used only by the
// migration copier: it succeeds only when the destination slot's
// prior pure value is
// BABY, so a racing direct Put into the successor always wins over a
// stale migration write.
func (g *Generation[K, V]) installCopy(key K, hash uint64, raw word.Word) (full bool) {
	for {
		idx, found := g.lookup(key, hash)
		if idx == noIndex && !found {
			return true
		}
		if !found {
			newKey := g.cfg.KeyCodec.Encode(key)
			if !word.CAS(&g.slots[idx].key, word.None, newKey) {
				continue
			}
		}

		cell := &g.slots[idx].val
		cur := word.Load(cell)
		if word.IsCopying(cur) {
			g.copy(idx)
			return true
		}
		if word.Pure(cur) != word.Baby {
			// A fresher direct write already landed here; our copy is
			// superseded, not blocked — not "full".
			return false
		}
		if word.CAS(cell, cur, raw) {
			g.approxAlive.Add(1)
			return false
		}
		// lost the race; retry from the lookup
	}
}
