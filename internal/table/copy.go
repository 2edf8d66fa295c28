package table

import "github.com/grafana/lfmap/internal/word"

// copy migrates slot idx to this generation's successor chain. It is
// idempotent: calling it again on an already-terminal slot is a no-op.
func (g *Generation[K, V]) copy(idx uint64) {
	cell := &g.slots[idx].val
	before, flipped := word.SetCopying(cell)
	cur := before
	if flipped {
		cur |= word.CopyingBit
	}
	v := word.Pure(before)

	switch v {
	case word.Deleted, word.Copied:
		return
	case word.Baby:
		word.CAS(cell, cur, word.Copied|word.CopyingBit)
		return
	case word.None:
		word.CAS(cell, cur, word.Deleted|word.CopyingBit)
		return
	}

	keyWord := word.Load(&g.slots[idx].key)
	key := g.cfg.KeyCodec.Decode(keyWord)
	hash := g.cfg.Hash(key)

	for next := g.next.Load(); next != nil; next = next.Next() {
		if !next.installCopy(key, hash, v) {
			word.CAS(cell, cur, word.Copied|word.CopyingBit)
			return
		}
	}
	// The chain ended without a successor able to take the write (or
	// g.next was still nil). The slot is left COPYING without COPIED.
	// DoCopyTask does not revisit an index it has already claimed, so
	// copy() runs on this slot again only when a later getEntry or Put
	// lands on it.
}

// DoCopyTaskHooks lets the facade plug in the head-check and
// retirement-scheduling steps without internal/table importing the
// facade package.
type DoCopyTaskHooks struct {
	IsHead  func() bool
	Retire  func()
}

// DoCopyTask performs one cooperative drain step.
func (g *Generation[K, V]) DoCopyTask(forbid func(bool), h DoCopyTaskHooks) {
	if !h.IsHead() {
		return
	}
	if g.copiedCount.Load() >= g.size {
		h.Retire()
		return
	}

	forbid(true)
	if !h.IsHead() {
		forbid(false)
		return
	}

	start := g.copiedCount.Add(g.copyTaskSize) - g.copyTaskSize
	end := start + g.copyTaskSize
	if end > g.size {
		end = g.size
	}
	for i := start; i < end; i++ {
		g.copy(i)
	}

	forbid(false)

	if g.copiedCount.Load() >= g.size {
		h.Retire()
	}
}
