package lfmap

import "github.com/grafana/lfmap/internal/table"

// Iterator walks a single-threaded snapshot of every live pair
// reachable from the map's head generation at the moment Iterate was
// called. It gives no stability guarantee against concurrent
// mutation: a key deleted after the snapshot was taken may still be
// returned, and a key inserted after may be missed.
type Iterator[K comparable, V any] struct {
	pairs []table.Pair[K, V]
	pos   int
}

// Iterate snapshots every generation reachable from head, in
// oldest-to-newest order, returning the last value seen for each key
// (a later generation's copy of a key supersedes an earlier one still
// mid-migration).
func (m *Map[K, V]) Iterate() *Iterator[K, V] {
	seen := make(map[K]int)
	var pairs []table.Pair[K, V]
	for g := m.head.Load(); g != nil; g = g.Next() {
		batch := g.Snapshot(nil)
		for _, p := range batch {
			if idx, ok := seen[p.Key]; ok {
				pairs[idx] = p
				continue
			}
			seen[p.Key] = len(pairs)
			pairs = append(pairs, p)
		}
	}
	return &Iterator[K, V]{pairs: pairs, pos: -1}
}

// Next advances the iterator, returning false once exhausted.
func (it *Iterator[K, V]) Next() bool {
	it.pos++
	return it.pos < len(it.pairs)
}

// Key returns the current pair's key. Valid only after a Next that
// returned true.
func (it *Iterator[K, V]) Key() K { return it.pairs[it.pos].Key }

// Value returns the current pair's value. Valid only after a Next that
// returned true.
func (it *Iterator[K, V]) Value() V { return it.pairs[it.pos].Value }

// Len reports the total number of pairs this snapshot holds.
func (it *Iterator[K, V]) Len() int { return len(it.pairs) }
