package lfmap

import (
	"github.com/grafana/lfmap/internal/guard"
	"github.com/grafana/lfmap/internal/table"
)

// PinnedGuard lets a caller hold one guard.Record across several
// operations instead of paying the Acquire/Release cost per call.
// Each method here is the "_no_guarding" variant of the corresponding
// Map method: it assumes the caller already holds a pin and performs
// no Acquire/Pin/Unpin/Release itself.
type PinnedGuard[K comparable, V any] struct {
	m   *Map[K, V]
	rec *guard.Record
}

// Pin acquires and pins a guard.Record for m, returning a PinnedGuard
// that must be released with Unpin once the caller is done issuing
// _no_guarding calls.
func (m *Map[K, V]) Pin() *PinnedGuard[K, V] {
	rec := m.guards.Acquire()
	rec.Pin(m.currentGenNumber)
	return &PinnedGuard[K, V]{m: m, rec: rec}
}

// Unpin releases this PinnedGuard's Record back to the map's free
// list. The PinnedGuard must not be used again afterward.
func (p *PinnedGuard[K, V]) Unpin() {
	p.rec.Unpin()
	p.m.guards.Release(p.rec)
}

// GetNoGuarding is Map.Get without acquiring a fresh guard.
func (p *PinnedGuard[K, V]) GetNoGuarding(key K) (V, bool) {
	return p.m.getLocked(p.rec, key)
}

// PutNoGuarding is Map.Put without acquiring a fresh guard.
func (p *PinnedGuard[K, V]) PutNoGuarding(key K, value V) {
	p.m.putLocked(p.rec, key, table.Always, value, false, zeroOf[V]())
}

// PutIfMatchNoGuarding is Map.PutIfMatch without acquiring a fresh
// guard.
func (p *PinnedGuard[K, V]) PutIfMatchNoGuarding(key K, newValue, expected V) bool {
	return p.m.putLocked(p.rec, key, table.IfMatch, newValue, false, expected)
}

// PutIfAbsentNoGuarding is Map.PutIfAbsent without acquiring a fresh
// guard.
func (p *PinnedGuard[K, V]) PutIfAbsentNoGuarding(key K, value V) bool {
	return p.m.putLocked(p.rec, key, table.IfAbsent, value, false, zeroOf[V]())
}

// PutIfExistsNoGuarding is Map.PutIfExists without acquiring a fresh
// guard.
func (p *PinnedGuard[K, V]) PutIfExistsNoGuarding(key K, value V) bool {
	return p.m.putLocked(p.rec, key, table.IfExists, value, false, zeroOf[V]())
}

// DeleteNoGuarding is Map.Delete without acquiring a fresh guard.
func (p *PinnedGuard[K, V]) DeleteNoGuarding(key K) bool {
	return p.m.putLocked(p.rec, key, table.IfExists, zeroOf[V](), true, zeroOf[V]())
}

// DeleteIfMatchNoGuarding is Map.DeleteIfMatch without acquiring a
// fresh guard.
func (p *PinnedGuard[K, V]) DeleteIfMatchNoGuarding(key K, expected V) bool {
	return p.m.putLocked(p.rec, key, table.IfMatch, zeroOf[V](), true, expected)
}
