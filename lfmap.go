// Package lfmap implements a concurrent, lock-free, open-addressed
// hash table that grows by incremental migration across generations
// while readers and writers continue operating concurrently, using
// epoch-style guards for safe memory reclamation.
package lfmap

import (
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/grafana/lfmap/internal/guard"
	"github.com/grafana/lfmap/internal/table"
	"github.com/grafana/lfmap/pkg/boundedwaitgroup"
)

// putAllConcurrency caps how many Put calls PutAllFrom runs against the
// destination map at once.
const putAllConcurrency = 32

// Map is the public facade over a chain of table generations.
type Map[K comparable, V any] struct {
	head         atomic.Pointer[table.Generation[K, V]]
	headToDelete atomic.Pointer[table.Generation[K, V]]
	genCounter   atomic.Uint64

	cfg    *table.Config[K, V]
	guards *guard.List

	metrics *mapMetrics
	logger  log.Logger

	closed atomic.Bool
}

// New constructs an empty Map. A hash function must be supplied with
// WithHasher for every K, string and integer kinds included: New
// picks no default hasher and panics when none is configured.
func New[K comparable, V any](opts ...Option[K, V]) *Map[K, V] {
	o := defaultOptions[K, V]()
	for _, opt := range opts {
		opt(o)
	}
	cfg := o.buildConfig()

	m := &Map[K, V]{
		cfg:     cfg,
		guards:  &guard.List{},
		metrics: newMapMetrics(o.reg, o.name),
		logger:  o.logger,
	}
	first := table.New(cfg, table.SuccessorSize(int64(o.initialSize), cfg.Density), 0)
	m.head.Store(first)
	return m
}

// currentGenNumber is the generation-number accessor threaded through
// guard.Record.Pin. The pin protocol reads the map's current
// generation, not a specific Generation pointer, since the head can
// advance between the read and the fence.
func (m *Map[K, V]) currentGenNumber() int64 {
	return int64(m.head.Load().GenNumber())
}

// pin borrows a guard Record for the duration of one facade call and
// returns an unpin closure: one borrow per top-level call, collapsing
// the Acquire/Release and pin/unpin steps (see DESIGN.md).
func (m *Map[K, V]) pin() (*guard.Record, func()) {
	rec := m.guards.Acquire()
	rec.Pin(m.currentGenNumber)
	return rec, func() {
		rec.Unpin()
		m.guards.Release(rec)
	}
}

// Get returns the live value stored for key, if any.
func (m *Map[K, V]) Get(key K) (V, bool) {
	rec, done := m.pin()
	defer done()
	return m.getLocked(rec, key)
}

func (m *Map[K, V]) getLocked(rec *guard.Record, key K) (V, bool) {
	hash := m.cfg.Hash(key)
	for g := m.head.Load(); g != nil; g = g.Next() {
		v, status := g.Get(key, hash)
		switch status {
		case table.Found:
			return v, true
		case table.NotHere:
			var zero V
			return zero, false
		case table.ConsultNext:
			m.maybeDriveMigration(rec, g)
			continue
		}
	}
	var zero V
	return zero, false
}

// Put unconditionally stores value for key.
func (m *Map[K, V]) Put(key K, value V) {
	m.put(key, table.Always, value, false, zeroOf[V]())
}

// PutIfMatch stores newValue for key only if the current live value
// equals expected (per the configured value-equality function).
func (m *Map[K, V]) PutIfMatch(key K, newValue, expected V) bool {
	return m.put(key, table.IfMatch, newValue, false, expected)
}

// PutIfAbsent stores value for key only if key currently has no live
// value.
func (m *Map[K, V]) PutIfAbsent(key K, value V) bool {
	return m.put(key, table.IfAbsent, value, false, zeroOf[V]())
}

// PutIfExists stores value for key only if key currently has a live
// value.
func (m *Map[K, V]) PutIfExists(key K, value V) bool {
	return m.put(key, table.IfExists, value, false, zeroOf[V]())
}

// Delete removes key's live value, if any, returning whether a value
// was actually removed.
func (m *Map[K, V]) Delete(key K) bool {
	return m.put(key, table.IfExists, zeroOf[V](), true, zeroOf[V]())
}

// DeleteIfMatch removes key's live value only if it equals expected.
func (m *Map[K, V]) DeleteIfMatch(key K, expected V) bool {
	return m.put(key, table.IfMatch, zeroOf[V](), true, expected)
}

func zeroOf[V any]() V {
	var z V
	return z
}

func (m *Map[K, V]) put(key K, cond table.Condition, value V, isDelete bool, expected V) bool {
	rec, done := m.pin()
	defer done()
	return m.putLocked(rec, key, cond, value, isDelete, expected)
}

func (m *Map[K, V]) putLocked(rec *guard.Record, key K, cond table.Condition, value V, isDelete bool, expected V) bool {
	hash := m.cfg.Hash(key)
	g := m.head.Load()
	for {
		out := g.Put(rec, key, hash, cond, value, isDelete, expected)
		switch out.Result {
		case table.OK:
			if g.IsFull() {
				m.triggerMigration(g)
			}
			return true
		case table.Rejected:
			return false
		case table.Full:
			m.triggerMigration(g)
			m.maybeDriveMigration(rec, g)
			if next := g.Next(); next != nil {
				g = next
			}
			// else: successor hasn't been published by any thread yet
			// (or DoCopyTask hasn't advanced enough); retry against the
			// same generation, which will re-observe Full and keep
			// nudging the migration forward.
		}
	}
}

// triggerMigration elects a successor for g if one isn't already
// active, logging and counting the event. Successor allocation can in
// principle fail (an environment failure, not a logic bug, surfaced as
// an error return rather than a panic); a
// mid-life successor failure here self-heals on the next trigger, so
// it is only logged rather than propagated.
func (m *Map[K, V]) triggerMigration(g *table.Generation[K, V]) {
	if g.Next() != nil {
		return
	}
	next, err := m.ensureSuccessorSafe(g)
	if err != nil {
		level.Debug(m.logger).Log("msg", "successor allocation failed, will retry", "err", err)
		return
	}
	if next != nil {
		level.Debug(m.logger).Log("msg", "migration started", "from_gen", g.GenNumber(), "to_gen", next.GenNumber(), "size", next.Size())
		m.metrics.onMigration()
	}
}

// ensureSuccessorSafe recovers from an allocation panic inside
// EnsureSuccessor (the only way generation allocation can "fail" in
// Go, since make() panics rather than returning an error) and reports
// it as wrapAllocFailure instead of crashing the caller.
func (m *Map[K, V]) ensureSuccessorSafe(g *table.Generation[K, V]) (next *table.Generation[K, V], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = wrapAllocFailure(m.genCounter.Load(), 0)
		}
	}()
	next = g.EnsureSuccessor(m.genCounter.Add(1))
	return next, nil
}

// maybeDriveMigration performs one cooperative copy-task step on g's
// behalf if g has an elected successor, wiring DoCopyTask's hooks to
// this map's head/retirement state.
func (m *Map[K, V]) maybeDriveMigration(rec *guard.Record, g *table.Generation[K, V]) {
	if g.Next() == nil {
		return
	}
	hooks := table.DoCopyTaskHooks{
		IsHead: func() bool { return m.head.Load() == g },
		Retire: func() { m.retire(g) },
	}
	g.DoCopyTask(rec.SetForbidReclaim, hooks)
}

// retire advances head past g (which must be fully migrated) and
// pushes it onto the ABA-safe retirement list for later reclamation.
func (m *Map[K, V]) retire(g *table.Generation[K, V]) {
	next := g.Next()
	if next == nil || !m.head.CompareAndSwap(g, next) {
		return
	}
	level.Debug(m.logger).Log("msg", "generation retired", "gen", g.GenNumber())
	m.metrics.onRetire()

	for {
		old := m.headToDelete.Load()
		g.SetNextToDelete(old)
		if m.headToDelete.CompareAndSwap(old, g) {
			break
		}
	}
	m.tryReclaim()
}

// tryReclaim performs ABA-safe batch-take-and-reinstate reclamation:
// take the whole retirement list in one CAS,
// free every generation whose number is below the minimum guarded
// generation, and CAS any survivors back onto the head in case a
// concurrent retire() pushed more work while we were freeing.
func (m *Map[K, V]) tryReclaim() {
	if m.guards.AnyForbidsReclaim() {
		return
	}
	batch := m.headToDelete.Swap(nil)
	if batch == nil {
		return
	}

	minGuarded := m.guards.MinGuarded()

	var keep *table.Generation[K, V]
	for g := batch; g != nil; {
		next := g.NextToDelete()
		if int64(g.GenNumber()) < minGuarded {
			// eligible for reclamation: nothing guards a generation this
			// old any longer. Go's GC does the actual freeing once no
			// pointer reaches g; we only need to stop pointing at it.
			g.SetNextToDelete(nil)
		} else {
			g.SetNextToDelete(keep)
			keep = g
		}
		g = next
	}

	if keep == nil {
		return
	}
	for {
		old := m.headToDelete.Load()
		tail := keep
		for tail.NextToDelete() != nil {
			tail = tail.NextToDelete()
		}
		tail.SetNextToDelete(old)
		if m.headToDelete.CompareAndSwap(old, keep) {
			return
		}
	}
}

// Size returns the exact number of live keys, computed by walking a
// snapshot of the map the way Iterate does. Size is O(n); callers that
// only need a cheap, eventually-consistent estimate should use
// ApproxSize instead.
func (m *Map[K, V]) Size() int {
	return m.Iterate().Len()
}

// ApproxSize returns the head generation's O(1) live-key counter. It
// tolerates approximate reads under concurrent mutation: a key counted
// here may already have been migrated, deleted, or not yet be visible
// depending on timing.
func (m *Map[K, V]) ApproxSize() int {
	n := m.head.Load().ApproxAlive()
	m.metrics.setLiveKeys(n)
	if n < 0 {
		return 0
	}
	return int(n)
}

// RegisterThread notifies the configured KeyManager/ValueManager that
// a new logical thread of execution will be issuing calls.
func (m *Map[K, V]) RegisterThread() {
	m.cfg.KeyManager.RegisterThread()
	m.cfg.ValueManager.RegisterThread()
}

// ForgetThread is RegisterThread's counterpart, called when a thread
// of execution is done issuing calls.
func (m *Map[K, V]) ForgetThread() {
	m.cfg.KeyManager.ForgetThread()
	m.cfg.ValueManager.ForgetThread()
}

// Close asserts that no guard is currently pinned — calling Close
// while a guard is held is a programmer error — and releases this
// map's resources. Close does not free generation memory explicitly;
// Go's garbage collector reclaims it once Close drops the last
// reachable pointer.
func (m *Map[K, V]) Close() error {
	if m.guards.AnyPinned() {
		panic("lfmap: Close called while a guard is still pinned")
	}
	m.closed.Store(true)
	m.head.Store(nil)
	m.headToDelete.Store(nil)
	return nil
}

// PutAllFrom copies every live pair from a single-threaded snapshot of
// other into m, running up to putAllConcurrency Puts against m at once.
// PutAllFrom takes no lock on other and is not safe to call
// concurrently with writers mutating other; the snapshot itself is
// taken up front, so only the copy into m is parallelized.
func (m *Map[K, V]) PutAllFrom(other *Map[K, V]) {
	bg := boundedwaitgroup.New(putAllConcurrency)
	for it := other.Iterate(); it.Next(); {
		key, value := it.Key(), it.Value()
		bg.Add(1)
		go func() {
			defer bg.Done()
			m.Put(key, value)
		}()
	}
	bg.Wait()
}
