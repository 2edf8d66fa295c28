// Package table implements one generation of the lock-free map: the
// fixed-size open-addressed slot array, the per-slot state machine,
// the probe/lookup logic, and the copy-to-successor worker that
// drives incremental migration.
package table

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/grafana/lfmap/internal/word"
)

const noIndex = ^uint64(0)

type slot struct {
	key word.Cell
	val word.Cell
}

// Generation is one open-addressed table version. Generations form a
// forward-linked chain via next during migration.
type Generation[K comparable, V any] struct {
	cfg *Config[K, V]

	size uint64
	mask uint64
	slots []slot

	maxProbe    atomic.Int64 // running minimum remaining-probe budget
	isFull      atomic.Bool
	approxAlive atomic.Int64

	copiedCount  atomic.Uint64
	copyTaskSize uint64

	next      atomic.Pointer[Generation[K, V]]
	nextToDel atomic.Pointer[Generation[K, V]] // retirement-list link

	genNumber uint64

	// successorMu guards successor creation: the first thread to see
	// IsFull elects the successor's size and installs it exactly once.
	// sync.Mutex itself blocks via a futex once contended on Linux, so
	// this is the idiomatic Go primitive for a blocking mutex (see
	// DESIGN.md).
	successorMu sync.Mutex
}

// New allocates one generation with the given power-of-two size.
func New[K comparable, V any](cfg *Config[K, V], size uint64, genNumber uint64) *Generation[K, V] {
	if size == 0 || size&(size-1) != 0 {
		panic("lfmap: generation size must be a power of two")
	}
	g := &Generation[K, V]{
		cfg:       cfg,
		size:      size,
		mask:      size - 1,
		slots:     make([]slot, size),
		genNumber: genNumber,
	}
	// A freshly allocated Go array zero-initializes every cell to 0, but
	// KEY_NONE is encoded at the top of the usable range (word.None), not
	// at 0 — so every key cell must be explicitly seeded with the empty
	// sentinel before any probe can trust kw == word.None to mean "free".
	// Value cells likewise start as BABY (never held a user value), since
	// 0 is a legitimate payload.
	for i := range g.slots {
		g.slots[i].key.Store(word.None)
		g.slots[i].val.Store(word.Baby)
	}
	g.maxProbe.Store(int64(size))
	return g
}

// copyTaskSize computes how many slots a single cooperative drain
// visit copies. nextSize is the successor's slot count: the pacing
// term compares this generation's size against the destination it is
// draining into, so it can only be computed once a successor has
// actually been elected (see EnsureSuccessor).
func copyTaskSize(size, nextSize uint64, density float64) uint64 {
	logSize := uint64(math.Ceil(math.Log2(float64(size)))) + 1
	alt := uint64(math.Ceil(2 * float64(size) / (density*float64(nextSize) + 1)))
	if alt > logSize {
		return alt
	}
	return logSize
}

// SuccessorSize computes the smallest power of two at least
// alive/density, floored at 1.
func SuccessorSize(alive int64, density float64) uint64 {
	if alive < 0 {
		alive = 0
	}
	target := math.Ceil(float64(alive) / density)
	if target < 1 {
		target = 1
	}
	size := uint64(1)
	for float64(size) < target {
		size <<= 1
	}
	return size
}

// Size returns the fixed slot count of this generation.
func (g *Generation[K, V]) Size() uint64 { return g.size }

// GenNumber returns this generation's monotonic identifier.
func (g *Generation[K, V]) GenNumber() uint64 { return g.genNumber }

// IsFull reports the sticky is-full flag.
func (g *Generation[K, V]) IsFull() bool { return g.isFull.Load() }

// ApproxAlive returns the approximate live-key count; it is a
// heuristic that tolerates approximate reads under concurrent
// mutation.
func (g *Generation[K, V]) ApproxAlive() int64 { return g.approxAlive.Load() }

// Next returns the successor generation, or nil if none has been
// elected yet.
func (g *Generation[K, V]) Next() *Generation[K, V] { return g.next.Load() }

// NextToDelete returns/sets this generation's retirement-list link.
func (g *Generation[K, V]) NextToDelete() *Generation[K, V] { return g.nextToDel.Load() }
func (g *Generation[K, V]) SetNextToDelete(n *Generation[K, V]) { g.nextToDel.Store(n) }

// CopiedCount returns the number of slots claimed for copying so far.
func (g *Generation[K, V]) CopiedCount() uint64 { return g.copiedCount.Load() }

// EnsureSuccessor elects this generation's successor exactly once,
// under successorMu, sized from the current approximate alive count.
func (g *Generation[K, V]) EnsureSuccessor(nextGen uint64) *Generation[K, V] {
	if s := g.next.Load(); s != nil {
		return s
	}
	g.successorMu.Lock()
	defer g.successorMu.Unlock()
	if s := g.next.Load(); s != nil {
		return s
	}
	size := SuccessorSize(g.approxAlive.Load(), g.cfg.Density)
	succ := New(g.cfg, size, nextGen)
	// copyTaskSize's pacing formula needs the successor's slot count,
	// which only exists from this point on; set it before publishing
	// next so every DoCopyTask call that observes g.next != nil also
	// observes the correct drain size.
	g.copyTaskSize = copyTaskSize(g.size, succ.size, g.cfg.Density)
	g.next.Store(succ)
	return succ
}

func clampRemaining(examined, size uint64) int64 {
	if examined > size {
		examined = size
	}
	return int64(size - examined)
}
