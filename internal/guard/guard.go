// Package guard implements the epoch-style guard mechanism that makes
// it safe to free a retired table generation while other operations
// may still be traversing it. A Record is not bound to an OS thread —
// Go exposes no stable, user-visible thread identity for a goroutine —
// so Records live on a lock-free free list and are borrowed for the
// duration of one facade call instead.
package guard

import (
	"math"
	"sync/atomic"
)

// NoTable is the guardedGen value meaning "not currently pinned".
const NoTable int64 = -1

// cacheLine is the assumed cache line size used to pad Record so that
// two goroutines using different Records do not bounce the same line.
const cacheLine = 64

// Record is one thread/goroutine's guard slot. Fields used on the hot
// pin/unpin path (guardedGen) are padded on both sides; Records are
// never removed from their List once linked, only returned to the
// free pool by zeroing owner.
type Record struct {
	owner atomic.Uint64 // 0 == NO_OWNER

	_          [cacheLine - 8]byte
	guardedGen atomic.Int64
	_          [cacheLine - 8]byte

	forbidReclaim atomic.Bool
	keyInstalls   atomic.Int64
	liveDelta     atomic.Int64

	next atomic.Pointer[Record]
}

func newRecord() *Record {
	r := &Record{}
	r.guardedGen.Store(NoTable)
	return r
}

// GuardedGeneration returns the generation number this record is
// currently pinned to, or NoTable.
func (r *Record) GuardedGeneration() int64 { return r.guardedGen.Load() }

// ForbidReclaim reports whether this record currently forbids
// reclamation (set while executing one migration copy step).
func (r *Record) ForbidReclaim() bool { return r.forbidReclaim.Load() }

// SetForbidReclaim sets or clears the forbid-reclaim flag.
func (r *Record) SetForbidReclaim(v bool) { r.forbidReclaim.Store(v) }

// AddKeyInstall bumps this record's approximate key-installation
// counter, used only to drive the heuristic is-full threshold.
func (r *Record) AddKeyInstall(delta int64) { r.keyInstalls.Add(delta) }

// AddLive bumps this record's approximate live-entry delta.
func (r *Record) AddLive(delta int64) { r.liveDelta.Add(delta) }

// KeyInstalls returns the approximate key-installation counter.
func (r *Record) KeyInstalls() int64 { return r.keyInstalls.Load() }

// LiveDelta returns the approximate live-entry delta.
func (r *Record) LiveDelta() int64 { return r.liveDelta.Load() }

// Pin publishes guardedGen and re-reads currentGen via a full fence,
// retrying until the generation observed before and after the fence
// agree. The returned generation number is the one the caller is now
// protecting from reclamation.
func (r *Record) Pin(currentGen func() int64) int64 {
	for {
		gen := currentGen()
		r.guardedGen.Store(gen)
		fence()
		if again := currentGen(); again == gen {
			return gen
		}
		// the head advanced between our read and the fence; retry
		// with the newer generation.
	}
}

// Unpin releases this record's pin.
func (r *Record) Unpin() { r.guardedGen.Store(NoTable) }

// minOf returns the smaller of a and b; used on the MinGuarded scan
// path.
func minOf(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// infinity is the "no guard is active" value returned by List.MinGuarded.
const infinity = int64(math.MaxInt64)
