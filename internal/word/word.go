// Package word defines the reserved sentinel values and the per-slot
// state machine shared by every table generation: the four control
// tokens NONE, BABY, COPIED, DELETED, the COPYING flag, and the
// compare-and-set primitives used to move a slot's value cell through
// its lattice.
//
// Two key/value representations are supported and must agree on
// external behavior: integer payloads (IntCodec) and pointer/boxed
// payloads (BoxCodec). Both are realized over the same 64-bit Word so
// the table core never has to special-case a representation.
package word

import "sync/atomic"

// Word is the machine-width value a slot's key or value cell holds.
type Word = uint64

// Cell is the atomic storage for one key or value slot.
type Cell = atomic.Uint64

const (
	// CopyingBit marks a value cell as mid-migration. Once set it is
	// never cleared within a generation (spec: COPYING monotone).
	CopyingBit Word = 1 << 63

	// valueMask covers the usable payload range; real values must fit
	// under Deleted, the lowest of the four reserved sentinels.
	valueMask Word = CopyingBit - 1
)

// Reserved sentinels, chosen at the top of the 63-bit usable range so
// they sit outside the user-value range for both codecs; top-of-range
// is used consistently for both the integer and the pointer/boxed
// encoding (see DESIGN.md).
const (
	None    Word = valueMask
	Baby    Word = valueMask - 1
	Copied  Word = valueMask - 2
	Deleted Word = valueMask - 3
)

// MaxValue is the largest payload value a codec may encode.
const MaxValue = Deleted - 1

// Pure strips the COPYING flag, returning the underlying sentinel or
// payload value.
func Pure(w Word) Word { return w &^ CopyingBit }

// IsCopying reports whether w carries the COPYING flag.
func IsCopying(w Word) bool { return w&CopyingBit != 0 }

// IsReserved reports whether the pure value w is one of the four
// control sentinels.
func IsReserved(w Word) bool { return Pure(w) >= Deleted }

// SetCopying atomically ORs the COPYING flag into cell and returns the
// value observed immediately before the flip, along with whether this
// call is the one that performed the flip (false if it was already
// set).
func SetCopying(cell *Cell) (before Word, flipped bool) {
	for {
		cur := cell.Load()
		if cur&CopyingBit != 0 {
			return cur, false
		}
		if cell.CompareAndSwap(cur, cur|CopyingBit) {
			return cur, true
		}
	}
}

// CAS compares-and-swaps cell from old to new, both taken as full
// (possibly COPYING-flagged) words.
func CAS(cell *Cell, old, new Word) bool {
	return cell.CompareAndSwap(old, new)
}

// Load atomically reads cell.
func Load(cell *Cell) Word { return cell.Load() }

// Store atomically writes cell, bypassing CAS. Only safe for the
// initial key installation race (handled via CAS elsewhere) and for
// tests.
func Store(cell *Cell, w Word) { cell.Store(w) }
