package guard

import "sync/atomic"

var fenceWord atomic.Int64

// fence issues a full memory barrier. Go's memory model does not
// expose an explicit fence primitive; a CAS on a throwaway word is the
// standard portable stand-in (every architecture Go supports lowers
// atomic CAS to a full barrier instruction), which is what Pin needs
// between publishing guardedGen and re-reading the map's generation
// number.
func fence() {
	fenceWord.CompareAndSwap(fenceWord.Load(), fenceWord.Load()+1)
}
