// Package boundedwaitgroup provides a WaitGroup that also bounds the
// number of goroutines running concurrently, used by Map.PutAllFrom to
// cap how many Put calls run against the destination map at once
// during a bulk copy.
package boundedwaitgroup

import "sync"

// BoundedWaitGroup behaves like sync.WaitGroup, except Add blocks once
// capacity outstanding Add calls haven't yet been matched by Done.
type BoundedWaitGroup struct {
	wg sync.WaitGroup
	ch chan struct{}
}

// New constructs a BoundedWaitGroup that allows at most capacity
// concurrent in-flight units of work. capacity must be greater than
// zero.
func New(capacity uint) BoundedWaitGroup {
	if capacity == 0 {
		panic("boundedwaitgroup: capacity must be greater than zero")
	}
	return BoundedWaitGroup{ch: make(chan struct{}, capacity)}
}

// Add reserves delta slots, blocking while capacity is exhausted.
func (bg *BoundedWaitGroup) Add(delta int) {
	for i := 0; i < delta; i++ {
		bg.ch <- struct{}{}
	}
	bg.wg.Add(delta)
}

// Done releases one slot reserved by Add.
func (bg *BoundedWaitGroup) Done() {
	<-bg.ch
	bg.wg.Done()
}

// Wait blocks until every reserved slot has been released.
func (bg *BoundedWaitGroup) Wait() {
	bg.wg.Wait()
}
