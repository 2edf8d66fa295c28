package lfmap_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/grafana/lfmap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// TestConcurrentMixedLoadLeavesNoStrayGoroutines hammers a map from
// many goroutines with a mix of every operation, then closes it; the
// goleak TestMain check confirms nothing it spawned outlives the test.
func TestConcurrentMixedLoadLeavesNoStrayGoroutines(t *testing.T) {
	m := lfmap.New[int64, int64](
		lfmap.WithInitialSize[int64, int64](4),
		lfmap.WithIntegerKeys[int64, int64](),
		lfmap.WithIntegerValues[int64, int64](),
		lfmap.WithHasher[int64, int64](lfmap.IntHasher[int64]()),
	)

	const goroutines = 16
	const opsPerGoroutine = 2000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		g := int64(g)
		go func() {
			defer wg.Done()
			for i := int64(0); i < opsPerGoroutine; i++ {
				key := (g*opsPerGoroutine + i) % 500
				switch i % 4 {
				case 0:
					m.Put(key, i)
				case 1:
					m.Get(key)
				case 2:
					m.PutIfAbsent(key, i)
				case 3:
					m.Delete(key)
				}
			}
		}()
	}
	wg.Wait()

	assert.NoError(t, m.Close())
}

// TestPinnedGuardAcrossManyCalls exercises the scoped-pin helper under
// concurrent use, one PinnedGuard per goroutine, and confirms Close
// still asserts cleanly once every guard has been unpinned.
func TestPinnedGuardAcrossManyCalls(t *testing.T) {
	m := lfmap.New[int64, int64](
		lfmap.WithIntegerKeys[int64, int64](),
		lfmap.WithIntegerValues[int64, int64](),
		lfmap.WithHasher[int64, int64](lfmap.IntHasher[int64]()),
	)

	var wg sync.WaitGroup
	wg.Add(8)
	for g := 0; g < 8; g++ {
		g := int64(g)
		go func() {
			defer wg.Done()
			p := m.Pin()
			defer p.Unpin()
			for i := int64(0); i < 500; i++ {
				p.PutNoGuarding(g*500+i, i)
				p.GetNoGuarding(g*500 + i)
			}
		}()
	}
	wg.Wait()

	assert.NoError(t, m.Close())
}
