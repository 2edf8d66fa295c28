package main

import (
	"math/rand"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/grafana/lfmap"
)

// Report is the aggregate result of one load-test run.
type Report struct {
	TotalOps   int
	Elapsed    time.Duration
	OpsPerSec  float64
	FinalSize  int
	WorkerRuns int
}

// Run fans out scenario.Workers feeder goroutines with errgroup, each
// of which repeatedly submits single-operation jobs to a bounded Pool
// until scenario.Duration elapses; errgroup carries the first worker
// error back out, and Pool caps how many operations are ever
// in-flight against m at once.
func Run(m *lfmap.Map[int64, int64], scenario *Scenario) (*Report, error) {
	pool := NewPool(&PoolConfig{
		MaxWorkers: scenario.Workers,
		QueueDepth: scenario.QueueDepth,
	})
	defer pool.Shutdown()

	deadline := time.Now().Add(scenario.Duration)
	start := time.Now()
	var totalOps int64

	g := new(errgroup.Group)
	for w := 0; w < scenario.Workers; w++ {
		w := w
		g.Go(func() error {
			return feed(m, pool, scenario, deadline, int64(w), &totalOps)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	return &Report{
		TotalOps:   int(atomic.LoadInt64(&totalOps)),
		Elapsed:    elapsed,
		OpsPerSec:  float64(atomic.LoadInt64(&totalOps)) / elapsed.Seconds(),
		FinalSize:  m.Size(),
		WorkerRuns: scenario.Workers,
	}, nil
}

// feed is one errgroup worker: it holds its own pinned guard across
// many operations (the scoped-pin path) and, for each operation,
// submits a single job to pool so the pool's queue depth still bounds
// how many operations run concurrently process-wide.
func feed(m *lfmap.Map[int64, int64], pool *Pool, scenario *Scenario, deadline time.Time, seed int64, totalOps *int64) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + seed))
	pinned := m.Pin()
	defer pinned.Unpin()

	for time.Now().Before(deadline) {
		key := int64(rng.Intn(scenario.KeySpace))
		choice := rng.Intn(10)

		fn := func() (opResult, error) {
			switch {
			case choice < 6: // 60% reads
				pinned.GetNoGuarding(key)
			case choice < 9: // 30% writes
				pinned.PutNoGuarding(key, rng.Int63())
			default: // 10% deletes
				pinned.DeleteNoGuarding(key)
			}
			return opResult{ops: 1}, nil
		}

		if _, err := pool.RunJobs(1, fn); err != nil {
			return err
		}
		atomic.AddInt64(totalOps, 1)
	}
	return nil
}
