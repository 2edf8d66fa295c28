package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/atomic"
)

const queueLengthReportInterval = 15 * time.Second

var (
	metricQueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lfmap_bench",
		Name:      "queue_length",
		Help:      "Current number of queued load-generator jobs.",
	})
	metricQueueMax = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lfmap_bench",
		Name:      "queue_max",
		Help:      "Configured maximum queue depth.",
	})
)

// JobFunc is one unit of load-generator work: it performs some number
// of Map operations and reports how many it completed and how long
// they took.
type JobFunc func() (opResult, error)

// opResult is one job's contribution to the run-wide report.
type opResult struct {
	ops      int
	duration time.Duration
}

type job struct {
	fn JobFunc

	results chan<- opResult
	errs    chan<- error
}

// PoolConfig sizes a Pool.
type PoolConfig struct {
	MaxWorkers int
	QueueDepth int
}

// DefaultPoolConfig returns reasonable worker/queue defaults for a
// single load-generator run.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxWorkers: 30,
		QueueDepth: 10000,
	}
}

// Pool runs JobFuncs across a fixed worker goroutine count, pulling
// from a buffered channel and reporting (count, duration) pairs for
// throughput measurement.
type Pool struct {
	cfg       *PoolConfig
	size      *atomic.Int32
	workQueue chan *job
}

// NewPool constructs a Pool and starts its fixed worker goroutines.
func NewPool(cfg *PoolConfig) *Pool {
	if cfg == nil {
		cfg = DefaultPoolConfig()
	}
	p := &Pool{
		cfg:       cfg,
		size:      atomic.NewInt32(0),
		workQueue: make(chan *job, cfg.QueueDepth),
	}
	for i := 0; i < cfg.MaxWorkers; i++ {
		go p.worker()
	}
	metricQueueMax.Set(float64(cfg.QueueDepth))
	go p.reportQueueLength()
	return p
}

// RunJobs submits n identical jobs (each running fn once) and blocks
// until every job has completed, returning the aggregate op count and
// total wall-clock duration, or the first error encountered.
func (p *Pool) RunJobs(n int, fn JobFunc) (opResult, error) {
	if int(p.size.Load())+n > p.cfg.QueueDepth {
		return opResult{}, fmt.Errorf("lfmap-bench: queue doesn't have room for %d jobs", n)
	}

	results := make(chan opResult, n)
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		j := &job{fn: fn, results: results, errs: errs}
		select {
		case p.workQueue <- j:
			p.size.Inc()
		default:
			return opResult{}, fmt.Errorf("lfmap-bench: failed to enqueue job, queue full")
		}
	}

	var total opResult
	for i := 0; i < n; i++ {
		select {
		case r := <-results:
			total.ops += r.ops
			if r.duration > total.duration {
				total.duration = r.duration
			}
		case err := <-errs:
			return opResult{}, err
		}
	}
	return total, nil
}

// Shutdown stops accepting new work. In-flight jobs still complete.
func (p *Pool) Shutdown() {
	close(p.workQueue)
}

func (p *Pool) worker() {
	for j := range p.workQueue {
		p.size.Dec()
		r, err := j.fn()
		if err != nil {
			j.errs <- err
			continue
		}
		j.results <- r
	}
}

func (p *Pool) reportQueueLength() {
	ticker := time.NewTicker(queueLengthReportInterval)
	defer ticker.Stop()
	for range ticker.C {
		metricQueueLength.Set(float64(p.size.Load()))
	}
}
