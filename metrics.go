package lfmap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// mapMetrics is the per-instance Prometheus collector set, grounded on
// friggdb/pool's metricQueryQueueLength/metricQueryQueueMax pattern of
// one struct of promauto-registered collectors per component instance.
type mapMetrics struct {
	generationCount    prometheus.Gauge
	migrationsTotal    prometheus.Counter
	retiredGenerations prometheus.Counter
	liveKeys           prometheus.Gauge
}

func newMapMetrics(reg prometheus.Registerer, name string) *mapMetrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(prometheus.WrapRegistererWith(prometheus.Labels{"map": name}, reg))
	mm := &mapMetrics{
		generationCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lfmap",
			Name:      "generation_count",
			Help:      "Number of generations currently reachable from this map's head.",
		}),
		migrationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lfmap",
			Name:      "migrations_total",
			Help:      "Total number of generation successor elections triggered.",
		}),
		retiredGenerations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lfmap",
			Name:      "retired_generations_total",
			Help:      "Total number of generations retired and reclaimed.",
		}),
		liveKeys: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lfmap",
			Name:      "live_keys",
			Help:      "Approximate number of live keys in the head generation, as last observed via ApproxSize.",
		}),
	}
	// a new map starts with its first generation already reachable
	mm.generationCount.Set(1)
	return mm
}

func (m *mapMetrics) onMigration() {
	if m == nil {
		return
	}
	m.migrationsTotal.Inc()
	m.generationCount.Inc()
}

func (m *mapMetrics) onRetire() {
	if m == nil {
		return
	}
	m.retiredGenerations.Inc()
	m.generationCount.Dec()
}

func (m *mapMetrics) setLiveKeys(n int64) {
	if m == nil {
		return
	}
	m.liveKeys.Set(float64(n))
}
