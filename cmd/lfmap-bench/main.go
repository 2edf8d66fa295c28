// Command lfmap-bench load-tests an lfmap.Map under concurrent
// mixed-operation traffic and prints a throughput report, in the
// style of cmd/tempo-cli's flag-driven, tablewriter-reported tools.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/grafana/lfmap"
)

func main() {
	var (
		duration   = flag.Duration("duration", 5*time.Second, "how long to run the load test")
		workers    = flag.Int("workers", 8, "number of concurrent load-generator workers")
		queueDepth = flag.Int("queue-depth", 10000, "max in-flight jobs")
		keySpace   = flag.Int("keyspace", 100000, "number of distinct integer keys to draw from")
		configPath = flag.String("config", "", "optional YAML scenario config overriding the flags above")
	)
	flag.Parse()

	scenario := &Scenario{
		Duration:   *duration,
		Workers:    *workers,
		QueueDepth: *queueDepth,
		KeySpace:   *keySpace,
	}
	if *configPath != "" {
		loaded, err := LoadScenario(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "lfmap-bench:", err)
			os.Exit(1)
		}
		scenario = loaded
	}

	runID := uuid.New().String()
	fmt.Printf("lfmap-bench run %s: %s\n", runID, scenario.String())

	m := lfmap.New[int64, int64](
		lfmap.WithIntegerKeys[int64, int64](),
		lfmap.WithIntegerValues[int64, int64](),
		lfmap.WithHasher[int64, int64](lfmap.IntHasher[int64]()),
	)
	defer m.Close()

	report, err := Run(m, scenario)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lfmap-bench:", err)
		os.Exit(1)
	}

	PrintReport(os.Stdout, runID, report)
}

// randomKey picks a uniformly distributed key within the scenario's
// configured key space. The load generator in run.go draws its keys
// from its own per-worker rand.Rand instead.
func randomKey(keySpace int) int64 {
	return int64(rand.Intn(keySpace))
}
