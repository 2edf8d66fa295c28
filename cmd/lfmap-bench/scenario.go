package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario describes one load-test run, loadable from a YAML file the
// same way cmd/tempo/app loads its service configuration.
type Scenario struct {
	Duration   time.Duration `yaml:"duration"`
	Workers    int           `yaml:"workers"`
	QueueDepth int           `yaml:"queue_depth"`
	KeySpace   int           `yaml:"keyspace"`
}

func (s *Scenario) String() string {
	return fmt.Sprintf("workers=%d duration=%s keyspace=%d queue_depth=%d",
		s.Workers, s.Duration, s.KeySpace, s.QueueDepth)
}

// LoadScenario reads a Scenario from a YAML file at path.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario config: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario config: %w", err)
	}
	return &s, nil
}
