// Package catalog holds the fixed table of the six ease-of-use evaluation
// questions. It is loaded once at startup from a YAML file and never mutated.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pemapp/internal/models"
)

// MetricDefinition is one evaluation question of the measurement standard.
type MetricDefinition struct {
	ID        int              `yaml:"id" json:"id"`
	Dimension models.Dimension `yaml:"dimension" json:"dimension"`
	Question  string           `yaml:"question" json:"question"`
}

// Catalog is the ordered, immutable set of metric definitions.
type Catalog struct {
	metrics []MetricDefinition
	byID    map[int]MetricDefinition
}

// MetricCount is the number of questions in the measurement standard.
const MetricCount = 6

type catalogFile struct {
	Metrics []MetricDefinition `yaml:"metrics"`
}

// Load reads and validates the metric definitions. The table must contain
// exactly six entries with ids 1..6 in order, grouped two per dimension in
// the order Operability, Learnability, Clarity.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metric catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metric catalog YAML: %w", err)
	}

	return New(file.Metrics)
}

// New builds a catalog from already-parsed definitions, enforcing the fixed
// shape of the standard.
func New(metrics []MetricDefinition) (*Catalog, error) {
	if len(metrics) != MetricCount {
		return nil, fmt.Errorf("metric catalog must contain exactly %d entries, got %d", MetricCount, len(metrics))
	}

	wantDims := []models.Dimension{
		models.DimensionOperability, models.DimensionOperability,
		models.DimensionLearnability, models.DimensionLearnability,
		models.DimensionClarity, models.DimensionClarity,
	}

	byID := make(map[int]MetricDefinition, MetricCount)
	for i, m := range metrics {
		if m.ID != i+1 {
			return nil, fmt.Errorf("metric catalog entry %d has id %d, want %d", i, m.ID, i+1)
		}
		if m.Dimension != wantDims[i] {
			return nil, fmt.Errorf("metric %d belongs to dimension %q, want %q", m.ID, m.Dimension, wantDims[i])
		}
		if m.Question == "" {
			return nil, fmt.Errorf("metric %d has no question text", m.ID)
		}
		byID[m.ID] = m
	}

	return &Catalog{metrics: metrics, byID: byID}, nil
}

// Lookup returns the definition for the given id.
func (c *Catalog) Lookup(id int) (MetricDefinition, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// Metrics returns the definitions in catalog order.
func (c *Catalog) Metrics() []MetricDefinition {
	out := make([]MetricDefinition, len(c.metrics))
	copy(out, c.metrics)
	return out
}
