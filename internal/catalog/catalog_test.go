package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pemapp/internal/models"
)

func defs() []MetricDefinition {
	return []MetricDefinition{
		{ID: 1, Dimension: models.DimensionOperability, Question: "q1"},
		{ID: 2, Dimension: models.DimensionOperability, Question: "q2"},
		{ID: 3, Dimension: models.DimensionLearnability, Question: "q3"},
		{ID: 4, Dimension: models.DimensionLearnability, Question: "q4"},
		{ID: 5, Dimension: models.DimensionClarity, Question: "q5"},
		{ID: 6, Dimension: models.DimensionClarity, Question: "q6"},
	}
}

func TestLoad(t *testing.T) {
	cat, err := Load("testdata/metrics.yaml")
	require.NoError(t, err)

	for id := 1; id <= MetricCount; id++ {
		m, ok := cat.Lookup(id)
		require.True(t, ok, "metric %d should exist", id)
		assert.Equal(t, id, m.ID)
		assert.NotEmpty(t, m.Question)
	}

	_, ok := cat.Lookup(7)
	assert.False(t, ok)
	_, ok = cat.Lookup(0)
	assert.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestNewValidation(t *testing.T) {
	t.Run("valid table", func(t *testing.T) {
		cat, err := New(defs())
		require.NoError(t, err)
		assert.Len(t, cat.Metrics(), MetricCount)
	})

	t.Run("wrong count", func(t *testing.T) {
		_, err := New(defs()[:5])
		assert.Error(t, err)
	})

	t.Run("out of order ids", func(t *testing.T) {
		d := defs()
		d[0].ID, d[1].ID = 2, 1
		_, err := New(d)
		assert.Error(t, err)
	})

	t.Run("wrong dimension grouping", func(t *testing.T) {
		d := defs()
		d[2].Dimension = models.DimensionClarity
		_, err := New(d)
		assert.Error(t, err)
	})

	t.Run("empty question text", func(t *testing.T) {
		d := defs()
		d[4].Question = ""
		_, err := New(d)
		assert.Error(t, err)
	})
}

func TestDimensionOrder(t *testing.T) {
	cat, err := New(defs())
	require.NoError(t, err)

	wantDims := []models.Dimension{
		models.DimensionOperability, models.DimensionOperability,
		models.DimensionLearnability, models.DimensionLearnability,
		models.DimensionClarity, models.DimensionClarity,
	}
	for i, m := range cat.Metrics() {
		assert.Equal(t, wantDims[i], m.Dimension, "metric %d", m.ID)
	}
}
