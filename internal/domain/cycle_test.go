package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycleAt(t *testing.T) {
	tests := []struct {
		name     string
		ref      time.Time
		expected ModelCycle
	}{
		{
			"afternoon maps to 12z",
			time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
			ModelCycle{2024, time.January, 1, 12},
		},
		{
			"exact cycle hour",
			time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC),
			ModelCycle{2024, time.January, 1, 6},
		},
		{
			"just before midnight maps to 18z",
			time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC),
			ModelCycle{2024, time.January, 1, 18},
		},
		{
			"early morning maps to 00z",
			time.Date(2024, 1, 1, 2, 30, 0, 0, time.UTC),
			ModelCycle{2024, time.January, 1, 0},
		},
		{
			"non-UTC reference is converted",
			time.Date(2024, 1, 1, 1, 0, 0, 0, time.FixedZone("EST", -5*3600)), // 06:00 UTC
			ModelCycle{2024, time.January, 1, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CycleAt(tt.ref))
		})
	}
}

func TestMakeCycle(t *testing.T) {
	t.Run("canonical hours accepted", func(t *testing.T) {
		for _, h := range []int{0, 6, 12, 18} {
			_, err := MakeCycle(2024, time.January, 1, h)
			require.NoError(t, err)
		}
	})

	t.Run("non-canonical hour rejected", func(t *testing.T) {
		for _, h := range []int{-6, 3, 7, 19, 24} {
			_, err := MakeCycle(2024, time.January, 1, h)
			require.Error(t, err, "hour %d", h)
		}
	})
}

func TestModelCycle_Prev(t *testing.T) {
	t.Run("same day", func(t *testing.T) {
		c := ModelCycle{2024, time.January, 1, 12}
		assert.Equal(t, ModelCycle{2024, time.January, 1, 6}, c.Prev())
	})

	t.Run("rolls back to prior day 18z", func(t *testing.T) {
		c := ModelCycle{2024, time.January, 1, 0}
		assert.Equal(t, ModelCycle{2023, time.December, 31, 18}, c.Prev())
	})
}

func TestCandidateCycles(t *testing.T) {
	ref := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)
	candidates := CandidateCycles(ref, 8)

	require.Len(t, candidates, 8)

	for i, c := range candidates {
		assert.Contains(t, []int{0, 6, 12, 18}, c.Hour, "candidate %d", i)
		assert.False(t, c.Time().After(ref), "candidate %d in the future", i)
		if i > 0 {
			assert.True(t, c.Before(candidates[i-1]), "candidates not strictly descending at %d", i)
			assert.Equal(t, CycleInterval, candidates[i-1].Time().Sub(c.Time()))
		}
	}

	assert.Equal(t, ModelCycle{2024, time.January, 1, 12}, candidates[0])
	assert.Equal(t, ModelCycle{2023, time.December, 31, 18}, candidates[3])
}

func TestModelCycle_Formatting(t *testing.T) {
	c := ModelCycle{2024, time.January, 1, 6}
	assert.Equal(t, "20240101", c.YMD())
	assert.Equal(t, "06", c.HH())
	assert.Equal(t, "20240101 06z", c.String())
	assert.Equal(t, "2024-01-01 06:00 UTC", c.Label())
	assert.Equal(t, time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC), c.Time())
}
