package markov_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtmetrics/marginflow/internal/markov"
)

func constantSeries(margin, n int) *markov.Series {
	s := &markov.Series{
		Elapsed: make([]float64, n),
		Away:    make([]int, n),
		Home:    make([]int, n),
		Margin:  make([]int, n),
	}
	for i := 0; i < n; i++ {
		s.Elapsed[i] = float64(i) * markov.StepSeconds
		s.Margin[i] = margin
	}
	return s
}

func TestEstimate_ConstantMarginIsDiagonal(t *testing.T) {
	const margin = 7
	series := constantSeries(margin, 1000)

	for _, lag := range []int{1, 10, 100, 999} {
		m, err := markov.Estimate(series, lag, 20)
		require.NoError(t, err)

		bucket := m.Bucket(margin)
		expected := int64(1000 - lag)
		assert.Equal(t, expected, m.Counts[bucket][bucket], "lag %d", lag)

		var total int64
		for i := range m.Counts {
			for j := range m.Counts[i] {
				total += m.Counts[i][j]
			}
		}
		assert.Equal(t, expected, total, "all mass sits on the diagonal for lag %d", lag)
	}
}

func TestEstimate_SingleTransition(t *testing.T) {
	series := constantSeries(0, 2)
	series.Margin[1] = 5

	m, err := markov.Estimate(series, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(1), m.Counts[m.Bucket(0)][m.Bucket(5)])
}

func TestEstimate_ClampsOutOfRangeMargins(t *testing.T) {
	series := constantSeries(0, 10)
	for i := range series.Margin {
		series.Margin[i] = 99 // far beyond the bucket range
	}

	m, err := markov.Estimate(series, 1, 5)
	require.NoError(t, err)

	edge := m.Bucket(5)
	assert.Equal(t, m.Size()-1, edge)
	assert.Equal(t, int64(9), m.Counts[edge][edge], "out-of-range margins land in the boundary bucket")
}

func TestEstimate_InvalidArguments(t *testing.T) {
	series := constantSeries(0, 100)

	_, err := markov.Estimate(nil, 1, 10)
	assert.Error(t, err)

	_, err = markov.Estimate(series, 0, 10)
	assert.Error(t, err)

	_, err = markov.Estimate(series, 100, 10)
	assert.Error(t, err, "lag must leave at least one pair")

	_, err = markov.Estimate(series, 1, 0)
	assert.Error(t, err)
}

func TestBucketRoundTrip(t *testing.T) {
	m := &markov.TransitionMatrix{MaxDifferential: 50}

	assert.Equal(t, 101, m.Size())
	assert.Equal(t, 0, m.Bucket(-50))
	assert.Equal(t, 50, m.Bucket(0))
	assert.Equal(t, 100, m.Bucket(50))
	assert.Equal(t, -50, m.BucketMargin(0))
	assert.Equal(t, 13, m.BucketMargin(m.Bucket(13)))
}

func TestLagSteps(t *testing.T) {
	assert.Equal(t, 10, markov.LagSteps(1.0))
	assert.Equal(t, 1, markov.LagSteps(0.1))
	assert.Equal(t, 200, markov.LagSteps(20.0))
}

func TestRowNormalize(t *testing.T) {
	series := constantSeries(0, 3)
	series.Margin[1] = 1
	series.Margin[2] = 1

	m, err := markov.Estimate(series, 1, 2)
	require.NoError(t, err)

	probs := m.RowNormalize()
	zero := m.Bucket(0)
	one := m.Bucket(1)

	assert.Equal(t, 1.0, probs[zero][one], "0 -> 1 is the only observed transition from 0")
	assert.Equal(t, 1.0, probs[one][one])

	// Unobserved rows stay all-zero.
	var sum float64
	for _, p := range probs[m.Bucket(-2)] {
		sum += p
	}
	assert.Zero(t, sum)
}
