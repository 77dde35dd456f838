package markov

import (
	"fmt"
	"math"
)

// TransitionMatrix is an empirical count matrix of margin transitions on
// the reconstructed grid. Cell (i, j) counts transitions from margin bucket
// i to bucket j observed exactly Lag grid steps apart. Counts are raw;
// RowNormalize derives the probability matrix when a consumer wants one.
type TransitionMatrix struct {
	MaxDifferential int       `json:"max_differential"`
	Lag             int       `json:"lag_steps"`
	Counts          [][]int64 `json:"counts"`
}

// LagSteps converts a lag expressed in seconds into grid steps. The
// steps-based interpretation is canonical; this is the boundary where the
// seconds convention of callers is translated.
func LagSteps(seconds float64) int {
	return int(math.Round(seconds / StepSeconds))
}

// Estimate builds the transition count matrix for a dense series. Margin
// buckets have width 1 and span [-maxDifferential, +maxDifferential];
// margins outside that range are clamped into the boundary buckets rather
// than dropped or wrapped.
func Estimate(series *Series, lagSteps, maxDifferential int) (*TransitionMatrix, error) {
	if series == nil || series.Len() == 0 {
		return nil, fmt.Errorf("series is empty")
	}
	if lagSteps < 1 {
		return nil, fmt.Errorf("lag must be >= 1 step, got %d", lagSteps)
	}
	if lagSteps >= series.Len() {
		return nil, fmt.Errorf("lag %d exceeds series length %d", lagSteps, series.Len())
	}
	if maxDifferential < 1 {
		return nil, fmt.Errorf("max differential must be >= 1, got %d", maxDifferential)
	}

	m := &TransitionMatrix{
		MaxDifferential: maxDifferential,
		Lag:             lagSteps,
	}
	size := m.Size()
	m.Counts = make([][]int64, size)
	for i := range m.Counts {
		m.Counts[i] = make([]int64, size)
	}

	for i := 0; i+lagSteps < series.Len(); i++ {
		from := m.Bucket(series.Margin[i])
		to := m.Bucket(series.Margin[i+lagSteps])
		m.Counts[from][to]++
	}
	return m, nil
}

// Size returns the number of margin buckets per axis.
func (m *TransitionMatrix) Size() int {
	return 2*m.MaxDifferential + 1
}

// Bucket maps a margin to its matrix index, clamping out-of-range margins
// to the boundary buckets.
func (m *TransitionMatrix) Bucket(margin int) int {
	if margin < -m.MaxDifferential {
		margin = -m.MaxDifferential
	}
	if margin > m.MaxDifferential {
		margin = m.MaxDifferential
	}
	return margin + m.MaxDifferential
}

// BucketMargin is the inverse of Bucket: the margin value at a matrix index.
func (m *TransitionMatrix) BucketMargin(index int) int {
	return index - m.MaxDifferential
}

// RowNormalize returns the row-stochastic probability matrix. Rows with no
// observations stay all-zero rather than being given an arbitrary
// distribution.
func (m *TransitionMatrix) RowNormalize() [][]float64 {
	probs := make([][]float64, len(m.Counts))
	for i, row := range m.Counts {
		probs[i] = make([]float64, len(row))
		var total int64
		for _, c := range row {
			total += c
		}
		if total == 0 {
			continue
		}
		for j, c := range row {
			probs[i][j] = float64(c) / float64(total)
		}
	}
	return probs
}
