// Package markov turns sparse play-by-play event streams into dense,
// fixed-step score series and estimates empirical transition matrices of
// the score-margin process.
package markov

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/courtmetrics/marginflow/internal/models"
	"github.com/courtmetrics/marginflow/internal/normalize"
)

const (
	// StepSeconds is the fixed resolution of the reconstructed grid.
	StepSeconds = 0.1

	// RegulationSeconds is the length of a four-period game.
	RegulationSeconds = 2880.0

	regulationPeriodSeconds = 720.0
	overtimePeriodSeconds   = 300.0
)

// Series is a dense, uniformly-sampled reconstruction of one game's score
// evolution. All slices share the same length; every grid point has a
// defined score and margin.
type Series struct {
	Elapsed []float64 `json:"elapsed_seconds"`
	Away    []int     `json:"away_score"`
	Home    []int     `json:"home_score"`
	Margin  []int     `json:"margin"`
}

// Len returns the number of grid points.
func (s *Series) Len() int {
	return len(s.Elapsed)
}

// ElapsedSeconds converts a period number and a period-relative clock string
// ("11:45" or "0:03.2", counting down) into absolute elapsed game seconds.
// Regulation periods are 12 minutes; overtime periods (>= 5) are 5 minutes
// appended after the 48 regulation minutes.
func ElapsedSeconds(period int, clock string) (float64, error) {
	if period < 1 {
		return 0, fmt.Errorf("invalid period %d", period)
	}

	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed clock %q", clock)
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed clock %q: %w", clock, err)
	}
	seconds, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed clock %q: %w", clock, err)
	}
	remaining := float64(minutes)*60 + seconds

	var start, length float64
	if period <= 4 {
		start = float64(period-1) * regulationPeriodSeconds
		length = regulationPeriodSeconds
	} else {
		start = RegulationSeconds + float64(period-5)*overtimePeriodSeconds
		length = overtimePeriodSeconds
	}
	return start + length - remaining, nil
}

// TotalSeconds returns the full game duration implied by the highest period
// present in the events (2880s regulation, extended per overtime period).
func TotalSeconds(events []models.PlayEvent) float64 {
	maxPeriod := 4
	for _, e := range events {
		if e.Period > maxPeriod {
			maxPeriod = e.Period
		}
	}
	return RegulationSeconds + float64(maxPeriod-4)*overtimePeriodSeconds
}

// Reconstruct expands normalized events into a dense series on the 0.1s
// grid: events are left-joined onto the grid by elapsed time, time 0 is
// seeded with a 0-0 score, and every gap is filled forward. Long stretches
// of identical consecutive values are expected for sparse games.
func Reconstruct(events []models.PlayEvent) (*Series, error) {
	total := TotalSeconds(events)
	n := int(math.Round(total / StepSeconds))

	series := &Series{
		Elapsed: make([]float64, n),
		Away:    make([]int, n),
		Home:    make([]int, n),
		Margin:  make([]int, n),
	}

	type point struct{ away, home, margin int }
	sparse := make(map[int]point, len(events))

	for _, e := range events {
		if e.Score == nil {
			continue
		}
		away, home, err := normalize.SplitScore(*e.Score)
		if err != nil {
			continue
		}

		elapsed, err := ElapsedSeconds(e.Period, e.PCTimeString)
		if err != nil {
			continue
		}
		idx := int(math.Round(elapsed / StepSeconds))
		if idx < 0 || idx > n {
			continue
		}
		if idx == n {
			// A buzzer event at the final horn lands one step past the
			// grid; it belongs on the last point.
			idx = n - 1
		}

		margin := home - away
		if e.ScoreMargin != nil {
			margin = *e.ScoreMargin
		}
		sparse[idx] = point{away: away, home: home, margin: margin}
	}

	// The game starts level whether or not an event sits at t=0.
	if _, ok := sparse[0]; !ok {
		sparse[0] = point{}
	}

	last := sparse[0]
	for i := 0; i < n; i++ {
		if p, ok := sparse[i]; ok {
			last = p
		}
		series.Elapsed[i] = float64(i) * StepSeconds
		series.Away[i] = last.away
		series.Home[i] = last.home
		series.Margin[i] = last.margin
	}
	return series, nil
}
