package markov_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtmetrics/marginflow/internal/markov"
	"github.com/courtmetrics/marginflow/internal/models"
)

func event(period int, clock, score string, margin int) models.PlayEvent {
	return models.PlayEvent{
		Period:       period,
		PCTimeString: clock,
		Score:        &score,
		ScoreMargin:  &margin,
	}
}

func TestElapsedSeconds(t *testing.T) {
	tests := []struct {
		name    string
		period  int
		clock   string
		want    float64
		wantErr bool
	}{
		{name: "tipoff", period: 1, clock: "12:00", want: 0},
		{name: "mid first quarter", period: 1, clock: "6:00", want: 360},
		{name: "end of first quarter", period: 1, clock: "0:00", want: 720},
		{name: "start of fourth", period: 4, clock: "12:00", want: 2160},
		{name: "end of regulation", period: 4, clock: "0:00", want: 2880},
		{name: "start of first overtime", period: 5, clock: "5:00", want: 2880},
		{name: "end of second overtime", period: 6, clock: "0:00", want: 3480},
		{name: "fractional seconds", period: 2, clock: "0:03.2", want: 720 + 720 - 3.2},
		{name: "malformed clock", period: 1, clock: "nonsense", wantErr: true},
		{name: "invalid period", period: 0, clock: "12:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := markov.ElapsedSeconds(tt.period, tt.clock)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestReconstruct_RegulationGridSize(t *testing.T) {
	events := []models.PlayEvent{event(1, "12:00", "0-0", 0)}

	series, err := markov.Reconstruct(events)

	require.NoError(t, err)
	assert.Equal(t, 28800, series.Len(), "a regulation game spans 2880s at 0.1s steps")
	assert.Equal(t, 0, series.Margin[0])
	assert.Equal(t, 0, series.Home[0])
	assert.Equal(t, 0, series.Away[0])
}

func TestReconstruct_SeedsTimeZeroWithoutEvent(t *testing.T) {
	// Only event is four minutes in; time 0 is still defined as 0-0.
	events := []models.PlayEvent{event(1, "8:00", "2-5", 3)}

	series, err := markov.Reconstruct(events)

	require.NoError(t, err)
	assert.Equal(t, 0, series.Margin[0])
	assert.Equal(t, 0.0, series.Elapsed[0])
}

func TestReconstruct_FillsForward(t *testing.T) {
	events := []models.PlayEvent{
		event(1, "12:00", "0-0", 0),
		event(1, "11:00", "0-2", 2), // t=60s, index 600
	}

	series, err := markov.Reconstruct(events)
	require.NoError(t, err)

	assert.Equal(t, 0, series.Margin[599], "before the event the seed value holds")
	assert.Equal(t, 2, series.Margin[600])
	assert.Equal(t, 2, series.Margin[10000], "the last value fills the rest of the game")
	assert.Equal(t, 2, series.Home[600])
	assert.Equal(t, 0, series.Away[600])
}

func TestReconstruct_BuzzerEventLandsOnFinalPoint(t *testing.T) {
	events := []models.PlayEvent{
		event(1, "12:00", "0-0", 0),
		event(1, "6:00", "0-2", 2),
		event(4, "0:00", "100-103", 3),
	}

	series, err := markov.Reconstruct(events)
	require.NoError(t, err)

	last := series.Len() - 1
	assert.Equal(t, 3, series.Margin[last], "a score at the final horn reaches the series")
	assert.Equal(t, 103, series.Home[last])
	assert.Equal(t, 100, series.Away[last])
	assert.Equal(t, 2, series.Margin[last-1])
}

func TestReconstruct_OvertimeExtendsGrid(t *testing.T) {
	events := []models.PlayEvent{
		event(1, "12:00", "0-0", 0),
		event(5, "2:30", "110-112", 2),
	}

	series, err := markov.Reconstruct(events)
	require.NoError(t, err)

	assert.Equal(t, 31800, series.Len(), "one overtime adds 300s to the grid")
	last := series.Len() - 1
	assert.Equal(t, 2, series.Margin[last])
	assert.Equal(t, 112, series.Home[last])
}

func TestReconstruct_SkipsUnparseableRows(t *testing.T) {
	bad := "not-a-score"
	events := []models.PlayEvent{
		event(1, "12:00", "0-0", 0),
		{Period: 1, PCTimeString: "11:00", Score: &bad},
		event(1, "10:00", "4-4", 0),
	}

	series, err := markov.Reconstruct(events)
	require.NoError(t, err)
	assert.Equal(t, 4, series.Home[1200])
	assert.Equal(t, 4, series.Away[1200])
}

func TestTotalSeconds(t *testing.T) {
	regulation := []models.PlayEvent{event(4, "0:00", "100-99", -1)}
	assert.Equal(t, 2880.0, markov.TotalSeconds(regulation))

	doubleOT := []models.PlayEvent{event(6, "1:00", "120-119", -1)}
	assert.Equal(t, 3480.0, markov.TotalSeconds(doubleOT))

	assert.Equal(t, 2880.0, markov.TotalSeconds(nil))
}
