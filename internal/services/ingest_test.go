package services_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtmetrics/marginflow/internal/markov"
	"github.com/courtmetrics/marginflow/internal/models"
	"github.com/courtmetrics/marginflow/internal/services"
	"github.com/courtmetrics/marginflow/internal/storage"
)

type fakeSource struct {
	games      []models.ScheduledGame
	playByPlay map[string][]models.RawPlayEvent
	pbpErr     map[string]error
	pbpCalls   []string
}

func (f *fakeSource) FetchGameList(season string, seasonEndYear int) []models.ScheduledGame {
	return f.games
}

func (f *fakeSource) FetchPlayByPlay(gameID string) ([]models.RawPlayEvent, error) {
	f.pbpCalls = append(f.pbpCalls, gameID)
	if err := f.pbpErr[gameID]; err != nil {
		return nil, err
	}
	return f.playByPlay[gameID], nil
}

func testStore(t *testing.T) *storage.Store {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"), false, log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func scheduledGame(id string) models.ScheduledGame {
	return models.ScheduledGame{
		GameID:   id,
		GameDate: time.Date(2022, 10, 18, 0, 0, 0, 0, time.UTC),
		HomeTeam: "Boston Celtics",
		AwayTeam: "Philadelphia 76ers",
	}
}

func rawRows() []models.RawPlayEvent {
	return []models.RawPlayEvent{
		{Period: 1, PCTimeString: "12:00", Score: "0-0", ScoreMargin: "TIE",
			VisitorDescription: "Jump ball"},
		{Period: 1, PCTimeString: "11:40", Score: "0-3", ScoreMargin: "3",
			HomePtsChange: "3", HomeDescription: "T. Smith makes 3-pt jump shot"},
		{Period: 1, PCTimeString: "11:15", Score: "2-3", ScoreMargin: "None",
			AwayPtsChange: "2", VisitorDescription: "J. Doe makes 2-pt layup"},
	}
}

func TestRun_PersistsScheduleAndPlayByPlay(t *testing.T) {
	store := testStore(t)
	source := &fakeSource{
		games:      []models.ScheduledGame{scheduledGame("202210180BOS")},
		playByPlay: map[string][]models.RawPlayEvent{"202210180BOS": rawRows()},
	}

	svc := services.NewIngestionService(store, source, "2022-23", "Regular Season", quietLogger())
	report, err := svc.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, report.GamesDiscovered)
	assert.Equal(t, 1, report.GamesIngested)
	assert.Zero(t, report.GamesSkipped)
	assert.Equal(t, 3, report.EventsInserted)
	assert.Empty(t, report.FailedGames)
	assert.Equal(t, "2022-23", report.Season)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	game, err := store.GetGame("202210180BOS")
	require.NoError(t, err)
	assert.Equal(t, 22022, game.SeasonID)
	assert.Equal(t, "Boston Celtics", game.HomeTeamName)

	events, err := store.GetPlayByPlay("202210180BOS")
	require.NoError(t, err)
	require.Len(t, events, 3)
	// "None" margin resolves from the score cell when one is present.
	require.NotNil(t, events[2].ScoreMargin)
	assert.Equal(t, 1, *events[2].ScoreMargin)
}

func TestRun_ResumesWithoutRefetching(t *testing.T) {
	store := testStore(t)
	source := &fakeSource{
		games:      []models.ScheduledGame{scheduledGame("202210180BOS")},
		playByPlay: map[string][]models.RawPlayEvent{"202210180BOS": rawRows()},
	}
	svc := services.NewIngestionService(store, source, "2022-23", "Regular Season", quietLogger())

	_, err := svc.Run()
	require.NoError(t, err)
	require.Len(t, source.pbpCalls, 1)

	report, err := svc.Run()
	require.NoError(t, err)
	assert.Len(t, source.pbpCalls, 1, "a persisted game must not be fetched again")
	assert.Equal(t, 1, report.GamesSkipped)
	assert.Zero(t, report.GamesIngested)
	assert.Zero(t, report.EventsInserted)

	events, err := store.GetPlayByPlay("202210180BOS")
	require.NoError(t, err)
	assert.Len(t, events, 3, "a second run must not duplicate fact rows")
}

func TestRun_PerGameFailuresDoNotAbort(t *testing.T) {
	store := testStore(t)
	bad := scheduledGame("202210190GSW")
	bad.HomeTeam = "Golden State Warriors"
	bad.AwayTeam = "Los Angeles Lakers"
	source := &fakeSource{
		games:      []models.ScheduledGame{scheduledGame("202210180BOS"), bad},
		playByPlay: map[string][]models.RawPlayEvent{"202210180BOS": rawRows()},
		pbpErr:     map[string]error{"202210190GSW": errors.New("fetch failed")},
	}

	svc := services.NewIngestionService(store, source, "2022-23", "Regular Season", quietLogger())
	report, err := svc.Run()
	require.NoError(t, err)

	assert.Equal(t, 2, report.GamesDiscovered)
	assert.Equal(t, 1, report.GamesIngested)
	assert.Equal(t, []string{"202210190GSW"}, report.FailedGames)
}

func TestRun_EmptyScheduleIsAnError(t *testing.T) {
	store := testStore(t)
	source := &fakeSource{}

	svc := services.NewIngestionService(store, source, "2022-23", "Regular Season", quietLogger())
	report, err := svc.Run()
	require.Error(t, err)
	assert.Zero(t, report.GamesDiscovered)
}

// End to end: raw scraped rows through normalization and storage into a dense
// margin series and a lag-1 transition count.
func TestRun_IngestedGameFeedsMarkovPipeline(t *testing.T) {
	store := testStore(t)
	raw := []models.RawPlayEvent{
		{Period: 1, PCTimeString: "12:00", Score: "0-0", ScoreMargin: "TIE"},
		{Period: 1, PCTimeString: "6:00", Score: "0-5", ScoreMargin: "5",
			HomePtsChange: "3", HomeDescription: "makes 3-pt jump shot"},
		{Period: 4, PCTimeString: "0:00", Score: "98-103", ScoreMargin: "5"},
	}
	source := &fakeSource{
		games:      []models.ScheduledGame{scheduledGame("202210180BOS")},
		playByPlay: map[string][]models.RawPlayEvent{"202210180BOS": raw},
	}

	svc := services.NewIngestionService(store, source, "2022-23", "Regular Season", quietLogger())
	_, err := svc.Run()
	require.NoError(t, err)

	events, err := store.GetPlayByPlay("202210180BOS")
	require.NoError(t, err)

	series, err := markov.Reconstruct(events)
	require.NoError(t, err)
	assert.Equal(t, 28800, series.Len())
	assert.Equal(t, 0, series.Margin[0])
	assert.Equal(t, 5, series.Margin[series.Len()-1])

	matrix, err := markov.Estimate(series, markov.LagSteps(0.1), 50)
	require.NoError(t, err)
	// Exactly one observed step from margin 0 to margin 5, at 360.0s elapsed.
	assert.Equal(t, int64(1), matrix.Counts[matrix.Bucket(0)][matrix.Bucket(5)])
	assert.Equal(t, int64(3599), matrix.Counts[matrix.Bucket(0)][matrix.Bucket(0)])
}
