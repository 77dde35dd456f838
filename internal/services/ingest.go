package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/courtmetrics/marginflow/internal/config"
	"github.com/courtmetrics/marginflow/internal/models"
	"github.com/courtmetrics/marginflow/internal/normalize"
	"github.com/courtmetrics/marginflow/internal/storage"
)

// SourceClient is the upstream fetch surface the ingestion pipeline
// consumes; satisfied by providers.BasketballReferenceClient.
type SourceClient interface {
	FetchGameList(season string, seasonEndYear int) []models.ScheduledGame
	FetchPlayByPlay(gameID string) ([]models.RawPlayEvent, error)
}

// RunReport is the end-of-run summary: counts of successes and named
// failures. Degraded units are reported here instead of failing the run.
type RunReport struct {
	RunID           uuid.UUID `json:"run_id"`
	Season          string    `json:"season"`
	GamesDiscovered int       `json:"games_discovered"`
	GamesIngested   int       `json:"games_ingested"`
	GamesSkipped    int       `json:"games_skipped"`
	EventsInserted  int       `json:"events_inserted"`
	FailedGames     []string  `json:"failed_games,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// IngestionService runs the fetch -> normalize -> persist pipeline for one
// season. Stages run strictly in sequence; the rate limiter inside the
// source client keeps outbound calls serial.
type IngestionService struct {
	store      *storage.Store
	source     SourceClient
	logger     *logrus.Logger
	season     string
	seasonType string
}

// NewIngestionService creates the pipeline orchestrator.
func NewIngestionService(store *storage.Store, source SourceClient, season, seasonType string, logger *logrus.Logger) *IngestionService {
	return &IngestionService{
		store:      store,
		source:     source,
		logger:     logger,
		season:     season,
		seasonType: seasonType,
	}
}

// Run executes one full ingestion pass. Already-persisted games are skipped,
// so an interrupted run resumes where it left off. Only the inability to
// discover any game at all is an error; per-game failures are collected in
// the report.
func (s *IngestionService) Run() (*RunReport, error) {
	report := &RunReport{
		RunID:     uuid.New(),
		Season:    s.season,
		StartedAt: time.Now().UTC(),
	}
	log := s.logger.WithFields(logrus.Fields{
		"component": "ingestion",
		"run_id":    report.RunID.String(),
		"season":    s.season,
	})

	seasonID, err := models.SeasonIDFromLabel(s.season)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.UpsertSeason(models.Season{
		SeasonID:    seasonID,
		SeasonLabel: s.season,
		SeasonType:  s.seasonType,
	}); err != nil {
		return nil, err
	}

	games := s.source.FetchGameList(s.season, config.SeasonEndYear(s.season))
	report.GamesDiscovered = len(games)
	if len(games) == 0 {
		return report, fmt.Errorf("no games discovered for season %s", s.season)
	}

	log.WithField("games", len(games)).Info("Inserting teams and games")
	for _, g := range games {
		if err := s.persistGame(seasonID, g); err != nil {
			log.WithField("game_id", g.GameID).WithError(err).Warn("Failed to persist game, continuing")
		}
	}

	ingested, err := s.store.GameIDsWithPlayByPlay()
	if err != nil {
		return report, err
	}

	log.WithField("games", len(games)).Info("Fetching play-by-play")
	for _, g := range games {
		if ingested[g.GameID] {
			report.GamesSkipped++
			continue
		}

		raw, err := s.source.FetchPlayByPlay(g.GameID)
		if err != nil {
			log.WithField("game_id", g.GameID).WithError(err).Warn("Play-by-play fetch failed")
			report.FailedGames = append(report.FailedGames, g.GameID)
			continue
		}
		if len(raw) == 0 {
			log.WithField("game_id", g.GameID).Warn("No play-by-play data for game")
			report.FailedGames = append(report.FailedGames, g.GameID)
			continue
		}

		events := normalize.Clean(g.GameID, raw)
		result := s.store.InsertPlayEvents(events)
		report.EventsInserted += result.Inserted
		if result.Failed > 0 && result.Inserted == 0 {
			report.FailedGames = append(report.FailedGames, g.GameID)
			continue
		}
		report.GamesIngested++
	}

	report.FinishedAt = time.Now().UTC()
	log.WithFields(logrus.Fields{
		"games_discovered": report.GamesDiscovered,
		"games_ingested":   report.GamesIngested,
		"games_skipped":    report.GamesSkipped,
		"events_inserted":  report.EventsInserted,
		"games_failed":     len(report.FailedGames),
		"duration":         report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("Ingestion run complete")
	if len(report.FailedGames) > 0 {
		log.WithField("failed_games", report.FailedGames).Warn("Some games had no usable play-by-play")
	}

	return report, nil
}

// persistGame upserts the team and game dimension rows for one schedule
// entry.
func (s *IngestionService) persistGame(seasonID int, g models.ScheduledGame) error {
	home, err := s.store.GetOrCreateTeam(g.HomeTeam)
	if err != nil {
		return err
	}
	away, err := s.store.GetOrCreateTeam(g.AwayTeam)
	if err != nil {
		return err
	}

	_, err = s.store.UpsertGame(models.Game{
		GameID:       g.GameID,
		SeasonID:     seasonID,
		GameDate:     g.GameDate,
		HomeTeamID:   home.TeamID,
		AwayTeamID:   away.TeamID,
		HomeTeamName: g.HomeTeam,
		AwayTeamName: g.AwayTeam,
	})
	return err
}
