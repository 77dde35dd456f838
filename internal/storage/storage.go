// Package storage owns the persisted star schema. It is the only component
// allowed to mutate persisted entities; everything else reads through the
// query methods. All writes are insert-or-ignore so that re-running
// ingestion over already-persisted natural keys is a no-op, never a
// constraint violation surfaced to the caller.
package storage

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/courtmetrics/marginflow/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the gorm handle over the embedded sqlite database.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// Open opens (creating if needed) the database at path. The ingestion
// process is the single writer; presentation processes should use OpenReadOnly.
func Open(path string, isDevelopment bool, logger *logrus.Logger) (*Store, error) {
	return open(path, false, isDevelopment, logger)
}

// OpenReadOnly opens the database for concurrent read-only access. Readers
// tolerate eventually-consistent views while an ingestion run is active.
func OpenReadOnly(path string, isDevelopment bool, logger *logrus.Logger) (*Store, error) {
	return open(fmt.Sprintf("file:%s?mode=ro", path), true, isDevelopment, logger)
}

func open(dsn string, readOnly, isDevelopment bool, logger *logrus.Logger) (*Store, error) {
	logLevel := gormlogger.Error
	if isDevelopment {
		logLevel = gormlogger.Warn
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, logger: logger}
	if !readOnly {
		if err := store.migrate(); err != nil {
			return nil, err
		}
	}

	logger.WithFields(logrus.Fields{
		"component": "storage",
		"dsn":       dsn,
		"read_only": readOnly,
	}).Info("Database opened")
	return store, nil
}

// migrate creates the star schema and seeds the static team reference.
func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(
		&models.Season{},
		&models.Team{},
		&models.Game{},
		&models.PlayEvent{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	for _, team := range models.ReferenceTeams {
		if _, err := s.UpsertTeam(team); err != nil {
			return fmt.Errorf("failed to seed team %q: %w", team.TeamName, err)
		}
	}
	return nil
}

// UpsertSeason inserts a season if absent. Returns whether a row was
// created; an existing season is a recognized outcome, not an error.
func (s *Store) UpsertSeason(season models.Season) (bool, error) {
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&season)
	if res.Error != nil {
		return false, fmt.Errorf("failed to upsert season %d: %w", season.SeasonID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UpsertTeam inserts a team if absent, keyed by ID with the name unique.
func (s *Store) UpsertTeam(team models.Team) (bool, error) {
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&team)
	if res.Error != nil {
		return false, fmt.Errorf("failed to upsert team %q: %w", team.TeamName, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// GetOrCreateTeam finds a team by its unique full name, creating a row with
// a generated ID when the name is not in the static reference (historical
// or relocated franchises).
func (s *Store) GetOrCreateTeam(name string) (*models.Team, error) {
	var team models.Team
	err := s.db.Where("team_name = ?", name).First(&team).Error
	if err == nil {
		return &team, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error querying team %q: %w", name, err)
	}

	var maxID int
	if err := s.db.Model(&models.Team{}).Select("COALESCE(MAX(team_id), 0)").Scan(&maxID).Error; err != nil {
		return nil, fmt.Errorf("error allocating team id: %w", err)
	}

	team = models.Team{TeamID: maxID + 1, TeamName: name}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&team).Error; err != nil {
		return nil, fmt.Errorf("error creating team %q: %w", name, err)
	}

	// A concurrent-looking retry may have hit the unique name; re-read to be
	// sure the returned row is the persisted one.
	if err := s.db.Where("team_name = ?", name).First(&team).Error; err != nil {
		return nil, fmt.Errorf("error re-reading team %q: %w", name, err)
	}

	s.logger.WithFields(logrus.Fields{
		"component": "storage",
		"team_name": name,
		"team_id":   team.TeamID,
	}).Info("Created team outside static reference")
	return &team, nil
}

// UpsertGame inserts a game if absent; games are never mutated afterwards.
func (s *Store) UpsertGame(game models.Game) (bool, error) {
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&game)
	if res.Error != nil {
		return false, fmt.Errorf("failed to upsert game %s: %w", game.GameID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// InsertResult summarizes a batch insert of play events.
type InsertResult struct {
	Inserted int
	Skipped  int
	Failed   int
}

// InsertPlayEvents appends the fact rows of one game. Duplicate composite
// keys are silently skipped; a failed single row is logged with its key and
// the batch continues.
func (s *Store) InsertPlayEvents(events []models.PlayEvent) InsertResult {
	var result InsertResult
	for _, e := range events {
		res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&e)
		if res.Error != nil {
			result.Failed++
			s.logger.WithFields(logrus.Fields{
				"component": "storage",
				"game_id":   e.GameID,
				"eventnum":  e.EventNum,
			}).WithError(res.Error).Warn("Failed to insert play event, continuing")
			continue
		}
		if res.RowsAffected == 0 {
			result.Skipped++
			continue
		}
		result.Inserted++
	}
	return result
}

// GameIDsWithPlayByPlay returns the set of game IDs that already have
// persisted fact rows, so a re-run only fetches the remaining games.
func (s *Store) GameIDsWithPlayByPlay() (map[string]bool, error) {
	var ids []string
	err := s.db.Model(&models.PlayEvent{}).Distinct("game_id").Pluck("game_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ingested games: %w", err)
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck pings the underlying connection.
func (s *Store) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
