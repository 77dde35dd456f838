package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/courtmetrics/marginflow/internal/models"
)

// GameSummary is the presentation-layer view of one game row.
type GameSummary struct {
	GameID       string    `json:"game_id"`
	GameDate     time.Time `json:"game_date"`
	SeasonLabel  string    `json:"season"`
	HomeTeamName string    `json:"home_team"`
	AwayTeamName string    `json:"away_team"`
}

// ListSeasons returns distinct seasons, most recent first.
func (s *Store) ListSeasons() ([]models.Season, error) {
	var seasons []models.Season
	if err := s.db.Order("season_label DESC").Find(&seasons).Error; err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	return seasons, nil
}

// ListTeams returns all teams ordered by name.
func (s *Store) ListTeams() ([]models.Team, error) {
	var teams []models.Team
	if err := s.db.Order("team_name").Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// ListGames returns games filtered by season label and/or team name, newest
// first. Empty filters match everything.
func (s *Store) ListGames(seasonLabel, teamName string) ([]GameSummary, error) {
	query := s.db.Model(&models.Game{}).
		Select("dim_games.game_id, dim_games.game_date, dim_seasons.season_label, dim_games.home_team_name, dim_games.away_team_name").
		Joins("JOIN dim_seasons ON dim_games.season_id = dim_seasons.season_id")

	if seasonLabel != "" {
		query = query.Where("dim_seasons.season_label = ?", seasonLabel)
	}
	if teamName != "" {
		query = query.Where("dim_games.home_team_name = ? OR dim_games.away_team_name = ?", teamName, teamName)
	}

	var games []GameSummary
	if err := query.Order("dim_games.game_date DESC").Scan(&games).Error; err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// GetGame fetches one game header by its natural key.
func (s *Store) GetGame(gameID string) (*models.Game, error) {
	var game models.Game
	err := s.db.Where("game_id = ?", gameID).First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", gameID, err)
	}
	return &game, nil
}

// GetPlayByPlay returns one game's fact rows ordered by event sequence.
func (s *Store) GetPlayByPlay(gameID string) ([]models.PlayEvent, error) {
	var events []models.PlayEvent
	err := s.db.Where("game_id = ?", gameID).Order("eventnum").Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get play-by-play for %s: %w", gameID, err)
	}
	return events, nil
}
