package handlers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/courtmetrics/marginflow/internal/markov"
	"github.com/courtmetrics/marginflow/internal/models"
	"github.com/courtmetrics/marginflow/internal/services"
	"github.com/courtmetrics/marginflow/internal/storage"
	"github.com/courtmetrics/marginflow/internal/utils"
)

// GamesHandler serves the presentation query surface: dimension listings,
// game detail, and the derived numeric outputs (dense series, transition
// matrix). Rendering is the caller's concern; everything here is numbers.
type GamesHandler struct {
	store          *storage.Store
	cache          services.CacheProvider
	logger         *logrus.Logger
	defaultLagSecs float64
	defaultMaxDiff int
	seriesCacheTTL time.Duration
}

// NewGamesHandler creates a games handler.
func NewGamesHandler(store *storage.Store, cache services.CacheProvider, defaultLagSecs float64, defaultMaxDiff int, seriesCacheTTL time.Duration, logger *logrus.Logger) *GamesHandler {
	return &GamesHandler{
		store:          store,
		cache:          cache,
		logger:         logger,
		defaultLagSecs: defaultLagSecs,
		defaultMaxDiff: defaultMaxDiff,
		seriesCacheTTL: seriesCacheTTL,
	}
}

// GetSeasons handles GET /api/v1/seasons
func (h *GamesHandler) GetSeasons(c *gin.Context) {
	seasons, err := h.store.ListSeasons()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list seasons")
		utils.SendInternalError(c, "failed to list seasons")
		return
	}
	utils.SendSuccess(c, seasons)
}

// GetTeams handles GET /api/v1/teams
func (h *GamesHandler) GetTeams(c *gin.Context) {
	teams, err := h.store.ListTeams()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list teams")
		utils.SendInternalError(c, "failed to list teams")
		return
	}
	utils.SendSuccess(c, teams)
}

// ListGames handles GET /api/v1/games?season=&team=
func (h *GamesHandler) ListGames(c *gin.Context) {
	games, err := h.store.ListGames(c.Query("season"), c.Query("team"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list games")
		utils.SendInternalError(c, "failed to list games")
		return
	}
	utils.SendSuccess(c, games)
}

// GameDetail is the header + ordered play-by-play payload.
type GameDetail struct {
	Game       *models.Game       `json:"game"`
	PlayByPlay []models.PlayEvent `json:"play_by_play"`
}

// GetGame handles GET /api/v1/games/:id
func (h *GamesHandler) GetGame(c *gin.Context) {
	gameID := c.Param("id")

	game, err := h.store.GetGame(gameID)
	if errors.Is(err, storage.ErrNotFound) {
		utils.SendNotFound(c, "game not found")
		return
	}
	if err != nil {
		h.logger.WithField("game_id", gameID).WithError(err).Error("Failed to get game")
		utils.SendInternalError(c, "failed to get game")
		return
	}

	events, err := h.store.GetPlayByPlay(gameID)
	if err != nil {
		h.logger.WithField("game_id", gameID).WithError(err).Error("Failed to get play-by-play")
		utils.SendInternalError(c, "failed to get play-by-play")
		return
	}

	utils.SendSuccess(c, GameDetail{Game: game, PlayByPlay: events})
}

// SeriesPayload is the reconstructed score series decimated to a transport
// resolution. The underlying model grid stays at 0.1s.
type SeriesPayload struct {
	GameID      string    `json:"game_id"`
	StepSeconds float64   `json:"step_seconds"`
	Elapsed     []float64 `json:"elapsed_seconds"`
	Home        []int     `json:"home_score"`
	Away        []int     `json:"away_score"`
	Margin      []int     `json:"margin"`
}

// GetSeries handles GET /api/v1/games/:id/series?step_seconds=
func (h *GamesHandler) GetSeries(c *gin.Context) {
	gameID := c.Param("id")

	stepSeconds := 1.0
	if raw := c.Query("step_seconds"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < markov.StepSeconds {
			utils.SendBadRequest(c, fmt.Sprintf("invalid step_seconds %q", raw))
			return
		}
		stepSeconds = v
	}

	cacheKey := fmt.Sprintf("series:%s:%g", gameID, stepSeconds)
	var payload SeriesPayload
	if err := h.cache.Get(c.Request.Context(), cacheKey, &payload); err == nil {
		utils.SendSuccess(c, payload)
		return
	}

	series, ok := h.reconstructGame(c, gameID)
	if !ok {
		return
	}

	stride := int(math.Round(stepSeconds / markov.StepSeconds))
	payload = SeriesPayload{GameID: gameID, StepSeconds: stepSeconds}
	for i := 0; i < series.Len(); i += stride {
		payload.Elapsed = append(payload.Elapsed, series.Elapsed[i])
		payload.Home = append(payload.Home, series.Home[i])
		payload.Away = append(payload.Away, series.Away[i])
		payload.Margin = append(payload.Margin, series.Margin[i])
	}

	if err := h.cache.Set(c.Request.Context(), cacheKey, payload, h.seriesCacheTTL); err != nil {
		h.logger.WithField("game_id", gameID).WithError(err).Debug("Failed to cache series")
	}
	utils.SendSuccess(c, payload)
}

// MatrixPayload is the transition matrix response: raw counts plus the
// row-normalized probabilities for convenience.
type MatrixPayload struct {
	GameID          string      `json:"game_id"`
	LagSteps        int         `json:"lag_steps"`
	LagSeconds      float64     `json:"lag_seconds"`
	MaxDifferential int         `json:"max_differential"`
	Counts          [][]int64   `json:"counts"`
	Probabilities   [][]float64 `json:"probabilities"`
}

// GetMatrix handles GET /api/v1/games/:id/matrix?lag_seconds=&max_diff=
func (h *GamesHandler) GetMatrix(c *gin.Context) {
	gameID := c.Param("id")

	lagSeconds := h.defaultLagSecs
	if raw := c.Query("lag_seconds"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			utils.SendBadRequest(c, fmt.Sprintf("invalid lag_seconds %q", raw))
			return
		}
		lagSeconds = v
	}

	maxDiff := h.defaultMaxDiff
	if raw := c.Query("max_diff"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			utils.SendBadRequest(c, fmt.Sprintf("invalid max_diff %q", raw))
			return
		}
		maxDiff = v
	}

	series, ok := h.reconstructGame(c, gameID)
	if !ok {
		return
	}

	matrix, err := markov.Estimate(series, markov.LagSteps(lagSeconds), maxDiff)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	utils.SendSuccess(c, MatrixPayload{
		GameID:          gameID,
		LagSteps:        matrix.Lag,
		LagSeconds:      lagSeconds,
		MaxDifferential: matrix.MaxDifferential,
		Counts:          matrix.Counts,
		Probabilities:   matrix.RowNormalize(),
	})
}

// reconstructGame loads one game's events and builds the dense series,
// writing the HTTP error response itself on failure.
func (h *GamesHandler) reconstructGame(c *gin.Context, gameID string) (*markov.Series, bool) {
	if _, err := h.store.GetGame(gameID); errors.Is(err, storage.ErrNotFound) {
		utils.SendNotFound(c, "game not found")
		return nil, false
	} else if err != nil {
		h.logger.WithField("game_id", gameID).WithError(err).Error("Failed to get game")
		utils.SendInternalError(c, "failed to get game")
		return nil, false
	}

	events, err := h.store.GetPlayByPlay(gameID)
	if err != nil {
		h.logger.WithField("game_id", gameID).WithError(err).Error("Failed to get play-by-play")
		utils.SendInternalError(c, "failed to get play-by-play")
		return nil, false
	}
	if len(events) == 0 {
		utils.SendNotFound(c, "no play-by-play data for game")
		return nil, false
	}

	series, err := markov.Reconstruct(events)
	if err != nil {
		h.logger.WithField("game_id", gameID).WithError(err).Error("Failed to reconstruct series")
		utils.SendInternalError(c, "failed to reconstruct series")
		return nil, false
	}
	return series, true
}
