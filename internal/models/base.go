package models

import (
	"fmt"
	"strconv"
	"time"
)

// Season is a dimension row describing one NBA season. Rows are immutable
// once inserted; ingestion uses insert-if-absent semantics.
type Season struct {
	SeasonID    int    `gorm:"column:season_id;primaryKey" json:"season_id"`
	SeasonLabel string `gorm:"column:season_label;uniqueIndex;not null" json:"season_label"`
	SeasonType  string `gorm:"column:season_type;not null" json:"season_type"`
}

// TableName specifies the table name for GORM
func (Season) TableName() string {
	return "dim_seasons"
}

// SeasonIDFromLabel derives the numeric season identifier from a label such
// as "2022-23" by prefixing the starting year with a literal '2' ("22022").
func SeasonIDFromLabel(label string) (int, error) {
	if len(label) < 4 {
		return 0, fmt.Errorf("season label too short: %q", label)
	}
	id, err := strconv.Atoi("2" + label[:4])
	if err != nil {
		return 0, fmt.Errorf("invalid season label %q: %w", label, err)
	}
	return id, nil
}

// Team is immutable reference data, keyed by a stable numeric ID with the
// full name enforced unique.
type Team struct {
	TeamID   int    `gorm:"column:team_id;primaryKey" json:"team_id"`
	TeamName string `gorm:"column:team_name;uniqueIndex;not null" json:"team_name"`
	TeamAbbr string `gorm:"column:team_abbr" json:"team_abbr"`
	Nickname string `gorm:"column:team_nickname" json:"team_nickname"`
	City     string `gorm:"column:team_city" json:"team_city"`
	State    string `gorm:"column:team_state" json:"team_state"`
}

// TableName specifies the table name for GORM
func (Team) TableName() string {
	return "dim_teams"
}

// Game is a dimension row for one discovered game. Created once; ingestion
// retries re-insert with insert-if-absent semantics and never mutate it.
type Game struct {
	GameID       string    `gorm:"column:game_id;primaryKey" json:"game_id"`
	SeasonID     int       `gorm:"column:season_id;index:idx_games_season;not null" json:"season_id"`
	GameDate     time.Time `gorm:"column:game_date;index:idx_games_date" json:"game_date"`
	HomeTeamID   int       `gorm:"column:home_team_id;not null" json:"home_team_id"`
	AwayTeamID   int       `gorm:"column:away_team_id;not null" json:"away_team_id"`
	HomeTeamName string    `gorm:"column:home_team_name" json:"home_team_name"`
	AwayTeamName string    `gorm:"column:away_team_name" json:"away_team_name"`
}

// TableName specifies the table name for GORM
func (Game) TableName() string {
	return "dim_games"
}

// Event message type codes, derived from play descriptions so consumers can
// filter scoring plays without re-parsing free text.
const (
	EventTypeOther     = 0
	EventTypeMadeShot  = 1
	EventTypeMissShot  = 2
	EventTypeFreeThrow = 3
)

// PlayEvent is one fact row of the play-by-play stream. Composite key
// (game_id, eventnum); append-only, duplicates silently skipped on insert.
type PlayEvent struct {
	GameID             string  `gorm:"column:game_id;primaryKey;index:idx_pbp_game" json:"game_id"`
	EventNum           int     `gorm:"column:eventnum;primaryKey" json:"eventnum"`
	Period             int     `gorm:"column:period;index:idx_pbp_period;not null" json:"period"`
	PCTimeString       string  `gorm:"column:pctimestring" json:"pctimestring"`
	Score              *string `gorm:"column:score" json:"score,omitempty"`
	ScoreMargin        *int    `gorm:"column:score_margin" json:"score_margin,omitempty"`
	AwayPtsChange      *string `gorm:"column:away_pts_change" json:"away_pts_change,omitempty"`
	HomePtsChange      *string `gorm:"column:home_pts_change" json:"home_pts_change,omitempty"`
	HomeDescription    *string `gorm:"column:homedescription" json:"homedescription,omitempty"`
	VisitorDescription *string `gorm:"column:visitordescription" json:"visitordescription,omitempty"`
	EventType          int     `gorm:"column:event_type" json:"event_type"`
	EventActionType    int     `gorm:"column:event_action_type" json:"event_action_type"`
}

// TableName specifies the table name for GORM
func (PlayEvent) TableName() string {
	return "fact_play_by_play"
}

// IsScoringPlay reports whether the event changed the score.
func (e PlayEvent) IsScoringPlay() bool {
	return e.EventType == EventTypeMadeShot || (e.EventType == EventTypeFreeThrow && e.EventActionType > 0)
}

// ScheduledGame is one row of a parsed schedule page, before persistence.
type ScheduledGame struct {
	GameID   string    `json:"game_id"`
	GameDate time.Time `json:"game_date"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
}

// RawPlayEvent is one play-by-play table row as scraped, prior to
// normalization. String fields hold the cell text verbatim; empty means the
// cell was blank. ScoreMargin carries the upstream sentinel values ("TIE",
// "None") untouched.
type RawPlayEvent struct {
	Period             int
	PCTimeString       string
	Score              string
	ScoreMargin        string
	AwayPtsChange      string
	HomePtsChange      string
	HomeDescription    string
	VisitorDescription string
}
