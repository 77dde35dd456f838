// Package normalize cleans raw play-by-play rows into canonical fact rows.
// Every step is independent and idempotent, and no step drops rows: the
// output row count always equals the input row count. Dropping happens only
// at fetch time.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/courtmetrics/marginflow/internal/models"
)

// noMarginSentinel is the upstream's textual "no margin yet" marker.
const noMarginSentinel = "None"

// tieSentinel is the upstream's textual marker for a level score.
const tieSentinel = "TIE"

// Clean converts raw rows into canonical PlayEvent rows for one game,
// applying in order: sentinel replacement ("None" -> undefined margin),
// tie replacement ("TIE" -> 0), first-row zeroing (games always start 0-0),
// margin fill-forward, and description sanitization.
func Clean(gameID string, raw []models.RawPlayEvent) []models.PlayEvent {
	events := make([]models.PlayEvent, 0, len(raw))

	for i, r := range raw {
		e := models.PlayEvent{
			GameID:       gameID,
			EventNum:     i + 1,
			Period:       r.Period,
			PCTimeString: r.PCTimeString,
		}

		e.Score = optionalString(r.Score)
		e.ScoreMargin = parseMargin(r.ScoreMargin, r.Score)
		e.AwayPtsChange = optionalString(r.AwayPtsChange)
		e.HomePtsChange = optionalString(r.HomePtsChange)
		e.HomeDescription = optionalString(sanitizeDescription(r.HomeDescription))
		e.VisitorDescription = optionalString(sanitizeDescription(r.VisitorDescription))
		e.EventType, e.EventActionType = classifyEvent(r)

		events = append(events, e)
	}

	if len(events) > 0 {
		// The game always starts level, whatever the upstream claims.
		zero := 0
		start := "0-0"
		events[0].ScoreMargin = &zero
		events[0].Score = &start
	}

	fillForwardMargins(events)
	return events
}

// parseMargin resolves the margin cell: sentinels first, then a numeric
// value, then derivation from an "away-home" score string. nil means
// undefined, to be filled forward.
func parseMargin(margin, score string) *int {
	margin = strings.TrimSpace(margin)

	switch margin {
	case "", noMarginSentinel:
		// fall through to score derivation
	case tieSentinel:
		zero := 0
		return &zero
	default:
		if v, err := strconv.Atoi(margin); err == nil {
			return &v
		}
	}

	if away, home, err := SplitScore(score); err == nil {
		diff := home - away
		return &diff
	}
	return nil
}

// SplitScore parses an "away-home" composite score string.
func SplitScore(score string) (away, home int, err error) {
	parts := strings.SplitN(strings.TrimSpace(score), "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed score %q", score)
	}
	away, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed score %q: %w", score, err)
	}
	home, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed score %q: %w", score, err)
	}
	return away, home, nil
}

// fillForwardMargins replaces undefined margins with the most recent
// preceding defined value. Leading undefined margins become 0, which only
// happens for an empty first row since Clean forces it to 0 anyway.
func fillForwardMargins(events []models.PlayEvent) {
	last := 0
	for i := range events {
		if events[i].ScoreMargin == nil {
			v := last
			events[i].ScoreMargin = &v
		} else {
			last = *events[i].ScoreMargin
		}
	}
}

// sanitizeDescription escapes embedded quote characters so free text cannot
// break downstream storage or exports. Information is escaped, never
// stripped. Collapsing before doubling keeps the step idempotent on
// re-cleaned rows.
func sanitizeDescription(desc string) string {
	return strings.ReplaceAll(strings.ReplaceAll(desc, "''", "'"), "'", "''")
}

// classifyEvent derives coarse event type/subtype codes from the play
// descriptions, good enough for consumers to filter scoring plays. The
// subtype of a made shot is its point value.
func classifyEvent(r models.RawPlayEvent) (eventType, actionType int) {
	desc := strings.ToLower(r.HomeDescription)
	if desc == "" {
		desc = strings.ToLower(r.VisitorDescription)
	}

	switch {
	case strings.Contains(desc, "makes free throw"):
		return models.EventTypeFreeThrow, 1
	case strings.Contains(desc, "misses free throw"):
		return models.EventTypeFreeThrow, 0
	case strings.Contains(desc, "makes 3-pt"):
		return models.EventTypeMadeShot, 3
	case strings.Contains(desc, "makes 2-pt"):
		return models.EventTypeMadeShot, 2
	case strings.Contains(desc, "makes"):
		return models.EventTypeMadeShot, pointsFromChange(r.AwayPtsChange, r.HomePtsChange)
	case strings.Contains(desc, "misses"):
		return models.EventTypeMissShot, 0
	}
	return models.EventTypeOther, 0
}

// pointsFromChange reads the per-row points-change cells ("+2", "+3").
func pointsFromChange(away, home string) int {
	for _, cell := range []string{home, away} {
		cell = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cell), "+"))
		if v, err := strconv.Atoi(cell); err == nil && v > 0 {
			return v
		}
	}
	return 0
}

func optionalString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
