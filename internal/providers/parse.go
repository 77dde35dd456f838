package providers

import (
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/courtmetrics/marginflow/internal/models"
)

// scheduleDateLayout matches date header cells like "Tue, Oct 18, 2022".
const scheduleDateLayout = "Mon, Jan 2, 2006"

var boxscoreHrefPattern = regexp.MustCompile(`/boxscores/\d{9}`)

// scheduleState is the fold state threaded across schedule rows. The source
// emits a date only on header rows; data rows inherit it until the next
// header appears.
type scheduleState struct {
	currentDate time.Time
	hasDate     bool
}

// ParseSchedulePage extracts the games of one schedule-by-month page.
// Rows without an established date or a resolvable boxscore link are
// skipped, not errors.
func ParseSchedulePage(doc *goquery.Document) []models.ScheduledGame {
	var games []models.ScheduledGame
	state := scheduleState{}

	doc.Find("table#schedule tr").Each(func(_ int, row *goquery.Selection) {
		var game *models.ScheduledGame
		state, game = foldScheduleRow(state, row)
		if game != nil {
			games = append(games, *game)
		}
	})
	return games
}

// foldScheduleRow consumes one table row: (state, row) -> (state, game?).
func foldScheduleRow(state scheduleState, row *goquery.Selection) (scheduleState, *models.ScheduledGame) {
	th := row.Find("th").First()
	if th.Length() > 0 && th.HasClass("left") {
		if date, err := time.Parse(scheduleDateLayout, strings.TrimSpace(th.Text())); err == nil {
			state.currentDate = date
			state.hasDate = true
		}
	}

	cells := row.Find("td")
	if cells.Length() < 6 {
		return state, nil
	}

	visitor := strings.TrimSpace(cells.Eq(1).Text())
	home := strings.TrimSpace(cells.Eq(3).Text())

	gameID := ""
	row.Find("a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, ok := link.Attr("href")
		if ok && boxscoreHrefPattern.MatchString(href) {
			gameID = strings.TrimSuffix(path.Base(href), ".html")
			return false
		}
		return true
	})

	if !state.hasDate || gameID == "" || visitor == "" || home == "" {
		return state, nil
	}

	return state, &models.ScheduledGame{
		GameID:   gameID,
		GameDate: state.currentDate,
		HomeTeam: home,
		AwayTeam: visitor,
	}
}

// pbpState is the fold state threaded across play-by-play rows: the current
// period, seeded to 1 and advanced on period header rows.
type pbpState struct {
	period int
}

// ParsePlayByPlayPage extracts the raw event rows of one play-by-play page.
// Rows before the first time-formatted cell or missing both descriptions
// are skipped. Returns nil when the table is absent or nothing survives.
func ParsePlayByPlayPage(doc *goquery.Document) []models.RawPlayEvent {
	table := doc.Find("table#pbp")
	if table.Length() == 0 {
		return nil
	}

	var events []models.RawPlayEvent
	state := pbpState{period: 1}

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		var event *models.RawPlayEvent
		state, event = foldPlayByPlayRow(state, row)
		if event != nil {
			events = append(events, *event)
		}
	})
	return events
}

// foldPlayByPlayRow consumes one table row: (state, row) -> (state, event?).
func foldPlayByPlayRow(state pbpState, row *goquery.Selection) (pbpState, *models.RawPlayEvent) {
	th := row.Find("th").First()
	cells := row.Find("td")

	if th.Length() > 0 && cells.Length() == 0 {
		if p, ok := parsePeriodHeader(th.Text()); ok {
			state.period = p
		}
		return state, nil
	}

	if cells.Length() < 6 {
		return state, nil
	}

	timeText := strings.TrimSpace(cells.Eq(0).Text())
	if !strings.Contains(timeText, ":") {
		return state, nil
	}

	awayDesc := strings.TrimSpace(cells.Eq(1).Text())
	awayPts := strings.TrimSpace(cells.Eq(2).Text())
	scoreText := strings.TrimSpace(cells.Eq(3).Text())
	homePts := strings.TrimSpace(cells.Eq(4).Text())
	homeDesc := strings.TrimSpace(cells.Eq(5).Text())

	if awayDesc == "" && homeDesc == "" {
		return state, nil
	}
	if !strings.Contains(scoreText, "-") {
		scoreText = ""
	}

	return state, &models.RawPlayEvent{
		Period:             state.period,
		PCTimeString:       timeText,
		Score:              scoreText,
		AwayPtsChange:      awayPts,
		HomePtsChange:      homePts,
		HomeDescription:    homeDesc,
		VisitorDescription: awayDesc,
	}
}

// parsePeriodHeader maps header text like "1st Q" or "2nd OT" to a period
// number. Overtime is checked first: "1st OT" must resolve to period 5, not
// period 1.
func parsePeriodHeader(text string) (int, bool) {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)

	if strings.Contains(text, "OT") || strings.Contains(lower, "overtime") {
		n := 1
		switch {
		case strings.Contains(text, "2nd"):
			n = 2
		case strings.Contains(text, "3rd"):
			n = 3
		case strings.Contains(text, "4th"):
			n = 4
		}
		return 4 + n, true
	}

	switch {
	case strings.Contains(text, "1st"):
		return 1, true
	case strings.Contains(text, "2nd"):
		return 2, true
	case strings.Contains(text, "3rd"):
		return 3, true
	case strings.Contains(text, "4th"):
		return 4, true
	}
	return 0, false
}
