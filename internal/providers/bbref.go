package providers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/courtmetrics/marginflow/internal/models"
)

// ErrRateLimited signals that the upstream served a rate-limit page. The
// client sleeps through an extended cooldown before surfacing it, so a
// retrying caller's next attempt lands after the penalty window.
var ErrRateLimited = errors.New("upstream rate limit exceeded")

// scheduleMonths are the month pages of a regular season, in calendar order.
var scheduleMonths = []string{
	"october", "november", "december", "january", "february", "march", "april",
}

// BasketballReferenceClient fetches schedule and play-by-play pages from
// basketball-reference.com. All outbound calls go through the rate limiter
// and the circuit breaker; transient failures are retried with backoff.
type BasketballReferenceClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *RateLimiter
	retry       *RetryPolicy
	breaker     *gobreaker.CircuitBreaker
	cooldown    time.Duration
	logger      *logrus.Logger

	sleep func(time.Duration)
}

// ClientOptions configures a BasketballReferenceClient.
type ClientOptions struct {
	BaseURL          string
	Timeout          time.Duration
	MinDelay         time.Duration
	MaxDelay         time.Duration
	Cooldown         time.Duration
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	BreakerThreshold int
}

// NewBasketballReferenceClient creates a new source client.
func NewBasketballReferenceClient(opts ClientOptions, logger *logrus.Logger) *BasketballReferenceClient {
	settings := gobreaker.Settings{
		Name:        "basketball-reference",
		MaxRequests: uint32(opts.BreakerThreshold),
		Timeout:     opts.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Info("Circuit breaker state changed")
		},
	}

	return &BasketballReferenceClient{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		rateLimiter: NewRateLimiter(opts.MinDelay, opts.MaxDelay),
		retry:       NewRetryPolicy(opts.RetryMaxAttempts, opts.RetryBaseDelay, logger),
		breaker:     gobreaker.NewCircuitBreaker(settings),
		cooldown:    opts.Cooldown,
		logger:      logger,
		sleep:       time.Sleep,
	}
}

// FetchGameList walks the season's calendar month pages and returns every
// game discovered. Unreachable or malformed month pages contribute nothing;
// full-season outages are expected under heavy rate limiting and never fail
// the call.
func (c *BasketballReferenceClient) FetchGameList(season string, seasonEndYear int) []models.ScheduledGame {
	games := make([]models.ScheduledGame, 0, 1300)

	for _, month := range scheduleMonths {
		url := fmt.Sprintf("%s/leagues/NBA_%d_games-%s.html", c.baseURL, seasonEndYear, month)
		c.logger.WithFields(logrus.Fields{
			"component": "source_client",
			"season":    season,
			"month":     month,
		}).Info("Fetching schedule page")

		doc, err := c.getDocument(url)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"component": "source_client",
				"month":     month,
			}).WithError(err).Warn("Schedule page unreachable, skipping month")
			continue
		}

		monthGames := ParseSchedulePage(doc)
		games = append(games, monthGames...)
	}

	c.logger.WithFields(logrus.Fields{
		"component": "source_client",
		"season":    season,
		"games":     len(games),
	}).Info("Game list fetched")
	return games
}

// FetchPlayByPlay fetches one game's play-by-play table. A nil slice with a
// nil error means "no data for this game" (missing table or nothing
// survived row filtering); callers log and continue with the next game.
func (c *BasketballReferenceClient) FetchPlayByPlay(gameID string) ([]models.RawPlayEvent, error) {
	url := fmt.Sprintf("%s/boxscores/pbp/%s.html", c.baseURL, gameID)

	doc, err := c.getDocument(url)
	if err != nil {
		return nil, err
	}

	events := ParsePlayByPlayPage(doc)
	if len(events) == 0 {
		return nil, nil
	}
	return events, nil
}

// getDocument performs a rate-limited, breaker-protected, retried GET and
// parses the response body as HTML.
func (c *BasketballReferenceClient) getDocument(url string) (*goquery.Document, error) {
	var doc *goquery.Document

	err := c.retry.Do(url, func() error {
		c.rateLimiter.Wait()

		result, err := c.breaker.Execute(func() (interface{}, error) {
			body, err := c.fetchPage(url)
			if err != nil {
				return nil, err
			}
			if strings.Contains(body, "Rate Limit Exceeded") {
				return nil, ErrRateLimited
			}
			return body, nil
		})
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				c.logger.WithFields(logrus.Fields{
					"component": "source_client",
					"cooldown":  c.cooldown.String(),
				}).Warn("Rate limited by upstream, entering cooldown")
				c.sleep(c.cooldown)
			}
			return err
		}

		body := result.(string)
		parsed, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to parse HTML: %w", err)
		}
		doc = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *BasketballReferenceClient) fetchPage(url string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}
