package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// seasonLabelPattern matches labels like "2022-23".
var seasonLabelPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Database
	DatabasePath string `mapstructure:"DATABASE_PATH"`

	// Redis (optional; empty disables caching)
	RedisURL string `mapstructure:"REDIS_URL"`

	// Scrape target
	Season     string `mapstructure:"SEASON"`
	SeasonType string `mapstructure:"SEASON_TYPE"`

	// Upstream source
	SourceBaseURL      string        `mapstructure:"SOURCE_BASE_URL"`
	SourceTimeout      time.Duration `mapstructure:"SOURCE_TIMEOUT"`
	RateLimitMinDelay  time.Duration `mapstructure:"RATE_LIMIT_MIN_DELAY"`
	RateLimitMaxDelay  time.Duration `mapstructure:"RATE_LIMIT_MAX_DELAY"`
	RateLimitCooldown  time.Duration `mapstructure:"RATE_LIMIT_COOLDOWN"`
	RetryMaxAttempts   int           `mapstructure:"RETRY_MAX_ATTEMPTS"`
	RetryBaseDelay     time.Duration `mapstructure:"RETRY_BASE_DELAY"`

	// Circuit breaker
	CircuitBreakerThreshold int `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`

	// Background jobs (server mode)
	ScrapeSchedule       string `mapstructure:"SCRAPE_SCHEDULE"`
	EnableBackgroundJobs bool   `mapstructure:"ENABLE_BACKGROUND_JOBS"`

	// Model defaults
	DefaultLagSeconds  float64 `mapstructure:"DEFAULT_LAG_SECONDS"`
	DefaultMaxDiff     int     `mapstructure:"DEFAULT_MAX_DIFF"`
	SeriesCacheTTLSecs int     `mapstructure:"SERIES_CACHE_TTL_SECONDS"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_PATH", "nba_pbp.db")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("SEASON", "2022-23")
	viper.SetDefault("SEASON_TYPE", "Regular Season")
	viper.SetDefault("SOURCE_BASE_URL", "https://www.basketball-reference.com")
	viper.SetDefault("SOURCE_TIMEOUT", "30s")
	viper.SetDefault("RATE_LIMIT_MIN_DELAY", "3s")
	viper.SetDefault("RATE_LIMIT_MAX_DELAY", "5s")
	viper.SetDefault("RATE_LIMIT_COOLDOWN", "5m")
	viper.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	viper.SetDefault("RETRY_BASE_DELAY", "1s")
	viper.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5)
	viper.SetDefault("SCRAPE_SCHEDULE", "")
	viper.SetDefault("ENABLE_BACKGROUND_JOBS", false)
	viper.SetDefault("DEFAULT_LAG_SECONDS", 2.0)
	viper.SetDefault("DEFAULT_MAX_DIFF", 50)
	viper.SetDefault("SERIES_CACHE_TTL_SECONDS", 3600)

	viper.AutomaticEnv()

	// Missing .env is fine, environment and defaults still apply
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate fails fast on configuration errors, before any network activity.
func (c *Config) Validate() error {
	if err := ValidateSeasonLabel(c.Season); err != nil {
		return err
	}
	if c.RateLimitMinDelay < 0 || c.RateLimitMaxDelay < c.RateLimitMinDelay {
		return fmt.Errorf("invalid rate limit delays: min=%s max=%s", c.RateLimitMinDelay, c.RateLimitMaxDelay)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be >= 1, got %d", c.RetryMaxAttempts)
	}
	if c.DefaultMaxDiff < 1 {
		return fmt.Errorf("DEFAULT_MAX_DIFF must be >= 1, got %d", c.DefaultMaxDiff)
	}
	if c.DefaultLagSeconds <= 0 {
		return fmt.Errorf("DEFAULT_LAG_SECONDS must be > 0, got %g", c.DefaultLagSeconds)
	}
	return nil
}

// ValidateSeasonLabel checks that a label looks like "2022-23" and that the
// two-digit suffix is the year after the four-digit start.
func ValidateSeasonLabel(label string) error {
	if label == "" {
		return fmt.Errorf("season label is empty")
	}
	if !seasonLabelPattern.MatchString(label) {
		return fmt.Errorf("season label %q does not match YYYY-YY", label)
	}
	start, _ := strconv.Atoi(label[:4])
	end, _ := strconv.Atoi(label[5:])
	if (start+1)%100 != end {
		return fmt.Errorf("season label %q is not contiguous", label)
	}
	return nil
}

// SeasonEndYear returns the calendar year a season finishes in, used to
// build schedule URLs ("2022-23" -> 2023).
func SeasonEndYear(label string) int {
	start, _ := strconv.Atoi(label[:4])
	return start + 1
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
