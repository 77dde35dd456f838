package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/courtmetrics/marginflow/internal/config"
)

func TestValidateSeasonLabel(t *testing.T) {
	valid := []string{"2022-23", "1999-00", "2019-20"}
	for _, label := range valid {
		assert.NoError(t, config.ValidateSeasonLabel(label), label)
	}

	invalid := []string{
		"",
		"2022",
		"2022-2023",
		"22-23",
		"2022-24",
		"2022-22",
		"abcd-ef",
		"2022/23",
	}
	for _, label := range invalid {
		assert.Error(t, config.ValidateSeasonLabel(label), label)
	}
}

func TestSeasonEndYear(t *testing.T) {
	assert.Equal(t, 2023, config.SeasonEndYear("2022-23"))
	assert.Equal(t, 2000, config.SeasonEndYear("1999-00"))
}

func validConfig() *config.Config {
	return &config.Config{
		Season:            "2022-23",
		RateLimitMinDelay: 3 * time.Second,
		RateLimitMaxDelay: 5 * time.Second,
		RetryMaxAttempts:  3,
		DefaultLagSeconds: 2.0,
		DefaultMaxDiff:    50,
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.Season = "2022-24"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.RateLimitMaxDelay = time.Second
	assert.Error(t, cfg.Validate(), "max delay below min delay")

	cfg = validConfig()
	cfg.RetryMaxAttempts = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.DefaultLagSeconds = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.DefaultMaxDiff = 0
	assert.Error(t, cfg.Validate())
}

func TestIsDevelopment(t *testing.T) {
	cfg := &config.Config{Env: "development"}
	assert.True(t, cfg.IsDevelopment())
	cfg.Env = "production"
	assert.False(t, cfg.IsDevelopment())
}
