package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "tg-token")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("NEWS_API_KEY", "news-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "news-key", cfg.API.NewsApi.ApiKey)
	assert.Equal(t, "https://newsapi.org", cfg.API.NewsApi.Url)
	assert.Equal(t, "https://query1.finance.yahoo.com", cfg.API.YahooApi.Url)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, time.Hour, cfg.Cache.NewsTTL)
	assert.Equal(t, time.Hour, cfg.Cache.RatesTTL)
	assert.Equal(t, 3, cfg.Reminder.StaleAfterDays)
	assert.Empty(t, cfg.GoogleDrive.CredentialsFile)
	assert.Equal(t, 720*time.Hour, cfg.SessionExpiration)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CACHE_PRICE_TTL", "5m")
	t.Setenv("API_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.Cache.PriceTTL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
}

func TestLoad_MissingNewsApiKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NEWS_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NEWS_API_KEY")
}

func TestConfig_LogValueRedactsSecrets(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_PASSWORD", "redis-pass")

	cfg, err := Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Debug("config", slog.Any("cfg", cfg))

	out := buf.String()
	assert.NotContains(t, out, "tg-token")
	assert.NotContains(t, out, "news-key")
	assert.NotContains(t, out, "redis-pass")
	assert.Contains(t, out, redacted)
	assert.Contains(t, out, "https://newsapi.org")
	// original config is untouched
	assert.Equal(t, "news-key", cfg.API.NewsApi.ApiKey)
}
