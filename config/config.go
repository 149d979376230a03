package config

import (
	"log"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	Telegram          Telegram
	Redis             Redis
	API               API
	Cache             Cache
	Jobs              Jobs
	GoogleDrive       GoogleDrive
	Reminder          Reminder
	SessionExpiration time.Duration `env:"SESSION_EXPIRATION" envDefault:"720h"`
}

type Telegram struct {
	Token            string        `env:"TELEGRAM_TOKEN,notEmpty"`
	UpdTimeout       time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
	FileLimitInBytes int           `env:"TELEGRAM_FILE_LIMIT_IN_BYTES" envDefault:"52428800"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type API struct {
	Debug    bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout  time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	YahooApi YahooApi
	NewsApi  NewsApi
}

type YahooApi struct {
	Url string `env:"YAHOO_API_URL" envDefault:"https://query1.finance.yahoo.com"`
}

type NewsApi struct {
	Url    string `env:"NEWS_API_URL" envDefault:"https://newsapi.org"`
	ApiKey string `env:"NEWS_API_KEY,notEmpty"`
}

type Cache struct {
	PriceTTL   time.Duration `env:"CACHE_PRICE_TTL" envDefault:"15m"`
	HistoryTTL time.Duration `env:"CACHE_HISTORY_TTL" envDefault:"1h"`
	RatesTTL   time.Duration `env:"CACHE_RATES_TTL" envDefault:"1h"`
	NewsTTL    time.Duration `env:"CACHE_NEWS_TTL" envDefault:"1h"`
}

type Jobs struct {
	WarmCacheInterval     time.Duration `env:"WARM_CACHE_JOB_INTERVAL" envDefault:"30m"`
	DeleteOldFilesCrontab string        `env:"DELETE_OLD_FILES_JOB_CRONTAB" envDefault:"0 3 * * *"`
}

// GoogleDrive is optional: reports larger than the telegram file limit are
// uploaded only when a credentials file is configured.
type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"24h"`
}

type Reminder struct {
	StaleAfterDays int `env:"REMINDER_STALE_AFTER_DAYS" envDefault:"3"`
}

const redacted = "***"

// LogValue hides credentials when the config is logged.
func (c Config) LogValue() slog.Value {
	type plain Config
	p := plain(c)
	p.Telegram.Token = redact(p.Telegram.Token)
	p.Redis.Password = redact(p.Redis.Password)
	p.API.NewsApi.ApiKey = redact(p.API.NewsApi.ApiKey)
	return slog.AnyValue(p)
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return redacted
}

func Load() (*Config, error) {
	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg, err := Load()
	if err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
