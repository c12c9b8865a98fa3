package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultTimezone        = "Asia/Seoul"
	DefaultDailyReportTime = "09:00"
	DefaultOAuthServerPort = 8080
	DefaultDataDir         = "./data"
	DefaultOpenAIModel     = "gpt-4.1"
	DefaultBufSize         = 100
	DefaultMaxWorkers      = 8
)

type Config struct {
	TelegramToken string
	OpenAIKey     string
	OpenAIModel   string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	SharedCalendarID   string
	MapsAPIKey         string

	TimezoneName    string
	Timezone        *time.Location
	DailyReportTime string // HH:MM
	OAuthServerPort int
	DataDir         string
	MaxWorkers      int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present so local runs match deployments.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        envOr("OPENAI_MODEL", DefaultOpenAIModel),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:  envOr("GOOGLE_REDIRECT_URI", "http://localhost"),
		SharedCalendarID:   os.Getenv("SHARED_CALENDAR_ID"),
		MapsAPIKey:         os.Getenv("GOOGLE_MAPS_API_KEY"),
		TimezoneName:       envOr("TIMEZONE", DefaultTimezone),
		DailyReportTime:    envOr("DAILY_REPORT_TIME", DefaultDailyReportTime),
		OAuthServerPort:    DefaultOAuthServerPort,
		DataDir:            envOr("TGCAL_DATA_DIR", DefaultDataDir),
		MaxWorkers:         DefaultMaxWorkers,
	}

	if port := os.Getenv("OAUTH_SERVER_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("parse OAUTH_SERVER_PORT: %w", err)
		}
		cfg.OAuthServerPort = p
	}
	if workers := os.Getenv("TGCAL_MAX_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			cfg.MaxWorkers = n
		}
	}

	loc, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.TimezoneName, err)
	}
	cfg.Timezone = loc

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	required := map[string]string{
		"TELEGRAM_BOT_TOKEN":   c.TelegramToken,
		"OPENAI_API_KEY":       c.OpenAIKey,
		"GOOGLE_CLIENT_ID":     c.GoogleClientID,
		"GOOGLE_CLIENT_SECRET": c.GoogleClientSecret,
		"SHARED_CALENDAR_ID":   c.SharedCalendarID,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if _, _, err := ParseClock(c.DailyReportTime); err != nil {
		return fmt.Errorf("DAILY_REPORT_TIME: %w", err)
	}
	return nil
}

// TokensDir is where per-chat OAuth token files live.
func (c *Config) TokensDir() string {
	return filepath.Join(c.DataDir, "tokens")
}

// ParseClock parses an HH:MM string.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid HH:MM value %q", s)
	}
	return t.Hour(), t.Minute(), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
