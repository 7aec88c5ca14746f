package app

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr             string        `env:"ADDR,default=:8080"`
	DatabaseURL      string        `env:"DATABASE_URL,default=./blog.db"`
	SessionLifetime  time.Duration `env:"SESSION_LIFETIME,default=24h"`
	RememberLifetime time.Duration `env:"REMEMBER_LIFETIME,default=8760h"`
	SecureCookies    bool          `env:"SECURE_COOKIES,default=false"`
	LogLevel         string        `env:"LOG_LEVEL,default=info"`
	LogFormat        string        `env:"LOG_FORMAT,default=text"`

	// /metrics is meant for an internal scraper; turn it off when the
	// listener is public and nothing in front of it filters the path.
	MetricsEnabled bool `env:"METRICS_ENABLED,default=true"`

	// throttling of POST /login and POST /register, per client IP
	AuthRatePerMinute int `env:"AUTH_RATE_PER_MINUTE,default=10"`
	AuthBurst         int `env:"AUTH_BURST,default=5"`
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("ADDR must not be empty")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL must not be empty")
	}
	if c.SessionLifetime < time.Minute {
		return fmt.Errorf("SESSION_LIFETIME must be at least 1m, got %s", c.SessionLifetime)
	}
	if c.RememberLifetime < c.SessionLifetime {
		return fmt.Errorf("REMEMBER_LIFETIME (%s) must not be shorter than SESSION_LIFETIME (%s)", c.RememberLifetime, c.SessionLifetime)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	if c.AuthRatePerMinute <= 0 || c.AuthBurst <= 0 {
		return errors.New("AUTH_RATE_PER_MINUTE and AUTH_BURST must be positive")
	}
	return nil
}

func Must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
