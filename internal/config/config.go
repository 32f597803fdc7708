package config

import (
	"errors"
	"fmt"
	"time"

	"playground_server/internal/logger"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string `env:"APP_PORT" envDefault:"8080"`
	AppVersion  string `env:"APP_VERSION" envDefault:"dev"`
	DatabaseURL string `env:"DATABASE_URL"` // empty disables result persistence
	JWTSecret   string `env:"JWT_SECRET,required,notEmpty"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	TurnTimeout         time.Duration `env:"TURN_TIMEOUT" envDefault:"5m"`
	WordsCardsFile      string        `env:"WORDS_CARDS_FILE"`
	WordsDictionaryFile string        `env:"WORDS_DICTIONARY_FILE"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON       bool   `env:"LOG_JSON" envDefault:"false"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN"`

	APIRateLimit   int           `env:"API_RATE_LIMIT" envDefault:"120"`
	APIRateWindow  time.Duration `env:"API_RATE_WINDOW" envDefault:"1m"`
	GameRateLimit  int           `env:"GAME_RATE_LIMIT" envDefault:"60"`
	GameRateWindow time.Duration `env:"GAME_RATE_WINDOW" envDefault:"1m"`
}

// Parse reads .env (if present) and the process environment.
func Parse() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.TurnTimeout <= 0 {
		errs = append(errs, fmt.Errorf("TURN_TIMEOUT must be positive, got %s", c.TurnTimeout))
	}
	if c.APIRateLimit <= 0 || c.APIRateWindow <= 0 {
		errs = append(errs, errors.New("API_RATE_LIMIT and API_RATE_WINDOW must be positive"))
	}
	if c.GameRateLimit <= 0 || c.GameRateWindow <= 0 {
		errs = append(errs, errors.New("GAME_RATE_LIMIT and GAME_RATE_WINDOW must be positive"))
	}
	return errors.Join(errs...)
}

// Load is Parse that exits the process on error.
func Load() *Config {
	cfg, err := Parse()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

// PersistenceEnabled reports whether a database is configured.
func (c *Config) PersistenceEnabled() bool { return c.DatabaseURL != "" }
