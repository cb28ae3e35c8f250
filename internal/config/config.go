package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/forgo/menagerie/internal/database"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Log       LogConfig
	BattleLog BattleLogConfig
}

// DatabaseConfig holds PostgreSQL connection settings. URL wins over the
// individual parts when set.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER"`
	Password        string        `env:"DB_PASSWORD"`
	Name            string        `env:"DB_NAME"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// LogConfig holds structured logging settings
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// BattleLogConfig holds battle log retention settings
type BattleLogConfig struct {
	Keep          int           `env:"BATTLE_LOG_KEEP" envDefault:"200"`
	PruneInterval time.Duration `env:"BATTLE_LOG_PRUNE_INTERVAL" envDefault:"1h"`
}

// Load reads an optional .env file (or the given files) into the process
// environment, then parses the environment with defaults. Variables already
// set in the environment are not overridden by the files.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Postgres converts the settings into a database configuration
func (d DatabaseConfig) Postgres() database.Config {
	return database.Config{
		URL:             d.URL,
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Name,
		SSLMode:         d.SSLMode,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}
}

// SlogLevel parses the configured level
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got '%s'", l.Level)
	}
	return level, nil
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Database validation
	if c.Database.URL == "" {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required when DATABASE_URL is not set"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required when DATABASE_URL is not set"))
		}
	}
	if c.Database.MaxOpenConns < 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must not be negative"))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = append(errs, errors.New("DB_MAX_IDLE_CONNS must not be negative"))
	}
	if c.Database.MaxOpenConns > 0 && c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, errors.New("DB_MAX_IDLE_CONNS must not exceed DB_MAX_OPEN_CONNS"))
	}

	// Logging validation
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be 'json' or 'text', got '%s'", c.Log.Format))
	}

	// Retention validation
	if c.BattleLog.Keep < 0 {
		errs = append(errs, errors.New("BATTLE_LOG_KEEP must not be negative"))
	}
	if c.BattleLog.PruneInterval <= 0 {
		errs = append(errs, errors.New("BATTLE_LOG_PRUNE_INTERVAL must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
