package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port         int    `env:"PORT" envDefault:"3318"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" envDefault:"sqlite"`
	AdminKeySalt string `env:"ADMIN_KEY_SALT"`

	// Limits
	DailyPollLimit int `env:"DAILY_POLL_LIMIT" envDefault:"50"`
	MaxCandidates  int `env:"MAX_CANDIDATES" envDefault:"20"`

	// Candidate description enrichment (disabled without a key)
	DescriptionAPIKey  string        `env:"DESCRIPTION_API_KEY"`
	DescriptionAPIURL  string        `env:"DESCRIPTION_API_URL" envDefault:"https://api.anthropic.com"`
	DescriptionModel   string        `env:"DESCRIPTION_MODEL" envDefault:"claude-haiku-4-5"`
	DescriptionTimeout time.Duration `env:"DESCRIPTION_TIMEOUT" envDefault:"5s"`
}

// ParseFlags reads the environment, then lets CLI flags override it
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	fs := flag.NewFlagSet("rankpick", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", cfg.AdminKeySalt, "Admin key salt (prefer env)")

	fs.IntVar(&cfg.DailyPollLimit, "daily-limit", cfg.DailyPollLimit, "Polls that may be created per UTC day")
	fs.IntVar(&cfg.MaxCandidates, "max-candidates", cfg.MaxCandidates, "Maximum candidates per poll")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.DailyPollLimit < 1 {
		return Config{}, errors.New("daily poll limit must be positive")
	}
	if cfg.MaxCandidates < 2 {
		return Config{}, errors.New("max candidates must be at least 2")
	}

	return cfg, nil
}

// DescriptionsEnabled reports whether candidate enrichment is configured
func (c Config) DescriptionsEnabled() bool {
	return c.DescriptionAPIKey != ""
}
