package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Cheertaboi/Billing-system-promo-engine/internal/logging"
	"github.com/Cheertaboi/Billing-system-promo-engine/pkg/db"
)

type Config struct {
	// Server
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"8s"`

	// Promotions
	CurrencyScale  int32         `env:"CURRENCY_SCALE" envDefault:"2"`
	ResolveWorkers int           `env:"RESOLVE_WORKERS" envDefault:"4"`
	CacheTTL       time.Duration `env:"PROMO_CACHE_TTL" envDefault:"5m"`

	// Database
	RunMigrations bool              `env:"RUN_MIGRATIONS" envDefault:"true"`
	Postgres      db.PostgresConfig `envPrefix:"DB_"`

	Log logging.Config
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; variables already set in
// the process environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.CurrencyScale < 0 {
		return nil, fmt.Errorf("parse config: CURRENCY_SCALE must not be negative")
	}
	if cfg.ResolveWorkers < 1 {
		cfg.ResolveWorkers = 1
	}
	return cfg, nil
}
