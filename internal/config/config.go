package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"dev"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StoreDriver    string        `env:"STORE_DRIVER" envDefault:"sqlite"`
	ConnectTimeout time.Duration `env:"STORE_CONNECT_TIMEOUT" envDefault:"30s"`

	DBPath      string `env:"DB_PATH" envDefault:"./dev.db"`
	DatabaseURL string `env:"DATABASE_URL"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX"`
}

// Load reads the optional .env file and the environment and returns a validated Config.
func Load() (Config, error) {
	// Local development convenience; production injects real environment variables.
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}

// DSN returns the data source for the SQL store drivers.
func (c Config) DSN() string {
	if c.StoreDriver == StorePostgres {
		return c.DatabaseURL
	}
	return c.DBPath
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}
