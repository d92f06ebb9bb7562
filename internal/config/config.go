package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Port      string     `env:"PORT" envDefault:"8080" validate:"required,numeric"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	LogFile   string     `env:"LOG_FILE"`

	LogFileLevel slog.Level `env:"LOG_FILE_LEVEL" envDefault:"INFO"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," validate:"dive,url"`

	StorageProvider       string `env:"STORAGE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis postgres"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=StorageProvider redis"`
	DatabaseURL           string `env:"DATABASE_URL" validate:"required_if=StorageProvider postgres"`

	HistoryLimit   int     `env:"HISTORY_LIMIT" envDefault:"100" validate:"min=1,max=10000"`
	TemplatesFile  string  `env:"TEMPLATES_FILE"`
	MaxTextBytes   int64   `env:"MAX_TEXT_BYTES" envDefault:"1048576" validate:"min=1"`
	VATRatePercent float64 `env:"VAT_RATE_PERCENT" envDefault:"20" validate:"gt=0,lte=100"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	if c.StorageProvider == "postgres" && !strings.HasPrefix(c.DatabaseURL, "postgres://") && !strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must be a postgres:// or postgresql:// URL")
	}

	if c.StorageProvider == "redis" && !strings.HasPrefix(c.RedisConnectionString, "redis://") && !strings.HasPrefix(c.RedisConnectionString, "rediss://") {
		return fmt.Errorf("REDIS_CONNECTION_STRING must be a redis:// or rediss:// URL")
	}

	return nil
}
