package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

const EnvProduction = "production"

type Config struct {
	Env        string `env:"ENV" envDefault:"development"`
	ServerAddr string `env:"SERVER_ADDR" envDefault:":3000"`
	ClientURL  string `env:"CLIENT_URL" envDefault:"http://localhost:5173"`
	JWTSecret  string `env:"JWT_SECRET"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	Database Database `envPrefix:"DATABASE_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	MinIO    MinIO    `envPrefix:"MINIO_"`
	Upload   Upload   `envPrefix:"UPLOAD_"`
}

type Database struct {
	URL         string `env:"URL"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type Redis struct {
	URL string `env:"URL" envDefault:"redis://localhost:6379"`
}

// MinIO is optional. When Endpoint is empty profile images go to Upload.Dir.
type MinIO struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET" envDefault:"snapnest-uploads"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

type Upload struct {
	Dir string `env:"DIR" envDefault:"uploads"`
}

// Load reads the environment and fails fast when a required value is missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.MinIO.Endpoint != "" && (c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "") {
		missing = append(missing, "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY")
	}
	if len(missing) > 0 {
		return errors.New("required environment variables not set: " + strings.Join(missing, ", "))
	}
	return nil
}

// IsProduction reports whether cookies must be issued with the Secure flag.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
