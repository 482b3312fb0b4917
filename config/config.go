// Package config loads service settings from the environment (and an
// optional .env file).
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port              string        `env:"PORT" envDefault:"5200"`
	DatabaseURL       string        `env:"DATABASE_URL,required"`
	AllowedOrigins    []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"10m"`

	R2          R2Config          `envPrefix:"R2_"`
	ProfileSync ProfileSyncConfig `envPrefix:"PROFILE_SYNC_"`
}

// R2Config enables game stats exports when Bucket and keys are set.
type R2Config struct {
	AccountID       string `env:"ACCOUNT_ID"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	AccessKeySecret string `env:"ACCESS_KEY_SECRET"`
	Bucket          string `env:"BUCKET_NAME"`
	CDNBaseURL      string `env:"CDN_BASE_URL"`
}

func (c R2Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.AccessKeySecret != ""
}

// ProfileSyncConfig enables the user directory sync worker when URL is set.
type ProfileSyncConfig struct {
	URL      string        `env:"URL"`
	Path     string        `env:"PATH" envDefault:"/api/v1/public/profiles"`
	Token    string        `env:"TOKEN"`
	Interval time.Duration `env:"INTERVAL" envDefault:"1m"`
}

func (c ProfileSyncConfig) Enabled() bool {
	return c.URL != ""
}

// Load reads .env when present, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse reads the environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
