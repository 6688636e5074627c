// Package config loads server settings from the environment.
// A .env file in the working directory is read first when present;
// real environment variables win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the server.
type Config struct {
	Port         string        `env:"PORT"          envDefault:"5175"`
	LogLevel     string        `env:"LOG_LEVEL"     envDefault:"info"`
	LogPretty    bool          `env:"LOG_PRETTY"    envDefault:"false"`
	DBPath       string        `env:"DB_PATH"       envDefault:"./data/hilo.db"`
	JWTSecret    string        `env:"JWT_SECRET"    envDefault:"dev_secret_change_me"`
	TokenTTL     time.Duration `env:"TOKEN_TTL"     envDefault:"24h"`
	SessionTTL   time.Duration `env:"SESSION_TTL"   envDefault:"24h"`
	ClientOrigin string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
	DailySalt    string        `env:"DAILY_SALT"    envDefault:"local_dev_salt"`
	DailyMax     int           `env:"DAILY_MAX"     envDefault:"100"`
	DefaultMax   int           `env:"DEFAULT_MAX"   envDefault:"100"`
}

// Load reads the given .env files (default ".env") and parses Config.
// Missing .env files are not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string { return ":" + c.Port }
