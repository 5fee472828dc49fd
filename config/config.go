package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all process-wide settings. It is loaded once at startup and
// treated as immutable afterwards; no secret is hard-coded anywhere in source.
type Config struct {
	Addr     string `env:"ADDR" envDefault:":8000"`
	DBDriver string `env:"DB_DRIVER" envDefault:"mysql"`
	DSN      string `env:"DSN,required"`

	JWTSecret string `env:"JWT_SECRET,required"`

	// GoogleClientID is the OAuth client the Google ID tokens must be issued
	// for. Empty disables the audience check (local development only).
	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	// GeminiAPIKey enables bullet-point enhancement. Empty disables it.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (Config, error) {
	// A missing .env is fine; deployments set real environment variables.
	godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
