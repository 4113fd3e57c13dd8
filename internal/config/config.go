// Package config loads runtime configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Addr   string
	DBPath string

	JWTSecret     string
	TokenDuration time.Duration

	// Vision extraction (optional; upload endpoint disabled when empty).
	GroqAPIKey string
	GroqModel  string

	// SMTP invite mail (optional; invites skip mail when host is empty).
	SMTPHost     string
	SMTPPort     int
	SMTPEmail    string
	SMTPPassword string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first if present.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:          getEnv("ADDR", ":8080"),
		DBPath:        getEnv("DB_PATH", "./data/splitshare.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenDuration: 24 * time.Hour,
		GroqAPIKey:    os.Getenv("GROQ_API_KEY"),
		GroqModel:     getEnv("GROQ_MODEL", "llama-3.2-90b-vision-preview"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPEmail:     os.Getenv("SMTP_EMAIL"),
		SMTPPassword:  os.Getenv("SMTP_PASS"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if d := os.Getenv("TOKEN_DURATION"); d != "" {
		dur, err := time.ParseDuration(d)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_DURATION: %w", err)
		}
		cfg.TokenDuration = dur
	}

	if p := os.Getenv("SMTP_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		cfg.SMTPPort = port
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
