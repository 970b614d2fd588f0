// Package config loads application configuration from the environment.
//
// Configuration comes from environment variables, optionally seeded from a
// .env file in the working directory (godotenv). Every value has a sensible
// development default except the secrets: JWT_SECRET and the admin credential
// pair must be set explicitly or Load fails — starting an account service
// with a guessable signing key or without an admin login is never right.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	DBPath string

	// BaseURL is the public host used to build static-file URLs for
	// profile photos stored as filenames rather than inline base64.
	BaseURL string
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string
}

type AuthConfig struct {
	// JWTSecret signs and verifies access tokens. At least 16 characters;
	// generate with: openssl rand -hex 32
	JWTSecret string

	// AdminEmail/AdminPassword form the configured admin credential pair.
	// This is a parallel authentication branch, not a stored user record:
	// login compares against these values directly and issues an admin
	// token without touching the database.
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration, seeding the environment from .env when present.
func Load() (*Config, error) {
	// Missing .env is fine — containers set real env vars instead.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getIntEnv("PORT", 8080),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			TrustedOrigins:  []string{getEnv("TRUSTED_ORIGIN", "http://localhost:3000")},
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			AdminEmail:    getEnv("ADMIN_EMAIL", ""),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
		DBPath:  getEnv("DB_PATH", "data/talenthub.db"),
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),
	}

	if len(cfg.Auth.JWTSecret) < 16 {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least 16 characters")
	}
	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPassword == "" {
		return nil, fmt.Errorf("config: ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
