package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port               string
	LogLevel           string
	AllowedOrigins     []string
	SearchEndpoint     string
	SearchTimeout      time.Duration
	SearchUserAgent    string
	SessionIdleTimeout time.Duration
	DatabaseURL        string
	MultimodalEndpoint string
	MaxScore           float64
}

// Load reads an optional .env file (missing files are ignored) and then the
// environment. defaultPort applies when PORT is unset.
func Load(envFile, defaultPort string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Port:               getenv("PORT", defaultPort),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		AllowedOrigins:     splitList(getenv("ALLOWED_ORIGINS", "*")),
		SearchEndpoint:     getenv("SEARCH_ENDPOINT", "http://localhost:8080/api/v1/search"),
		SearchUserAgent:    os.Getenv("SEARCH_USER_AGENT"),
		DatabaseURL:        normalizeDatabaseURL(os.Getenv("DATABASE_URL")),
		MultimodalEndpoint: getenv("MULTIMODAL_ENDPOINT", "http://localhost:5001/search/multimodal"),
	}

	var err error
	if cfg.SearchTimeout, err = durationEnv("SEARCH_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTimeout, err = durationEnv("SESSION_IDLE_TIMEOUT", 30*time.Minute); err != nil {
		return nil, err
	}
	if raw := os.Getenv("MAX_SCORE"); raw != "" {
		if cfg.MaxScore, err = strconv.ParseFloat(raw, 64); err != nil {
			return nil, fmt.Errorf("MAX_SCORE: %w", err)
		}
	} else {
		cfg.MaxScore = 50
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// normalizeDatabaseURL rewrites SQLAlchemy-style schemes to one pgx accepts.
func normalizeDatabaseURL(dbURL string) string {
	for _, prefix := range []string{"postgresql+psycopg2:", "postgresql+psycopg:"} {
		if rest, ok := strings.CutPrefix(dbURL, prefix); ok {
			return "postgres:" + rest
		}
	}
	return dbURL
}
