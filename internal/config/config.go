package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	TMDBBaseURL string
	TMDBAPIKey  string
	TMDBRegion  string

	JWTSecret string

	FeedPageSize  int
	EnrichTimeout time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		TMDBBaseURL: getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBAPIKey:  os.Getenv("TMDB_API_KEY"),
		TMDBRegion:  getEnv("TMDB_REGION", "US"),

		JWTSecret: getEnv("JWT_SECRET", "12345"),
	}

	pageSize, err := strconv.Atoi(getEnv("FEED_PAGE_SIZE", "20"))
	if err != nil || pageSize < 1 {
		return nil, fmt.Errorf("invalid FEED_PAGE_SIZE: %v", err)
	}
	cfg.FeedPageSize = pageSize

	cfg.EnrichTimeout, err = time.ParseDuration(getEnv("ENRICH_TIMEOUT", "3s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENRICH_TIMEOUT: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
