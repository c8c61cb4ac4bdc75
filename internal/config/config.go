package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultLevelThresholds is the 10-level curve: index i holds the all-time
// total required to sit at level i+1. Must be strictly increasing.
var DefaultLevelThresholds = []int{0, 100, 250, 500, 1000, 2000, 4000, 8000, 16000, 32000}

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	JWTSecret string

	LevelThresholds []int

	// How long a leaderboard snapshot stays servable before a read triggers
	// regeneration.
	LeaderboardFreshness time.Duration

	// Cron specs for the externally scheduled jobs.
	WeeklyResetSpec     string
	MonthlyResetSpec    string
	SnapshotRefreshSpec string
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

		JWTSecret: getEnv("JWT_SECRET", "12345"),

		WeeklyResetSpec:     getEnv("WEEKLY_RESET_CRON", "0 0 * * 1"),
		MonthlyResetSpec:    getEnv("MONTHLY_RESET_CRON", "0 0 1 * *"),
		SnapshotRefreshSpec: getEnv("SNAPSHOT_REFRESH_CRON", "*/15 * * * *"),
	}

	var err error
	cfg.LeaderboardFreshness, err = time.ParseDuration(getEnv("LEADERBOARD_FRESHNESS", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEADERBOARD_FRESHNESS: %w", err)
	}

	cfg.LevelThresholds, err = parseThresholds(getEnv("LEVEL_THRESHOLDS", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid LEVEL_THRESHOLDS: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// parseThresholds reads a comma-separated threshold list. The list must be
// strictly increasing and start at 0 so the level function stays monotonic.
func parseThresholds(s string) ([]int, error) {
	if s == "" {
		return DefaultLevelThresholds, nil
	}

	parts := strings.Split(s, ",")
	thresholds := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		thresholds = append(thresholds, v)
	}

	if len(thresholds) < 2 || thresholds[0] != 0 {
		return nil, fmt.Errorf("threshold list must start at 0 and define at least 2 levels")
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return nil, fmt.Errorf("thresholds must be strictly increasing")
		}
	}

	return thresholds, nil
}
