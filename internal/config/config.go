package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Matchmaking
	MatchWaitThresholdSeconds int // wait before a simulated opponent is synthesized
	RankBandWidth             int // +/- rank points for the banded search
	SearchBatchLimit          int // candidates fetched per banded search
	SimulatedOpponentID       int // reserved sentinel player id
	DeckSize                  int
	LegendaryPoolSize         int
	CardPoolSize              int

	// Battle state
	BattleStateTTLMinutes int

	// Security
	JWTSecret     string
	TokenTTLHours int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/cardarena?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Matchmaking
		MatchWaitThresholdSeconds: getEnvInt("MATCH_WAIT_THRESHOLD_SECONDS", 30),
		RankBandWidth:             getEnvInt("RANK_BAND_WIDTH", 300),
		SearchBatchLimit:          getEnvInt("SEARCH_BATCH_LIMIT", 5),
		SimulatedOpponentID:       getEnvInt("SIMULATED_OPPONENT_ID", 1),
		DeckSize:                  getEnvInt("DECK_SIZE", 5),
		LegendaryPoolSize:         getEnvInt("LEGENDARY_POOL_SIZE", 20),
		CardPoolSize:              getEnvInt("CARD_POOL_SIZE", 50),

		// Battle state
		BattleStateTTLMinutes: getEnvInt("BATTLE_STATE_TTL_MINUTES", 60),

		// Security
		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		TokenTTLHours: getEnvInt("TOKEN_TTL_HOURS", 72),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
