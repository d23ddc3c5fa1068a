package config

import (
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds all application configuration
type Config struct {
	Port         string
	DatabasePath string // SQLite file path, ":memory:" for ephemeral

	// Locale configuration
	LocalePath string // optional YAML overlay over the built-in German table

	// Retrieval tuning
	KnowledgeLimit int
	DocumentLimit  int
	MinRelevance   float64

	// Maintenance configuration
	MaintenanceSchedule  string // standard 5-field cron expression
	MaintenanceOnStartup bool
	SimilarityThreshold  float64

	// Live suggestion configuration
	DebounceDelay       time.Duration
	SuggestionCacheTTL  time.Duration
	SuggestionRateLimit float64 // fetches per second per conversation
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3001"),
		DatabasePath: getEnv("DATABASE_PATH", "kontext.db"),

		LocalePath: getEnv("LOCALE_PATH", ""),

		KnowledgeLimit: getIntEnv("KNOWLEDGE_LIMIT", 5),
		DocumentLimit:  getIntEnv("DOCUMENT_LIMIT", 3),
		MinRelevance:   getFloatEnv("MIN_RELEVANCE", 0.3),

		MaintenanceSchedule:  getCronEnv("MAINTENANCE_SCHEDULE", "0 3 * * *"),
		MaintenanceOnStartup: getBoolEnv("MAINTENANCE_ON_STARTUP", true),
		SimilarityThreshold:  getFloatEnv("SIMILARITY_THRESHOLD", 0.75),

		DebounceDelay:       getDurationEnv("SUGGESTION_DEBOUNCE", 300*time.Millisecond),
		SuggestionCacheTTL:  getDurationEnv("SUGGESTION_CACHE_TTL", 30*time.Second),
		SuggestionRateLimit: getFloatEnv("SUGGESTION_RATE_LIMIT", 5),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// getCronEnv validates the expression before accepting it; a broken
// schedule falls back to the default instead of killing the maintenance
// job at registration time.
func getCronEnv(key, defaultValue string) string {
	value := getEnv(key, defaultValue)
	if _, err := cron.ParseStandard(value); err != nil {
		return defaultValue
	}
	return value
}
