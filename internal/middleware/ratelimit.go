package middleware

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	// Global limits (per IP)
	GlobalAPIMax        int
	GlobalAPIExpiration time.Duration

	// Suggestion endpoint limits (per IP) - fires per partial transcript
	SuggestionMax        int
	SuggestionExpiration time.Duration

	// Maintenance trigger limits (per IP) - full-collection scan
	MaintenanceMax        int
	MaintenanceExpiration time.Duration
}

// DefaultRateLimitConfig returns production-safe defaults
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		// Global: 200/min = ~3.3 req/sec
		GlobalAPIMax:        200,
		GlobalAPIExpiration: 1 * time.Minute,

		// Suggestions: partial transcripts arrive in bursts while the user
		// speaks; the debounce on the client side keeps real traffic well
		// under this
		SuggestionMax:        120,
		SuggestionExpiration: 1 * time.Minute,

		// Maintenance: scans the whole knowledge base
		MaintenanceMax:        5,
		MaintenanceExpiration: 1 * time.Minute,
	}
}

// LoadRateLimitConfig loads config from environment variables with defaults
func LoadRateLimitConfig() *RateLimitConfig {
	config := DefaultRateLimitConfig()

	if v := os.Getenv("RATE_LIMIT_GLOBAL_API"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.GlobalAPIMax = n
		}
	}

	if v := os.Getenv("RATE_LIMIT_SUGGESTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.SuggestionMax = n
		}
	}

	if v := os.Getenv("RATE_LIMIT_MAINTENANCE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.MaintenanceMax = n
		}
	}

	// Development mode: more lenient limits
	if os.Getenv("ENVIRONMENT") == "development" {
		config.GlobalAPIMax = 1000
		config.SuggestionMax = 600
		log.Println("⚠️  [RATE-LIMIT] Development mode: using relaxed rate limits")
	}

	return config
}

// GlobalAPIRateLimiter creates a rate limiter for all API requests
func GlobalAPIRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.GlobalAPIMax,
		Expiration: config.GlobalAPIExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "global:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("🚫 [RATE-LIMIT] Global limit reached for IP: %s", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many requests. Please slow down.",
				"retry_after": int(config.GlobalAPIExpiration.Seconds()),
			})
		},
		SkipFailedRequests:     false,
		SkipSuccessfulRequests: false,
	})
}

// SuggestionRateLimiter for the live suggestion endpoint
func SuggestionRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.SuggestionMax,
		Expiration: config.SuggestionExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "suggest:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("⚠️  [RATE-LIMIT] Suggestion limit reached for IP: %s", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many suggestion requests. Please wait.",
				"retry_after": int(config.SuggestionExpiration.Seconds()),
			})
		},
	})
}

// MaintenanceRateLimiter for the manual maintenance trigger
func MaintenanceRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.MaintenanceMax,
		Expiration: config.MaintenanceExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "maintenance:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("⚠️  [RATE-LIMIT] Maintenance trigger limit reached for IP: %s", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many maintenance requests. Please wait.",
				"retry_after": int(config.MaintenanceExpiration.Seconds()),
			})
		},
	})
}
