package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/buddemax/kontext/internal/store"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db *store.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *store.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	status := "healthy"
	dbStatus := "ok"
	if err := h.db.PingContext(c.Context()); err != nil {
		status = "degraded"
		dbStatus = err.Error()
	}

	code := fiber.StatusOK
	if status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
