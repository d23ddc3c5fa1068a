package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/buddemax/kontext/internal/services"
)

// MaintenanceHandler exposes the maintenance pass as a manual trigger
type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(maintenanceService *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService}
}

// Run triggers a full maintenance pass and returns its summary
// POST /api/v1/maintenance/run
func (h *MaintenanceHandler) Run(c *fiber.Ctx) error {
	// A full scan over a large collection can take a while
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	summary, err := h.maintenanceService.Run(ctx)
	if err != nil {
		log.Printf("❌ [MAINTENANCE-API] Maintenance run failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Maintenance run failed",
		})
	}

	return c.JSON(summary)
}
