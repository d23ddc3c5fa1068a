package handlers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/buddemax/kontext/internal/models"
	"github.com/buddemax/kontext/internal/services"
)

// SuggestionHandler handles live suggestion requests fired while the user
// is still speaking
type SuggestionHandler struct {
	suggestionService *services.SuggestionService
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(suggestionService *services.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

// Fetch returns knowledge suggestions for a partial transcript
// GET /api/v1/suggestions?mode=work&partial=...&session=...
func (h *SuggestionHandler) Fetch(c *fiber.Ctx) error {
	mode := c.Query("mode", models.ModePrivate)
	partial := c.Query("partial", "")
	session := c.Query("session", "")
	if session == "" {
		session = c.IP()
	}

	if !models.ValidMode(mode) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "mode must be 'private' or 'work'",
		})
	}
	if strings.TrimSpace(partial) == "" {
		return c.JSON(fiber.Map{
			"suggestions": []models.KnowledgeReference{},
			"candidates":  []string{},
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := h.suggestionService.Fetch(ctx, session, mode, partial)
	if err != nil {
		if errors.Is(err, services.ErrThrottled) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many suggestion requests. Please wait.",
			})
		}
		log.Printf("❌ [SUGGESTION-API] Failed to fetch suggestions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch suggestions",
		})
	}

	return c.JSON(fiber.Map{
		"suggestions": result.Suggestions,
		"candidates":  result.Candidates,
	})
}
