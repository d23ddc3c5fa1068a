package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/buddemax/kontext/internal/models"
	"github.com/buddemax/kontext/internal/services"
	"github.com/buddemax/kontext/internal/store"
)

// KnowledgeHandler handles knowledge entry API endpoints
type KnowledgeHandler struct {
	knowledgeService *services.KnowledgeService
	minRelevance     float64
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(knowledgeService *services.KnowledgeService, minRelevance float64) *KnowledgeHandler {
	return &KnowledgeHandler{
		knowledgeService: knowledgeService,
		minRelevance:     minRelevance,
	}
}

// CaptureRequest is the request body for POST /api/v1/knowledge
type CaptureRequest struct {
	Mode       string `json:"mode"`
	Content    string `json:"content"`
	Source     string `json:"source,omitempty"`
	EntityType string `json:"entity_type,omitempty"`
}

// Capture stores a new knowledge entry
// POST /api/v1/knowledge
func (h *KnowledgeHandler) Capture(c *fiber.Ctx) error {
	var req CaptureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if !models.ValidMode(req.Mode) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "mode must be 'private' or 'work'",
		})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "content is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry, err := h.knowledgeService.Capture(ctx, req.Mode, req.Content, req.Source, req.EntityType)
	if err != nil {
		log.Printf("❌ [KNOWLEDGE-API] Failed to capture entry: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store knowledge entry",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

// UtteranceRequest is the request body for POST /api/v1/knowledge/utterance
type UtteranceRequest struct {
	Mode      string `json:"mode"`
	Utterance string `json:"utterance"`
}

// CaptureFromUtterance classifies a voice utterance and stores it when the
// intent is a store command
// POST /api/v1/knowledge/utterance
func (h *KnowledgeHandler) CaptureFromUtterance(c *fiber.Ctx) error {
	var req UtteranceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if !models.ValidMode(req.Mode) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "mode must be 'private' or 'work'",
		})
	}
	if strings.TrimSpace(req.Utterance) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "utterance is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	intent, entry, err := h.knowledgeService.CaptureFromUtterance(ctx, req.Mode, req.Utterance)
	if err != nil {
		log.Printf("❌ [KNOWLEDGE-API] Failed to process utterance: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process utterance",
		})
	}

	return c.JSON(fiber.Map{
		"intent": intent,
		"stored": entry != nil,
		"entry":  entry,
	})
}

// List returns all entries of a mode
// GET /api/v1/knowledge?mode=work
func (h *KnowledgeHandler) List(c *fiber.Ctx) error {
	mode := c.Query("mode", models.ModePrivate)
	if !models.ValidMode(mode) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "mode must be 'private' or 'work'",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries, err := h.knowledgeService.List(ctx, mode)
	if err != nil {
		log.Printf("❌ [KNOWLEDGE-API] Failed to list entries: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list knowledge entries",
		})
	}

	return c.JSON(fiber.Map{
		"entries": entries,
		"count":   len(entries),
	})
}

// Search runs relevance-ranked retrieval over a mode's collection
// GET /api/v1/knowledge/search?mode=work&query=...&limit=5
func (h *KnowledgeHandler) Search(c *fiber.Ctx) error {
	mode := c.Query("mode", models.ModePrivate)
	query := c.Query("query", "")
	limit, _ := strconv.Atoi(c.Query("limit", "0"))

	if !models.ValidMode(mode) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "mode must be 'private' or 'work'",
		})
	}
	if strings.TrimSpace(query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.knowledgeService.Retrieve(ctx, services.RetrieveOptions{
		Query:        query,
		Mode:         mode,
		Limit:        limit,
		MinRelevance: h.minRelevance,
	})
	if err != nil {
		log.Printf("❌ [KNOWLEDGE-API] Search failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Search failed",
		})
	}

	return c.JSON(fiber.Map{
		"references":       result.Context,
		"matched_keywords": result.MatchedKeywords,
		"total_matches":    result.TotalMatches,
	})
}

// Get returns a single entry by ID
// GET /api/v1/knowledge/:id
func (h *KnowledgeHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry, err := h.knowledgeService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Knowledge entry not found",
			})
		}
		log.Printf("❌ [KNOWLEDGE-API] Failed to get entry: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve knowledge entry",
		})
	}

	return c.JSON(entry)
}

// Delete removes an entry
// DELETE /api/v1/knowledge/:id
func (h *KnowledgeHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.knowledgeService.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Knowledge entry not found",
			})
		}
		log.Printf("❌ [KNOWLEDGE-API] Failed to delete entry: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete knowledge entry",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
