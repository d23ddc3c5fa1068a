package handlers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/buddemax/kontext/internal/models"
	"github.com/buddemax/kontext/internal/services"
)

// ContextHandler handles context assembly requests
type ContextHandler struct {
	contextService *services.ContextService
}

// NewContextHandler creates a new context handler
func NewContextHandler(contextService *services.ContextService) *ContextHandler {
	return &ContextHandler{contextService: contextService}
}

// AssembleRequest is the request body for POST /api/v1/context
type AssembleRequest struct {
	Query          string `json:"query"`
	Mode           string `json:"mode"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Assemble classifies the query and builds the combined context block
// POST /api/v1/context
func (h *ContextHandler) Assemble(c *fiber.Ctx) error {
	var req AssembleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query is required",
		})
	}
	if !models.ValidMode(req.Mode) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "mode must be 'private' or 'work'",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := h.contextService.Assemble(ctx, services.AssembleRequest{
		Query:          req.Query,
		Mode:           req.Mode,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		log.Printf("❌ [CONTEXT-API] Failed to assemble context: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to assemble context",
		})
	}

	return c.JSON(fiber.Map{
		"intent":    resp.Intent,
		"retrieved": resp.Retrieved,
		"context": fiber.Map{
			"references":               resp.Context.References,
			"total_matches":            resp.Context.TotalMatches,
			"knowledge_matches":        resp.Context.KnowledgeMatches,
			"document_matches":         resp.Context.DocumentMatches,
			"matched_keywords":         resp.Context.MatchedKeywords,
			"prompt":                   resp.Context.Prompt,
			"conversation_context":     resp.Context.ConversationContext,
			"conversation_instruction": resp.Context.ConversationInstruction,
			"topics":                   resp.Context.Topics,
			"is_follow_up":             resp.Context.IsFollowUp,
		},
	})
}
