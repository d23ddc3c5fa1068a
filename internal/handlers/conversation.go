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
	"github.com/buddemax/kontext/internal/store"
)

// ConversationHandler handles conversation API endpoints
type ConversationHandler struct {
	conversationService *services.ConversationService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversationService *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// StartRequest is the request body for POST /api/v1/conversations
type StartRequest struct {
	Mode  string `json:"mode"`
	Title string `json:"title,omitempty"`
}

// Start opens a new conversation
// POST /api/v1/conversations
func (h *ConversationHandler) Start(c *fiber.Ctx) error {
	var req StartRequest
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conv, err := h.conversationService.Start(ctx, req.Mode, req.Title)
	if err != nil {
		log.Printf("❌ [CONVERSATION-API] Failed to start conversation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start conversation",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(conv)
}

// List returns the conversations of a mode, newest first, without bodies
// GET /api/v1/conversations?mode=work
func (h *ConversationHandler) List(c *fiber.Ctx) error {
	mode := c.Query("mode", models.ModePrivate)
	if !models.ValidMode(mode) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "mode must be 'private' or 'work'",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conversations, err := h.conversationService.List(ctx, mode)
	if err != nil {
		log.Printf("❌ [CONVERSATION-API] Failed to list conversations: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list conversations",
		})
	}

	return c.JSON(fiber.Map{
		"conversations": conversations,
		"count":         len(conversations),
	})
}

// Get returns a conversation with its full message history
// GET /api/v1/conversations/:id
func (h *ConversationHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conv, err := h.conversationService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Conversation not found",
			})
		}
		log.Printf("❌ [CONVERSATION-API] Failed to get conversation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve conversation",
		})
	}

	return c.JSON(conv)
}

// ReplyRequest is the request body for POST /api/v1/conversations/:id/reply
type ReplyRequest struct {
	Content        string                      `json:"content"`
	UsedReferences []models.KnowledgeReference `json:"used_references,omitempty"`
}

// Reply appends an assistant turn, recording which references informed it
// POST /api/v1/conversations/:id/reply
func (h *ConversationHandler) Reply(c *fiber.Ctx) error {
	id := c.Params("id")

	var req ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "content is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.conversationService.RecordAssistantReply(ctx, id, req.Content, req.UsedReferences); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Conversation not found",
			})
		}
		log.Printf("❌ [CONVERSATION-API] Failed to record reply: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record reply",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// Close marks a conversation inactive
// POST /api/v1/conversations/:id/close
func (h *ConversationHandler) Close(c *fiber.Ctx) error {
	id := c.Params("id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.conversationService.Close(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Conversation not found",
			})
		}
		log.Printf("❌ [CONVERSATION-API] Failed to close conversation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to close conversation",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// Delete removes a conversation and its messages
// DELETE /api/v1/conversations/:id
func (h *ConversationHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.conversationService.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Conversation not found",
			})
		}
		log.Printf("❌ [CONVERSATION-API] Failed to delete conversation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete conversation",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
