package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/buddemax/kontext/internal/models"
	"github.com/buddemax/kontext/internal/services"
	"github.com/buddemax/kontext/internal/store"
)

// DocumentHandler handles document API endpoints
type DocumentHandler struct {
	documentService *services.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// RegisterRequest is the request body for POST /api/v1/documents
type RegisterRequest struct {
	Mode     string `json:"mode"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type,omitempty"`
}

// Register records an uploaded document in pending state
// POST /api/v1/documents
func (h *DocumentHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
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
	if req.Filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "filename is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	doc, err := h.documentService.Register(ctx, req.Mode, req.Filename, req.MimeType)
	if err != nil {
		log.Printf("❌ [DOCUMENT-API] Failed to register document: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register document",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

// AnalysisRequest is the request body for PUT /api/v1/documents/:id/analysis
type AnalysisRequest struct {
	Context *models.DocumentContext `json:"context"`
}

// AttachAnalysis stores the finished analysis of a document. A null
// context marks the document failed.
// PUT /api/v1/documents/:id/analysis
func (h *DocumentHandler) AttachAnalysis(c *fiber.Ctx) error {
	id := c.Params("id")

	var req AnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	doc, err := h.documentService.AttachAnalysis(ctx, id, req.Context)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Document not found",
			})
		}
		log.Printf("❌ [DOCUMENT-API] Failed to attach analysis: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to attach analysis",
		})
	}

	return c.JSON(doc)
}

// List returns all documents of a mode
// GET /api/v1/documents?mode=work
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	mode := c.Query("mode", models.ModePrivate)
	if !models.ValidMode(mode) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "mode must be 'private' or 'work'",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	docs, err := h.documentService.List(ctx, mode)
	if err != nil {
		log.Printf("❌ [DOCUMENT-API] Failed to list documents: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list documents",
		})
	}

	return c.JSON(fiber.Map{
		"documents": docs,
		"count":     len(docs),
	})
}

// Get returns a single document
// GET /api/v1/documents/:id
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	doc, err := h.documentService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Document not found",
			})
		}
		log.Printf("❌ [DOCUMENT-API] Failed to get document: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve document",
		})
	}

	return c.JSON(doc)
}

// Delete removes a document
// DELETE /api/v1/documents/:id
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.documentService.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Document not found",
			})
		}
		log.Printf("❌ [DOCUMENT-API] Failed to delete document: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete document",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
