package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/buddemax/kontext/internal/models"
	"github.com/buddemax/kontext/internal/services"
	"github.com/buddemax/kontext/internal/store"
)

func setupTestApp(t *testing.T) (*fiber.App, *store.DB, func()) {
	t.Helper()

	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	app := fiber.New()

	cleanup := func() {
		db.Close()
	}

	return app, db, cleanup
}

func newTestProvider(t *testing.T) *services.EngineProvider {
	t.Helper()
	provider, err := services.NewEngineProvider("")
	if err != nil {
		t.Fatalf("Failed to create engine provider: %v", err)
	}
	return provider
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}

	var result map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			t.Fatalf("Failed to parse JSON %q: %v", raw, err)
		}
	}

	return resp.StatusCode, result
}

// TestHealthHandler tests the health check endpoint
func TestHealthHandler(t *testing.T) {
	app, db, cleanup := setupTestApp(t)
	defer cleanup()

	handler := NewHealthHandler(db)
	app.Get("/health", handler.Handle)

	status, result := doJSON(t, app, "GET", "/health", nil)

	if status != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", status)
	}
	if result["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", result["status"])
	}
	if result["timestamp"] == nil {
		t.Error("Expected 'timestamp' field in response")
	}
}

// TestKnowledgeHandler_CaptureAndGet stores an entry over HTTP and reads it back
func TestKnowledgeHandler_CaptureAndGet(t *testing.T) {
	app, db, cleanup := setupTestApp(t)
	defer cleanup()

	provider := newTestProvider(t)
	defer provider.Close()

	knowledgeService := services.NewKnowledgeService(store.NewKnowledgeStore(db), provider, nil)
	handler := NewKnowledgeHandler(knowledgeService, 0.3)

	app.Post("/api/v1/knowledge", handler.Capture)
	app.Get("/api/v1/knowledge/:id", handler.Get)
	app.Get("/api/v1/knowledge", handler.List)

	status, created := doJSON(t, app, "POST", "/api/v1/knowledge", map[string]any{
		"mode":        "work",
		"content":     "Anna arbeitet bei Siemens",
		"entity_type": "person",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d", status)
	}

	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("Expected created entry to carry an id")
	}

	status, fetched := doJSON(t, app, "GET", "/api/v1/knowledge/"+id, nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if fetched["content"] != "Anna arbeitet bei Siemens" {
		t.Errorf("Unexpected content %v", fetched["content"])
	}
	if fetched["mode"] != "work" {
		t.Errorf("Unexpected mode %v", fetched["mode"])
	}

	// List is mode-scoped
	status, listed := doJSON(t, app, "GET", "/api/v1/knowledge?mode=work", nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if listed["count"] != float64(1) {
		t.Errorf("Expected count 1, got %v", listed["count"])
	}

	status, empty := doJSON(t, app, "GET", "/api/v1/knowledge?mode=private", nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if empty["count"] != float64(0) {
		t.Errorf("Expected empty private mode, got count %v", empty["count"])
	}
}

// TestKnowledgeHandler_Validation rejects bad input with 400
func TestKnowledgeHandler_Validation(t *testing.T) {
	app, db, cleanup := setupTestApp(t)
	defer cleanup()

	provider := newTestProvider(t)
	defer provider.Close()

	knowledgeService := services.NewKnowledgeService(store.NewKnowledgeStore(db), provider, nil)
	handler := NewKnowledgeHandler(knowledgeService, 0.3)

	app.Post("/api/v1/knowledge", handler.Capture)
	app.Get("/api/v1/knowledge/:id", handler.Get)

	status, _ := doJSON(t, app, "POST", "/api/v1/knowledge", map[string]any{
		"mode":    "gaming",
		"content": "something",
	})
	if status != fiber.StatusBadRequest {
		t.Errorf("Expected status 400 for invalid mode, got %d", status)
	}

	status, _ = doJSON(t, app, "POST", "/api/v1/knowledge", map[string]any{
		"mode":    "work",
		"content": "   ",
	})
	if status != fiber.StatusBadRequest {
		t.Errorf("Expected status 400 for empty content, got %d", status)
	}

	status, _ = doJSON(t, app, "GET", "/api/v1/knowledge/does-not-exist", nil)
	if status != fiber.StatusNotFound {
		t.Errorf("Expected status 404 for unknown id, got %d", status)
	}
}

// TestKnowledgeHandler_Search runs retrieval over HTTP
func TestKnowledgeHandler_Search(t *testing.T) {
	app, db, cleanup := setupTestApp(t)
	defer cleanup()

	provider := newTestProvider(t)
	defer provider.Close()

	knowledgeService := services.NewKnowledgeService(store.NewKnowledgeStore(db), provider, nil)
	handler := NewKnowledgeHandler(knowledgeService, 0.3)

	app.Post("/api/v1/knowledge", handler.Capture)
	app.Get("/api/v1/knowledge/search", handler.Search)

	doJSON(t, app, "POST", "/api/v1/knowledge", map[string]any{
		"mode":    "work",
		"content": "Anna Schmidt leitet das Projekt Phoenix",
	})
	doJSON(t, app, "POST", "/api/v1/knowledge", map[string]any{
		"mode":    "work",
		"content": "Der Serverraum ist im dritten Stock",
	})

	status, result := doJSON(t, app, "GET", "/api/v1/knowledge/search?mode=work&query=Wer+leitet+das+Projekt+Phoenix%3F", nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}

	refs, _ := result["references"].([]any)
	if len(refs) != 1 {
		t.Fatalf("Expected 1 reference, got %d (%v)", len(refs), result)
	}

	ref := refs[0].(map[string]any)
	if snippet, _ := ref["snippet"].(string); snippet == "" {
		t.Error("Expected a non-empty snippet")
	}

	// Missing query is a client error
	status, _ = doJSON(t, app, "GET", "/api/v1/knowledge/search?mode=work", nil)
	if status != fiber.StatusBadRequest {
		t.Errorf("Expected status 400 for missing query, got %d", status)
	}
}

// TestContextHandler_Assemble runs the full assembly path over HTTP
func TestContextHandler_Assemble(t *testing.T) {
	app, db, cleanup := setupTestApp(t)
	defer cleanup()

	provider := newTestProvider(t)
	defer provider.Close()

	knowledgeService := services.NewKnowledgeService(store.NewKnowledgeStore(db), provider, nil)
	contextService := services.NewContextService(
		knowledgeService,
		store.NewDocumentStore(db),
		store.NewConversationStore(db),
		provider,
		nil,
		5, 3,
	)
	handler := NewContextHandler(contextService)

	knowledgeHandler := NewKnowledgeHandler(knowledgeService, 0.3)
	app.Post("/api/v1/knowledge", knowledgeHandler.Capture)
	app.Post("/api/v1/context", handler.Assemble)

	doJSON(t, app, "POST", "/api/v1/knowledge", map[string]any{
		"mode":        "work",
		"content":     "Thomas arbeitet bei Siemens in der Entwicklung",
		"entity_type": "person",
	})

	status, result := doJSON(t, app, "POST", "/api/v1/context", map[string]any{
		"query": "Wer ist Thomas?",
		"mode":  "work",
	})
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d (%v)", status, result)
	}

	intent, _ := result["intent"].(map[string]any)
	if intent["name"] != "person_query" {
		t.Errorf("Expected person_query intent, got %v", intent["name"])
	}
	if result["retrieved"] != true {
		t.Error("Expected retrieval to run for a person query")
	}

	contextBlock, _ := result["context"].(map[string]any)
	if contextBlock["total_matches"] != float64(1) {
		t.Errorf("Expected 1 total match, got %v", contextBlock["total_matches"])
	}

	// Empty query is rejected
	status, _ = doJSON(t, app, "POST", "/api/v1/context", map[string]any{
		"query": " ",
		"mode":  "work",
	})
	if status != fiber.StatusBadRequest {
		t.Errorf("Expected status 400 for empty query, got %d", status)
	}
}

// TestConversationHandler_Lifecycle walks start, reply, get, close, delete
func TestConversationHandler_Lifecycle(t *testing.T) {
	app, db, cleanup := setupTestApp(t)
	defer cleanup()

	conversationService := services.NewConversationService(store.NewConversationStore(db))
	handler := NewConversationHandler(conversationService)

	app.Post("/api/v1/conversations", handler.Start)
	app.Get("/api/v1/conversations/:id", handler.Get)
	app.Post("/api/v1/conversations/:id/reply", handler.Reply)
	app.Post("/api/v1/conversations/:id/close", handler.Close)
	app.Delete("/api/v1/conversations/:id", handler.Delete)

	status, conv := doJSON(t, app, "POST", "/api/v1/conversations", map[string]any{
		"mode":  "private",
		"title": "Planung Wochenende",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d", status)
	}
	id, _ := conv["id"].(string)
	if id == "" {
		t.Fatal("Expected conversation id")
	}
	if conv["active"] != true {
		t.Error("Expected new conversation to be active")
	}

	status, _ = doJSON(t, app, "POST", "/api/v1/conversations/"+id+"/reply", map[string]any{
		"content": "Am Samstag ist das Grillfest.",
		"used_references": []map[string]any{
			{"id": "k1", "snippet": "Grillfest am Samstag", "relevance_score": 0.9, "source": "knowledge"},
		},
	})
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200 for reply, got %d", status)
	}

	status, fetched := doJSON(t, app, "GET", "/api/v1/conversations/"+id, nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	messages, _ := fetched["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	msg := messages[0].(map[string]any)
	if msg["role"] != models.RoleAssistant {
		t.Errorf("Expected assistant role, got %v", msg["role"])
	}

	status, _ = doJSON(t, app, "POST", "/api/v1/conversations/"+id+"/close", nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200 for close, got %d", status)
	}

	status, closed := doJSON(t, app, "GET", "/api/v1/conversations/"+id, nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if closed["active"] != false {
		t.Error("Expected conversation to be inactive after close")
	}

	status, _ = doJSON(t, app, "DELETE", "/api/v1/conversations/"+id, nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200 for delete, got %d", status)
	}

	status, _ = doJSON(t, app, "GET", "/api/v1/conversations/"+id, nil)
	if status != fiber.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", status)
	}
}

// TestDocumentHandler_RegisterAndAnalyze registers a document and attaches analysis
func TestDocumentHandler_RegisterAndAnalyze(t *testing.T) {
	app, db, cleanup := setupTestApp(t)
	defer cleanup()

	documentService := services.NewDocumentService(store.NewDocumentStore(db))
	handler := NewDocumentHandler(documentService)

	app.Post("/api/v1/documents", handler.Register)
	app.Put("/api/v1/documents/:id/analysis", handler.AttachAnalysis)
	app.Get("/api/v1/documents/:id", handler.Get)

	status, doc := doJSON(t, app, "POST", "/api/v1/documents", map[string]any{
		"mode":      "work",
		"filename":  "projektplan.pdf",
		"mime_type": "application/pdf",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected status 201, got %d", status)
	}
	if doc["status"] != models.DocumentStatusPending {
		t.Errorf("Expected pending status, got %v", doc["status"])
	}
	id, _ := doc["id"].(string)

	status, updated := doJSON(t, app, "PUT", "/api/v1/documents/"+id+"/analysis", map[string]any{
		"context": map[string]any{
			"summary": "Projektplan für Phoenix",
			"topics":  []string{"phoenix", "planung"},
		},
	})
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	if updated["status"] != models.DocumentStatusComplete {
		t.Errorf("Expected complete status, got %v", updated["status"])
	}

	status, _ = doJSON(t, app, "PUT", "/api/v1/documents/missing/analysis", map[string]any{
		"context": map[string]any{"summary": "x"},
	})
	if status != fiber.StatusNotFound {
		t.Errorf("Expected status 404 for unknown document, got %d", status)
	}
}

// TestSuggestionHandler_Fetch returns suggestions for a partial transcript
func TestSuggestionHandler_Fetch(t *testing.T) {
	app, db, cleanup := setupTestApp(t)
	defer cleanup()

	provider := newTestProvider(t)
	defer provider.Close()

	knowledgeStore := store.NewKnowledgeStore(db)
	knowledgeService := services.NewKnowledgeService(knowledgeStore, provider, nil)
	suggestionService := services.NewSuggestionService(knowledgeStore, provider, nil, 0, 100)
	handler := NewSuggestionHandler(suggestionService)

	knowledgeHandler := NewKnowledgeHandler(knowledgeService, 0.3)
	app.Post("/api/v1/knowledge", knowledgeHandler.Capture)
	app.Get("/api/v1/suggestions", handler.Fetch)

	doJSON(t, app, "POST", "/api/v1/knowledge", map[string]any{
		"mode":    "work",
		"content": "Anna Schmidt leitet das Projekt Phoenix",
	})

	status, result := doJSON(t, app, "GET", "/api/v1/suggestions?mode=work&partial=Was+macht+eigentlich+Anna+Schmidt&session=s1", nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", status)
	}
	suggestions, _ := result["suggestions"].([]any)
	if len(suggestions) == 0 {
		t.Fatal("Expected at least one suggestion")
	}

	// Blank partial short-circuits to an empty result
	status, blank := doJSON(t, app, "GET", "/api/v1/suggestions?mode=work&partial=++&session=s1", nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200 for blank partial, got %d", status)
	}
	if got, _ := blank["suggestions"].([]any); len(got) != 0 {
		t.Errorf("Expected no suggestions for blank partial, got %v", got)
	}
}

// TestMaintenanceHandler_Run triggers a pass over a collection with duplicates
func TestMaintenanceHandler_Run(t *testing.T) {
	app, db, cleanup := setupTestApp(t)
	defer cleanup()

	provider := newTestProvider(t)
	defer provider.Close()

	knowledgeStore := store.NewKnowledgeStore(db)
	knowledgeService := services.NewKnowledgeService(knowledgeStore, provider, nil)
	maintenanceService := services.NewMaintenanceService(knowledgeStore, provider, nil, 0.75)
	handler := NewMaintenanceHandler(maintenanceService)

	knowledgeHandler := NewKnowledgeHandler(knowledgeService, 0.3)
	app.Post("/api/v1/knowledge", knowledgeHandler.Capture)
	app.Post("/api/v1/maintenance/run", handler.Run)

	doJSON(t, app, "POST", "/api/v1/knowledge", map[string]any{
		"mode":    "work",
		"content": "Hans arbeitet bei Siemens",
	})
	doJSON(t, app, "POST", "/api/v1/knowledge", map[string]any{
		"mode":    "work",
		"content": "Hans arbeitet bei der Firma Siemens",
	})

	status, summary := doJSON(t, app, "POST", "/api/v1/maintenance/run", nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d (%v)", status, summary)
	}
	if summary["total_entries"] != float64(2) {
		t.Errorf("Expected 2 scanned entries, got %v", summary["total_entries"])
	}
	if summary["removed_count"] != float64(1) {
		t.Errorf("Expected 1 removed duplicate, got %v", summary["removed_count"])
	}
}
