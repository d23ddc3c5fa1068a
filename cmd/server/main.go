package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/buddemax/kontext/internal/config"
	"github.com/buddemax/kontext/internal/handlers"
	"github.com/buddemax/kontext/internal/jobs"
	"github.com/buddemax/kontext/internal/logging"
	"github.com/buddemax/kontext/internal/middleware"
	"github.com/buddemax/kontext/internal/services"
	"github.com/buddemax/kontext/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Kontext Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, DB: %s)", cfg.Port, cfg.DatabasePath)

	// Initialize SQLite database
	db, err := store.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	knowledgeStore := store.NewKnowledgeStore(db)
	documentStore := store.NewDocumentStore(db)
	conversationStore := store.NewConversationStore(db)

	// Locale-driven engine, hot-reloaded when the overlay file changes
	engineProvider, err := services.NewEngineProvider(cfg.LocalePath)
	if err != nil {
		log.Fatalf("❌ Failed to load locale: %v", err)
	}
	defer engineProvider.Close()

	// Prometheus metrics
	metrics := services.InitMetrics()

	// Initialize services
	knowledgeService := services.NewKnowledgeService(knowledgeStore, engineProvider, metrics)
	documentService := services.NewDocumentService(documentStore)
	conversationService := services.NewConversationService(conversationStore)
	contextService := services.NewContextService(
		knowledgeService,
		documentStore,
		conversationStore,
		engineProvider,
		metrics,
		cfg.KnowledgeLimit,
		cfg.DocumentLimit,
	)
	suggestionService := services.NewSuggestionService(
		knowledgeStore,
		engineProvider,
		metrics,
		cfg.SuggestionCacheTTL,
		cfg.SuggestionRateLimit,
	)
	maintenanceService := services.NewMaintenanceService(knowledgeStore, engineProvider, metrics, cfg.SimilarityThreshold)

	// Background maintenance schedule
	jobScheduler, err := jobs.NewJobScheduler()
	if err != nil {
		log.Fatalf("❌ Failed to create job scheduler: %v", err)
	}
	maintenanceJob := jobs.NewKnowledgeMaintenanceJob(maintenanceService)
	if err := jobScheduler.Register(cfg.MaintenanceSchedule, maintenanceJob); err != nil {
		log.Fatalf("❌ Failed to register maintenance job: %v", err)
	}
	jobScheduler.Start()
	log.Printf("🕐 Background jobs: knowledge maintenance (%s)", cfg.MaintenanceSchedule)

	if cfg.MaintenanceOnStartup {
		go func() {
			if err := jobScheduler.RunNow(maintenanceJob); err != nil {
				log.Printf("⚠️  Startup maintenance run failed: %v", err)
			}
		}()
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Kontext v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    5 * 1024 * 1024, // documents arrive pre-analyzed, payloads stay small
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("kontext")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// Load rate limiting configuration
	rateLimitConfig := middleware.LoadRateLimitConfig()
	log.Printf("🛡️  [RATE-LIMIT] Loaded config: Global=%d/min, Suggestions=%d/min, Maintenance=%d/min",
		rateLimitConfig.GlobalAPIMax,
		rateLimitConfig.SuggestionMax,
		rateLimitConfig.MaintenanceMax,
	)

	// CORS configuration with environment-based origins
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: allowedOrigins != "*",
	}))

	// Global API rate limiter
	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	contextHandler := handlers.NewContextHandler(contextService)
	knowledgeHandler := handlers.NewKnowledgeHandler(knowledgeService, cfg.MinRelevance)
	documentHandler := handlers.NewDocumentHandler(documentService)
	conversationHandler := handlers.NewConversationHandler(conversationService)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionService)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)

	// Routes
	app.Get("/health", healthHandler.Handle)

	api := app.Group("/api/v1")

	// Client tuning values (voice clients debounce suggestion fetches)
	api.Get("/client-config", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"suggestion_debounce_ms": cfg.DebounceDelay.Milliseconds(),
			"suggestion_cache_ttl_s": int(cfg.SuggestionCacheTTL.Seconds()),
		})
	})

	api.Post("/context", contextHandler.Assemble)

	api.Post("/knowledge", knowledgeHandler.Capture)
	api.Post("/knowledge/utterance", knowledgeHandler.CaptureFromUtterance)
	api.Get("/knowledge/search", knowledgeHandler.Search)
	api.Get("/knowledge", knowledgeHandler.List)
	api.Get("/knowledge/:id", knowledgeHandler.Get)
	api.Delete("/knowledge/:id", knowledgeHandler.Delete)

	api.Post("/documents", documentHandler.Register)
	api.Put("/documents/:id/analysis", documentHandler.AttachAnalysis)
	api.Get("/documents", documentHandler.List)
	api.Get("/documents/:id", documentHandler.Get)
	api.Delete("/documents/:id", documentHandler.Delete)

	api.Post("/conversations", conversationHandler.Start)
	api.Get("/conversations", conversationHandler.List)
	api.Get("/conversations/:id", conversationHandler.Get)
	api.Post("/conversations/:id/reply", conversationHandler.Reply)
	api.Post("/conversations/:id/close", conversationHandler.Close)
	api.Delete("/conversations/:id", conversationHandler.Delete)

	api.Get("/suggestions", middleware.SuggestionRateLimiter(rateLimitConfig), suggestionHandler.Fetch)

	api.Post("/maintenance/run", middleware.MaintenanceRateLimiter(rateLimitConfig), maintenanceHandler.Run)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		jobScheduler.Stop()

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
