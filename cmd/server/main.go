package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/intellijobs/api/internal/auth"
	"github.com/intellijobs/api/internal/client"
	"github.com/intellijobs/api/internal/config"
	"github.com/intellijobs/api/internal/database"
	"github.com/intellijobs/api/internal/handler"
	"github.com/intellijobs/api/internal/middleware"
	"github.com/intellijobs/api/internal/repository"
	"github.com/intellijobs/api/internal/service"
	ws "github.com/intellijobs/api/internal/websocket"
	"github.com/intellijobs/api/internal/worker"
)

const conversationTTL = 7 * 24 * time.Hour

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Postgres: pgx for users and vectors, gorm for job documents
	if cfg.Postgres.AutoMigrate {
		if err := database.RunMigrations(cfg.Postgres.DSN, cfg.Postgres.MigrationsPath); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pool.Close()

	gormDB, err := database.NewGormDB(cfg.Postgres, cfg.Server.LogLevel == "debug")
	if err != nil {
		log.Fatalf("Failed to open job store: %v", err)
	}
	defer database.CloseGorm(gormDB)

	// Initialize Asynq client and inspector
	asynqClient := asynq.NewClient(worker.RedisOpt(cfg))
	defer asynqClient.Close()
	inspector := asynq.NewInspector(worker.RedisOpt(cfg))
	defer inspector.Close()

	// External clients
	groqClient := client.NewGroqClient(&cfg.Groq)
	if !groqClient.IsConfigured() {
		log.Printf("Warning: GROQ_API_KEY not set, search and parsing will fail")
	}
	embedder, err := client.NewEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}
	store, err := client.NewFileStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create file store: %v", err)
	}

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()
	if err := hub.Subscribe(ctx, redisClient); err != nil {
		log.Printf("Warning: push notifications disabled: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	vectorRepo := repository.NewVectorRepository(pool)
	jobRepo := repository.NewJobRepository(gormDB)
	conversationCache := repository.NewConversationCache(redisClient, conversationTTL)

	// Initialize services
	taskService := service.NewTaskService(redisClient, asynqClient, inspector)
	conversationService := service.NewConversationService(conversationCache, userRepo, groqClient, cfg.Groq.SummaryModel)
	searchService := service.NewSearchService(conversationService, embedder, vectorRepo, groqClient, cfg.Matcher.SearchK)
	matcherService := service.NewMatcherService(userRepo, vectorRepo, jobRepo, cfg.Matcher.Slack, cfg.Matcher.MaxTopK)
	jobActionService := service.NewJobActionService(userRepo)
	userService := service.NewUserService(userRepo)
	resumeService := service.NewResumeService(store, taskService)
	parserService := service.NewParserService(groqClient)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		"postgres": pool.Ping,
		"groq":     func(context.Context) error { return configured(groqClient.IsConfigured()) },
	})
	searchHandler := handler.NewSearchHandler(searchService, validate)
	resumeHandler := handler.NewResumeHandler(resumeService, validate)
	taskHandler := handler.NewTaskHandler(taskService)
	userHandler := handler.NewUserHandler(userService, validate)
	jobHandler := handler.NewJobHandler(matcherService, jobActionService, validate)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	if cfg.JWT.Issuer != "" {
		verifier, err := auth.NewJWKSVerifier(ctx, &cfg.JWT)
		if err != nil {
			log.Fatalf("Failed to initialize JWKS verifier: %v", err)
		}
		authMiddleware = middleware.NewAuthMiddlewareWithFallback(verifier, cfg.JWT.Secret)
		log.Printf("Accepting tokens from %s", cfg.JWT.Issuer)
	}
	authHandler := handler.NewAuthHandler(authMiddleware.Verifier())
	rateLimiter := middleware.NewRateLimiter(redisClient)
	identify := authMiddleware.Optional()
	switch {
	case cfg.JWT.Gateway:
		identify = middleware.GatewayAuth()
	case cfg.JWT.Enabled:
		identify = authMiddleware.Authenticate()
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    12 * 1024 * 1024, // resume limit plus multipart overhead
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: logFormat(cfg.Server.LogLevel),
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-User-Id",
	}))
	app.Use(middleware.Metrics())

	// Base routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Health)
	app.Get("/auth/verify", authHandler.Verify)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/task-status/:id", taskHandler.Status)

	app.Post("/job-search", identify, rateLimiter.SearchLimit(cfg.RateLimit.SearchPerMin), searchHandler.Search)
	app.Post("/parse-resume", identify, rateLimiter.UploadLimit(cfg.RateLimit.UploadPerHour), resumeHandler.ParseText)

	// API routes
	api := app.Group("/api", identify)
	api.Post("/upload-resume", rateLimiter.UploadLimit(cfg.RateLimit.UploadPerHour), resumeHandler.Upload)
	api.Post("/sync-user", userHandler.Sync)
	api.Post("/check-resume", userHandler.CheckResume)
	api.Get("/recommended-jobs", jobHandler.Recommended)
	api.Post("/job-action", jobHandler.Action)
	api.Get("/user-job-actions", jobHandler.UserActions)
	api.Get("/job-stats", jobHandler.Stats)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/resume/:userId", websocket.New(func(c *websocket.Conn) {
		hub.HandleConnection(c, c.Params("userId"))
	}))

	// Start Asynq worker server in-process unless a separate worker runs
	var workerServer *asynq.Server
	if cfg.Worker.Embedded {
		resumeWorker := worker.NewResumeWorker(taskService, store, userRepo, parserService, embedder, ws.NewPublisher(redisClient))
		mux := asynq.NewServeMux()
		resumeWorker.Register(mux)

		workerServer = worker.NewServer(cfg)
		if err := workerServer.Start(mux); err != nil {
			log.Fatalf("Asynq worker error: %v", err)
		}
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Printf("Server error: %v", err)
	}

	if workerServer != nil {
		workerServer.Shutdown()
	}
	log.Println("Server stopped")
}

func configured(ok bool) error {
	if !ok {
		return client.ErrNotConfigured
	}
	return nil
}

func logFormat(level string) string {
	if level == "debug" {
		return "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${reqHeader:Content-Type} ${bytesReceived}B in ${bytesSent}B out ${error}\n"
	}
	return "[${time}] ${status} - ${latency} ${method} ${path}\n"
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
