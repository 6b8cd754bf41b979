package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/tuneforge/api/internal/auth"
	"github.com/tuneforge/api/internal/client"
	"github.com/tuneforge/api/internal/config"
	"github.com/tuneforge/api/internal/handler"
	"github.com/tuneforge/api/internal/middleware"
	"github.com/tuneforge/api/internal/service"
	"github.com/tuneforge/api/internal/store"
	"github.com/tuneforge/api/internal/worker"
	ws "github.com/tuneforge/api/internal/websocket"
)

// @title          TuneForge API
// @version        1.0
// @description    Backend API for TuneForge — AI-powered music generation platform.
// @host           localhost:8000
// @BasePath       /
// @schemes        http https
// @securityDefinitions.apikey BearerAuth
// @in             header
// @name           Authorization
// @description    Enter your bearer token in the format **Bearer &lt;token&gt;**
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// Connect to MongoDB
	db, err := store.Connect(ctx, &cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := store.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize external clients
	sunoClient := client.NewSunoClient(&cfg.Suno)
	groqClient := client.NewGroqClient(&cfg.Groq)

	// Initialize R2 client (optional - continues if not configured)
	var r2Client *client.R2Client
	if cfg.R2.AccessKeyID != "" && cfg.R2.SecretAccessKey != "" {
		var err error
		r2Client, err = client.NewR2Client(&cfg.R2)
		if err != nil {
			log.Printf("Warning: R2 client not initialized: %v", err)
		}
	} else {
		log.Println("Info: R2 storage not configured, song archiving disabled")
	}

	// Initialize OIDC JWKS verifier (optional - falls back to HMAC tokens)
	var jwksVerifier *auth.JWKSVerifier
	if cfg.OIDC.Issuer != "" {
		var err error
		jwksVerifier, err = auth.NewJWKSVerifier(&cfg.OIDC)
		if err != nil {
			log.Printf("Warning: JWKS verifier not initialized: %v", err)
		} else {
			defer jwksVerifier.Close()
		}
	}

	// Initialize stores
	taskStore := store.NewMongoTaskStore(db)
	songStore := store.NewMongoSongStore(db)
	userStore := store.NewMongoUserStore(db)
	personaStore := store.NewMongoPersonaStore(db)

	// Initialize services
	var archiver service.SongArchiver
	if r2Client != nil {
		archiver = worker.NewArchiveEnqueuer(asynqClient)
	}
	reconciler := service.NewReconciler(sunoClient, taskStore, songStore, userStore, archiver, hub)
	sweeper := service.NewSweeper(reconciler, taskStore, cfg.Poller.BatchSize)
	generationService := service.NewGenerationService(sunoClient, taskStore, userStore, personaStore, songStore, reconciler, cfg.Suno.Model)
	songService := service.NewSongService(songStore, storageOrNil(r2Client))
	personaService := service.NewPersonaService(personaStore)
	lyricsService := service.NewLyricsService(groqClient)
	adminService := service.NewAdminService(userStore, taskStore, songService)

	// Initialize handlers
	generationHandler := handler.NewGenerationHandler(generationService, sweeper, validate)
	sweepHandler := handler.NewSweepHandler(sweeper, cfg.Poller.SweepToken)
	songHandler := handler.NewSongHandler(songService)
	personaHandler := handler.NewPersonaHandler(personaService, validate)
	lyricsHandler := handler.NewLyricsHandler(lyricsService, validate)
	adminHandler := handler.NewAdminHandler(adminService, validate)

	// Initialize middleware
	var authMiddleware *middleware.AuthMiddleware
	if jwksVerifier != nil {
		authMiddleware = middleware.NewAuthMiddleware(jwksVerifier, cfg.JWT.Secret)
	} else {
		authMiddleware = middleware.NewHMACAuthMiddleware(cfg.JWT.Secret)
	}
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Sweep-Token",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"suno": sunoClient.IsConfigured(),
				"groq": groqClient.IsConfigured(),
				"r2":   r2Client != nil,
				"auth": jwksVerifier != nil || cfg.JWT.Secret != "",
			},
		})
	})

	// Internal sweep trigger (token-guarded, no user auth)
	app.Post("/internal/tasks/sweep", sweepHandler.Sweep)

	// API routes
	api := app.Group("/api", authMiddleware.Authenticate())

	// Generation routes
	generate := api.Group("/generate")
	generate.Post("/", rateLimiter.GenerateLimit(cfg.RateLimit.GeneratePerHour), generationHandler.Generate)
	generate.Get("/status/:taskId", generationHandler.Status)
	generate.Get("/pending", generationHandler.Pending)
	generate.Post("/recover", rateLimiter.RecoverLimit(cfg.RateLimit.RecoverPerHour), generationHandler.Recover)

	// Lyrics routes
	lyrics := api.Group("/lyrics", rateLimiter.LyricsLimit(cfg.RateLimit.LyricsPerMin))
	lyrics.Post("/draft", lyricsHandler.Draft)

	// Song library routes
	songs := api.Group("/songs")
	songs.Get("/", songHandler.List)
	songs.Get("/:id", songHandler.Get)
	songs.Delete("/:id", songHandler.Delete)

	// Persona routes
	personas := api.Group("/personas")
	personas.Post("/", personaHandler.Create)
	personas.Get("/", personaHandler.List)
	personas.Get("/:id", personaHandler.Get)
	personas.Put("/:id", personaHandler.Update)
	personas.Delete("/:id", personaHandler.Delete)

	// Admin routes
	admin := api.Group("/admin", middleware.AdminOnly())
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id/status", adminHandler.UpdateUserStatus)
	admin.Get("/tasks", adminHandler.ListTasks)
	admin.Delete("/songs/:id", adminHandler.DeleteSong)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/tasks/:taskId", websocket.New(func(c *websocket.Conn) {
		taskID := c.Params("taskId")
		hub.HandleConnection(c, taskID)
	}))

	// Start Asynq worker server and scheduler
	go startWorkerServer(cfg, redisOpt, sweeper, songStore, r2Client)
	if cfg.Poller.SweepEnabled {
		go startScheduler(cfg, redisOpt)
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
		log.Fatalf("Server error: %v", err)
	}
}

func storageOrNil(r2Client *client.R2Client) client.StorageClient {
	if r2Client == nil {
		return nil
	}
	return r2Client
}

func startWorkerServer(
	cfg *config.Config,
	redisOpt asynq.RedisClientOpt,
	sweeper *service.Sweeper,
	songStore store.SongStore,
	r2Client *client.R2Client,
) {
	asynqLogLevel := asynq.InfoLevel
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		asynqLogLevel = asynq.DebugLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "warn") {
		asynqLogLevel = asynq.WarnLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "error") {
		asynqLogLevel = asynq.ErrorLevel
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 10,
			},
			LogLevel: asynqLogLevel,
		},
	)

	sweepWorker := worker.NewSweepWorker(sweeper)

	mux := asynq.NewServeMux()
	mux.HandleFunc(worker.TaskTypeSweep, sweepWorker.ProcessTask)
	if r2Client != nil {
		archiveWorker := worker.NewArchiveWorker(songStore, r2Client)
		mux.HandleFunc(worker.TaskTypeArchive, archiveWorker.ProcessTask)
	}

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func startScheduler(cfg *config.Config, redisOpt asynq.RedisClientOpt) {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})

	if _, err := scheduler.Register(cfg.Poller.SweepInterval, worker.NewSweepTask()); err != nil {
		log.Printf("Failed to register sweep schedule: %v", err)
		return
	}

	log.Printf("Sweep scheduler running (%s)", cfg.Poller.SweepInterval)
	if err := scheduler.Run(); err != nil {
		log.Printf("Scheduler error: %v", err)
	}
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
			"code":    code,
			"message": message,
		},
	})
}
