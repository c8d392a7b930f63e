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

	"github.com/cutreel/api/internal/config"
	"github.com/cutreel/api/internal/handler"
	"github.com/cutreel/api/internal/media"
	"github.com/cutreel/api/internal/middleware"
	"github.com/cutreel/api/internal/provider"
	"github.com/cutreel/api/internal/render"
	"github.com/cutreel/api/internal/service"
	"github.com/cutreel/api/internal/storage"
	"github.com/cutreel/api/internal/store"
	ws "github.com/cutreel/api/internal/websocket"
	"github.com/cutreel/api/internal/worker"
)

// @title          Cutreel API
// @version        1.0
// @description    Backend API for Cutreel — browser-based video editing and export.
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

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize generation providers
	pixelforgeClient := provider.NewPixelforgeClient(&cfg.Pixelforge)
	voxaClient := provider.NewVoxaClient(&cfg.Voxa)
	providers := provider.NewRegistry(pixelforgeClient, voxaClient)

	// Initialize ffmpeg renderer and blob cache
	ffmpegRenderer := render.NewFFmpegRenderer(cfg.Render.FFmpegPath, cfg.Render.FFprobePath, cfg.Render.FrameRate)
	blobCache := media.NewObjectURLCache()

	// Initialize R2 client (optional - continues if not configured)
	var storageClient storage.Client
	if cfg.R2.AccessKeyID != "" && cfg.R2.SecretAccessKey != "" {
		r2Client, err := storage.NewR2Client(&cfg.R2)
		if err != nil {
			log.Printf("Warning: R2 client not initialized: %v", err)
		} else {
			storageClient = r2Client
		}
	} else {
		log.Println("Info: R2 storage not configured, exports stay on local disk")
	}

	// Initialize stores
	timelineStore := store.NewTimelineStore(redisClient)
	mediaStore := store.NewMediaStore(redisClient)

	// Initialize services
	timelineService := service.NewTimelineService(timelineStore, mediaStore)
	mediaService := service.NewMediaService(mediaStore, timelineStore, blobCache, providers, ffmpegRenderer)
	exportService := service.NewExportService(redisClient, asynqClient, timelineStore, mediaService, cfg.Render.PaddingMs)

	// Initialize handlers
	timelineHandler := handler.NewTimelineHandler(timelineService, validate)
	mediaHandler := handler.NewMediaHandler(mediaService, validate)
	exportHandler := handler.NewExportHandler(exportService, hub, validate)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.Expiration)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    200 * 1024 * 1024, // video uploads
	})

	// Global middleware
	app.Use(recover.New())
	isDebug := strings.EqualFold(cfg.Server.LogLevel, "debug")
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if isDebug {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body} ${reqHeaders}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
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
				"pixelforge": pixelforgeClient.IsConfigured(),
				"voxa":       voxaClient.IsConfigured(),
				"r2":         storageClient != nil,
				"auth":       cfg.JWT.Secret != "",
			},
		})
	})

	// Blob serving for uploaded media (URL shape issued by the cache)
	app.Get("/media/blob/:mediaId", mediaHandler.Blob)

	// API routes
	api := app.Group("/api", authMiddleware.Authenticate())

	// Timeline routes
	tl := api.Group("/", rateLimiter.TimelineLimit(cfg.RateLimit.TimelinePerMin))
	tl.Post("/tracks", timelineHandler.CreateTrack)
	tl.Get("/projects/:projectId/tracks", timelineHandler.ListTracks)
	tl.Get("/tracks/:trackId", timelineHandler.GetTrack)
	tl.Patch("/tracks/:trackId", timelineHandler.UpdateTrack)
	tl.Delete("/tracks/:trackId", timelineHandler.DeleteTrack)
	tl.Get("/tracks/:trackId/keyframes", timelineHandler.ListKeyframes)
	tl.Post("/keyframes", timelineHandler.CreateKeyframe)
	tl.Get("/keyframes/:keyframeId", timelineHandler.GetKeyframe)
	tl.Delete("/keyframes/:keyframeId", timelineHandler.DeleteKeyframe)
	tl.Post("/keyframes/:keyframeId/move", timelineHandler.MoveKeyframe)
	tl.Post("/keyframes/:keyframeId/resize", timelineHandler.ResizeKeyframe)
	tl.Post("/keyframes/:keyframeId/duplicate", timelineHandler.DuplicateKeyframe)
	tl.Get("/timeline/ruler", timelineHandler.Ruler)

	// Media routes
	md := api.Group("/media", rateLimiter.MediaLimit(cfg.RateLimit.MediaPerHour))
	md.Post("/", mediaHandler.Register)
	md.Post("/upload", mediaHandler.Upload)
	md.Get("/:mediaId", mediaHandler.Get)
	md.Post("/:mediaId/refresh", mediaHandler.Refresh)
	md.Delete("/:mediaId", mediaHandler.Delete)
	api.Get("/projects/:projectId/media", mediaHandler.List)

	// Export routes
	export := api.Group("/export", rateLimiter.ExportLimit(cfg.RateLimit.ExportPerHour))
	export.Post("/start", exportHandler.Start)
	export.Get("/status/:jobId", exportHandler.Status)
	export.Get("/result/:jobId", exportHandler.Result)
	export.Post("/cancel/:jobId", exportHandler.Cancel)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		jobID := c.Params("jobId")
		hub.Serve(c, jobID)
	}))

	// Start Asynq worker server
	go startWorkerServer(cfg, exportService, ffmpegRenderer, blobCache, storageClient, hub)

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

func startWorkerServer(
	cfg *config.Config,
	exportService *service.ExportService,
	ffmpegRenderer *render.FFmpegRenderer,
	blobCache *media.ObjectURLCache,
	storageClient storage.Client,
	hub *ws.Hub,
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
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				"export": 10,
			},
			LogLevel: asynqLogLevel,
		},
	)

	exportWorker := worker.NewExportWorker(exportService, ffmpegRenderer, blobCache, storageClient, hub, cfg.Render.WorkDir)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeExport, exportWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
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
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
