package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/cutreel/api/internal/config"
	"github.com/cutreel/api/internal/handler"
	"github.com/cutreel/api/internal/media"
	"github.com/cutreel/api/internal/middleware"
	"github.com/cutreel/api/internal/provider"
	"github.com/cutreel/api/internal/service"
	"github.com/cutreel/api/internal/store"
	"github.com/cutreel/api/internal/websocket"
)

const testJWTSecret = "test-secret-for-e2e"

// testApp holds all components needed for testing
type testApp struct {
	app  *fiber.App
	auth *middleware.AuthMiddleware
}

// setupApp creates a Fiber app wired like main.go but with unconfigured
// external providers and no worker server. Requires Redis on localhost.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	// Redis (DB 15 to avoid collision with development data)
	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: "localhost:6379",
		DB:   15,
	})
	t.Cleanup(func() { asynqClient.Close() })

	validate := validator.New()

	// Providers unconfigured; refresh against them fails loudly, which is
	// what these tests expect
	providers := provider.NewRegistry(
		provider.NewPixelforgeClient(&config.PixelforgeConfig{}),
		provider.NewVoxaClient(&config.VoxaConfig{}),
	)
	blobCache := media.NewObjectURLCache()

	timelineStore := store.NewTimelineStore(redisClient)
	mediaStore := store.NewMediaStore(redisClient)

	timelineService := service.NewTimelineService(timelineStore, mediaStore)
	mediaService := service.NewMediaService(mediaStore, timelineStore, blobCache, providers, nil)
	exportService := service.NewExportService(redisClient, asynqClient, timelineStore, mediaService, 2000)

	hub := websocket.NewHub()
	go hub.Run()

	timelineHandler := handler.NewTimelineHandler(timelineService, validate)
	mediaHandler := handler.NewMediaHandler(mediaService, validate)
	exportHandler := handler.NewExportHandler(exportService, hub, validate)

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret, 24)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	app := fiber.New(fiber.Config{
		BodyLimit: 200 * 1024 * 1024,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"pixelforge": false,
				"voxa":       false,
				"r2":         false,
				"auth":       true,
			},
		})
	})

	app.Get("/media/blob/:mediaId", mediaHandler.Blob)

	api := app.Group("/api", authMiddleware.Authenticate())

	// Very high rate limits so tests don't get blocked
	tl := api.Group("/", rateLimiter.TimelineLimit(100000))
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

	md := api.Group("/media", rateLimiter.MediaLimit(100000))
	md.Post("/", mediaHandler.Register)
	md.Post("/upload", mediaHandler.Upload)
	md.Get("/:mediaId", mediaHandler.Get)
	md.Post("/:mediaId/refresh", mediaHandler.Refresh)
	md.Delete("/:mediaId", mediaHandler.Delete)
	api.Get("/projects/:projectId/media", mediaHandler.List)

	export := api.Group("/export", rateLimiter.ExportLimit(100000))
	export.Post("/start", exportHandler.Start)
	export.Get("/status/:jobId", exportHandler.Status)
	export.Get("/result/:jobId", exportHandler.Result)
	export.Post("/cancel/:jobId", exportHandler.Cancel)

	return &testApp{app: app, auth: authMiddleware}
}

// generateToken creates an HMAC JWT token for test requests.
func generateToken(t *testing.T, ta *testApp) string {
	t.Helper()
	signed, err := ta.auth.GenerateToken("test-user-123", "test@example.com")
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, ta *testApp, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t, ta)
	return doRequest(ta.app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}
