package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/meetmate-team/meetmate-backend/internal/adapter/handler"
	"github.com/meetmate-team/meetmate-backend/internal/adapter/repository"
	"github.com/meetmate-team/meetmate-backend/internal/infrastructure/cache"
	"github.com/meetmate-team/meetmate-backend/internal/infrastructure/notify"
	"github.com/meetmate-team/meetmate-backend/internal/infrastructure/storage"
	"github.com/meetmate-team/meetmate-backend/internal/usecase/pipeline"
	"github.com/meetmate-team/meetmate-backend/pkg/ai"
	"github.com/meetmate-team/meetmate-backend/pkg/config"
	"github.com/meetmate-team/meetmate-backend/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Server.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// HTTP clients: short timeout for record-store metadata calls, a
	// minutes-scale one for audio downloads.
	metaClient := &http.Client{Timeout: cfg.Supabase.RequestTimeout}
	audioClient := &http.Client{Timeout: cfg.Supabase.AudioTimeout}

	// Record store, with a boot-time reachability probe so a misconfigured
	// SUPABASE_URL fails fast instead of on the first job.
	store := repository.NewSupabaseStore(&cfg.Supabase, metaClient, logger)
	pingBackoff := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	if err := backoff.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Supabase.RequestTimeout)
		defer cancel()
		return store.Ping(ctx)
	}, pingBackoff); err != nil {
		log.Fatalf("Record store unreachable: %v", err)
	}
	log.Println("Record store connection established")

	// Meeting guard: Redis when configured, otherwise in-process.
	var guard cache.MeetingGuard
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		guard = cache.NewRedisGuard(redisClient, cfg.Pipeline.GuardTTL, logger)
		log.Println("Redis connection established")
	} else {
		guard = cache.NewMemoryGuard(cfg.Pipeline.GuardTTL)
		log.Println("Using in-memory meeting guard (REDIS_HOST not set)")
	}

	// Audio fetchers: HTTP always, bucket only when object storage is
	// configured for s3:// references.
	httpFetcher := storage.NewHTTPFetcher(&cfg.Supabase, audioClient, logger)
	var bucketFetcher *storage.BucketFetcher
	if cfg.Storage.Endpoint != "" {
		bucketFetcher, err = storage.NewBucketFetcher(&cfg.Storage, logger)
		if err != nil {
			log.Fatalf("Failed to initialize bucket storage: %v", err)
		}
		log.Println("Bucket storage client initialized")
	}
	fetcher := storage.NewMultiFetcher(httpFetcher, bucketFetcher)

	// Transcription provider
	var transcriber pipeline.Transcriber
	switch cfg.Pipeline.Provider {
	case "assemblyai":
		transcriber = ai.NewAssemblyAITranscriber(&cfg.Assembly, logger)
		log.Println("Using AssemblyAI transcription provider")
	default:
		transcriber = ai.NewWhisperClient(&cfg.OpenAI)
		log.Println("Using OpenAI Whisper transcription provider")
	}

	summarizer := ai.NewOpenAISummarizer(&cfg.OpenAI)
	notifier := notify.NewExpoNotifier(&cfg.Push, logger)

	// Pipeline service and worker pool
	svc := pipeline.NewService(store, fetcher, transcriber, summarizer, notifier, guard, logger)
	launcher := pipeline.NewLauncher(svc, cfg.Pipeline.Workers, cfg.Pipeline.QueueSize, logger)
	if err := launcher.Start(); err != nil {
		log.Fatalf("Failed to start pipeline workers: %v", err)
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	// Routes
	meetingHandler := handler.NewMeetingHandler(store, launcher, guard, logger)
	router := handler.NewRouter(cfg, meetingHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		log.Printf("Starting server on %s (environment: %s)", addr, cfg.Server.Environment)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Stop accepting requests first, then drain queued pipeline jobs.
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := launcher.Stop(); err != nil {
		log.Printf("Pipeline shutdown error: %v", err)
	}

	metaClient.CloseIdleConnections()
	audioClient.CloseIdleConnections()

	log.Println("Server exited")
}
