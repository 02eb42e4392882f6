package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/config"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/handler"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/middleware"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/repository/memory"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/repository/postgres"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/repository/sqlite"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/repository/storage"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/service"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/voice"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/websocket"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	store, closeStore := openStore(cfg)
	log.Info().Str("driver", cfg.StoreDriver).Msg("Document store ready")

	catalog, err := i18n.New(cfg.DefaultLanguage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load translations")
	}
	interpreter, err := voice.NewInterpreter()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load voice keywords")
	}

	// Initialize services
	categoryService := service.NewCategoryService(store, catalog, log.With().Str("component", "categories").Logger())
	expenseService := service.NewExpenseService(store, categoryService, catalog, interpreter, log.With().Str("component", "expenses").Logger())
	plantationService := service.NewPlantationService(store, catalog, log.With().Str("component", "plantation").Logger())
	stayService := service.NewStayService(store, catalog, log.With().Str("component", "stay").Logger())
	liveService := service.NewLiveService(store, categoryService, expenseService, plantationService, log.With().Str("component", "live").Logger())

	hub := websocket.NewHub()

	archiveRepo := openArchive(cfg)
	archiveService := service.NewArchiveService(archiveRepo, expenseService, stayService, cfg.ArchiveURLTTL, log.With().Str("component", "archive").Logger())
	archiveService.SetEventPublisher(hub)

	// One validator serves both the API and the websocket endpoint
	validator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create JWT validator")
	}
	authMiddleware := middleware.NewAuthMiddleware(validator)
	voiceLimiter := middleware.NewRateLimiterWithConfig(cfg.VoiceRateLimit, cfg.VoiceBurst)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderAcceptEncoding, "Accept-Language"},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"store":     cfg.StoreDriver,
			"archive":   archiveRepo != nil,
			"wsClients": hub.TotalClientCount(),
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Live views authenticate with the token query parameter
	wsHandler := handler.NewWebSocketHandler(hub, validator, liveService, catalog, cfg.CORSOrigins)
	e.GET("/ws", wsHandler.HandleWS)

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, voiceLimiter, handler.Handlers{
		Auth:       handler.NewAuthHandler(catalog),
		Voice:      handler.NewVoiceHandler(expenseService, catalog),
		Category:   handler.NewCategoryHandler(categoryService, catalog),
		Expense:    handler.NewExpenseHandler(expenseService, catalog),
		Plantation: handler.NewPlantationHandler(plantationService, catalog),
		Stay:       handler.NewStayHandler(stayService, catalog),
		Export:     handler.NewExportHandler(archiveService, catalog),
	})

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Live views end when the store closes
	hub.CloseAll()
	voiceLimiter.Stop()
	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close document store")
	}
	closeStore()

	log.Info().Msg("Server exited")
}

// openStore builds the configured document store. The returned func releases
// resources the store does not own.
func openStore(cfg *config.Config) (domain.DocumentStore, func()) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}

		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		if err := pool.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}
		log.Info().Msg("Connected to database")

		store := postgres.NewDocumentStore(pool, log.With().Str("component", "store").Logger())
		return store, pool.Close

	case config.StoreDriverSQLite:
		// NewStore migrates the database file itself
		store, err := sqlite.NewStore(cfg.SQLitePath, log.With().Str("component", "store").Logger())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open sqlite store")
		}
		return store, func() {}

	default:
		log.Warn().Msg("Using in-memory store, records are lost on restart")
		return memory.NewStore(log.With().Str("component", "store").Logger()), func() {}
	}
}

// openArchive returns nil when no archive driver is configured
func openArchive(cfg *config.Config) storage.ArchiveRepository {
	switch cfg.ArchiveDriver {
	case config.ArchiveDriverS3:
		repo, err := storage.NewS3ArchiveRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 archive")
		}
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("S3 export archive enabled")
		return repo
	case config.ArchiveDriverMinIO:
		repo, err := storage.NewMinIOArchiveRepository(context.Background(), cfg.MinIO)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize MinIO archive")
		}
		log.Info().Str("bucket", cfg.MinIO.BucketName).Msg("MinIO export archive enabled")
		return repo
	default:
		log.Info().Msg("Export archive disabled")
		return nil
	}
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
