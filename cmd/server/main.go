// Package main is the entry point for the docrepo service.
// @title Document Repository Service API
// @version 1.0
// @description Tenant-partitioned notes over a generic MongoDB document repository

// @contact.name API Support
// @contact.url https://github.com/unifiedui/docrepo-service

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https
package main

//go:generate swag init -g cmd/server/main.go -o docs --parseInternal

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/unifiedui/docrepo-service/docs"
	"github.com/unifiedui/docrepo-service/internal/api/handlers"
	"github.com/unifiedui/docrepo-service/internal/api/middleware"
	"github.com/unifiedui/docrepo-service/internal/api/routes"
	"github.com/unifiedui/docrepo-service/internal/config"
	"github.com/unifiedui/docrepo-service/internal/core/cache"
	"github.com/unifiedui/docrepo-service/internal/core/docdb"
	rediscache "github.com/unifiedui/docrepo-service/internal/infrastructure/cache/redis"
	"github.com/unifiedui/docrepo-service/internal/infrastructure/docdb/mongodb"
	"github.com/unifiedui/docrepo-service/internal/pkg/encryption"
	"github.com/unifiedui/docrepo-service/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogger(cfg.Log)

	ctx := context.Background()

	docDBClient, err := createDocDBClient(ctx, cfg.DocDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document db client")
	}
	defer docDBClient.Close(ctx)

	// The document cache is optional; the service runs without it.
	docCache, err := createCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("document cache unavailable, continuing without it")
	}
	if docCache != nil {
		defer docCache.Close()
	}

	repoOpts := []repository.Option{
		repository.WithLogger(log.Logger.With().Str("component", "repository").Logger()),
	}
	if docCache != nil {
		repoOpts = append(repoOpts, repository.WithCache(docCache, cfg.Cache.TTL))

		if cfg.Cache.EncryptionKey != "" {
			enc, err := encryption.NewAESEncryptor(cfg.Cache.EncryptionKey)
			if err != nil {
				log.Fatal().Err(err).Msg("invalid CACHE_ENCRYPTION_KEY")
			}
			repoOpts = append(repoOpts, repository.WithCacheEncryption(enc))
		}
	}

	notesRepo, err := repository.NewDefault(docDBClient.Database(), repoOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize notes repository")
	}
	auditRepo, err := repository.New[string](docDBClient.Database(),
		repository.WithLogger(log.Logger.With().Str("component", "audit").Logger()),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize audit repository")
	}

	gin.SetMode(cfg.Server.GinMode)

	router := setupRouter(docDBClient, docCache, notesRepo, auditRepo)

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// setupLogger configures the global zerolog logger.
func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.Logger.With().Str("service", "docrepo").Logger()
}

// createCache creates the document cache. It returns nil when caching is disabled.
func createCache(cfg config.CacheConfig) (cache.Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cache.Type(cfg.Type) {
	case cache.TypeRedis:
		c, err := rediscache.NewCache(rediscache.Config{
			Host:       cfg.Host,
			Port:       cfg.Port,
			Password:   cfg.Password,
			DB:         cfg.DB,
			DefaultTTL: cfg.TTL,
			KeyPrefix:  cfg.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, nil
	}
}

// createDocDBClient creates a document database client based on the configuration.
func createDocDBClient(ctx context.Context, cfg config.DocDBConfig) (docdb.Client, error) {
	switch docdb.Type(cfg.Type) {
	case docdb.TypeMongoDB, docdb.TypeCosmosDB:
		// Cosmos DB is reached through its MongoDB API.
		return mongodb.NewClient(ctx, &mongodb.ClientConfig{
			URI:            cfg.URI,
			DatabaseName:   cfg.Database,
			ConnectTimeout: cfg.ConnectTimeout,
		})
	default:
		log.Fatal().Str("type", cfg.Type).Msg("unsupported docdb type")
		return nil, nil
	}
}

// setupRouter creates and configures the Gin router.
func setupRouter(docDBClient docdb.Client, docCache cache.Cache, notesRepo *repository.GUIDRepository, auditRepo *repository.Repository[string]) *gin.Engine {
	router := gin.New()

	loggingMw := middleware.NewLoggingMiddleware()
	errorMw := middleware.NewErrorMiddleware()

	routesCfg := &routes.Config{
		HealthHandler:    handlers.NewHealthHandler(docDBClient, docCache),
		NotesHandler:     handlers.NewNotesHandler(notesRepo, auditRepo),
		TenantMiddleware: middleware.NewTenantMiddleware(),
	}

	routes.SetupWithMiddleware(router, routesCfg, loggingMw, errorMw, middleware.DefaultCORSConfig())

	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}
