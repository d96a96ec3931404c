// Package routes defines the HTTP routes for the docrepo service.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/unifiedui/docrepo-service/internal/api/handlers"
	"github.com/unifiedui/docrepo-service/internal/api/middleware"
)

// Config holds the dependencies for setting up routes.
type Config struct {
	HealthHandler    *handlers.HealthHandler
	NotesHandler     *handlers.NotesHandler
	TenantMiddleware *middleware.TenantMiddleware
}

// Setup configures all routes on the Gin engine.
func Setup(r *gin.Engine, cfg *Config) {
	r.GET("/health", cfg.HealthHandler.Health)
	r.GET("/ready", cfg.HealthHandler.Ready)
	r.GET("/live", cfg.HealthHandler.Live)

	v1 := r.Group("/api/v1")

	// Every tenant's notes live in their own "<tenantId>-notes" collection.
	tenants := v1.Group("/tenants/:tenantId")
	tenants.Use(cfg.TenantMiddleware.ExtractTenant())
	{
		notes := tenants.Group("/notes")
		{
			notes.POST("", cfg.NotesHandler.CreateNote)
			notes.GET("", cfg.NotesHandler.ListNotes)
			notes.DELETE("", cfg.NotesHandler.DeleteNotes)
			notes.POST("/batch", cfg.NotesHandler.CreateNotes)
			notes.GET("/search", cfg.NotesHandler.SearchNotes)
			notes.GET("/stats", cfg.NotesHandler.GetStats)

			notes.GET("/indexes", cfg.NotesHandler.ListIndexes)
			notes.POST("/indexes", cfg.NotesHandler.CreateIndex)
			notes.DELETE("/indexes/:name", cfg.NotesHandler.DropIndex)

			notes.GET("/:noteId", cfg.NotesHandler.GetNote)
			notes.PUT("/:noteId", cfg.NotesHandler.ReplaceNote)
			notes.PATCH("/:noteId", cfg.NotesHandler.UpdateNote)
			notes.DELETE("/:noteId", cfg.NotesHandler.DeleteNote)
		}
	}

	r.NoRoute(middleware.NotFound())
	r.NoMethod(middleware.MethodNotAllowed())
}

// SetupWithMiddleware sets up routes with common middleware.
func SetupWithMiddleware(r *gin.Engine, cfg *Config, loggingMw *middleware.LoggingMiddleware, errorMw *middleware.ErrorMiddleware, corsCfg middleware.CORSConfig) {
	r.HandleMethodNotAllowed = true

	r.Use(middleware.NewCORSMiddleware(corsCfg))
	r.Use(loggingMw.RequestLogger())
	r.Use(loggingMw.Logger())
	r.Use(errorMw.Recovery())

	middleware.SetupCORSRoutes(r, corsCfg)
	Setup(r, cfg)
}
