// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
	loggerKey    = "logger"
	errorCodeKey = "error_code"
)

// healthPaths are polled by orchestrators and only logged at debug level.
var healthPaths = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/live":   true,
}

// LoggingMiddleware assigns request ids and logs every request with the
// tenant it was scoped to and the domain error code it failed with, if any.
type LoggingMiddleware struct {
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a LoggingMiddleware on the global logger.
func NewLoggingMiddleware() *LoggingMiddleware {
	return NewLoggingMiddlewareWithLogger(log.Logger)
}

// NewLoggingMiddlewareWithLogger creates a LoggingMiddleware with a custom logger.
func NewLoggingMiddlewareWithLogger(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger: logger,
	}
}

// RequestLogger stores a request id and a request-scoped logger in the context.
// Tenant routes get the tenant id on their logger so repository failures can be
// traced to the partition they hit.
func (m *LoggingMiddleware) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		fields := m.logger.With().Str("request_id", requestID)
		if tenantID := c.Param("tenantId"); tenantID != "" {
			fields = fields.Str("tenant_id", tenantID)
		}
		c.Set(loggerKey, fields.Logger())

		c.Next()
	}
}

// Logger logs the outcome of each request once the handlers have run.
func (m *LoggingMiddleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		logger := GetRequestLogger(c)

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		case healthPaths[c.Request.URL.Path]:
			event = logger.Debug()
		default:
			event = logger.Info()
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		event.
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("body_size", c.Writer.Size())

		if tenantID := GetTenantID(c); tenantID != "" {
			event.Str("tenant_id", tenantID)
		}
		if code := GetErrorCode(c); code != "" {
			event.Str("error_code", code)
		}
		if err := c.Errors.Last(); err != nil {
			event.Str("error", err.Error())
		}

		event.Msg("request completed")
	}
}

// GetRequestLogger retrieves the request-scoped logger from context.
func GetRequestLogger(c *gin.Context) zerolog.Logger {
	if logger, exists := c.Get(loggerKey); exists {
		return logger.(zerolog.Logger)
	}
	return log.Logger
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// GetErrorCode returns the error code HandleError answered the request with.
func GetErrorCode(c *gin.Context) string {
	return c.GetString(errorCodeKey)
}
