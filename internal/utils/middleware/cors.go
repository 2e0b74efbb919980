package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	Origins        []string
	Methods        []string
	Headers        []string
	ExposedHeaders []string
	Credentials    bool
	MaxAge         time.Duration
}

// DefaultCORSConfig accepts browser clients from any origin without
// credentials. X-Request-ID is exposed so web clients can surface the
// correlation ID in error reports; Cache-Control is accepted because
// EventSource polyfills send it on generation streams.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Origins:        []string{"*"},
		Methods:        []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		Headers:        []string{"Origin", "Content-Type", "Authorization", "Cache-Control", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Length", "X-Request-ID"},
		Credentials:    false,
		MaxAge:         12 * time.Hour,
	}
}

// CORS adapts the config onto gin-contrib's CORS middleware.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.Origins,
		AllowMethods:     cfg.Methods,
		AllowHeaders:     cfg.Headers,
		ExposeHeaders:    cfg.ExposedHeaders,
		AllowCredentials: cfg.Credentials,
		MaxAge:           cfg.MaxAge,
	})
}
