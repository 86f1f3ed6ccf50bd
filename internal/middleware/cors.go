package middleware

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cardarena/backend/internal/config"
)

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"Accept", "Cache-Control", "X-Requested-With",
		},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour, // Cache preflight responses
	}

	if cfg.Environment == "development" {
		corsConfig.AllowOrigins = []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}
		corsConfig.AllowCredentials = true
	} else {
		allowedOrigins := []string{}
		if cfg.FrontendURL != "" {
			allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
		}
		corsConfig.AllowOrigins = allowedOrigins
		corsConfig.AllowCredentials = true
		log.Printf("[CORS] Production allowed origins: %v", allowedOrigins)
	}

	return cors.New(corsConfig)
}
