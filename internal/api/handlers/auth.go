package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardarena/backend/internal/config"
	"github.com/cardarena/backend/internal/store"
)

// Register creates a new player account and returns a bearer token
func Register(players store.PlayerRepository, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email       string `json:"email" binding:"required"`
			Password    string `json:"password" binding:"required"`
			DisplayName string `json:"display_name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || len(req.Password) < 8 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email or password too short"})
			return
		}

		existing, err := players.GetByEmail(c.Request.Context(), email)
		if err != nil {
			log.Printf("[AUTH] Register lookup failed for %s: %v", email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
			return
		}

		name := strings.TrimSpace(req.DisplayName)
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}

		player, err := players.Create(c.Request.Context(), email, string(hash), name)
		if err != nil {
			log.Printf("[AUTH] Failed to create player %s: %v", email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
			return
		}

		token, err := issueToken(player.ID, cfg)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":        token,
			"user_id":      player.ID,
			"display_name": player.DisplayName,
		})
	}
}

// Login verifies credentials and returns a bearer token
func Login(players store.PlayerRepository, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		player, err := players.GetByEmail(c.Request.Context(), email)
		if err != nil {
			log.Printf("[AUTH] Login lookup failed for %s: %v", email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}
		if player == nil || !player.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		token, err := issueToken(player.ID, cfg)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":        token,
			"user_id":      player.ID,
			"display_name": player.DisplayName,
		})
	}
}

func issueToken(userID int, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Duration(cfg.TokenTTLHours) * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}
