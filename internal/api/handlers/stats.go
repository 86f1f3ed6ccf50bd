package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardarena/backend/internal/middleware"
	"github.com/cardarena/backend/internal/store"
)

// GetRankedStats returns the caller's ranked progression, creating the
// default row on first use.
func GetRankedStats(ranked store.RankedStatsRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		stats, err := ranked.GetOrCreate(c.Request.Context(), userID)
		if err != nil {
			log.Printf("[STATS] Failed to load ranked stats for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// GetPlayerStats returns the caller's cumulative combat statistics
func GetPlayerStats(playerStats store.PlayerStatsRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		stats, err := playerStats.GetOrCreate(c.Request.Context(), userID)
		if err != nil {
			log.Printf("[STATS] Failed to load player stats for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// GetMatchHistory returns the caller's recent match records
func GetMatchHistory(history store.MatchHistoryRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		records, err := history.ListByUser(c.Request.Context(), userID, 20)
		if err != nil {
			log.Printf("[STATS] Failed to load match history for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"matches": records})
	}
}
