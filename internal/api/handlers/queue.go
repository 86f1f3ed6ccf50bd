package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardarena/backend/internal/matchmaking"
	"github.com/cardarena/backend/internal/middleware"
)

// JoinQueue places the caller into the matchmaking queue
func JoinQueue(orch *matchmaking.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		var req struct {
			DeckID int `json:"deck_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "deck_id required"})
			return
		}

		result, err := orch.JoinQueue(c.Request.Context(), userID, req.DeckID)
		if err != nil {
			respondMatchmakingError(c, err)
			return
		}

		status := "queued"
		if result.Match != nil && result.Match.Matched {
			status = "matched"
		}
		c.JSON(http.StatusOK, gin.H{
			"status": status,
			"entry":  result.Entry,
			"match":  result.Match,
		})
	}
}

// LeaveQueue removes the caller's entry from the queue
func LeaveQueue(orch *matchmaking.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		entryID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid queue entry id"})
			return
		}

		if err := orch.LeaveQueue(c.Request.Context(), userID, entryID); err != nil {
			respondMatchmakingError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "left"})
	}
}

// QueueStatus reports whether the caller's entry has been matched. This is
// the poll endpoint that also drives the timeout fallback.
func QueueStatus(orch *matchmaking.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		entryID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid queue entry id"})
			return
		}

		result, err := orch.CheckStatus(c.Request.Context(), userID, entryID)
		if err != nil {
			respondMatchmakingError(c, err)
			return
		}

		if !result.Matched {
			c.JSON(http.StatusOK, gin.H{
				"status":  "waiting",
				"entry":   result.Entry,
				"message": "Still waiting for opponent...",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "matched",
			"entry":    result.Entry,
			"opponent": result.Opponent,
		})
	}
}

func respondMatchmakingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, matchmaking.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, matchmaking.ErrInvalidDeck):
		c.JSON(http.StatusBadRequest, gin.H{"error": "deck missing, not yours, or wrong card count"})
	case errors.Is(err, matchmaking.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "queue entry not found"})
	default:
		log.Printf("[ERROR] Matchmaking operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
