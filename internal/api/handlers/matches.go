package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardarena/backend/internal/battle"
	"github.com/cardarena/backend/internal/middleware"
	"github.com/cardarena/backend/internal/stats"
)

// CompleteMatch ingests a battle outcome and applies post-match stats and
// rank updates for both participants. Invoked when the battle engine
// reports a finished game.
func CompleteMatch(updater *stats.Updater, states battle.StateStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		var outcome battle.Outcome
		if err := c.ShouldBindJSON(&outcome); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid battle outcome"})
			return
		}

		// Only a participant may report the outcome
		isParticipant := false
		for _, p := range outcome.Players {
			if p.UserID == userID {
				isParticipant = true
				break
			}
		}
		if !isParticipant {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this match"})
			return
		}

		if err := updater.ApplyOutcome(c.Request.Context(), &outcome); err != nil {
			log.Printf("[STATS] Outcome for match %s applied with errors: %v", outcome.MatchID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record match"})
			return
		}

		// The battle is over; its state is no longer needed. Best-effort.
		if outcome.MatchID != "" {
			if err := states.Delete(c.Request.Context(), outcome.MatchID); err != nil {
				log.Printf("[BATTLE] Failed to delete state for match %s: %v", outcome.MatchID, err)
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "recorded"})
	}
}
