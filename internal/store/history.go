package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cardarena/backend/internal/models"
)

const historyColumns = `id, user_id, opponent_id, match_type, result, damage_dealt,
	damage_received, cards_defeated, turns_played, abilities_used, started_at, ended_at`

type pgHistoryRepo struct {
	db *sqlx.DB
}

// NewMatchHistoryRepository returns a Postgres-backed MatchHistoryRepository
func NewMatchHistoryRepository(db *sqlx.DB) MatchHistoryRepository {
	return &pgHistoryRepo{db: db}
}

func (r *pgHistoryRepo) Insert(ctx context.Context, h *models.MatchHistory) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO match_history (id, user_id, opponent_id, match_type, result,
			damage_dealt, damage_received, cards_defeated, turns_played,
			abilities_used, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		h.ID, h.UserID, h.OpponentID, h.MatchType, h.Result,
		h.DamageDealt, h.DamageReceived, h.CardsDefeated, h.TurnsPlayed,
		h.AbilitiesUsed, h.StartedAt, h.EndedAt)
	if err != nil {
		return fmt.Errorf("insert match history for user %d: %w", h.UserID, err)
	}
	return nil
}

func (r *pgHistoryRepo) ListByUser(ctx context.Context, userID, limit int) ([]models.MatchHistory, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []models.MatchHistory
	err := r.db.SelectContext(ctx, &records, `
		SELECT `+historyColumns+`
		FROM match_history
		WHERE user_id = $1
		ORDER BY ended_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list match history for user %d: %w", userID, err)
	}
	return records, nil
}
