package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cardarena/backend/internal/models"
	"github.com/cardarena/backend/internal/rank"
)

const rankedColumns = `user_id, rank_points, rank_tier, wins, losses, draws, total_matches,
	current_streak, longest_streak, highest_rank_points, highest_rank_tier, last_match_at`

type pgRankedStatsRepo struct {
	db *sqlx.DB
}

// NewRankedStatsRepository returns a Postgres-backed RankedStatsRepository
func NewRankedStatsRepository(db *sqlx.DB) RankedStatsRepository {
	return &pgRankedStatsRepo{db: db}
}

func (r *pgRankedStatsRepo) GetOrCreate(ctx context.Context, userID int) (*models.RankedStats, error) {
	s, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}

	// First use: 1000 points, tier derived from the canonical table
	tier := string(rank.TierForPoints(1000))
	var created models.RankedStats
	err = r.db.GetContext(ctx, &created, `
		INSERT INTO ranked_stats (user_id, rank_points, rank_tier, highest_rank_points, highest_rank_tier)
		VALUES ($1, 1000, $2, 1000, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING `+rankedColumns,
		userID, tier)
	if err != nil {
		return nil, fmt.Errorf("create ranked stats for user %d: %w", userID, err)
	}
	return &created, nil
}

func (r *pgRankedStatsRepo) Get(ctx context.Context, userID int) (*models.RankedStats, error) {
	var s models.RankedStats
	err := r.db.GetContext(ctx, &s, `
		SELECT `+rankedColumns+` FROM ranked_stats WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ranked stats for user %d: %w", userID, err)
	}
	return &s, nil
}

func (r *pgRankedStatsRepo) Update(ctx context.Context, s *models.RankedStats) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE ranked_stats
		SET rank_points = $1, rank_tier = $2, wins = $3, losses = $4, draws = $5,
		    total_matches = $6, current_streak = $7, longest_streak = $8,
		    highest_rank_points = $9, highest_rank_tier = $10, last_match_at = $11
		WHERE user_id = $12`,
		s.RankPoints, s.RankTier, s.Wins, s.Losses, s.Draws,
		s.TotalMatches, s.CurrentStreak, s.LongestStreak,
		s.HighestRankPoints, s.HighestRankTier, s.LastMatchAt, s.UserID)
	if err != nil {
		return fmt.Errorf("update ranked stats for user %d: %w", s.UserID, err)
	}
	return nil
}

const playerStatsColumns = `user_id, total_matches, wins, losses, draws, current_streak,
	longest_streak, damage_dealt, damage_received, cards_defeated, turns_played,
	abilities_used, last_match_at`

type pgPlayerStatsRepo struct {
	db *sqlx.DB
}

// NewPlayerStatsRepository returns a Postgres-backed PlayerStatsRepository
func NewPlayerStatsRepository(db *sqlx.DB) PlayerStatsRepository {
	return &pgPlayerStatsRepo{db: db}
}

func (r *pgPlayerStatsRepo) GetOrCreate(ctx context.Context, userID int) (*models.PlayerStats, error) {
	var s models.PlayerStats
	err := r.db.GetContext(ctx, &s, `
		SELECT `+playerStatsColumns+` FROM player_stats WHERE user_id = $1`, userID)
	if err == nil {
		return &s, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("get player stats for user %d: %w", userID, err)
	}

	err = r.db.GetContext(ctx, &s, `
		INSERT INTO player_stats (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING `+playerStatsColumns,
		userID)
	if err != nil {
		return nil, fmt.Errorf("create player stats for user %d: %w", userID, err)
	}
	return &s, nil
}

func (r *pgPlayerStatsRepo) Update(ctx context.Context, s *models.PlayerStats) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE player_stats
		SET total_matches = $1, wins = $2, losses = $3, draws = $4,
		    current_streak = $5, longest_streak = $6, damage_dealt = $7,
		    damage_received = $8, cards_defeated = $9, turns_played = $10,
		    abilities_used = $11, last_match_at = $12
		WHERE user_id = $13`,
		s.TotalMatches, s.Wins, s.Losses, s.Draws,
		s.CurrentStreak, s.LongestStreak, s.DamageDealt,
		s.DamageReceived, s.CardsDefeated, s.TurnsPlayed,
		s.AbilitiesUsed, s.LastMatchAt, s.UserID)
	if err != nil {
		return fmt.Errorf("update player stats for user %d: %w", s.UserID, err)
	}
	return nil
}
