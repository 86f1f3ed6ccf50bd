package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/cardarena/backend/internal/models"
)

const playerColumns = `id, email, password_hash, display_name, is_active, created_at`

const displayNameCacheTTL = 10 * time.Minute

type pgPlayerRepo struct {
	db  *sqlx.DB
	rdb *redis.Client
}

// NewPlayerRepository returns a Postgres-backed PlayerRepository. The Redis
// client is optional and only used to cache display names; pass nil to
// disable caching.
func NewPlayerRepository(db *sqlx.DB, rdb *redis.Client) PlayerRepository {
	return &pgPlayerRepo{db: db, rdb: rdb}
}

func (r *pgPlayerRepo) Create(ctx context.Context, email, passwordHash, displayName string) (*models.Player, error) {
	var p models.Player
	err := r.db.GetContext(ctx, &p, `
		INSERT INTO players (email, password_hash, display_name, is_active, created_at)
		VALUES ($1, $2, $3, TRUE, NOW())
		RETURNING `+playerColumns,
		email, passwordHash, displayName)
	if err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}
	return &p, nil
}

func (r *pgPlayerRepo) GetByEmail(ctx context.Context, email string) (*models.Player, error) {
	var p models.Player
	err := r.db.GetContext(ctx, &p, `SELECT `+playerColumns+` FROM players WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player by email: %w", err)
	}
	return &p, nil
}

func (r *pgPlayerRepo) GetByID(ctx context.Context, userID int) (*models.Player, error) {
	var p models.Player
	err := r.db.GetContext(ctx, &p, `SELECT `+playerColumns+` FROM players WHERE id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player %d: %w", userID, err)
	}
	return &p, nil
}

// DisplayName resolves a player's display name, consulting the Redis cache
// first. Cache failures are logged and ignored.
func (r *pgPlayerRepo) DisplayName(ctx context.Context, userID int) (string, error) {
	key := fmt.Sprintf("display_name:%d", userID)
	if r.rdb != nil {
		if name, err := r.rdb.Get(ctx, key).Result(); err == nil && name != "" {
			return name, nil
		}
	}

	var name string
	err := r.db.GetContext(ctx, &name, `SELECT display_name FROM players WHERE id = $1`, userID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("player %d not found", userID)
	}
	if err != nil {
		return "", fmt.Errorf("get display name for player %d: %w", userID, err)
	}

	if r.rdb != nil {
		if err := r.rdb.Set(ctx, key, name, displayNameCacheTTL).Err(); err != nil {
			log.Printf("[CACHE] Failed to cache display name for player %d: %v", userID, err)
		}
	}
	return name, nil
}
