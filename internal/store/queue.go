package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cardarena/backend/internal/models"
)

const queueColumns = `id, user_id, deck_id, status, rank_points, opponent_deck_id, is_simulated, joined_at`

type pgQueueRepo struct {
	db *sqlx.DB
}

// NewQueueRepository returns a Postgres-backed QueueRepository
func NewQueueRepository(db *sqlx.DB) QueueRepository {
	return &pgQueueRepo{db: db}
}

func (r *pgQueueRepo) InsertWaiting(ctx context.Context, userID, deckID, rankPoints int) (*models.QueueEntry, error) {
	var e models.QueueEntry
	err := r.db.GetContext(ctx, &e, `
		INSERT INTO queue_entries (user_id, deck_id, status, rank_points, joined_at)
		VALUES ($1, $2, 'waiting', $3, NOW())
		RETURNING `+queueColumns,
		userID, deckID, rankPoints)
	if err != nil {
		return nil, fmt.Errorf("insert waiting entry: %w", err)
	}
	return &e, nil
}

func (r *pgQueueRepo) InsertMatchedSimulated(ctx context.Context, userID, deckID, rankPoints, opponentDeckID int) (*models.QueueEntry, error) {
	var e models.QueueEntry
	err := r.db.GetContext(ctx, &e, `
		INSERT INTO queue_entries (user_id, deck_id, status, rank_points, opponent_deck_id, is_simulated, joined_at)
		VALUES ($1, $2, 'matched', $3, $4, TRUE, NOW())
		RETURNING `+queueColumns,
		userID, deckID, rankPoints, opponentDeckID)
	if err != nil {
		return nil, fmt.Errorf("insert simulated entry: %w", err)
	}
	return &e, nil
}

func (r *pgQueueRepo) FindWaitingByUser(ctx context.Context, userID int) (*models.QueueEntry, error) {
	var e models.QueueEntry
	err := r.db.GetContext(ctx, &e, `
		SELECT `+queueColumns+`
		FROM queue_entries
		WHERE user_id = $1 AND status = 'waiting'`,
		userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find waiting entry for user %d: %w", userID, err)
	}
	return &e, nil
}

func (r *pgQueueRepo) FindWaitingExcept(ctx context.Context, selfEntryID int, f QueueFilter) ([]models.QueueEntry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 1
	}

	var entries []models.QueueEntry
	var err error
	if f.HasBand {
		err = r.db.SelectContext(ctx, &entries, `
			SELECT `+queueColumns+`
			FROM queue_entries
			WHERE status = 'waiting'
			  AND id != $1
			  AND rank_points BETWEEN $2 AND $3
			ORDER BY joined_at ASC
			LIMIT $4`,
			selfEntryID, f.MinPoints, f.MaxPoints, limit)
	} else {
		err = r.db.SelectContext(ctx, &entries, `
			SELECT `+queueColumns+`
			FROM queue_entries
			WHERE status = 'waiting'
			  AND id != $1
			ORDER BY joined_at ASC
			LIMIT $2`,
			selfEntryID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("find waiting entries: %w", err)
	}
	return entries, nil
}

func (r *pgQueueRepo) MarkMatched(ctx context.Context, entryID, opponentDeckID int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE queue_entries
		SET status = 'matched', opponent_deck_id = $1
		WHERE id = $2`,
		opponentDeckID, entryID)
	if err != nil {
		return fmt.Errorf("mark entry %d matched: %w", entryID, err)
	}
	return nil
}

// MatchPair locks both rows, re-checks that both are still waiting, and
// flips them to matched with each other's deck id. A third search racing
// to pair with either half blocks on the row locks and then sees a
// non-waiting row.
func (r *pgQueueRepo) MatchPair(ctx context.Context, idA, idB int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin match pair tx: %w", err)
	}
	defer tx.Rollback()

	var rows []models.QueueEntry
	err = tx.SelectContext(ctx, &rows, `
		SELECT `+queueColumns+`
		FROM queue_entries
		WHERE id IN ($1, $2) AND status = 'waiting'
		ORDER BY id
		FOR UPDATE`,
		idA, idB)
	if err != nil {
		return fmt.Errorf("lock queue pair (%d, %d): %w", idA, idB, err)
	}
	if len(rows) < 2 {
		return ErrEntryNotWaiting
	}

	byID := map[int]models.QueueEntry{rows[0].ID: rows[0], rows[1].ID: rows[1]}
	a, b := byID[idA], byID[idB]

	if _, err := tx.ExecContext(ctx, `
		UPDATE queue_entries SET status = 'matched', opponent_deck_id = $1 WHERE id = $2`,
		b.DeckID, a.ID); err != nil {
		return fmt.Errorf("match entry %d: %w", a.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE queue_entries SET status = 'matched', opponent_deck_id = $1 WHERE id = $2`,
		a.DeckID, b.ID); err != nil {
		return fmt.Errorf("match entry %d: %w", b.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit match pair: %w", err)
	}
	return nil
}

func (r *pgQueueRepo) DeleteEntry(ctx context.Context, entryID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM queue_entries WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("delete queue entry %d: %w", entryID, err)
	}
	return nil
}

func (r *pgQueueRepo) GetByID(ctx context.Context, entryID int) (*models.QueueEntry, error) {
	var e models.QueueEntry
	err := r.db.GetContext(ctx, &e, `
		SELECT `+queueColumns+` FROM queue_entries WHERE id = $1`, entryID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get queue entry %d: %w", entryID, err)
	}
	return &e, nil
}
