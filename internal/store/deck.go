package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cardarena/backend/internal/models"
	"github.com/cardarena/backend/internal/rank"
)

const deckColumns = `id, owner_id, name, is_simulated, total_matches, wins, losses, created_at`
const cardColumns = `id, name, rarity, power, is_active, created_at`

type pgDeckRepo struct {
	db *sqlx.DB
}

// NewDeckRepository returns a Postgres-backed DeckRepository
func NewDeckRepository(db *sqlx.DB) DeckRepository {
	return &pgDeckRepo{db: db}
}

func (r *pgDeckRepo) GetByID(ctx context.Context, deckID int) (*models.Deck, error) {
	var d models.Deck
	err := r.db.GetContext(ctx, &d, `SELECT `+deckColumns+` FROM decks WHERE id = $1`, deckID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get deck %d: %w", deckID, err)
	}
	return &d, nil
}

func (r *pgDeckRepo) GetByIDAndOwner(ctx context.Context, deckID, ownerID int) (*models.Deck, error) {
	var d models.Deck
	err := r.db.GetContext(ctx, &d, `
		SELECT `+deckColumns+` FROM decks WHERE id = $1 AND owner_id = $2`, deckID, ownerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get deck %d for owner %d: %w", deckID, ownerID, err)
	}
	return &d, nil
}

func (r *pgDeckRepo) CardCount(ctx context.Context, deckID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM deck_cards WHERE deck_id = $1`, deckID)
	if err != nil {
		return 0, fmt.Errorf("count cards in deck %d: %w", deckID, err)
	}
	return count, nil
}

func (r *pgDeckRepo) CardsByRarity(ctx context.Context, rarity string, limit int) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.SelectContext(ctx, &cards, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE rarity = $1 AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT $2`,
		rarity, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s cards: %w", rarity, err)
	}
	return cards, nil
}

func (r *pgDeckRepo) ActiveCards(ctx context.Context, limit int) ([]models.Card, error) {
	var cards []models.Card
	err := r.db.SelectContext(ctx, &cards, `
		SELECT `+cardColumns+`
		FROM cards
		WHERE is_active = TRUE
		ORDER BY created_at DESC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("list active cards: %w", err)
	}
	return cards, nil
}

func (r *pgDeckRepo) CreateDeck(ctx context.Context, ownerID int, name string, simulated bool, cardIDs []int) (*models.Deck, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create deck tx: %w", err)
	}
	defer tx.Rollback()

	var d models.Deck
	err = tx.GetContext(ctx, &d, `
		INSERT INTO decks (owner_id, name, is_simulated, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING `+deckColumns,
		ownerID, name, simulated)
	if err != nil {
		return nil, fmt.Errorf("insert deck: %w", err)
	}

	for i, cardID := range cardIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO deck_cards (deck_id, card_id, position) VALUES ($1, $2, $3)`,
			d.ID, cardID, i); err != nil {
			return nil, fmt.Errorf("insert deck card %d: %w", cardID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create deck: %w", err)
	}
	return &d, nil
}

func (r *pgDeckRepo) SaveSimulatedChoices(ctx context.Context, c *models.SimulatedChoices) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO simulated_choices (id, deck_id, banned_card_ids, play_order, created_at)
		VALUES ($1, $2, $3, $4, NOW())`,
		c.ID, c.DeckID, c.BannedCardIDs, c.PlayOrder)
	if err != nil {
		return fmt.Errorf("save simulated choices for deck %d: %w", c.DeckID, err)
	}
	return nil
}

func (r *pgDeckRepo) BumpCounters(ctx context.Context, deckID int, result rank.Result) error {
	query := `UPDATE decks SET total_matches = total_matches + 1 WHERE id = $1`
	switch result {
	case rank.ResultWin:
		query = `UPDATE decks SET total_matches = total_matches + 1, wins = wins + 1 WHERE id = $1`
	case rank.ResultLoss:
		query = `UPDATE decks SET total_matches = total_matches + 1, losses = losses + 1 WHERE id = $1`
	}
	if _, err := r.db.ExecContext(ctx, query, deckID); err != nil {
		return fmt.Errorf("bump counters for deck %d: %w", deckID, err)
	}
	return nil
}
