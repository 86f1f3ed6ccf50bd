package store

import (
	"context"
	"errors"

	"github.com/cardarena/backend/internal/models"
	"github.com/cardarena/backend/internal/rank"
)

// ErrEntryNotWaiting is returned by MatchPair when one of the two rows was
// claimed (or deleted) by a concurrent search before the transaction locked
// it. Callers treat it as "no match this poll", not a failure.
var ErrEntryNotWaiting = errors.New("queue entry is no longer waiting")

// QueueFilter narrows FindWaitingExcept. When HasBand is set only entries
// with MinPoints <= rank_points <= MaxPoints qualify. Results are always
// ordered by joined_at ascending (FIFO tie-break).
type QueueFilter struct {
	HasBand   bool
	MinPoints int
	MaxPoints int
	Limit     int
}

// QueueRepository is the durable matchmaking queue
type QueueRepository interface {
	InsertWaiting(ctx context.Context, userID, deckID, rankPoints int) (*models.QueueEntry, error)
	// InsertMatchedSimulated creates an entry for a synthetic opponent that
	// is born already matched against the given opponent deck.
	InsertMatchedSimulated(ctx context.Context, userID, deckID, rankPoints, opponentDeckID int) (*models.QueueEntry, error)
	FindWaitingByUser(ctx context.Context, userID int) (*models.QueueEntry, error)
	FindWaitingExcept(ctx context.Context, selfEntryID int, f QueueFilter) ([]models.QueueEntry, error)
	MarkMatched(ctx context.Context, entryID, opponentDeckID int) error
	// MatchPair flips both entries to matched with each other's deck id in
	// a single transaction, locking both rows. Returns ErrEntryNotWaiting
	// if either side was claimed concurrently.
	MatchPair(ctx context.Context, idA, idB int) error
	DeleteEntry(ctx context.Context, entryID int) error
	GetByID(ctx context.Context, entryID int) (*models.QueueEntry, error)
}

// RankedStatsRepository persists per-user ranked progression
type RankedStatsRepository interface {
	// GetOrCreate returns the row, creating it on first use with 1000
	// points and the tier derived from that total.
	GetOrCreate(ctx context.Context, userID int) (*models.RankedStats, error)
	Get(ctx context.Context, userID int) (*models.RankedStats, error)
	Update(ctx context.Context, s *models.RankedStats) error
}

// PlayerStatsRepository persists cumulative combat statistics
type PlayerStatsRepository interface {
	GetOrCreate(ctx context.Context, userID int) (*models.PlayerStats, error)
	Update(ctx context.Context, s *models.PlayerStats) error
}

// DeckRepository reads decks and card pools and writes deck counters.
// This is the deck collaborator: deck CRUD itself lives elsewhere.
type DeckRepository interface {
	GetByID(ctx context.Context, deckID int) (*models.Deck, error)
	GetByIDAndOwner(ctx context.Context, deckID, ownerID int) (*models.Deck, error)
	CardCount(ctx context.Context, deckID int) (int, error)
	// CardsByRarity returns the most recently created active cards of a
	// rarity, newest first.
	CardsByRarity(ctx context.Context, rarity string, limit int) ([]models.Card, error)
	ActiveCards(ctx context.Context, limit int) ([]models.Card, error)
	CreateDeck(ctx context.Context, ownerID int, name string, simulated bool, cardIDs []int) (*models.Deck, error)
	SaveSimulatedChoices(ctx context.Context, c *models.SimulatedChoices) error
	BumpCounters(ctx context.Context, deckID int, result rank.Result) error
}

// MatchHistoryRepository appends immutable match records
type MatchHistoryRepository interface {
	Insert(ctx context.Context, h *models.MatchHistory) error
	ListByUser(ctx context.Context, userID, limit int) ([]models.MatchHistory, error)
}

// PlayerRepository is the profile/identity collaborator
type PlayerRepository interface {
	Create(ctx context.Context, email, passwordHash, displayName string) (*models.Player, error)
	GetByEmail(ctx context.Context, email string) (*models.Player, error)
	GetByID(ctx context.Context, userID int) (*models.Player, error)
	DisplayName(ctx context.Context, userID int) (string, error)
}
