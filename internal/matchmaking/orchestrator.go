package matchmaking

import (
	"context"
	"log"

	"github.com/cardarena/backend/internal/models"
	"github.com/cardarena/backend/internal/rank"
	"github.com/cardarena/backend/internal/store"
)

// FallbackOpponentName is shown when a real opponent's display name cannot
// be resolved.
const FallbackOpponentName = "Opponent"

// Orchestrator is the public matchmaking entry point: join, leave and
// check-status. It sequences the queue store and the opponent search and
// guarantees idempotent re-entry.
type Orchestrator struct {
	queue    store.QueueRepository
	ranked   store.RankedStatsRepository
	decks    store.DeckRepository
	players  store.PlayerRepository
	search   *Search
	deckSize int
}

func NewOrchestrator(queue store.QueueRepository, ranked store.RankedStatsRepository,
	decks store.DeckRepository, players store.PlayerRepository, search *Search, deckSize int) *Orchestrator {
	if deckSize <= 0 {
		deckSize = 5
	}
	return &Orchestrator{
		queue:    queue,
		ranked:   ranked,
		decks:    decks,
		players:  players,
		search:   search,
		deckSize: deckSize,
	}
}

// JoinResult is what a join returns: the queue entry and, when the
// immediate search succeeded, the match.
type JoinResult struct {
	Entry *models.QueueEntry `json:"entry"`
	Match *MatchResult       `json:"match,omitempty"`
}

// StatusResult is the polled view of a queue entry
type StatusResult struct {
	Entry    *models.QueueEntry `json:"entry"`
	Matched  bool               `json:"matched"`
	Opponent *Opponent          `json:"opponent,omitempty"`
}

// JoinQueue validates the deck, ensures ranked stats exist, inserts a
// waiting entry snapshotting current rank points, and runs one immediate
// search. Rejoining without leaving returns the existing entry unchanged.
func (o *Orchestrator) JoinQueue(ctx context.Context, userID, deckID int) (*JoinResult, error) {
	deck, err := o.decks.GetByIDAndOwner(ctx, deckID, userID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrInvalidDeck
	}
	count, err := o.decks.CardCount(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if count != o.deckSize {
		return nil, ErrInvalidDeck
	}

	// Idempotent rejoin: no duplicate waiting rows per user
	existing, err := o.queue.FindWaitingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Printf("[QUEUE] User %d rejoined, returning existing entry %d", userID, existing.ID)
		return &JoinResult{Entry: existing}, nil
	}

	stats, err := o.ranked.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry, err := o.queue.InsertWaiting(ctx, userID, deckID, stats.RankPoints)
	if err != nil {
		return nil, err
	}
	log.Printf("[QUEUE] User %d joined with deck %d (entry %d, points %d)",
		userID, deckID, entry.ID, entry.RankPoints)

	match, err := o.search.FindOpponent(ctx, entry)
	if err != nil {
		return nil, err
	}
	if match.Matched {
		o.resolveDisplayName(ctx, match.Opponent)
		// Reflect the transition locally so the caller sees the final state
		refreshed, err := o.queue.GetByID(ctx, entry.ID)
		if err == nil && refreshed != nil {
			entry = refreshed
		}
	}
	return &JoinResult{Entry: entry, Match: match}, nil
}

// LeaveQueue deletes the caller's entry. It is safe to call while a match
// is concurrently being made; the opponent may end up referencing a deck
// whose owner left, which the battle engine validates before starting.
func (o *Orchestrator) LeaveQueue(ctx context.Context, userID, entryID int) error {
	entry, err := o.queue.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry == nil || entry.UserID != userID {
		return ErrNotFound
	}
	if err := o.queue.DeleteEntry(ctx, entryID); err != nil {
		return err
	}
	log.Printf("[QUEUE] User %d left the queue (entry %d)", userID, entryID)
	return nil
}

// CheckStatus reports whether the entry is matched. While the entry is
// still waiting it runs one search pass, which is also where the timeout
// fallback fires: the engine has no background timer, so polling drives
// everything.
func (o *Orchestrator) CheckStatus(ctx context.Context, userID, entryID int) (*StatusResult, error) {
	entry, err := o.queue.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.UserID != userID {
		return nil, ErrNotFound
	}

	if entry.Status == models.QueueStatusWaiting {
		match, err := o.search.FindOpponent(ctx, entry)
		if err != nil {
			return nil, err
		}
		if !match.Matched {
			return &StatusResult{Entry: entry, Matched: false}, nil
		}
		o.resolveDisplayName(ctx, match.Opponent)
		if refreshed, err := o.queue.GetByID(ctx, entryID); err == nil && refreshed != nil {
			entry = refreshed
		}
		return &StatusResult{Entry: entry, Matched: true, Opponent: match.Opponent}, nil
	}

	opponent, err := o.describeOpponent(ctx, entry)
	if err != nil {
		return nil, err
	}
	return &StatusResult{Entry: entry, Matched: true, Opponent: opponent}, nil
}

// describeOpponent reconstructs the opponent view for an already-matched
// entry from its opponent deck.
func (o *Orchestrator) describeOpponent(ctx context.Context, entry *models.QueueEntry) (*Opponent, error) {
	if !entry.OpponentDeckID.Valid {
		return nil, ErrNotFound
	}
	deck, err := o.decks.GetByID(ctx, int(entry.OpponentDeckID.Int64))
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrNotFound
	}

	if deck.OwnerID == o.search.cfg.SimulatedOpponentID {
		// Derive the display rank from the caller's live rank rather than
		// trusting the simulated entry's stale snapshot.
		points := 1000
		if current, err := o.ranked.Get(ctx, entry.UserID); err == nil && current != nil {
			points = current.RankPoints
		}
		simPoints := SimulatedRankPoints(points)
		return &Opponent{
			UserID:      deck.OwnerID,
			DisplayName: SimulatedOpponentName,
			DeckID:      deck.ID,
			RankPoints:  simPoints,
			RankTier:    rank.TierForPoints(simPoints),
			IsSimulated: true,
		}, nil
	}

	opp := &Opponent{
		UserID: deck.OwnerID,
		DeckID: deck.ID,
	}
	if stats, err := o.ranked.Get(ctx, deck.OwnerID); err == nil && stats != nil {
		opp.RankPoints = stats.RankPoints
		opp.RankTier = rank.TierForPoints(stats.RankPoints)
	}
	o.resolveDisplayName(ctx, opp)
	return opp, nil
}

// resolveDisplayName fills in a real opponent's name best-effort. Lookup
// failures degrade to the fallback name, never to an error.
func (o *Orchestrator) resolveDisplayName(ctx context.Context, opp *Opponent) {
	if opp == nil || opp.IsSimulated || opp.DisplayName != "" {
		return
	}
	name, err := o.players.DisplayName(ctx, opp.UserID)
	if err != nil || name == "" {
		log.Printf("[QUEUE] Could not resolve display name for user %d: %v", opp.UserID, err)
		opp.DisplayName = FallbackOpponentName
		return
	}
	opp.DisplayName = name
}
