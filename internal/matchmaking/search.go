package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cardarena/backend/internal/models"
	"github.com/cardarena/backend/internal/rank"
	"github.com/cardarena/backend/internal/store"
)

// SimulatedOpponentName is the display name for every synthetic opponent
const SimulatedOpponentName = "Simulated Opponent"

// simRankFloor is the lowest rank snapshot a simulated opponent can carry
const simRankFloor = 500

// simRankHandicap keeps the simulated opponent slightly below the caller
const simRankHandicap = 100

// SearchConfig tunes the opponent search
type SearchConfig struct {
	BandWidth           int           // +/- rank points for the banded pass
	BatchLimit          int           // candidates per banded pass
	WaitThreshold       time.Duration // wait before synthesizing an opponent
	SimulatedOpponentID int
}

// Opponent describes the matched opposite side of a queue entry
type Opponent struct {
	UserID      int       `json:"user_id"`
	EntryID     int       `json:"entry_id"`
	DisplayName string    `json:"display_name"`
	DeckID      int       `json:"deck_id"`
	RankPoints  int       `json:"rank_points"`
	RankTier    rank.Tier `json:"rank_tier"`
	IsSimulated bool      `json:"is_simulated"`
}

// MatchResult is the outcome of one search pass
type MatchResult struct {
	Matched  bool      `json:"matched"`
	Opponent *Opponent `json:"opponent,omitempty"`
}

// Search finds a real opponent for a waiting entry, widening from a rank
// band to anyone waiting, and synthesizes a simulated opponent once the
// caller has waited past the threshold.
type Search struct {
	queue   store.QueueRepository
	builder *SimDeckBuilder
	cfg     SearchConfig
	now     func() time.Time
}

func NewSearch(queue store.QueueRepository, builder *SimDeckBuilder, cfg SearchConfig) *Search {
	if cfg.BandWidth <= 0 {
		cfg.BandWidth = 300
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 5
	}
	if cfg.WaitThreshold <= 0 {
		cfg.WaitThreshold = 30 * time.Second
	}
	return &Search{queue: queue, builder: builder, cfg: cfg, now: time.Now}
}

// FindOpponent runs one search pass for a waiting entry. It is invoked
// synchronously from join and from status polls; there is no background
// timer, so fallback latency is bounded by the client poll interval.
func (s *Search) FindOpponent(ctx context.Context, entry *models.QueueEntry) (*MatchResult, error) {
	waiting := s.now().Sub(entry.JoinedAt)

	// Rank-banded pass, oldest first
	candidates, err := s.queue.FindWaitingExcept(ctx, entry.ID, store.QueueFilter{
		HasBand:   true,
		MinPoints: entry.RankPoints - s.cfg.BandWidth,
		MaxPoints: entry.RankPoints + s.cfg.BandWidth,
		Limit:     s.cfg.BatchLimit,
	})
	if err != nil {
		return nil, err
	}

	// Widen: anyone waiting beats reporting no match
	if len(candidates) == 0 {
		candidates, err = s.queue.FindWaitingExcept(ctx, entry.ID, store.QueueFilter{Limit: 1})
		if err != nil {
			return nil, err
		}
	}

	if len(candidates) > 0 {
		return s.claim(ctx, entry, &candidates[0])
	}

	if waiting >= s.cfg.WaitThreshold {
		return s.synthesize(ctx, entry)
	}

	return &MatchResult{Matched: false}, nil
}

// claim pairs the entry with the candidate. Real candidates go through the
// atomic dual-row transition; a waiting simulated entry is a relaxed path
// where only the caller's row is contested, so two single-row updates are
// enough.
func (s *Search) claim(ctx context.Context, entry *models.QueueEntry, cand *models.QueueEntry) (*MatchResult, error) {
	if cand.UserID == s.cfg.SimulatedOpponentID {
		if err := s.queue.MarkMatched(ctx, entry.ID, cand.DeckID); err != nil {
			return nil, err
		}
		if err := s.queue.MarkMatched(ctx, cand.ID, entry.DeckID); err != nil {
			return nil, err
		}
	} else {
		err := s.queue.MatchPair(ctx, entry.ID, cand.ID)
		if errors.Is(err, store.ErrEntryNotWaiting) {
			// Lost the race for this candidate; caller keeps polling
			log.Printf("[MATCH] Entry %d lost pairing race for candidate %d", entry.ID, cand.ID)
			return &MatchResult{Matched: false}, nil
		}
		if err != nil {
			return nil, err
		}
	}

	log.Printf("[MATCH] Paired entry %d (user %d) with entry %d (user %d)",
		entry.ID, entry.UserID, cand.ID, cand.UserID)

	opp := &Opponent{
		UserID:      cand.UserID,
		EntryID:     cand.ID,
		DeckID:      cand.DeckID,
		RankPoints:  cand.RankPoints,
		RankTier:    rank.TierForPoints(cand.RankPoints),
		IsSimulated: cand.UserID == s.cfg.SimulatedOpponentID,
	}
	if opp.IsSimulated {
		opp.DisplayName = SimulatedOpponentName
	}
	return &MatchResult{Matched: true, Opponent: opp}, nil
}

// synthesize manufactures a simulated opponent: a generated deck and a
// queue entry born matched, ranked slightly below the caller so the
// opponent is rarely over-tuned.
func (s *Search) synthesize(ctx context.Context, entry *models.QueueEntry) (*MatchResult, error) {
	deck, err := s.builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build simulated deck: %w", err)
	}

	simPoints := SimulatedRankPoints(entry.RankPoints)
	simEntry, err := s.queue.InsertMatchedSimulated(ctx, s.cfg.SimulatedOpponentID, deck.ID, simPoints, entry.DeckID)
	if err != nil {
		return nil, err
	}
	if err := s.queue.MarkMatched(ctx, entry.ID, deck.ID); err != nil {
		return nil, err
	}

	log.Printf("[MATCH] Entry %d (user %d) matched with simulated opponent after wait (points=%d)",
		entry.ID, entry.UserID, simPoints)

	return &MatchResult{
		Matched: true,
		Opponent: &Opponent{
			UserID:      s.cfg.SimulatedOpponentID,
			EntryID:     simEntry.ID,
			DisplayName: SimulatedOpponentName,
			DeckID:      deck.ID,
			RankPoints:  simPoints,
			RankTier:    rank.TierForPoints(simPoints),
			IsSimulated: true,
		},
	}, nil
}

// SimulatedRankPoints derives a simulated opponent's rank snapshot from
// the caller's points: slightly below, never under the floor.
func SimulatedRankPoints(callerPoints int) int {
	points := callerPoints - simRankHandicap
	if points < simRankFloor {
		return simRankFloor
	}
	return points
}
