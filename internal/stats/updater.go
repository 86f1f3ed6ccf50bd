package stats

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/cardarena/backend/internal/battle"
	"github.com/cardarena/backend/internal/models"
	"github.com/cardarena/backend/internal/rank"
	"github.com/cardarena/backend/internal/store"
)

// Participant is one side's result plus aggregate counters for a
// completed match.
type Participant struct {
	UserID         int
	OpponentID     int // 0 for practice against no one / the sentinel
	DeckID         int
	Result         rank.Result
	DamageDealt    int
	DamageReceived int
	CardsDefeated  int
	TurnsPlayed    int
	AbilitiesUsed  int
}

// Updater applies post-match aggregation: cumulative counters, streaks,
// rank points and tier, match history, and deck counters.
type Updater struct {
	ranked      store.RankedStatsRepository
	playerStats store.PlayerStatsRepository
	history     store.MatchHistoryRepository
	decks       store.DeckRepository
	simID       int
}

func NewUpdater(ranked store.RankedStatsRepository, playerStats store.PlayerStatsRepository,
	history store.MatchHistoryRepository, decks store.DeckRepository, simulatedOpponentID int) *Updater {
	return &Updater{
		ranked:      ranked,
		playerStats: playerStats,
		history:     history,
		decks:       decks,
		simID:       simulatedOpponentID,
	}
}

// ApplyOutcome updates both participants from a battle outcome. Each
// participant is its own update; a failure on one side is logged and does
// not roll back or block the other ("never block the player who already
// won"). The sentinel simulated player accrues no stats.
func (u *Updater) ApplyOutcome(ctx context.Context, outcome *battle.Outcome) error {
	startedAt := outcome.StartedAt()
	endedAt := outcome.EndedAt()

	var firstErr error
	for _, po := range outcome.Players {
		if po.UserID == u.simID {
			continue
		}
		p := participantFromOutcome(outcome, po)
		var err error
		if outcome.MatchType == models.MatchTypePractice {
			err = u.ApplyPractice(ctx, p, startedAt, endedAt)
		} else {
			err = u.ApplyRanked(ctx, p, startedAt, endedAt)
		}
		if err != nil {
			log.Printf("[STATS] Failed to update stats for user %d: %v", po.UserID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// ApplyRanked updates a participant's ranked stats: counters, streak, and
// rank points computed from the pre-match tier, clamped at zero, with the
// tier recomputed from the new total.
func (u *Updater) ApplyRanked(ctx context.Context, p Participant, startedAt, endedAt time.Time) error {
	s, err := u.ranked.GetOrCreate(ctx, p.UserID)
	if err != nil {
		return err
	}

	s.TotalMatches++
	switch p.Result {
	case rank.ResultWin:
		s.Wins++
		s.CurrentStreak++
		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
	case rank.ResultLoss:
		s.Losses++
		s.CurrentStreak = 0
	case rank.ResultDraw:
		s.Draws++
	}

	// Delta uses the tier held before this match
	currentTier := rank.TierForPoints(s.RankPoints)
	delta := rank.PointDelta(p.Result, currentTier)
	s.RankPoints = rank.ApplyDelta(s.RankPoints, delta)
	s.RankTier = string(rank.TierForPoints(s.RankPoints))
	if s.RankPoints > s.HighestRankPoints {
		s.HighestRankPoints = s.RankPoints
		s.HighestRankTier = s.RankTier
	}
	s.LastMatchAt = sql.NullTime{Time: endedAt, Valid: true}

	if err := u.ranked.Update(ctx, s); err != nil {
		return err
	}
	log.Printf("[STATS] User %d: %s, %+d points -> %d (%s)",
		p.UserID, p.Result, delta, s.RankPoints, s.RankTier)

	u.appendHistory(ctx, p, models.MatchTypeRanked, startedAt, endedAt)
	u.bumpDeck(ctx, p)
	return nil
}

// ApplyPractice updates a participant's cumulative combat stats only; no
// rank points or tier change.
func (u *Updater) ApplyPractice(ctx context.Context, p Participant, startedAt, endedAt time.Time) error {
	s, err := u.playerStats.GetOrCreate(ctx, p.UserID)
	if err != nil {
		return err
	}

	s.TotalMatches++
	switch p.Result {
	case rank.ResultWin:
		s.Wins++
		s.CurrentStreak++
		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
	case rank.ResultLoss:
		s.Losses++
		s.CurrentStreak = 0
	case rank.ResultDraw:
		s.Draws++
	}
	s.DamageDealt += p.DamageDealt
	s.DamageReceived += p.DamageReceived
	s.CardsDefeated += p.CardsDefeated
	s.TurnsPlayed += p.TurnsPlayed
	s.AbilitiesUsed += p.AbilitiesUsed
	s.LastMatchAt = sql.NullTime{Time: endedAt, Valid: true}

	if err := u.playerStats.Update(ctx, s); err != nil {
		return err
	}

	u.appendHistory(ctx, p, models.MatchTypePractice, startedAt, endedAt)
	u.bumpDeck(ctx, p)
	return nil
}

// appendHistory writes the immutable per-participant record. Best-effort
// relative to the stats update that already committed.
func (u *Updater) appendHistory(ctx context.Context, p Participant, matchType string, startedAt, endedAt time.Time) {
	record := &models.MatchHistory{
		ID:             uuid.NewString(),
		UserID:         p.UserID,
		MatchType:      matchType,
		Result:         string(p.Result),
		DamageDealt:    p.DamageDealt,
		DamageReceived: p.DamageReceived,
		CardsDefeated:  p.CardsDefeated,
		TurnsPlayed:    p.TurnsPlayed,
		AbilitiesUsed:  p.AbilitiesUsed,
		StartedAt:      startedAt,
		EndedAt:        endedAt,
	}
	if p.OpponentID != 0 {
		record.OpponentID = sql.NullInt64{Int64: int64(p.OpponentID), Valid: true}
	}
	if err := u.history.Insert(ctx, record); err != nil {
		log.Printf("[STATS] Failed to append match history for user %d: %v", p.UserID, err)
	}
}

// bumpDeck increments the deck's counters when the deck is known.
// Best-effort: a failure here never aborts the stats update.
func (u *Updater) bumpDeck(ctx context.Context, p Participant) {
	if p.DeckID == 0 {
		return
	}
	if err := u.decks.BumpCounters(ctx, p.DeckID, p.Result); err != nil {
		log.Printf("[STATS] Failed to bump counters for deck %d: %v", p.DeckID, err)
	}
}

func participantFromOutcome(outcome *battle.Outcome, po battle.PlayerOutcome) Participant {
	result := rank.ResultDraw
	if outcome.WinnerID == po.UserID {
		result = rank.ResultWin
	} else if outcome.WinnerID != 0 {
		result = rank.ResultLoss
	}

	opponentID := 0
	for _, other := range outcome.Players {
		if other.UserID != po.UserID {
			opponentID = other.UserID
		}
	}

	return Participant{
		UserID:         po.UserID,
		OpponentID:     opponentID,
		DeckID:         po.DeckID,
		Result:         result,
		DamageDealt:    po.DamageDealt,
		DamageReceived: po.DamageReceived,
		CardsDefeated:  outcome.CardsDefeated(po.UserID),
		TurnsPlayed:    outcome.Turns,
		AbilitiesUsed:  po.AbilitiesUsed,
	}
}
