package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Queue entry statuses
const (
	QueueStatusWaiting = "waiting"
	QueueStatusMatched = "matched"
)

// Match types
const (
	MatchTypeRanked   = "ranked"
	MatchTypePractice = "practice"
)

// Card rarities
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Player represents a user in the system
type Player struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DisplayName  string    `db:"display_name" json:"display_name"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Card represents a collectible card
type Card struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Rarity    string    `db:"rarity" json:"rarity"`
	Power     int       `db:"power" json:"power"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Deck represents a playable 5-card deck owned by a player
type Deck struct {
	ID           int       `db:"id" json:"id"`
	OwnerID      int       `db:"owner_id" json:"owner_id"`
	Name         string    `db:"name" json:"name"`
	IsSimulated  bool      `db:"is_simulated" json:"is_simulated"`
	TotalMatches int       `db:"total_matches" json:"total_matches"`
	Wins         int       `db:"wins" json:"wins"`
	Losses       int       `db:"losses" json:"losses"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// QueueEntry represents a player waiting for (or matched into) a ranked game.
// At most one waiting entry exists per user at any time (enforced by a
// partial unique index).
type QueueEntry struct {
	ID             int           `db:"id" json:"id"`
	UserID         int           `db:"user_id" json:"user_id"`
	DeckID         int           `db:"deck_id" json:"deck_id"`
	Status         string        `db:"status" json:"status"`
	RankPoints     int           `db:"rank_points" json:"rank_points"`
	OpponentDeckID sql.NullInt64 `db:"opponent_deck_id" json:"opponent_deck_id,omitempty"`
	IsSimulated    bool          `db:"is_simulated" json:"is_simulated"`
	JoinedAt       time.Time     `db:"joined_at" json:"joined_at"`
}

// RankedStats holds a player's ranked progression. RankTier is always the
// tier implied by RankPoints; it is recomputed whenever points change.
type RankedStats struct {
	UserID            int          `db:"user_id" json:"user_id"`
	RankPoints        int          `db:"rank_points" json:"rank_points"`
	RankTier          string       `db:"rank_tier" json:"rank_tier"`
	Wins              int          `db:"wins" json:"wins"`
	Losses            int          `db:"losses" json:"losses"`
	Draws             int          `db:"draws" json:"draws"`
	TotalMatches      int          `db:"total_matches" json:"total_matches"`
	CurrentStreak     int          `db:"current_streak" json:"current_streak"`
	LongestStreak     int          `db:"longest_streak" json:"longest_streak"`
	HighestRankPoints int          `db:"highest_rank_points" json:"highest_rank_points"`
	HighestRankTier   string       `db:"highest_rank_tier" json:"highest_rank_tier"`
	LastMatchAt       sql.NullTime `db:"last_match_at" json:"last_match_at,omitempty"`
}

// PlayerStats holds cumulative combat statistics, independent of ranked tier
type PlayerStats struct {
	UserID         int          `db:"user_id" json:"user_id"`
	TotalMatches   int          `db:"total_matches" json:"total_matches"`
	Wins           int          `db:"wins" json:"wins"`
	Losses         int          `db:"losses" json:"losses"`
	Draws          int          `db:"draws" json:"draws"`
	CurrentStreak  int          `db:"current_streak" json:"current_streak"`
	LongestStreak  int          `db:"longest_streak" json:"longest_streak"`
	DamageDealt    int          `db:"damage_dealt" json:"damage_dealt"`
	DamageReceived int          `db:"damage_received" json:"damage_received"`
	CardsDefeated  int          `db:"cards_defeated" json:"cards_defeated"`
	TurnsPlayed    int          `db:"turns_played" json:"turns_played"`
	AbilitiesUsed  int          `db:"abilities_used" json:"abilities_used"`
	LastMatchAt    sql.NullTime `db:"last_match_at" json:"last_match_at,omitempty"`
}

// MatchHistory is one immutable record per completed match per participant
type MatchHistory struct {
	ID             string        `db:"id" json:"id"`
	UserID         int           `db:"user_id" json:"user_id"`
	OpponentID     sql.NullInt64 `db:"opponent_id" json:"opponent_id,omitempty"`
	MatchType      string        `db:"match_type" json:"match_type"`
	Result         string        `db:"result" json:"result"`
	DamageDealt    int           `db:"damage_dealt" json:"damage_dealt"`
	DamageReceived int           `db:"damage_received" json:"damage_received"`
	CardsDefeated  int           `db:"cards_defeated" json:"cards_defeated"`
	TurnsPlayed    int           `db:"turns_played" json:"turns_played"`
	AbilitiesUsed  int           `db:"abilities_used" json:"abilities_used"`
	StartedAt      time.Time     `db:"started_at" json:"started_at"`
	EndedAt        time.Time     `db:"ended_at" json:"ended_at"`
}

// SimulatedChoices stores the pre-committed choices for a simulated deck:
// an empty ban list and a random play order over positions 0..4. Consumed
// by the battle engine.
type SimulatedChoices struct {
	ID            string        `db:"id" json:"id"`
	DeckID        int           `db:"deck_id" json:"deck_id"`
	BannedCardIDs pq.Int64Array `db:"banned_card_ids" json:"banned_card_ids"`
	PlayOrder     pq.Int64Array `db:"play_order" json:"play_order"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}
