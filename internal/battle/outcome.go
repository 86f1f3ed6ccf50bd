package battle

import "time"

// Event is one entry in the battle engine's event log
type Event struct {
	Type      string    `json:"type"`
	Actor     int       `json:"actor,omitempty"`
	CardID    int       `json:"card_id,omitempty"`
	Value     int       `json:"value,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CardResult is a card's final state in a completed battle
type CardResult struct {
	CardID   int  `json:"card_id"`
	Defeated bool `json:"defeated"`
}

// PlayerOutcome holds one participant's aggregate counters
type PlayerOutcome struct {
	UserID         int          `json:"user_id"`
	DeckID         int          `json:"deck_id"`
	Cards          []CardResult `json:"cards"`
	DamageDealt    int          `json:"damage_dealt"`
	DamageReceived int          `json:"damage_received"`
	AbilitiesUsed  int          `json:"abilities_used"`
}

// Outcome is the battle engine's output for a completed match. This
// service only reads it; the engine itself is an external collaborator.
type Outcome struct {
	MatchID   string          `json:"match_id"`
	MatchType string          `json:"match_type"`
	WinnerID  int             `json:"winner_id"` // 0 means draw
	Turns     int             `json:"turns"`
	Events    []Event         `json:"events"`
	Players   []PlayerOutcome `json:"players"`
}

// StartedAt is the first event's timestamp, or the zero time when the
// event log is empty.
func (o *Outcome) StartedAt() time.Time {
	if len(o.Events) == 0 {
		return time.Time{}
	}
	return o.Events[0].Timestamp
}

// EndedAt is the last event's timestamp
func (o *Outcome) EndedAt() time.Time {
	if len(o.Events) == 0 {
		return time.Time{}
	}
	return o.Events[len(o.Events)-1].Timestamp
}

// CardsDefeated counts the opponent cards this participant defeated. The
// engine records defeat flags on the opposing side's card list.
func (o *Outcome) CardsDefeated(userID int) int {
	count := 0
	for _, p := range o.Players {
		if p.UserID == userID {
			continue
		}
		for _, c := range p.Cards {
			if c.Defeated {
				count++
			}
		}
	}
	return count
}
