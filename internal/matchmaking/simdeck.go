package matchmaking

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/cardarena/backend/internal/models"
	"github.com/cardarena/backend/internal/store"
)

// SimDeckConfig tunes the simulated deck builder pools
type SimDeckConfig struct {
	SimulatedOpponentID int
	DeckSize            int
	LegendaryPoolSize   int
	CardPoolSize        int
}

// SimDeckBuilder constructs synthetic opponent decks from existing public
// cards. The resulting deck is an ordinary deck row owned by the sentinel
// simulated player, so downstream battle logic needs no special-casing.
type SimDeckBuilder struct {
	decks store.DeckRepository
	cfg   SimDeckConfig
}

func NewSimDeckBuilder(decks store.DeckRepository, cfg SimDeckConfig) *SimDeckBuilder {
	if cfg.DeckSize <= 0 {
		cfg.DeckSize = 5
	}
	if cfg.LegendaryPoolSize <= 0 {
		cfg.LegendaryPoolSize = 20
	}
	if cfg.CardPoolSize <= 0 {
		cfg.CardPoolSize = 50
	}
	return &SimDeckBuilder{decks: decks, cfg: cfg}
}

// Build assembles and persists a simulated deck with a fixed rarity
// distribution: 1 legendary, 1 epic, 2 rare, 1 common. Gaps left by empty
// rarity pools are filled from a shuffled union of all pools, and if the
// pools are unusable altogether the deck falls back to random active cards.
func (b *SimDeckBuilder) Build(ctx context.Context) (*models.Deck, error) {
	legendary, err := b.pool(ctx, models.RarityLegendary, b.cfg.LegendaryPoolSize)
	if err != nil {
		return nil, err
	}
	epic, err := b.pool(ctx, models.RarityEpic, b.cfg.CardPoolSize)
	if err != nil {
		return nil, err
	}
	rare, err := b.pool(ctx, models.RarityRare, b.cfg.CardPoolSize)
	if err != nil {
		return nil, err
	}
	common, err := b.pool(ctx, models.RarityCommon, b.cfg.CardPoolSize)
	if err != nil {
		return nil, err
	}

	chosen := make([]models.Card, 0, b.cfg.DeckSize)
	chosen = appendPicks(chosen, legendary, 1)
	chosen = appendPicks(chosen, epic, 1)
	chosen = appendPicks(chosen, rare, 2)
	chosen = appendPicks(chosen, common, 1)

	if len(chosen) < b.cfg.DeckSize {
		union := make([]models.Card, 0, len(legendary)+len(epic)+len(rare)+len(common))
		union = append(union, legendary...)
		union = append(union, epic...)
		union = append(union, rare...)
		union = append(union, common...)
		rand.Shuffle(len(union), func(i, j int) { union[i], union[j] = union[j], union[i] })
		chosen = fillUnique(chosen, union, b.cfg.DeckSize)
	}

	if len(chosen) < b.cfg.DeckSize {
		// Pools too thin: fall back to random active cards of any rarity
		all, err := b.decks.ActiveCards(ctx, b.cfg.CardPoolSize*4)
		if err != nil {
			return nil, fmt.Errorf("load fallback card pool: %w", err)
		}
		rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
		chosen = fillUnique(chosen[:0], all, b.cfg.DeckSize)
		log.Printf("[SIM] Rarity pools exhausted, using %d random active cards", len(chosen))
	}

	if len(chosen) == 0 {
		return nil, fmt.Errorf("no active cards available for simulated deck")
	}

	ids := make([]int, len(chosen))
	for i, c := range chosen {
		ids[i] = c.ID
	}

	deck, err := b.decks.CreateDeck(ctx, b.cfg.SimulatedOpponentID, "Simulated Deck", true, ids)
	if err != nil {
		return nil, fmt.Errorf("persist simulated deck: %w", err)
	}

	// The choices record (no bans, random play order) is best-effort: the
	// battle engine falls back to defaults when it is missing.
	b.saveChoices(ctx, deck.ID, len(ids))

	return deck, nil
}

func (b *SimDeckBuilder) pool(ctx context.Context, rarity string, limit int) ([]models.Card, error) {
	cards, err := b.decks.CardsByRarity(ctx, rarity, limit)
	if err != nil {
		return nil, fmt.Errorf("load %s pool: %w", rarity, err)
	}
	rand.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	return cards, nil
}

func (b *SimDeckBuilder) saveChoices(ctx context.Context, deckID, deckSize int) {
	order := rand.Perm(deckSize)
	playOrder := make(pq.Int64Array, deckSize)
	for i, p := range order {
		playOrder[i] = int64(p)
	}
	choices := &models.SimulatedChoices{
		ID:            uuid.NewString(),
		DeckID:        deckID,
		BannedCardIDs: pq.Int64Array{},
		PlayOrder:     playOrder,
	}
	if err := b.decks.SaveSimulatedChoices(ctx, choices); err != nil {
		log.Printf("[SIM] Failed to save simulated choices for deck %d: %v", deckID, err)
	}
}

func appendPicks(chosen, pool []models.Card, n int) []models.Card {
	for i := 0; i < n && i < len(pool); i++ {
		chosen = append(chosen, pool[i])
	}
	return chosen
}

// fillUnique appends cards from candidates until target size is reached,
// skipping ids already chosen.
func fillUnique(chosen, candidates []models.Card, target int) []models.Card {
	seen := make(map[int]bool, len(chosen))
	for _, c := range chosen {
		seen[c.ID] = true
	}
	for _, c := range candidates {
		if len(chosen) >= target {
			break
		}
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		chosen = append(chosen, c)
	}
	return chosen
}
