package matchmaking

import (
	"context"
	"errors"
	"testing"

	"github.com/cardarena/backend/internal/models"
)

func newTestBuilder(decks *memDeckRepo) *SimDeckBuilder {
	return NewSimDeckBuilder(decks, SimDeckConfig{SimulatedOpponentID: testSimID, DeckSize: 5})
}

func rarityCounts(t *testing.T, decks *memDeckRepo, deckID int) map[string]int {
	t.Helper()
	byID := make(map[int]models.Card)
	for _, c := range decks.cards {
		byID[c.ID] = c
	}
	counts := make(map[string]int)
	seen := make(map[int]bool)
	for _, id := range decks.deckCards[deckID] {
		if seen[id] {
			t.Fatalf("deck %d contains duplicate card %d", deckID, id)
		}
		seen[id] = true
		counts[byID[id].Rarity]++
	}
	return counts
}

func TestBuildUsesFixedRarityDistribution(t *testing.T) {
	decks := newMemDeckRepo()
	decks.addCards(models.RarityLegendary, 10)
	decks.addCards(models.RarityEpic, 10)
	decks.addCards(models.RarityRare, 10)
	decks.addCards(models.RarityCommon, 10)
	builder := newTestBuilder(decks)

	deck, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if deck.OwnerID != testSimID || !deck.IsSimulated {
		t.Errorf("deck should be a simulated deck owned by the sentinel, got %+v", deck)
	}

	counts := rarityCounts(t, decks, deck.ID)
	want := map[string]int{
		models.RarityLegendary: 1,
		models.RarityEpic:      1,
		models.RarityRare:      2,
		models.RarityCommon:    1,
	}
	for rarity, n := range want {
		if counts[rarity] != n {
			t.Errorf("expected %d %s cards, got %d", n, rarity, counts[rarity])
		}
	}
}

func TestBuildFillsGapsFromOtherRarities(t *testing.T) {
	decks := newMemDeckRepo()
	// No legendaries or epics at all
	decks.addCards(models.RarityRare, 10)
	decks.addCards(models.RarityCommon, 10)
	builder := newTestBuilder(decks)

	deck, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	counts := rarityCounts(t, decks, deck.ID)
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != 5 {
		t.Errorf("expected a full 5-card deck despite empty pools, got %d cards", total)
	}
	if counts[models.RarityLegendary] != 0 || counts[models.RarityEpic] != 0 {
		t.Errorf("no legendary/epic cards exist, none should appear: %v", counts)
	}
}

func TestBuildFallsBackToRandomActiveCards(t *testing.T) {
	decks := newMemDeckRepo()
	decks.addCards(models.RarityCommon, 3) // fewer than a full deck across all pools
	builder := newTestBuilder(decks)

	deck, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := len(decks.deckCards[deck.ID]); got != 3 {
		t.Errorf("expected every available card to be used, got %d", got)
	}
}

func TestBuildFailsWithNoActiveCards(t *testing.T) {
	builder := newTestBuilder(newMemDeckRepo())
	if _, err := builder.Build(context.Background()); err == nil {
		t.Fatal("expected an error when no cards exist at all")
	}
}

func TestBuildWritesChoicesRecord(t *testing.T) {
	decks := newMemDeckRepo()
	decks.addCards(models.RarityLegendary, 5)
	decks.addCards(models.RarityEpic, 5)
	decks.addCards(models.RarityRare, 5)
	decks.addCards(models.RarityCommon, 5)
	builder := newTestBuilder(decks)

	deck, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(decks.choices) != 1 {
		t.Fatalf("expected one choices record, got %d", len(decks.choices))
	}
	choices := decks.choices[0]
	if choices.DeckID != deck.ID {
		t.Errorf("choices should reference deck %d, got %d", deck.ID, choices.DeckID)
	}
	if len(choices.BannedCardIDs) != 0 {
		t.Errorf("simulated opponent bans nothing, got %v", choices.BannedCardIDs)
	}
	if len(choices.PlayOrder) != 5 {
		t.Fatalf("play order should cover 5 positions, got %v", choices.PlayOrder)
	}
	seen := make(map[int64]bool)
	for _, p := range choices.PlayOrder {
		if p < 0 || p > 4 || seen[p] {
			t.Fatalf("play order must be a permutation of 0..4, got %v", choices.PlayOrder)
		}
		seen[p] = true
	}
}

func TestBuildSwallowsChoicesFailure(t *testing.T) {
	decks := newMemDeckRepo()
	decks.addCards(models.RarityCommon, 10)
	decks.choiceErr = errors.New("choices table unavailable")
	builder := newTestBuilder(decks)

	if _, err := builder.Build(context.Background()); err != nil {
		t.Fatalf("choices write is best-effort, Build must still succeed: %v", err)
	}
}
