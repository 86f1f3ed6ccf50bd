package matchmaking

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cardarena/backend/internal/models"
	"github.com/cardarena/backend/internal/rank"
	"github.com/cardarena/backend/internal/store"
)

// In-memory repository fakes. They implement the store interfaces so the
// engine under test never touches a database.

type memQueueRepo struct {
	mu      sync.Mutex
	nextID  int
	entries map[int]*models.QueueEntry
	pairErr error // forced MatchPair result, for race tests
}

func newMemQueueRepo() *memQueueRepo {
	return &memQueueRepo{nextID: 1, entries: make(map[int]*models.QueueEntry)}
}

func (r *memQueueRepo) insert(e models.QueueEntry) *models.QueueEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID
	r.nextID++
	if e.JoinedAt.IsZero() {
		e.JoinedAt = time.Now()
	}
	r.entries[e.ID] = &e
	return &e
}

func (r *memQueueRepo) InsertWaiting(ctx context.Context, userID, deckID, rankPoints int) (*models.QueueEntry, error) {
	return r.insert(models.QueueEntry{
		UserID:     userID,
		DeckID:     deckID,
		Status:     models.QueueStatusWaiting,
		RankPoints: rankPoints,
	}), nil
}

func (r *memQueueRepo) InsertMatchedSimulated(ctx context.Context, userID, deckID, rankPoints, opponentDeckID int) (*models.QueueEntry, error) {
	return r.insert(models.QueueEntry{
		UserID:         userID,
		DeckID:         deckID,
		Status:         models.QueueStatusMatched,
		RankPoints:     rankPoints,
		OpponentDeckID: sql.NullInt64{Int64: int64(opponentDeckID), Valid: true},
		IsSimulated:    true,
	}), nil
}

func (r *memQueueRepo) FindWaitingByUser(ctx context.Context, userID int) (*models.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.UserID == userID && e.Status == models.QueueStatusWaiting {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memQueueRepo) FindWaitingExcept(ctx context.Context, selfEntryID int, f store.QueueFilter) ([]models.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.QueueEntry
	for _, e := range r.entries {
		if e.ID == selfEntryID || e.Status != models.QueueStatusWaiting {
			continue
		}
		if f.HasBand && (e.RankPoints < f.MinPoints || e.RankPoints > f.MaxPoints) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	limit := f.Limit
	if limit <= 0 {
		limit = 1
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memQueueRepo) MarkMatched(ctx context.Context, entryID, opponentDeckID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[entryID]
	if !ok {
		return fmt.Errorf("entry %d missing", entryID)
	}
	e.Status = models.QueueStatusMatched
	e.OpponentDeckID = sql.NullInt64{Int64: int64(opponentDeckID), Valid: true}
	return nil
}

func (r *memQueueRepo) MatchPair(ctx context.Context, idA, idB int) error {
	if r.pairErr != nil {
		return r.pairErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, okA := r.entries[idA]
	b, okB := r.entries[idB]
	if !okA || !okB || a.Status != models.QueueStatusWaiting || b.Status != models.QueueStatusWaiting {
		return store.ErrEntryNotWaiting
	}
	a.Status = models.QueueStatusMatched
	a.OpponentDeckID = sql.NullInt64{Int64: int64(b.DeckID), Valid: true}
	b.Status = models.QueueStatusMatched
	b.OpponentDeckID = sql.NullInt64{Int64: int64(a.DeckID), Valid: true}
	return nil
}

func (r *memQueueRepo) DeleteEntry(ctx context.Context, entryID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, entryID)
	return nil
}

func (r *memQueueRepo) GetByID(ctx context.Context, entryID int) (*models.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[entryID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *memQueueRepo) waitingCount(userID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.entries {
		if e.UserID == userID && e.Status == models.QueueStatusWaiting {
			count++
		}
	}
	return count
}

func (r *memQueueRepo) backdate(entryID int, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[entryID]; ok {
		e.JoinedAt = e.JoinedAt.Add(-d)
	}
}

type memDeckRepo struct {
	mu        sync.Mutex
	nextID    int
	decks     map[int]*models.Deck
	deckCards map[int][]int
	cards     []models.Card
	choices   []*models.SimulatedChoices
	choiceErr error
}

func newMemDeckRepo() *memDeckRepo {
	return &memDeckRepo{nextID: 1, decks: make(map[int]*models.Deck), deckCards: make(map[int][]int)}
}

func (r *memDeckRepo) addDeck(ownerID int, cardIDs []int) *models.Deck {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := &models.Deck{ID: r.nextID, OwnerID: ownerID, CreatedAt: time.Now()}
	r.nextID++
	r.decks[d.ID] = d
	r.deckCards[d.ID] = cardIDs
	cp := *d
	return &cp
}

func (r *memDeckRepo) addCards(rarity string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < n; i++ {
		r.cards = append(r.cards, models.Card{
			ID:        len(r.cards) + 1,
			Name:      fmt.Sprintf("%s-%d", rarity, i),
			Rarity:    rarity,
			IsActive:  true,
			CreatedAt: time.Now(),
		})
	}
}

func (r *memDeckRepo) GetByID(ctx context.Context, deckID int) (*models.Deck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.decks[deckID]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *memDeckRepo) GetByIDAndOwner(ctx context.Context, deckID, ownerID int) (*models.Deck, error) {
	d, _ := r.GetByID(ctx, deckID)
	if d == nil || d.OwnerID != ownerID {
		return nil, nil
	}
	return d, nil
}

func (r *memDeckRepo) CardCount(ctx context.Context, deckID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.deckCards[deckID]), nil
}

func (r *memDeckRepo) CardsByRarity(ctx context.Context, rarity string, limit int) ([]models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Card
	for _, c := range r.cards {
		if c.Rarity == rarity && c.IsActive {
			out = append(out, c)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *memDeckRepo) ActiveCards(ctx context.Context, limit int) ([]models.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Card
	for _, c := range r.cards {
		if c.IsActive {
			out = append(out, c)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *memDeckRepo) CreateDeck(ctx context.Context, ownerID int, name string, simulated bool, cardIDs []int) (*models.Deck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := &models.Deck{ID: r.nextID, OwnerID: ownerID, Name: name, IsSimulated: simulated, CreatedAt: time.Now()}
	r.nextID++
	r.decks[d.ID] = d
	r.deckCards[d.ID] = append([]int(nil), cardIDs...)
	cp := *d
	return &cp, nil
}

func (r *memDeckRepo) SaveSimulatedChoices(ctx context.Context, c *models.SimulatedChoices) error {
	if r.choiceErr != nil {
		return r.choiceErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.choices = append(r.choices, c)
	return nil
}

func (r *memDeckRepo) BumpCounters(ctx context.Context, deckID int, result rank.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.decks[deckID]
	if !ok {
		return fmt.Errorf("deck %d missing", deckID)
	}
	d.TotalMatches++
	switch result {
	case rank.ResultWin:
		d.Wins++
	case rank.ResultLoss:
		d.Losses++
	}
	return nil
}

type memRankedRepo struct {
	mu    sync.Mutex
	stats map[int]*models.RankedStats
}

func newMemRankedRepo() *memRankedRepo {
	return &memRankedRepo{stats: make(map[int]*models.RankedStats)}
}

func (r *memRankedRepo) GetOrCreate(ctx context.Context, userID int) (*models.RankedStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stats[userID]; ok {
		cp := *s
		return &cp, nil
	}
	s := &models.RankedStats{
		UserID:            userID,
		RankPoints:        1000,
		RankTier:          string(rank.TierForPoints(1000)),
		HighestRankPoints: 1000,
		HighestRankTier:   string(rank.TierForPoints(1000)),
	}
	r.stats[userID] = s
	cp := *s
	return &cp, nil
}

func (r *memRankedRepo) Get(ctx context.Context, userID int) (*models.RankedStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stats[userID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memRankedRepo) Update(ctx context.Context, s *models.RankedStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.stats[s.UserID] = &cp
	return nil
}

func (r *memRankedRepo) setPoints(userID, points int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats[userID] = &models.RankedStats{
		UserID:     userID,
		RankPoints: points,
		RankTier:   string(rank.TierForPoints(points)),
	}
}

type memPlayerRepo struct {
	mu      sync.Mutex
	names   map[int]string
	nameErr error
}

func newMemPlayerRepo() *memPlayerRepo {
	return &memPlayerRepo{names: make(map[int]string)}
}

func (r *memPlayerRepo) Create(ctx context.Context, email, passwordHash, displayName string) (*models.Player, error) {
	return nil, fmt.Errorf("not implemented in fake")
}

func (r *memPlayerRepo) GetByEmail(ctx context.Context, email string) (*models.Player, error) {
	return nil, nil
}

func (r *memPlayerRepo) GetByID(ctx context.Context, userID int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.names[userID]
	if !ok {
		return nil, nil
	}
	return &models.Player{ID: userID, DisplayName: name}, nil
}

func (r *memPlayerRepo) DisplayName(ctx context.Context, userID int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameErr != nil {
		return "", r.nameErr
	}
	name, ok := r.names[userID]
	if !ok {
		return "", fmt.Errorf("player %d not found", userID)
	}
	return name, nil
}
