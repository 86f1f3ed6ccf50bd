package matchmaking

import "errors"

// Error taxonomy surfaced to callers. Store failures are wrapped with %w
// and propagate with their original message; everything else maps to one
// of these sentinels.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidDeck  = errors.New("invalid deck")
	ErrNotFound     = errors.New("not found")
)
