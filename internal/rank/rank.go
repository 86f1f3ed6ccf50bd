package rank

// Tier is a named rank band derived from rank points
type Tier string

const (
	TierBronze   Tier = "Bronze"
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
	TierDiamond  Tier = "Diamond"
	TierMaster   Tier = "Master"
)

// Result is the outcome of a match for one participant
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

// Canonical tier thresholds. Every tier derivation in the codebase goes
// through TierForPoints; there is exactly one table.
var tierBands = []struct {
	ceiling int
	tier    Tier
}{
	{100, TierBronze},
	{300, TierSilver},
	{600, TierGold},
	{1000, TierPlatinum},
	{1500, TierDiamond},
}

// Win reward shrinks and loss penalty steepens as tier rises.
// Draws are worth +5 at every tier.
var deltas = map[Tier]struct{ win, loss int }{
	TierBronze:   {25, -15},
	TierSilver:   {22, -18},
	TierGold:     {19, -21},
	TierPlatinum: {16, -24},
	TierDiamond:  {13, -27},
	TierMaster:   {10, -30},
}

const drawDelta = 5

// TierForPoints returns the tier implied by a point total
func TierForPoints(points int) Tier {
	for _, band := range tierBands {
		if points < band.ceiling {
			return band.tier
		}
	}
	return TierMaster
}

// PointDelta returns the signed point change for a result at the given
// tier. The tier must be the participant's tier before the match.
func PointDelta(result Result, tier Tier) int {
	d, ok := deltas[tier]
	if !ok {
		d = deltas[TierBronze]
	}
	switch result {
	case ResultWin:
		return d.win
	case ResultLoss:
		return d.loss
	default:
		return drawDelta
	}
}

// ApplyDelta applies a delta to a point total, clamping at zero
func ApplyDelta(points, delta int) int {
	next := points + delta
	if next < 0 {
		return 0
	}
	return next
}
