package rank

import "testing"

func TestTierForPointsCanonicalTable(t *testing.T) {
	cases := []struct {
		points int
		want   Tier
	}{
		{0, TierBronze},
		{99, TierBronze},
		{100, TierSilver},
		{299, TierSilver},
		{300, TierGold},
		{599, TierGold},
		{600, TierPlatinum},
		{999, TierPlatinum},
		{1000, TierDiamond},
		{1499, TierDiamond},
		{1500, TierMaster},
		{2999, TierMaster},
		{3000, TierMaster},
	}
	for _, c := range cases {
		if got := TierForPoints(c.points); got != c.want {
			t.Errorf("TierForPoints(%d) = %s, want %s", c.points, got, c.want)
		}
	}
}

func TestPointDeltaShrinksWinAndSteepensLoss(t *testing.T) {
	order := []Tier{TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond, TierMaster}

	prevWin := 1000
	prevLoss := 0
	for _, tier := range order {
		win := PointDelta(ResultWin, tier)
		loss := PointDelta(ResultLoss, tier)
		if win <= 0 {
			t.Errorf("win delta at %s should be positive, got %d", tier, win)
		}
		if loss >= 0 {
			t.Errorf("loss delta at %s should be negative, got %d", tier, loss)
		}
		if win > prevWin {
			t.Errorf("win delta at %s (%d) should not exceed previous tier's (%d)", tier, win, prevWin)
		}
		if loss > prevLoss && tier != TierBronze {
			t.Errorf("loss delta at %s (%d) should not be milder than previous tier's (%d)", tier, loss, prevLoss)
		}
		prevWin, prevLoss = win, loss
	}

	if got := PointDelta(ResultWin, TierBronze); got != 25 {
		t.Errorf("Bronze win delta = %d, want 25", got)
	}
	if got := PointDelta(ResultLoss, TierBronze); got != -15 {
		t.Errorf("Bronze loss delta = %d, want -15", got)
	}
	if got := PointDelta(ResultWin, TierMaster); got != 10 {
		t.Errorf("Master win delta = %d, want 10", got)
	}
	if got := PointDelta(ResultLoss, TierMaster); got != -30 {
		t.Errorf("Master loss delta = %d, want -30", got)
	}
}

func TestPointDeltaDrawIsFlat(t *testing.T) {
	for _, tier := range []Tier{TierBronze, TierGold, TierMaster} {
		if got := PointDelta(ResultDraw, tier); got != 5 {
			t.Errorf("draw delta at %s = %d, want 5", tier, got)
		}
	}
}

func TestApplyDeltaClampsAtZero(t *testing.T) {
	if got := ApplyDelta(10, -15); got != 0 {
		t.Errorf("ApplyDelta(10, -15) = %d, want 0", got)
	}
	if got := ApplyDelta(0, -30); got != 0 {
		t.Errorf("ApplyDelta(0, -30) = %d, want 0", got)
	}
	if got := ApplyDelta(100, 25); got != 125 {
		t.Errorf("ApplyDelta(100, 25) = %d, want 125", got)
	}
}
