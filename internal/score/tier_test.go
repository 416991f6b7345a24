package score

import "testing"

func TestGetTier(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{-50, "Starting Journey"},
		{0, "Starting Journey"},
		{300, "Starting Journey"},
		{399, "Starting Journey"},
		{400, "Building Habits"},
		{549, "Building Habits"},
		{550, "Consistent Tracker"},
		{699, "Consistent Tracker"},
		{700, "Goal Crusher"},
		{799, "Goal Crusher"},
		{800, "FareFit Elite"},
		{850, "FareFit Elite"},
		{10000, "FareFit Elite"},
	}

	for _, tt := range tests {
		if got := GetTier(tt.score).Label; got != tt.want {
			t.Errorf("GetTier(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestScoreColorMatchesTier(t *testing.T) {
	for s := MinScore - 10; s <= MaxScore+10; s++ {
		if ScoreColor(s) != GetTier(s).Color {
			t.Fatalf("ScoreColor(%d) disagrees with GetTier", s)
		}
	}
}

func TestTiersPartitionRange(t *testing.T) {
	// Every score in range lands in exactly one band, and bands only go up.
	prev := GetTier(MinScore)
	changes := 0
	for s := MinScore + 1; s <= MaxScore; s++ {
		cur := GetTier(s)
		if cur.Band != prev.Band {
			if cur.Min != s {
				t.Errorf("band %s starts at %d, want %d", cur.Band, s, cur.Min)
			}
			if cur.Min <= prev.Min {
				t.Errorf("band %s does not rise above %s", cur.Band, prev.Band)
			}
			changes++
		}
		prev = cur
	}
	if changes != 4 {
		t.Errorf("band changes = %d, want 4", changes)
	}
}

func TestAllTiersLowestFirst(t *testing.T) {
	tiers := AllTiers()
	if len(tiers) != 5 {
		t.Fatalf("len(AllTiers()) = %d, want 5", len(tiers))
	}
	if tiers[0].Band != BandStarting || tiers[4].Band != BandElite {
		t.Errorf("AllTiers order = %s..%s, want starting..elite", tiers[0].Band, tiers[4].Band)
	}
}

func TestPointsToNext(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{350, 50},
		{400, 150},
		{699, 1},
		{799, 1},
		{800, 0},
		{850, 0},
	}
	for _, tt := range tests {
		if got := PointsToNext(tt.score); got != tt.want {
			t.Errorf("PointsToNext(%d) = %d, want %d", tt.score, got, tt.want)
		}
	}
}
