package score

// Band identifies one of the five FareScore tiers.
type Band string

const (
	BandStarting Band = "starting"
	BandHabits   Band = "habits"
	BandTracker  Band = "tracker"
	BandCrusher  Band = "crusher"
	BandElite    Band = "elite"
)

// Tier is the classification of a score into a band.
type Tier struct {
	Band        Band
	Label       string
	Description string
	Color       string
	Min         int
}

// bands is ordered highest-first. The last entry catches everything below 400,
// including out-of-range scores.
var bands = []Tier{
	{BandElite, "FareFit Elite", "Top-tier consistency across meals, training and recovery.", "#9B59B6", 800},
	{BandCrusher, "Goal Crusher", "Hitting targets most days of the week.", "#27AE60", 700},
	{BandTracker, "Consistent Tracker", "Logging reliably and building momentum.", "#2980B9", 550},
	{BandHabits, "Building Habits", "The routine is starting to stick.", "#F39C12", 400},
	{BandStarting, "Starting Journey", "Every log counts. Keep showing up.", "#E74C3C", MinScore},
}

// GetTier returns the tier for a score. Scores below the floor map to
// Starting Journey.
func GetTier(score int) Tier {
	for _, t := range bands {
		if score >= t.Min {
			return t
		}
	}
	return bands[len(bands)-1]
}

// ScoreColor returns the display color of the tier containing score.
func ScoreColor(score int) string {
	return GetTier(score).Color
}

// AllTiers returns all tiers from lowest to highest.
func AllTiers() []Tier {
	out := make([]Tier, len(bands))
	for i := range bands {
		out[len(bands)-1-i] = bands[i]
	}
	return out
}

// NextTier returns the tier above the one containing score, or false when
// score is already in the top band.
func NextTier(score int) (Tier, bool) {
	current := GetTier(score)
	for i, t := range bands {
		if t.Band == current.Band {
			if i == 0 {
				return Tier{}, false
			}
			return bands[i-1], true
		}
	}
	return Tier{}, false
}

// PointsToNext returns how many points separate score from the next tier.
// Zero means score is in the top band.
func PointsToNext(score int) int {
	next, ok := NextTier(score)
	if !ok {
		return 0
	}
	return next.Min - score
}
