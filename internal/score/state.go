package score

import "time"

const (
	MinScore     = 300
	MaxScore     = 850
	InitialScore = 350

	// MilestoneInterval is the streak length, in days, between milestones.
	MilestoneInterval = 7
)

// State is a user's persistent FareScore.
type State struct {
	CurrentScore         int
	SmoothedScore        int
	StreakDays           int
	InactiveDays         int
	MealsLoggedThisMonth int
	WorkoutsThisMonth    int
	PenaltiesThisMonth   int
	LastUpdateDate       time.Time
	ConsistencyRate      float64
}

// NewState returns the state assigned to a freshly onboarded user.
func NewState(now time.Time) State {
	return State{
		CurrentScore:   InitialScore,
		SmoothedScore:  InitialScore,
		LastUpdateDate: now,
	}
}

// Clamp restricts score to [MinScore, MaxScore].
func Clamp(score int) int {
	switch {
	case score < MinScore:
		return MinScore
	case score > MaxScore:
		return MaxScore
	default:
		return score
	}
}

// Tier returns the tier of the current score.
func (s State) Tier() Tier {
	return GetTier(s.CurrentScore)
}

// ResetMonth zeroes the monthly counters.
func (s State) ResetMonth() State {
	s.MealsLoggedThisMonth = 0
	s.WorkoutsThisMonth = 0
	s.PenaltiesThisMonth = 0
	return s
}
