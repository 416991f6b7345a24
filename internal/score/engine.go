package score

import "time"

// CalculateScoreChange returns the score delta for a single action.
func CalculateScoreChange(action Action, state State) int {
	if action.Value != nil {
		return *action.Value
	}
	if action.Type == ActionStreakMilestone && IsMilestone(state.StreakDays) {
		return ActionStreakMilestone.BaseDelta()
	}
	return action.Type.BaseDelta()
}

// IsMilestone reports whether a streak of the given length lands on a
// milestone.
func IsMilestone(streakDays int) bool {
	return streakDays > 0 && streakDays%MilestoneInterval == 0
}

// UpdateDailyScore applies a batch of actions to state. The deltas are summed
// before clamping, so the result does not depend on action order.
func UpdateDailyScore(state State, actions []Action, now time.Time) State {
	next := state
	total := 0
	for _, a := range actions {
		total += CalculateScoreChange(a, state)
		switch {
		case a.Type == ActionMealLogged:
			next.MealsLoggedThisMonth++
		case a.Type == ActionWorkoutCompleted:
			next.WorkoutsThisMonth++
		case a.Type.IsPenalty():
			next.PenaltiesThisMonth++
		}
	}
	next.CurrentScore = Clamp(state.CurrentScore + total)
	next.LastUpdateDate = now
	return next
}

// ApplyWeeklySmoothing blends the previous displayed score with the new one
// at 90/10, rounds half up and clamps the result.
func ApplyWeeklySmoothing(oldScore, newScore int) int {
	// round((9*old + new) / 10) in integer arithmetic.
	return Clamp(floorDiv(9*oldScore+newScore+5, 10))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
