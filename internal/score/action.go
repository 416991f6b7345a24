package score

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned when an action name is not part of the
// closed action set.
var ErrUnknownAction = errors.New("unknown action type")

// ActionType identifies a scored user behavior.
type ActionType string

const (
	ActionMealLogged       ActionType = "meal_logged"
	ActionWorkoutCompleted ActionType = "workout_completed"
	ActionMacroTargetHit   ActionType = "macro_target_hit"
	ActionStreakMilestone  ActionType = "streak_milestone"
	ActionWeightStable     ActionType = "weight_stable"
	ActionSleepLogged      ActionType = "sleep_logged"
	ActionHydrationLogged  ActionType = "hydration_logged"
	ActionMissedDay        ActionType = "missed_day"
	ActionStreakBroken     ActionType = "streak_broken"
	ActionInactiveWeek     ActionType = "inactive_week"
	ActionDataManipulation ActionType = "data_manipulation"
	ActionMacroDeviation   ActionType = "macro_deviation"
)

type actionRule struct {
	delta   int
	penalty bool
}

// rules is the base delta table. penalty marks the actions counted in
// PenaltiesThisMonth; data_manipulation and macro_deviation lower the score
// without counting as penalties.
var rules = map[ActionType]actionRule{
	ActionMealLogged:       {delta: 1},
	ActionWorkoutCompleted: {delta: 2},
	ActionMacroTargetHit:   {delta: 3},
	ActionStreakMilestone:  {delta: 5},
	ActionWeightStable:     {delta: 2},
	ActionSleepLogged:      {delta: 1},
	ActionHydrationLogged:  {delta: 1},
	ActionMissedDay:        {delta: -2, penalty: true},
	ActionStreakBroken:     {delta: -5, penalty: true},
	ActionInactiveWeek:     {delta: -10, penalty: true},
	ActionDataManipulation: {delta: -15},
	ActionMacroDeviation:   {delta: -3},
}

// AllActionTypes returns every action type in table order.
func AllActionTypes() []ActionType {
	return []ActionType{
		ActionMealLogged, ActionWorkoutCompleted, ActionMacroTargetHit,
		ActionStreakMilestone, ActionWeightStable, ActionSleepLogged,
		ActionHydrationLogged, ActionMissedDay, ActionStreakBroken,
		ActionInactiveWeek, ActionDataManipulation, ActionMacroDeviation,
	}
}

// ParseActionType converts a user-supplied name into an ActionType.
func ParseActionType(s string) (ActionType, error) {
	t := ActionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return t, nil
}

// Valid reports whether t is part of the action table.
func (t ActionType) Valid() bool {
	_, ok := rules[t]
	return ok
}

// BaseDelta returns the table delta for t, or 0 for an unknown type.
func (t ActionType) BaseDelta() int {
	return rules[t].delta
}

// IsPenalty reports whether t counts toward PenaltiesThisMonth.
func (t ActionType) IsPenalty() bool {
	return rules[t].penalty
}

// Action is a single scored event. A non-nil Value replaces the table delta.
type Action struct {
	Type        ActionType
	Value       *int
	Description string
}

// NewAction returns an action scored from the delta table.
func NewAction(t ActionType) Action {
	return Action{Type: t}
}

// WithValue returns an action whose delta is exactly v.
func WithValue(t ActionType, v int) Action {
	return Action{Type: t, Value: &v}
}
