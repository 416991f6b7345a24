package profile

import (
	"errors"
	"time"
)

var (
	// ErrAlreadyOnboarded is returned when a profile ID is already taken.
	ErrAlreadyOnboarded = errors.New("already onboarded")

	// ErrInvalidProfile is returned when onboarding input fails validation.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Sex selects the Mifflin-St Jeor constant.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ActivityLevel is the self-reported activity level.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// activityMultipliers maps each activity level to its TDEE multiplier.
var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

// Multiplier returns the TDEE multiplier and whether the level is known.
func (a ActivityLevel) Multiplier() (float64, bool) {
	m, ok := activityMultipliers[a]
	return m, ok
}

// GoalKind is the user's body-composition goal.
type GoalKind string

const (
	GoalLose     GoalKind = "lose"
	GoalMaintain GoalKind = "maintain"
	GoalGain     GoalKind = "gain"
)

// Profile is a user's body data and preferences.
type Profile struct {
	ID            string
	DisplayName   string
	Sex           Sex
	BirthYear     int
	HeightCM      float64
	WeightKG      float64
	ActivityLevel ActivityLevel
	Goal          GoalKind
	CreatedAt     time.Time
}

// Age returns the profile's age in whole years at now. Birthdays are not
// tracked, so the age is the year difference.
func (p Profile) Age(now time.Time) int {
	return now.Year() - p.BirthYear
}

// Goals are daily nutrition targets in kcal and grams.
type Goals struct {
	CalorieTarget float64
	ProteinTarget float64
	CarbTarget    float64
	FatTarget     float64
}

// OnboardInput describes a new user. Goals, when set, replace the
// suggested targets.
type OnboardInput struct {
	Profile
	Goals *Goals
}
