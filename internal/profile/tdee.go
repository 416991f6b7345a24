package profile

import (
	"fmt"
	"math"
	"time"
)

const (
	kcalPerGramProtein = 4
	kcalPerGramCarb    = 4
	kcalPerGramFat     = 9

	fatShare = 0.25
)

var goalAdjustment = map[GoalKind]float64{
	GoalLose:     -500,
	GoalMaintain: 0,
	GoalGain:     300,
}

// Validate checks the fields SuggestGoals relies on.
func (p Profile) Validate(now time.Time) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidProfile)
	case p.DisplayName == "":
		return fmt.Errorf("%w: display name is required", ErrInvalidProfile)
	case p.Sex != SexMale && p.Sex != SexFemale:
		return fmt.Errorf("%w: sex must be %q or %q", ErrInvalidProfile, SexMale, SexFemale)
	case p.HeightCM <= 0 || p.WeightKG <= 0:
		return fmt.Errorf("%w: height and weight must be positive", ErrInvalidProfile)
	}
	if age := p.Age(now); age < 13 || age > 120 {
		return fmt.Errorf("%w: implausible birth year %d", ErrInvalidProfile, p.BirthYear)
	}
	if _, ok := p.ActivityLevel.Multiplier(); !ok {
		return fmt.Errorf("%w: unknown activity level %q", ErrInvalidProfile, p.ActivityLevel)
	}
	if _, ok := goalAdjustment[p.Goal]; !ok {
		return fmt.Errorf("%w: unknown goal %q", ErrInvalidProfile, p.Goal)
	}
	return nil
}

// BMR returns the Mifflin-St Jeor basal metabolic rate in kcal.
func BMR(p Profile, now time.Time) float64 {
	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age(now))
	if p.Sex == SexMale {
		return bmr + 5
	}
	return bmr - 161
}

// TDEE returns total daily energy expenditure in kcal.
func TDEE(p Profile, now time.Time) float64 {
	mult, ok := p.ActivityLevel.Multiplier()
	if !ok {
		mult = activityMultipliers[ActivitySedentary]
	}
	return BMR(p, now) * mult
}

// SuggestGoals derives daily targets from a profile. Protein is set per kg
// of body weight, fat takes a fixed share of calories and carbs fill the
// remainder. All values are rounded to whole units.
func SuggestGoals(p Profile, now time.Time) Goals {
	calories := math.Round(TDEE(p, now) + goalAdjustment[p.Goal])

	perKG := 1.6
	if p.Goal == GoalLose || p.Goal == GoalGain {
		perKG = 2.0
	}
	protein := math.Round(perKG * p.WeightKG)
	fat := math.Round(calories * fatShare / kcalPerGramFat)
	carbs := (calories - protein*kcalPerGramProtein - fat*kcalPerGramFat) / kcalPerGramCarb

	return Goals{
		CalorieTarget: calories,
		ProteinTarget: protein,
		CarbTarget:    math.Max(0, math.Round(carbs)),
		FatTarget:     fat,
	}
}
