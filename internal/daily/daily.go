// Package daily computes the 0-100 daily points breakdown shown on the
// dashboard.
package daily

import "math"

const (
	MaxMeals       = 30
	MaxWorkout     = 30
	MaxMacros      = 25
	MaxConsistency = 15

	pointsPerMeal  = 10
	bonusPerBucket = 5
)

// Bucket is one scored category of the day.
type Bucket struct {
	Score    int `json:"score"`
	MaxScore int `json:"maxScore"`
}

// Full reports whether the bucket earned its maximum.
func (b Bucket) Full() bool {
	return b.Score >= b.MaxScore
}

// Breakdown splits the daily score into its four buckets.
type Breakdown struct {
	MealsLogged      Bucket `json:"mealsLogged"`
	WorkoutCompleted Bucket `json:"workoutCompleted"`
	MacrosHit        Bucket `json:"macrosHit"`
	ConsistencyBonus Bucket `json:"consistencyBonus"`
}

// Data is the daily score and its breakdown. TotalScore always equals the
// sum of the bucket scores.
type Data struct {
	TotalScore int       `json:"totalScore"`
	Breakdown  Breakdown `json:"breakdown"`
}

// Facts are the raw inputs for one day.
type Facts struct {
	MealCount     int
	HasWorkout    bool
	ProteinSum    float64
	ProteinTarget float64
}

// Empty returns the all-zero result with every bucket at its maximum.
func Empty() Data {
	return Data{
		Breakdown: Breakdown{
			MealsLogged:      Bucket{0, MaxMeals},
			WorkoutCompleted: Bucket{0, MaxWorkout},
			MacrosHit:        Bucket{0, MaxMacros},
			ConsistencyBonus: Bucket{0, MaxConsistency},
		},
	}
}

// Calculate scores one day of facts.
//
// Macro credit is decided on protein alone. A missing or zero protein
// target earns nothing.
func Calculate(f Facts) Data {
	d := Empty()
	b := &d.Breakdown

	if f.MealCount > 0 {
		b.MealsLogged.Score = min(f.MealCount*pointsPerMeal, MaxMeals)
	}
	if f.HasWorkout {
		b.WorkoutCompleted.Score = MaxWorkout
	}
	if f.ProteinTarget > 0 && !math.IsNaN(f.ProteinSum) && f.ProteinSum >= f.ProteinTarget {
		b.MacrosHit.Score = MaxMacros
	}

	bonus := 0
	if b.MealsLogged.Full() {
		bonus += bonusPerBucket
	}
	if b.WorkoutCompleted.Score > 0 {
		bonus += bonusPerBucket
	}
	if b.MacrosHit.Score > 0 {
		bonus += bonusPerBucket
	}
	b.ConsistencyBonus.Score = min(bonus, MaxConsistency)

	d.TotalScore = b.MealsLogged.Score + b.WorkoutCompleted.Score +
		b.MacrosHit.Score + b.ConsistencyBonus.Score
	return d
}

// Buckets returns the buckets in display order with their labels.
func (d Data) Buckets() []LabeledBucket {
	return []LabeledBucket{
		{"Meals logged", d.Breakdown.MealsLogged},
		{"Workout", d.Breakdown.WorkoutCompleted},
		{"Macros hit", d.Breakdown.MacrosHit},
		{"Consistency", d.Breakdown.ConsistencyBonus},
	}
}

// LabeledBucket pairs a bucket with its display label.
type LabeledBucket struct {
	Label string
	Bucket
}
