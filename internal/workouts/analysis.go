package workouts

import "sort"

// PlateauSessions is how many most recent sessions must share the same max
// weight before an exercise counts as plateaued.
const PlateauSessions = 3

// Point is an exercise's best set in one workout.
type Point struct {
	Day       string
	MaxWeight float64
	Volume    float64
}

// Analysis summarizes one exercise across a workout history.
type Analysis struct {
	Exercise      string
	Sessions      int
	Points        []Point // oldest first
	MaxWeight     float64
	AverageMax    float64
	PercentChange float64 // first to last session max weight
	Plateau       bool
}

// Analyze computes progression for exercise over history. history may be in
// any order. Workouts without the exercise are skipped; an empty result is
// the zero Analysis.
func Analyze(history []Workout, exercise string) Analysis {
	sorted := append([]Workout(nil), history...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PerformedAt.Before(sorted[j].PerformedAt)
	})

	var points []Point
	for _, w := range sorted {
		e, ok := w.Find(exercise)
		if !ok {
			continue
		}
		points = append(points, Point{Day: w.Day, MaxWeight: e.MaxWeight(), Volume: e.Volume()})
	}
	if len(points) == 0 {
		return Analysis{}
	}

	a := Analysis{Exercise: exercise, Sessions: len(points), Points: points}
	var sum float64
	for _, p := range points {
		sum += p.MaxWeight
		if p.MaxWeight > a.MaxWeight {
			a.MaxWeight = p.MaxWeight
		}
	}
	a.AverageMax = sum / float64(len(points))

	first, last := points[0].MaxWeight, points[len(points)-1].MaxWeight
	if first > 0 {
		a.PercentChange = (last - first) / first * 100
	}

	if len(points) >= PlateauSessions {
		recent := points[len(points)-PlateauSessions:]
		a.Plateau = true
		for _, p := range recent[1:] {
			if p.MaxWeight != recent[0].MaxWeight {
				a.Plateau = false
				break
			}
		}
	}
	return a
}
