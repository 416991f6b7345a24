package workouts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidWorkout is returned when a workout fails validation.
var ErrInvalidWorkout = errors.New("invalid workout")

// Set is one set of an exercise.
type Set struct {
	Reps     int     `json:"reps"`
	WeightKG float64 `json:"weight_kg"`
}

// Exercise is a named movement with its sets.
type Exercise struct {
	Name string `json:"name"`
	Sets []Set  `json:"sets"`
}

// MaxWeight returns the heaviest set weight.
func (e Exercise) MaxWeight() float64 {
	var best float64
	for _, s := range e.Sets {
		if s.WeightKG > best {
			best = s.WeightKG
		}
	}
	return best
}

// Volume returns the sum of reps times weight over all sets.
func (e Exercise) Volume() float64 {
	var v float64
	for _, s := range e.Sets {
		v += float64(s.Reps) * s.WeightKG
	}
	return v
}

// Workout is one training session.
type Workout struct {
	ID          string
	UserID      string
	Day         string
	PerformedAt time.Time
	DurationMin int
	Exercises   []Exercise
	Notes       string
}

// Find returns the exercise with the given name, matched case-insensitively.
func (w Workout) Find(name string) (Exercise, bool) {
	for _, e := range w.Exercises {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return Exercise{}, false
}

// Validate checks a workout before it is stored.
func (w Workout) Validate() error {
	if w.DurationMin < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidWorkout)
	}
	if len(w.Exercises) == 0 && w.DurationMin == 0 {
		return fmt.Errorf("%w: needs exercises or a duration", ErrInvalidWorkout)
	}
	for _, e := range w.Exercises {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("%w: exercise name is required", ErrInvalidWorkout)
		}
		for _, s := range e.Sets {
			if s.Reps < 0 || s.WeightKG < 0 {
				return fmt.Errorf("%w: %s has a negative set", ErrInvalidWorkout, e.Name)
			}
		}
	}
	return nil
}
