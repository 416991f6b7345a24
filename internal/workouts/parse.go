package workouts

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseExercise reads the compact "Name: 5x100, 5x102.5" notation, where
// each set is reps x kilograms. A set written as "10" is ten unweighted reps.
func ParseExercise(s string) (Exercise, error) {
	name, sets, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Exercise{}, fmt.Errorf("%w: %q is not \"name: reps x kg, ...\"", ErrInvalidWorkout, s)
	}

	e := Exercise{Name: name}
	for _, part := range strings.Split(sets, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		repsStr, weightStr, weighted := strings.Cut(strings.ToLower(part), "x")
		reps, err := strconv.Atoi(strings.TrimSpace(repsStr))
		if err != nil || reps < 0 {
			return Exercise{}, fmt.Errorf("%w: bad reps in %q", ErrInvalidWorkout, part)
		}
		set := Set{Reps: reps}
		if weighted {
			w, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(weightStr, "kg")), 64)
			if err != nil || w < 0 {
				return Exercise{}, fmt.Errorf("%w: bad weight in %q", ErrInvalidWorkout, part)
			}
			set.WeightKG = w
		}
		e.Sets = append(e.Sets, set)
	}
	if len(e.Sets) == 0 {
		return Exercise{}, fmt.Errorf("%w: %s has no sets", ErrInvalidWorkout, name)
	}
	return e, nil
}
