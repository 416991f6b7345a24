package daily

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/abhisek/farefit/internal/store"
)

// MealLister fetches the meals a user logged on a local day.
type MealLister interface {
	MealsForDay(ctx context.Context, userID, day string) ([]store.MealRecord, error)
}

// WorkoutLister fetches the workouts a user logged on a local day.
type WorkoutLister interface {
	WorkoutsForDay(ctx context.Context, userID, day string) ([]store.WorkoutRecord, error)
}

// GoalGetter fetches a user's nutrition targets.
type GoalGetter interface {
	GetGoals(ctx context.Context, userID string) (*store.GoalsRecord, error)
}

// Service gathers a day's facts from storage and scores them.
type Service struct {
	meals    MealLister
	workouts WorkoutLister
	goals    GoalGetter
}

// NewService creates a daily score service.
func NewService(meals MealLister, workouts WorkoutLister, goals GoalGetter) *Service {
	return &Service{meals: meals, workouts: workouts, goals: goals}
}

// Gather collects the facts for one day. Each source is fetched
// independently; a failed source leaves its facts at zero and contributes
// to the joined error.
func (s *Service) Gather(ctx context.Context, userID, day string) (Facts, error) {
	var (
		f    Facts
		errs []error
	)

	meals, err := s.meals.MealsForDay(ctx, userID, day)
	if err != nil {
		errs = append(errs, fmt.Errorf("meals: %w", err))
	} else {
		f.MealCount = len(meals)
		for _, m := range meals {
			f.ProteinSum += m.Protein
		}
	}

	workouts, err := s.workouts.WorkoutsForDay(ctx, userID, day)
	if err != nil {
		errs = append(errs, fmt.Errorf("workouts: %w", err))
	} else {
		f.HasWorkout = len(workouts) > 0
	}

	goals, err := s.goals.GetGoals(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// No goals yet: macros cannot be hit.
	case err != nil:
		errs = append(errs, fmt.Errorf("goals: %w", err))
	default:
		f.ProteinTarget = goals.ProteinG
	}

	return f, errors.Join(errs...)
}

// Today returns the daily score for a user's local day. It never fails:
// sources that cannot be read earn no credit, and any unexpected failure
// yields Empty.
func (s *Service) Today(ctx context.Context, userID, day string) (data Data) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("user", userID).Errorf("daily score panicked: %v", r)
			data = Empty()
		}
	}()

	facts, err := s.Gather(ctx, userID, day)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user": userID,
			"day":  day,
		}).Warn("daily score computed with missing data")
	}
	return Calculate(facts)
}
