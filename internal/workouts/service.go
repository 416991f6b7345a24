package workouts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/abhisek/farefit/internal/calendar"
	"github.com/abhisek/farefit/internal/store"
)

// historyScan bounds how many recent workouts History inspects.
const historyScan = 200

// Service logs workouts and reads training history.
type Service struct {
	repo store.WorkoutRepo
	loc  *time.Location
	now  func() time.Time
}

// NewService creates a workout service.
func NewService(repo store.WorkoutRepo, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// Log validates and stores a workout. A zero PerformedAt means now.
func (s *Service) Log(ctx context.Context, w Workout) (*Workout, error) {
	if w.UserID == "" {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidWorkout)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if w.PerformedAt.IsZero() {
		w.PerformedAt = s.now()
	}
	w.ID = uuid.NewString()
	w.Day = calendar.Day(w.PerformedAt, s.loc)

	rec, err := toRecord(w)
	if err != nil {
		return nil, err
	}
	if err := s.repo.InsertWorkout(ctx, rec); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user":      w.UserID,
		"exercises": len(w.Exercises),
		"minutes":   w.DurationMin,
	}).Debug("workout logged")
	return &w, nil
}

// ForDay returns the user's workouts on a local day, oldest first.
func (s *Service) ForDay(ctx context.Context, userID, day string) ([]Workout, error) {
	recs, err := s.repo.WorkoutsForDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	return fromRecords(recs)
}

// History returns up to limit recent workouts containing exercise, newest
// first. An empty exercise matches every workout.
func (s *Service) History(ctx context.Context, userID, exercise string, limit int) ([]Workout, error) {
	recs, err := s.repo.RecentWorkouts(ctx, userID, historyScan)
	if err != nil {
		return nil, err
	}
	all, err := fromRecords(recs)
	if err != nil {
		return nil, err
	}

	var out []Workout
	for _, w := range all {
		if exercise != "" {
			if _, ok := w.Find(exercise); !ok {
				continue
			}
		}
		out = append(out, w)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Progress analyzes the user's recent history for one exercise.
func (s *Service) Progress(ctx context.Context, userID, exercise string, limit int) (Analysis, error) {
	history, err := s.History(ctx, userID, exercise, limit)
	if err != nil {
		return Analysis{}, err
	}
	return Analyze(history, exercise), nil
}

func toRecord(w Workout) (store.WorkoutRecord, error) {
	data, err := json.Marshal(w.Exercises)
	if err != nil {
		return store.WorkoutRecord{}, fmt.Errorf("encode exercises: %w", err)
	}
	return store.WorkoutRecord{
		ID:          w.ID,
		UserID:      w.UserID,
		Day:         w.Day,
		PerformedAt: w.PerformedAt,
		DurationMin: w.DurationMin,
		Exercises:   string(data),
		Notes:       w.Notes,
	}, nil
}

func fromRecords(recs []store.WorkoutRecord) ([]Workout, error) {
	out := make([]Workout, 0, len(recs))
	for _, r := range recs {
		w := Workout{
			ID:          r.ID,
			UserID:      r.UserID,
			Day:         r.Day,
			PerformedAt: r.PerformedAt,
			DurationMin: r.DurationMin,
			Notes:       r.Notes,
		}
		if err := json.Unmarshal([]byte(r.Exercises), &w.Exercises); err != nil {
			return nil, fmt.Errorf("decode exercises of workout %s: %w", r.ID, err)
		}
		out = append(out, w)
	}
	return out, nil
}
