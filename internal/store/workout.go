package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var workoutColumns = []string{
	"id", "user_id", "local_day", "performed_at", "duration_min", "exercises", "notes",
}

type workoutRepo struct {
	s *Store
}

func (r *workoutRepo) InsertWorkout(ctx context.Context, w WorkoutRecord) error {
	q, args := r.s.builder().Insert("workouts").
		Columns(workoutColumns...).
		Values(w.ID, w.UserID, w.Day, w.PerformedAt.UTC(), w.DurationMin, w.Exercises, w.Notes).
		Query()
	if _, err := r.s.exec(ctx, q, args); err != nil {
		return fmt.Errorf("insert workout: %w", err)
	}
	return nil
}

func (r *workoutRepo) WorkoutsForDay(ctx context.Context, userID, day string) ([]WorkoutRecord, error) {
	b := r.s.builder()
	q, args := b.Select(workoutColumns...).
		From(b.Table("workouts")).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("local_day", day))).
		OrderBy("performed_at").
		Query()
	out, err := r.list(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("workouts for day: %w", err)
	}
	return out, nil
}

func (r *workoutRepo) RecentWorkouts(ctx context.Context, userID string, limit int) ([]WorkoutRecord, error) {
	b := r.s.builder()
	sel := b.Select(workoutColumns...).
		From(b.Table("workouts")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("performed_at"))
	if limit > 0 {
		sel.Limit(limit)
	}
	q, args := sel.Query()
	out, err := r.list(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("recent workouts: %w", err)
	}
	return out, nil
}

func (r *workoutRepo) list(ctx context.Context, q string, args []any) ([]WorkoutRecord, error) {
	var out []WorkoutRecord
	err := r.s.query(ctx, q, args, func(rows *entsql.Rows) error {
		var w WorkoutRecord
		if err := rows.Scan(&w.ID, &w.UserID, &w.Day, &w.PerformedAt, &w.DurationMin,
			&w.Exercises, &w.Notes); err != nil {
			return err
		}
		out = append(out, w)
		return nil
	})
	return out, err
}
