package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var mealColumns = []string{
	"id", "user_id", "name", "meal_type", "source", "calories", "protein", "carbs",
	"fats", "fiber", "serving_size", "eaten_at", "local_day", "created_at",
}

type mealRepo struct {
	s *Store
}

func (r *mealRepo) InsertMeal(ctx context.Context, m MealRecord) error {
	q, args := r.s.builder().Insert("meals").
		Columns(mealColumns...).
		Values(m.ID, m.UserID, m.Name, m.MealType, m.Source, m.Calories, m.Protein, m.Carbs,
			m.Fats, m.Fiber, m.ServingSize, m.EatenAt.UTC(), m.Day, m.CreatedAt.UTC()).
		Query()
	if _, err := r.s.exec(ctx, q, args); err != nil {
		return fmt.Errorf("insert meal: %w", err)
	}
	return nil
}

func (r *mealRepo) DeleteMeal(ctx context.Context, userID, id string) error {
	q, args := r.s.builder().Delete("meals").
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("user_id", userID))).
		Query()
	res, err := r.s.exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("meal %q: %w", id, ErrNotFound)
	}
	return nil
}

func (r *mealRepo) MealsForDay(ctx context.Context, userID, day string) ([]MealRecord, error) {
	b := r.s.builder()
	q, args := b.Select(mealColumns...).
		From(b.Table("meals")).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("local_day", day))).
		OrderBy("eaten_at", "created_at").
		Query()

	var out []MealRecord
	err := r.s.query(ctx, q, args, func(rows *entsql.Rows) error {
		var m MealRecord
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.MealType, &m.Source, &m.Calories,
			&m.Protein, &m.Carbs, &m.Fats, &m.Fiber, &m.ServingSize, &m.EatenAt, &m.Day,
			&m.CreatedAt); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("meals for day: %w", err)
	}
	return out, nil
}
