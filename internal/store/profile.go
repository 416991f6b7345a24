package store

import (
	"context"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

var profileColumns = []string{
	"id", "display_name", "sex", "birth_year", "height_cm", "weight_kg",
	"activity_level", "goal", "created_at",
}

type profileRepo struct {
	s *Store
}

func (r *profileRepo) CreateProfile(ctx context.Context, p ProfileRecord) error {
	if _, err := r.GetProfile(ctx, p.ID); err == nil {
		return fmt.Errorf("profile %q: %w", p.ID, ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	q, args := r.s.builder().Insert("profiles").
		Columns(profileColumns...).
		Values(p.ID, p.DisplayName, p.Sex, p.BirthYear, p.HeightCM, p.WeightKG,
			p.ActivityLevel, p.Goal, p.CreatedAt.UTC()).
		Query()
	if _, err := r.s.exec(ctx, q, args); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *profileRepo) GetProfile(ctx context.Context, id string) (*ProfileRecord, error) {
	b := r.s.builder()
	q, args := b.Select(profileColumns...).
		From(b.Table("profiles")).
		Where(entsql.EQ("id", id)).
		Query()

	var found *ProfileRecord
	err := r.s.query(ctx, q, args, func(rows *entsql.Rows) error {
		p, err := scanProfile(rows)
		found = &p
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("profile %q: %w", id, ErrNotFound)
	}
	return found, nil
}

func (r *profileRepo) ListProfiles(ctx context.Context) ([]ProfileRecord, error) {
	b := r.s.builder()
	q, args := b.Select(profileColumns...).
		From(b.Table("profiles")).
		OrderBy("id").
		Query()

	var out []ProfileRecord
	err := r.s.query(ctx, q, args, func(rows *entsql.Rows) error {
		p, err := scanProfile(rows)
		out = append(out, p)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

func (r *profileRepo) SaveGoals(ctx context.Context, g GoalsRecord) error {
	q, args := r.s.builder().Insert("goals").
		Columns("user_id", "calories", "protein_g", "carbs_g", "fat_g", "updated_at").
		Values(g.UserID, g.Calories, g.ProteinG, g.CarbsG, g.FatG, g.UpdatedAt.UTC()).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.s.exec(ctx, q, args); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

func (r *profileRepo) GetGoals(ctx context.Context, userID string) (*GoalsRecord, error) {
	b := r.s.builder()
	q, args := b.Select("user_id", "calories", "protein_g", "carbs_g", "fat_g", "updated_at").
		From(b.Table("goals")).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var found *GoalsRecord
	err := r.s.query(ctx, q, args, func(rows *entsql.Rows) error {
		var g GoalsRecord
		if err := rows.Scan(&g.UserID, &g.Calories, &g.ProteinG, &g.CarbsG, &g.FatG, &g.UpdatedAt); err != nil {
			return err
		}
		found = &g
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get goals: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("goals for %q: %w", userID, ErrNotFound)
	}
	return found, nil
}

func scanProfile(rows *entsql.Rows) (ProfileRecord, error) {
	var p ProfileRecord
	err := rows.Scan(&p.ID, &p.DisplayName, &p.Sex, &p.BirthYear, &p.HeightCM, &p.WeightKG,
		&p.ActivityLevel, &p.Goal, &p.CreatedAt)
	return p, err
}
