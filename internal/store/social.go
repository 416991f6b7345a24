package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type socialRepo struct {
	s *Store
}

func (r *socialRepo) AddFriendship(ctx context.Context, userID, friendID string) error {
	now := time.Now().UTC()
	q, args := r.s.builder().Insert("friendships").
		Columns("user_id", "friend_id", "created_at").
		Values(userID, friendID, now).
		Values(friendID, userID, now).
		OnConflict(entsql.ConflictColumns("user_id", "friend_id"), entsql.DoNothing()).
		Query()
	if _, err := r.s.exec(ctx, q, args); err != nil {
		return fmt.Errorf("add friendship: %w", err)
	}
	return nil
}

func (r *socialRepo) RemoveFriendship(ctx context.Context, userID, friendID string) error {
	q, args := r.s.builder().Delete("friendships").
		Where(entsql.Or(
			entsql.And(entsql.EQ("user_id", userID), entsql.EQ("friend_id", friendID)),
			entsql.And(entsql.EQ("user_id", friendID), entsql.EQ("friend_id", userID)),
		)).
		Query()
	res, err := r.s.exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("remove friendship: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove friendship: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("friendship %q/%q: %w", userID, friendID, ErrNotFound)
	}
	return nil
}

func (r *socialRepo) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	b := r.s.builder()
	q, args := b.Select("friend_id").
		From(b.Table("friendships")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("friend_id").
		Query()

	var out []string
	err := r.s.query(ctx, q, args, func(rows *entsql.Rows) error {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		out = append(out, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("friend ids: %w", err)
	}
	return out, nil
}
