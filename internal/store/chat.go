package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type chatRepo struct {
	s *Store
}

func (r *chatRepo) AppendChat(ctx context.Context, m ChatMessageRecord) error {
	seqNum, err := r.s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	q, args := r.s.builder().Insert("chat_messages").
		Columns("sequence", "occurred_at", "user_id", "role", "content", "fallback").
		Values(seqNum, ts.UTC(), m.UserID, m.Role, m.Content, m.Fallback).
		Query()
	if _, err := r.s.exec(ctx, q, args); err != nil {
		return fmt.Errorf("save chat message: %w", err)
	}
	return nil
}

func (r *chatRepo) RecentChat(ctx context.Context, userID string, limit int) ([]ChatMessageRecord, error) {
	b := r.s.builder()
	sel := b.Select("id", "sequence", "occurred_at", "user_id", "role", "content", "fallback").
		From(b.Table("chat_messages")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}
	q, args := sel.Query()

	var out []ChatMessageRecord
	err := r.s.query(ctx, q, args, func(rows *entsql.Rows) error {
		var m ChatMessageRecord
		if err := rows.Scan(&m.ID, &m.Sequence, &m.Timestamp, &m.UserID, &m.Role,
			&m.Content, &m.Fallback); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recent chat: %w", err)
	}

	// Newest-first from the query; callers want conversation order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *chatRepo) ClearChat(ctx context.Context, userID string) error {
	q, args := r.s.builder().Delete("chat_messages").
		Where(entsql.EQ("user_id", userID)).
		Query()
	if _, err := r.s.exec(ctx, q, args); err != nil {
		return fmt.Errorf("clear chat: %w", err)
	}
	return nil
}
