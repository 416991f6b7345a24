package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var scoreStateColumns = []string{
	"user_id", "current_score", "smoothed_score", "streak_days", "inactive_days",
	"meals_month", "workouts_month", "penalties_month", "consistency_rate", "last_update",
}

type scoreRepo struct {
	s *Store
}

func (r *scoreRepo) CreateState(ctx context.Context, st ScoreStateRecord) error {
	q, args := r.s.builder().Insert("fare_scores").
		Columns(scoreStateColumns...).
		Values(st.UserID, st.CurrentScore, st.SmoothedScore, st.StreakDays, st.InactiveDays,
			st.MealsMonth, st.WorkoutsMonth, st.PenaltiesMonth, st.ConsistencyRate, st.LastUpdate.UTC()).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.DoNothing()).
		Query()
	res, err := r.s.exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("create score state: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("score state for %q: %w", st.UserID, ErrConflict)
	}
	return nil
}

func (r *scoreRepo) GetState(ctx context.Context, userID string) (*ScoreStateRecord, error) {
	b := r.s.builder()
	q, args := b.Select(scoreStateColumns...).
		From(b.Table("fare_scores")).
		Where(entsql.EQ("user_id", userID)).
		Query()
	states, err := r.listStates(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("get score state: %w", err)
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("score state for %q: %w", userID, ErrNotFound)
	}
	return &states[0], nil
}

func (r *scoreRepo) SaveState(ctx context.Context, st ScoreStateRecord) error {
	return r.saveState(ctx, r.s.drv, st)
}

func (r *scoreRepo) saveState(ctx context.Context, eq dialect.ExecQuerier, st ScoreStateRecord) error {
	q, args := r.s.builder().Update("fare_scores").
		Set("current_score", st.CurrentScore).
		Set("smoothed_score", st.SmoothedScore).
		Set("streak_days", st.StreakDays).
		Set("inactive_days", st.InactiveDays).
		Set("meals_month", st.MealsMonth).
		Set("workouts_month", st.WorkoutsMonth).
		Set("penalties_month", st.PenaltiesMonth).
		Set("consistency_rate", st.ConsistencyRate).
		Set("last_update", st.LastUpdate.UTC()).
		Where(entsql.EQ("user_id", st.UserID)).
		Query()
	res, err := execOn(ctx, eq, q, args)
	if err != nil {
		return fmt.Errorf("save score state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save score state: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("score state for %q: %w", st.UserID, ErrNotFound)
	}
	return nil
}

func (r *scoreRepo) ListStates(ctx context.Context, limit int) ([]ScoreStateRecord, error) {
	b := r.s.builder()
	sel := b.Select(scoreStateColumns...).
		From(b.Table("fare_scores")).
		OrderBy(entsql.Desc("current_score"), entsql.Desc("streak_days"), "user_id")
	if limit > 0 {
		sel.Limit(limit)
	}
	q, args := sel.Query()
	out, err := r.listStates(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("list score states: %w", err)
	}
	return out, nil
}

func (r *scoreRepo) listStates(ctx context.Context, q string, args []any) ([]ScoreStateRecord, error) {
	var out []ScoreStateRecord
	err := r.s.query(ctx, q, args, func(rows *entsql.Rows) error {
		var st ScoreStateRecord
		if err := rows.Scan(&st.UserID, &st.CurrentScore, &st.SmoothedScore, &st.StreakDays,
			&st.InactiveDays, &st.MealsMonth, &st.WorkoutsMonth, &st.PenaltiesMonth, &st.ConsistencyRate,
			&st.LastUpdate); err != nil {
			return err
		}
		out = append(out, st)
		return nil
	})
	return out, err
}

func (r *scoreRepo) AppendScoreEvent(ctx context.Context, data ScoreEventData) error {
	seqNum, err := r.s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	return r.insertEvent(ctx, r.s.drv, seqNum, data)
}

func (r *scoreRepo) insertEvent(ctx context.Context, eq dialect.ExecQuerier, seqNum int64, data ScoreEventData) error {
	q, args := r.s.builder().Insert("score_events").
		Columns("sequence", "occurred_at", "user_id", "action", "description", "delta", "score_after").
		Values(seqNum, time.Now().UTC(), data.UserID, data.Action, data.Description, data.Delta, data.ScoreAfter).
		Query()
	if _, err := execOn(ctx, eq, q, args); err != nil {
		return fmt.Errorf("save score event: %w", err)
	}
	return nil
}

func (r *scoreRepo) QueryScoreEvents(ctx context.Context, userID string, opts QueryOpts) ([]ScoreEvent, error) {
	b := r.s.builder()
	preds := append([]*entsql.Predicate{entsql.EQ("user_id", userID)}, opts.predicates()...)
	sel := b.Select("id", "sequence", "occurred_at", "user_id", "action", "description", "delta", "score_after").
		From(b.Table("score_events")).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	q, args := sel.Query()

	var out []ScoreEvent
	err := r.s.query(ctx, q, args, func(rows *entsql.Rows) error {
		var e ScoreEvent
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.UserID, &e.Action,
			&e.Description, &e.Delta, &e.ScoreAfter); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query score events: %w", err)
	}
	return out, nil
}

func (r *scoreRepo) CloseDay(ctx context.Context, d ScoreDayRecord) error {
	return r.insertDay(ctx, r.s.drv, d)
}

func (r *scoreRepo) insertDay(ctx context.Context, eq dialect.ExecQuerier, d ScoreDayRecord) error {
	q, args := r.s.builder().Insert("score_days").
		Columns("user_id", "local_day", "active", "closed_at").
		Values(d.UserID, d.Day, d.Active, d.ClosedAt.UTC()).
		OnConflict(entsql.ConflictColumns("user_id", "local_day"), entsql.DoNothing()).
		Query()
	res, err := execOn(ctx, eq, q, args)
	if err != nil {
		return fmt.Errorf("close day: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("day %s for %q: %w", d.Day, d.UserID, ErrConflict)
	}
	return nil
}

func (r *scoreRepo) Commit(ctx context.Context, c ScoreCommit) error {
	tx, err := r.s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin score commit: %w", err)
	}
	defer tx.Rollback()

	if c.Day != nil {
		if err := r.insertDay(ctx, tx, *c.Day); err != nil {
			return err
		}
	}
	if err := r.saveState(ctx, tx, c.State); err != nil {
		return err
	}
	for _, e := range c.Events {
		seqNum, err := r.s.seq.NextIn(ctx, tx)
		if err != nil {
			return err
		}
		if err := r.insertEvent(ctx, tx, seqNum, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit score: %w", err)
	}
	return nil
}

func (r *scoreRepo) LastClosedDay(ctx context.Context, userID string) (*ScoreDayRecord, error) {
	days, err := r.days(ctx, entsql.EQ("user_id", userID), 1)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("closed days for %q: %w", userID, ErrNotFound)
	}
	return &days[0], nil
}

func (r *scoreRepo) RecentDays(ctx context.Context, userID, before string, limit int) ([]ScoreDayRecord, error) {
	return r.days(ctx, entsql.And(entsql.EQ("user_id", userID), entsql.LT("local_day", before)), limit)
}

func (r *scoreRepo) days(ctx context.Context, where *entsql.Predicate, limit int) ([]ScoreDayRecord, error) {
	b := r.s.builder()
	sel := b.Select("user_id", "local_day", "active", "closed_at").
		From(b.Table("score_days")).
		Where(where).
		OrderBy(entsql.Desc("local_day"))
	if limit > 0 {
		sel.Limit(limit)
	}
	q, args := sel.Query()

	var out []ScoreDayRecord
	err := r.s.query(ctx, q, args, func(rows *entsql.Rows) error {
		var d ScoreDayRecord
		if err := rows.Scan(&d.UserID, &d.Day, &d.Active, &d.ClosedAt); err != nil {
			return err
		}
		out = append(out, d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recent days: %w", err)
	}
	return out, nil
}

// predicates converts the sequence and time bounds of opts into WHERE clauses.
func (o QueryOpts) predicates() []*entsql.Predicate {
	var ps []*entsql.Predicate
	if o.After > 0 {
		ps = append(ps, entsql.GT("sequence", o.After))
	}
	if o.Before > 0 {
		ps = append(ps, entsql.LT("sequence", o.Before))
	}
	if !o.From.IsZero() {
		ps = append(ps, entsql.GTE("occurred_at", o.From.UTC()))
	}
	if !o.To.IsZero() {
		ps = append(ps, entsql.LTE("occurred_at", o.To.UTC()))
	}
	return ps
}
