package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter manages the global monotonic sequence number shared across
// every append-only table (score events, chat messages, LLM requests).
// Per-table auto-increment IDs can't order rows across tables; the shared
// counter can.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level. Inside a transaction the row lock
// held by the UPDATE does the serializing.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val BIGINT NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT INTO global_sequence (id, next_val) VALUES (1, 1) ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// NextIn increments the counter on an open transaction, so the number is
// released again if the transaction rolls back.
func (sc *sequenceCounter) NextIn(ctx context.Context, tx dialect.ExecQuerier) (int64, error) {
	var seq int64
	found := false
	err := queryOn(ctx, tx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`, []any{},
		func(rows *entsql.Rows) error {
			found = true
			return rows.Scan(&seq)
		})
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("next sequence: %w", sql.ErrNoRows)
	}
	return seq, nil
}
