// Package checkpoint is C4, the relational high-water-mark store that
// backs C3's STEP-bounded checkpoint signal: one row per user holding
// the last persisted send/recv sequence maxima.
package checkpoint

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Checkpoint mirrors the `sequence(user_id, send_max_seq, rec_max_seq)`
// row described in §6's persisted state layout.
type Checkpoint struct {
	UserID     string
	SendMaxSeq int64
	RecMaxSeq  int64
}

// PersistSendMax is invoked by the consumer (§4.2 step 4) when the
// sender's live counter crosses the previous checkpoint threshold.
func (s *Store) PersistSendMax(ctx context.Context, userID string, sendMaxSeq int64) error {
	const q = `
INSERT INTO sequence (user_id, send_max_seq, rec_max_seq)
VALUES ($1, $2, 0)
ON CONFLICT (user_id) DO UPDATE SET send_max_seq = GREATEST(sequence.send_max_seq, EXCLUDED.send_max_seq)`
	if _, err := s.pool.Exec(ctx, q, userID, sendMaxSeq); err != nil {
		return fmt.Errorf("checkpoint: persist send max for %s: %w", userID, err)
	}
	return nil
}

// PersistRecvMax is invoked by the consumer (§4.2 step 5) for a single
// recipient, and by the batched group path (§4.2 step 6) once per
// member that crossed its threshold.
func (s *Store) PersistRecvMax(ctx context.Context, userID string, recMaxSeq int64) error {
	const q = `
INSERT INTO sequence (user_id, send_max_seq, rec_max_seq)
VALUES ($1, 0, $2)
ON CONFLICT (user_id) DO UPDATE SET rec_max_seq = GREATEST(sequence.rec_max_seq, EXCLUDED.rec_max_seq)`
	if _, err := s.pool.Exec(ctx, q, userID, recMaxSeq); err != nil {
		return fmt.Errorf("checkpoint: persist recv max for %s: %w", userID, err)
	}
	return nil
}

// Get loads one user's checkpoint row, used on cold-start rehydration
// (§9 "Checkpoint vs. counter").
func (s *Store) Get(ctx context.Context, userID string) (Checkpoint, error) {
	const q = `SELECT user_id, send_max_seq, rec_max_seq FROM sequence WHERE user_id = $1`
	var cp Checkpoint
	if err := s.pool.QueryRow(ctx, q, userID).Scan(&cp.UserID, &cp.SendMaxSeq, &cp.RecMaxSeq); err != nil {
		return Checkpoint{}, fmt.Errorf("checkpoint: get %s: %w", userID, err)
	}
	return cp, nil
}

// ListAll streams every checkpoint row for the `loadseq` cold-start
// warmup command (original_source/cmd/src/load_seq.rs).
func (s *Store) ListAll(ctx context.Context) ([]Checkpoint, error) {
	const q = `SELECT user_id, send_max_seq, rec_max_seq FROM sequence ORDER BY user_id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: list all: %w", err)
	}
	defer rows.Close()

	var out []Checkpoint
	for rows.Next() {
		var cp Checkpoint
		if err := rows.Scan(&cp.UserID, &cp.SendMaxSeq, &cp.RecMaxSeq); err != nil {
			return nil, fmt.Errorf("checkpoint: scan: %w", err)
		}
		out = append(out, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("checkpoint: list all: %w", err)
	}
	return out, nil
}
