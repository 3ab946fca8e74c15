// Package groups is the relational DB-fallback backing C11: the
// `groups`/`group_members` tables named in §6's persisted state
// layout, consulted when the hot cache (internal/service/members)
// misses.
package groups

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Members resolves a group's current member list (§4.2 step 6's DB
// fallback).
func (s *Store) Members(ctx context.Context, groupID string) ([]string, error) {
	const q = `SELECT user_id FROM group_members WHERE group_id = $1`
	rows, err := s.pool.Query(ctx, q, groupID)
	if err != nil {
		return nil, fmt.Errorf("groups: members %s: %w", groupID, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("groups: scan member: %w", err)
		}
		out = append(out, userID)
	}
	return out, rows.Err()
}

// Create inserts a group row plus its initial member batch.
func (s *Store) Create(ctx context.Context, groupID string, memberIDs []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("groups: create %s: begin: %w", groupID, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO groups (group_id) VALUES ($1) ON CONFLICT DO NOTHING`, groupID); err != nil {
		return fmt.Errorf("groups: create %s: %w", groupID, err)
	}
	if err := insertMembers(ctx, tx, groupID, memberIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update replaces a group's member set wholesale.
func (s *Store) Update(ctx context.Context, groupID string, memberIDs []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("groups: update %s: begin: %w", groupID, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM group_members WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("groups: update %s: clear members: %w", groupID, err)
	}
	if err := insertMembers(ctx, tx, groupID, memberIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertMembers(ctx context.Context, tx pgx.Tx, groupID string, memberIDs []string) error {
	for _, id := range memberIDs {
		const q = `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := tx.Exec(ctx, q, groupID, id); err != nil {
			return fmt.Errorf("groups: insert member %s/%s: %w", groupID, id, err)
		}
	}
	return nil
}

// Delete removes a group and its membership rows.
func (s *Store) Delete(ctx context.Context, groupID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM groups WHERE group_id = $1`, groupID); err != nil {
		return fmt.Errorf("groups: delete %s: %w", groupID, err)
	}
	return nil
}

// MemberExit removes a single member from a group.
func (s *Store) MemberExit(ctx context.Context, groupID, userID string) error {
	const q = `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`
	if _, err := s.pool.Exec(ctx, q, groupID, userID); err != nil {
		return fmt.Errorf("groups: member exit %s/%s: %w", groupID, userID, err)
	}
	return nil
}
