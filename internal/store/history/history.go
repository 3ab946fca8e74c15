// Package history is C5, the append-only relational ledger used by
// analytics/audit. Rows are keyed by server_id; writes are idempotent
// so consumer retries never duplicate a record (§9 "Idempotent
// persistence").
package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webitel/im-delivery-service/internal/domain/model"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Append persists one message to the ledger. Called when §4.8's
// `need_history` is true and the message is not purely transient
// signalling (§4.2 step 7).
func (s *Store) Append(ctx context.Context, msg *model.Msg) error {
	const q = `
INSERT INTO messages (
	server_id, client_id, sender_id, receiver_id, group_id,
	platform, msg_type, content_type, content, send_time, send_seq
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (server_id) DO NOTHING`
	_, err := s.pool.Exec(ctx, q,
		msg.ServerID, msg.ClientID, msg.SenderID, msg.ReceiverID, msg.GroupID,
		int32(msg.Platform), int32(msg.MsgType), int32(msg.ContentType), msg.Content, msg.SendTime, msg.SendSeq,
	)
	if err != nil {
		return fmt.Errorf("history: append %s: %w", msg.ServerID, err)
	}
	return nil
}
