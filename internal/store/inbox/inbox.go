// Package inbox is C6, the per-recipient seq-indexed message archive
// backed by MongoDB (collection `single_msg_box`, grounded on
// original_source/db/src/database/mongodb/message.rs). Offline clients
// catch up here via a gap-free range scan (§8 invariant 8).
package inbox

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/webitel/im-delivery-service/internal/domain/model"
)

const collSingleBox = "single_msg_box"

type Store struct {
	coll *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(collSingleBox)}
}

// EnsureIndexes creates the `(receiver_id, seq)` unique index and the
// `(sender_id, send_seq)` lookup index named in §4.4.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "receiver_id", Value: 1}, {Key: "seq", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "send_seq", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("inbox: ensure indexes: %w", err)
	}
	return nil
}

type doc struct {
	ReceiverID  string `bson:"receiver_id"`
	Seq         int64  `bson:"seq"`
	SenderID    string `bson:"sender_id"`
	SendSeq     int64  `bson:"send_seq"`
	ServerID    string `bson:"server_id"`
	SendTime    int64  `bson:"send_time"`
	ContentType int32  `bson:"content_type"`
	Content     []byte `bson:"content"`
	MsgType     int32  `bson:"msg_type"`
	IsRead      bool   `bson:"is_read"`
	GroupID     string `bson:"group_id,omitempty"`
}

func toDoc(msg *model.Msg) doc {
	return doc{
		ReceiverID:  msg.ReceiverID,
		Seq:         msg.Seq,
		SenderID:    msg.SenderID,
		SendSeq:     msg.SendSeq,
		ServerID:    msg.ServerID,
		SendTime:    msg.SendTime,
		ContentType: int32(msg.ContentType),
		Content:     msg.Content,
		MsgType:     int32(msg.MsgType),
		IsRead:      msg.IsRead,
		GroupID:     msg.GroupID,
	}
}

func fromDoc(d doc) *model.Msg {
	return &model.Msg{
		ServerID:    d.ServerID,
		SenderID:    d.SenderID,
		ReceiverID:  d.ReceiverID,
		GroupID:     d.GroupID,
		MsgType:     model.MsgType(d.MsgType),
		ContentType: model.ContentType(d.ContentType),
		Content:     d.Content,
		SendTime:    d.SendTime,
		SendSeq:     d.SendSeq,
		Seq:         d.Seq,
		IsRead:      d.IsRead,
	}
}

// SaveMessage is §4.4's save_message: one insert keyed by
// (receiver_id, seq). Retried consumer steps are safe because the
// unique index turns a duplicate into a no-op error we ignore.
func (s *Store) SaveMessage(ctx context.Context, msg *model.Msg) error {
	_, err := s.coll.InsertOne(ctx, toDoc(msg))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inbox: save_message %s: %w", msg.ServerID, err)
	}
	return nil
}

// SaveGroupMsg is §4.4's save_group_msg: one row per member (with the
// member's assigned seq) plus a mirror row for the sender carrying
// send_seq with seq=0.
func (s *Store) SaveGroupMsg(ctx context.Context, msg *model.Msg, members []model.GroupMemSeq) error {
	docs := make([]any, 0, len(members)+1)
	for _, m := range members {
		cp := *msg
		cp.ReceiverID = m.MemID
		cp.Seq = m.CurSeq
		docs = append(docs, toDoc(&cp))
	}
	mirror := *msg
	mirror.ReceiverID = msg.SenderID
	mirror.Seq = 0
	docs = append(docs, toDoc(&mirror))

	_, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("inbox: save_group_msg %s: %w", msg.ServerID, err)
	}
	return nil
}

// DeleteMessage purges the inbox row referenced by serverID, used for
// the receipt-ack triad (§4.2 step 7, §8 invariant 5).
func (s *Store) DeleteMessage(ctx context.Context, serverID string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"server_id": serverID})
	if err != nil {
		return fmt.Errorf("inbox: delete_message %s: %w", serverID, err)
	}
	return nil
}

// DeleteMessages is the bulk counterpart of DeleteMessage: it removes
// userID's rows whose seq is in seqs.
func (s *Store) DeleteMessages(ctx context.Context, userID string, seqs []int64) error {
	if len(seqs) == 0 {
		return nil
	}
	_, err := s.coll.DeleteMany(ctx, bson.M{"receiver_id": userID, "seq": bson.M{"$in": seqs}})
	if err != nil {
		return fmt.Errorf("inbox: delete_messages %s: %w", userID, err)
	}
	return nil
}

// GetMessagesStream is §4.4's get_messages_stream, the offline
// catch-up range scan: ordered ascending by seq, gap-free over
// [start, end] (§8 invariant 8).
func (s *Store) GetMessagesStream(ctx context.Context, userID string, start, end int64) ([]*model.Msg, error) {
	query := bson.M{
		"receiver_id": userID,
		"seq":         bson.M{"$gte": start, "$lte": end},
	}
	cur, err := s.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("inbox: get_messages_stream %s: %w", userID, err)
	}
	defer cur.Close(ctx)

	var out []*model.Msg
	for cur.Next(ctx) {
		var d doc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("inbox: decode %s: %w", userID, err)
		}
		out = append(out, fromDoc(d))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("inbox: get_messages_stream %s: %w", userID, err)
	}
	return out, nil
}

// GetMsgs is §4.4's get_msgs: the union query across both indexes.
// Rows where the user is the sender (mirror rows) have send_seq
// reported and seq forced to 0 so the client can distinguish them.
func (s *Store) GetMsgs(ctx context.Context, userID string, sendStart, sendEnd, recStart, recEnd int64) ([]*model.Msg, error) {
	query := bson.M{
		"$or": []bson.M{
			{"receiver_id": userID, "seq": bson.M{"$gte": recStart, "$lte": recEnd}},
			{"sender_id": userID, "send_seq": bson.M{"$gte": sendStart, "$lte": sendEnd}},
		},
	}
	cur, err := s.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("inbox: get_msgs %s: %w", userID, err)
	}
	defer cur.Close(ctx)

	var out []*model.Msg
	for cur.Next(ctx) {
		var d doc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("inbox: decode %s: %w", userID, err)
		}
		msg := fromDoc(d)
		if d.SenderID == userID && d.ReceiverID != userID {
			msg.Seq = 0
		}
		out = append(out, msg)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("inbox: get_msgs %s: %w", userID, err)
	}
	return out, nil
}

// MsgRead is §4.4's msg_read: bulk is_read := true.
func (s *Store) MsgRead(ctx context.Context, userID string, seqs []int64) error {
	if len(seqs) == 0 {
		return nil
	}
	_, err := s.coll.UpdateMany(ctx,
		bson.M{"receiver_id": userID, "seq": bson.M{"$in": seqs}},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return fmt.Errorf("inbox: msg_read %s: %w", userID, err)
	}
	return nil
}

// Janitor deletes rows older than period whose msg_type is not in the
// excluded set (§4.4, §8 invariant 9). Each Run call is one pass; no
// role in this repository constructs a Janitor or schedules Run.
type Janitor struct {
	store       *Store
	period      time.Duration
	exceptTypes []model.MsgType
}

func NewJanitor(store *Store, period time.Duration, exceptTypes []model.MsgType) *Janitor {
	return &Janitor{store: store, period: period, exceptTypes: exceptTypes}
}

// Run performs one pass relative to now.
func (j *Janitor) Run(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-j.period).UnixMilli()
	excluded := make(bson.A, 0, len(j.exceptTypes))
	for _, t := range j.exceptTypes {
		excluded = append(excluded, int32(t))
	}
	query := bson.M{
		"send_time": bson.M{"$lt": cutoff},
		"msg_type":  bson.M{"$nin": excluded},
	}
	res, err := j.store.coll.DeleteMany(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("inbox: janitor pass: %w", err)
	}
	return res.DeletedCount, nil
}
