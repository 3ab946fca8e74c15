// Package seqcache is C3, the Redis-backed sequence engine: dense,
// monotonically-increasing per-user send/recv counters with a
// STEP-bounded checkpoint signal, plus the hot-path group-membership
// set used for fan-out (C11).
package seqcache

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"github.com/webitel/im-delivery-service/internal/domain/model"
)

// checkpointScript atomically bumps the live counter and decides
// whether the persisted high-water mark needs to move. Keys: 1 =
// live counter, 2 = persisted-max counter. ARGV: 1 = step.
//
// It mirrors §4.3's "updated flag... under a single scripted
// transaction": INCR live; if live - max >= step, max += step and
// report updated=true.
var checkpointScript = redis.NewScript(`
local live = redis.call("INCR", KEYS[1])
local max = tonumber(redis.call("GET", KEYS[2]) or "0")
local step = tonumber(ARGV[1])
local updated = 0
if live - max >= step then
  max = max + step
  redis.call("SET", KEYS[2], max)
  updated = 1
end
return {live, max, updated}
`)

func recvKey(userID string) string { return "seq:" + userID }
func recvMaxKey(userID string) string { return "seq:max:" + userID }
func sendKey(userID string) string { return "send_seq:" + userID }
func sendMaxKey(userID string) string { return "send_seq:max:" + userID }
func groupKey(groupID string) string { return "group:members:" + groupID }

const seqLoadedKey = "seq:loaded"

// Result is the outcome of an atomic increment: the new live value,
// the currently persisted max, and whether this call crossed a STEP
// boundary and the caller must invoke the checkpoint store (C4).
type Result struct {
	Live         int64
	PersistedMax int64
	Updated      bool
}

// Cache is C3 plus C11's Redis-backed group-membership set, fronted
// by a small LRU for the group membership read path (§"read-through
// layer in front of C11").
type Cache struct {
	rdb  *redis.Client
	step int64

	memberCache *lru.Cache[string, []string]
}

func New(rdb *redis.Client, step int64) (*Cache, error) {
	if step <= 0 {
		return nil, errors.New("seqcache: step must be positive")
	}
	members, err := lru.New[string, []string](4096)
	if err != nil {
		return nil, fmt.Errorf("seqcache: lru: %w", err)
	}
	return &Cache{rdb: rdb, step: step, memberCache: members}, nil
}

// IncrRecvSeq is §4.3's incr_recv_seq.
func (c *Cache) IncrRecvSeq(ctx context.Context, userID string) (Result, error) {
	return c.incr(ctx, recvKey(userID), recvMaxKey(userID))
}

// IncrSendSeq is §4.3's incr_send_seq.
func (c *Cache) IncrSendSeq(ctx context.Context, userID string) (Result, error) {
	return c.incr(ctx, sendKey(userID), sendMaxKey(userID))
}

func (c *Cache) incr(ctx context.Context, liveKey, maxKey string) (Result, error) {
	res, err := checkpointScript.Run(ctx, c.rdb, []string{liveKey, maxKey}, c.step).Result()
	if err != nil {
		return Result{}, fmt.Errorf("seqcache: incr %s: %w", liveKey, err)
	}
	vals, ok := res.([]any)
	if !ok || len(vals) != 3 {
		return Result{}, fmt.Errorf("seqcache: unexpected script result for %s", liveKey)
	}
	live := toInt64(vals[0])
	max := toInt64(vals[1])
	updated := toInt64(vals[2]) == 1
	return Result{Live: live, PersistedMax: max, Updated: updated}, nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

// IncrGroupSeq is §4.3's incr_group_seq: one pipelined round-trip
// allocating a recv_seq for every member.
func (c *Cache) IncrGroupSeq(ctx context.Context, memberIDs []string) ([]model.GroupMemSeq, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}
	pipe := c.rdb.Pipeline()
	cmds := make([]*redis.Cmd, len(memberIDs))
	for i, id := range memberIDs {
		cmds[i] = pipe.Eval(ctx, checkpointScript.Src(), []string{recvKey(id), recvMaxKey(id)}, c.step)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("seqcache: incr_group_seq pipeline: %w", err)
	}

	out := make([]model.GroupMemSeq, len(memberIDs))
	for i, id := range memberIDs {
		vals, ok := cmds[i].Val().([]any)
		if !ok || len(vals) != 3 {
			return nil, fmt.Errorf("seqcache: unexpected script result for member %s", id)
		}
		out[i] = model.GroupMemSeq{
			MemID:      id,
			CurSeq:     toInt64(vals[0]),
			NeedUpdate: toInt64(vals[2]) == 1,
		}
	}
	return out, nil
}

// Step reports the STEP bound this cache was configured with, for
// callers that need to reason about the checkpoint threshold
// themselves (e.g. C8's maybeCheckpointSend).
func (c *Cache) Step() int64 { return c.step }

// GetSendSeq is §4.3's get_send_seq.
func (c *Cache) GetSendSeq(ctx context.Context, userID string) (live, persistedMax int64, err error) {
	pipe := c.rdb.Pipeline()
	liveCmd := pipe.Get(ctx, sendKey(userID))
	maxCmd := pipe.Get(ctx, sendMaxKey(userID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, 0, fmt.Errorf("seqcache: get_send_seq %s: %w", userID, err)
	}
	live, _ = liveCmd.Int64()
	persistedMax, _ = maxCmd.Int64()
	return live, persistedMax, nil
}

// SaveGroupMembersID replaces group_id's member set.
func (c *Cache) SaveGroupMembersID(ctx context.Context, groupID string, memberIDs []string) error {
	c.memberCache.Remove(groupID)
	if len(memberIDs) == 0 {
		return nil
	}
	members := make([]any, len(memberIDs))
	for i, id := range memberIDs {
		members[i] = id
	}
	if err := c.rdb.SAdd(ctx, groupKey(groupID), members...).Err(); err != nil {
		return fmt.Errorf("seqcache: save_group_members_id %s: %w", groupID, err)
	}
	return nil
}

// QueryGroupMembersID is the C11 hot path consulted before falling
// back to the DB (§4.2 step 6). The empty-slice, nil-error return
// means "cache miss"; callers distinguish it from a real empty group
// only by also checking the DB, matching the "cache is either empty
// or a strict superset" invariant (§3, §9 open question).
func (c *Cache) QueryGroupMembersID(ctx context.Context, groupID string) ([]string, error) {
	if cached, ok := c.memberCache.Get(groupID); ok {
		return cached, nil
	}
	members, err := c.rdb.SMembers(ctx, groupKey(groupID)).Result()
	if err != nil {
		return nil, fmt.Errorf("seqcache: query_group_members_id %s: %w", groupID, err)
	}
	c.memberCache.Add(groupID, members)
	return members, nil
}

// RemoveGroupMemberID is used for GroupMemberExit.
func (c *Cache) RemoveGroupMemberID(ctx context.Context, groupID, memberID string) error {
	c.memberCache.Remove(groupID)
	if err := c.rdb.SRem(ctx, groupKey(groupID), memberID).Err(); err != nil {
		return fmt.Errorf("seqcache: remove_group_member_id %s/%s: %w", groupID, memberID, err)
	}
	return nil
}

// RemoveGroupMemberBatch is used for GroupRemoveMember.
func (c *Cache) RemoveGroupMemberBatch(ctx context.Context, groupID string, memberIDs []string) error {
	c.memberCache.Remove(groupID)
	if len(memberIDs) == 0 {
		return nil
	}
	members := make([]any, len(memberIDs))
	for i, id := range memberIDs {
		members[i] = id
	}
	if err := c.rdb.SRem(ctx, groupKey(groupID), members...).Err(); err != nil {
		return fmt.Errorf("seqcache: remove_group_member_batch %s: %w", groupID, err)
	}
	return nil
}

// DelGroupMembers evicts the whole set, used on GroupDismiss.
func (c *Cache) DelGroupMembers(ctx context.Context, groupID string) error {
	c.memberCache.Remove(groupID)
	if err := c.rdb.Del(ctx, groupKey(groupID)).Err(); err != nil {
		return fmt.Errorf("seqcache: del_group_members %s: %w", groupID, err)
	}
	return nil
}

// SeqLoaded reports the one-shot cold-start warmup flag.
func (c *Cache) SeqLoaded(ctx context.Context) (bool, error) {
	n, err := c.rdb.Exists(ctx, seqLoadedKey).Result()
	if err != nil {
		return false, fmt.Errorf("seqcache: seq_loaded: %w", err)
	}
	return n > 0, nil
}

// Checkpoint is one user's persisted high-water marks, as loaded from
// C4 during warmup (the `loadseq` CLI subcommand).
type Checkpoint struct {
	UserID     string
	SendMaxSeq int64
	RecMaxSeq  int64
}

// SetSeq is §4.3's set_seq(batch): primes live/max counters for a
// batch of users from the checkpoint store at cold start, then marks
// seq_loaded so a restarted process doesn't redo the warmup.
func (c *Cache) SetSeq(ctx context.Context, batch []Checkpoint) error {
	if len(batch) == 0 {
		return c.rdb.Set(ctx, seqLoadedKey, 1, 0).Err()
	}
	pipe := c.rdb.Pipeline()
	for _, cp := range batch {
		pipe.Set(ctx, sendKey(cp.UserID), cp.SendMaxSeq, 0)
		// send_seq:max mirrors the loaded checkpoint exactly rather than
		// padding it by step: C8's maybeCheckpointSend re-derives the
		// persist decision from this same key later, and padding it here
		// would leave that read seeing a max a full STEP ahead of what
		// C4 actually has on disk, doubling the worst-case lag on a warm
		// restart (§8 invariant 3). recv_seq has no such external
		// reader — incr_recv_seq's own Updated flag drives its
		// checkpoint — so it keeps the §9-specified STEP headroom.
		pipe.Set(ctx, sendMaxKey(cp.UserID), cp.SendMaxSeq, 0)
		pipe.Set(ctx, recvKey(cp.UserID), cp.RecMaxSeq, 0)
		pipe.Set(ctx, recvMaxKey(cp.UserID), cp.RecMaxSeq+c.step, 0)
	}
	pipe.Set(ctx, seqLoadedKey, 1, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("seqcache: set_seq: %w", err)
	}
	return nil
}
