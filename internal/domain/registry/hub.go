// Package registry implements the gateway's per-node session registry:
// a concurrent map of user_id -> (platform -> Session), per spec §3's
// "Session registry (in-memory, per gateway node)" and §9's "hub map is
// a map-of-maps ... implement as an entry API (get-or-insert + remove-
// if-empty)". Adapted from the teacher's sync.Map Hub/Cell actor pair,
// re-keyed from an arbitrary connection set to the (user_id, platform)
// slot this spec requires.
package registry

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/webitel/im-delivery-service/internal/domain/model"
)

// Hubber is the external API consumed by the gateway's RPC/WS handlers
// and by the pusher's Msg-service shims (send_msg_to_user /
// send_group_msg_to_user, §4.6).
type Hubber interface {
	// Register installs sess in the (user_id, platform) slot. If that slot
	// was occupied, the incumbent is knocked off first (§3 invariant,
	// §8 invariant 4) and returned so the caller can log/observe it.
	Register(sess Session) (evicted Session)
	Unregister(userID string, connID uuid.UUID)
	IsConnected(userID string) bool

	// SendToUser delivers msg to every local session of msg.ReceiverID
	// and returns how many sessions accepted it (§4.6 send_msg_to_user).
	SendToUser(msg *model.Msg) int

	// SendGroupToUser delivers msg, with seq rewritten per member, to
	// every GroupMemSeq whose MemID has a local session
	// (§4.6 send_group_msg_to_user).
	SendGroupToUser(msg *model.Msg, members []model.GroupMemSeq) int

	// MirrorToOtherPlatforms delivers msg to every other local session of
	// userID except the one identified by exceptConnID (§4.6 mirror-to-
	// sender's-other-platforms and §8 scenario S2).
	MirrorToOtherPlatforms(userID string, exceptConnID uuid.UUID, msg *model.Msg) int

	Stats() model.HubStats
	Shutdown()
}

var _ Hubber = (*Hub)(nil)

// Hub is the concrete, per-node implementation.
type Hub struct {
	users  sync.Map // string userID -> *userCell
	logger *slog.Logger
}

type userCell struct {
	mu       sync.RWMutex
	sessions map[model.Platform]Session // at most one per platform (§3)
}

// NewHub constructs an empty per-node hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{logger: logger}
}

func (h *Hub) cellFor(userID string) *userCell {
	val, _ := h.users.LoadOrStore(userID, &userCell{sessions: make(map[model.Platform]Session)})
	return val.(*userCell)
}

// Register performs the knock-off dance described in §4.6 and §9: a
// second connection for the same (user_id, platform) evicts the first
// via its cancellation signal before the newcomer is installed.
func (h *Hub) Register(sess Session) (evicted Session) {
	cell := h.cellFor(sess.UserID())

	cell.mu.Lock()
	if incumbent, ok := cell.sessions[sess.Platform()]; ok {
		evicted = incumbent
		evicted.KnockOff()
	}
	cell.sessions[sess.Platform()] = sess
	cell.mu.Unlock()

	if evicted != nil {
		if h.logger != nil {
			h.logger.Info("session knocked off",
				slog.String("user_id", sess.UserID()),
				slog.Any("platform", sess.Platform()),
				slog.String("evicted_conn_id", evicted.ID().String()),
				slog.String("new_conn_id", sess.ID().String()),
			)
		}
	}
	return evicted
}

// Unregister performs a compare-and-remove: it only deletes the slot if
// it still holds connID, so a racing newcomer's registration is never
// clobbered by a departing reader/pinger/watcher task's deferred cleanup
// (the "skip unregister if the watcher fired" rule in §4.6).
func (h *Hub) Unregister(userID string, connID uuid.UUID) {
	val, ok := h.users.Load(userID)
	if !ok {
		return
	}
	cell := val.(*userCell)

	cell.mu.Lock()
	for platform, sess := range cell.sessions {
		if sess.ID() == connID {
			delete(cell.sessions, platform)
			break
		}
	}
	empty := len(cell.sessions) == 0
	cell.mu.Unlock()

	if empty {
		h.users.Delete(userID)
	}
}

func (h *Hub) IsConnected(userID string) bool {
	val, ok := h.users.Load(userID)
	if !ok {
		return false
	}
	cell := val.(*userCell)
	cell.mu.RLock()
	defer cell.mu.RUnlock()
	return len(cell.sessions) > 0
}

func (h *Hub) SendToUser(msg *model.Msg) int {
	val, ok := h.users.Load(msg.ReceiverID)
	if !ok {
		return 0
	}
	cell := val.(*userCell)
	cell.mu.RLock()
	defer cell.mu.RUnlock()

	delivered := 0
	for _, sess := range cell.sessions {
		if sess.Send(msg) {
			delivered++
		}
	}
	return delivered
}

func (h *Hub) SendGroupToUser(msg *model.Msg, members []model.GroupMemSeq) int {
	delivered := 0
	for _, m := range members {
		val, ok := h.users.Load(m.MemID)
		if !ok {
			continue
		}
		cell := val.(*userCell)

		clone := *msg
		clone.Seq = m.CurSeq
		clone.ReceiverID = m.MemID

		cell.mu.RLock()
		for _, sess := range cell.sessions {
			if sess.Send(&clone) {
				delivered++
			}
		}
		cell.mu.RUnlock()
	}
	return delivered
}

func (h *Hub) MirrorToOtherPlatforms(userID string, exceptConnID uuid.UUID, msg *model.Msg) int {
	val, ok := h.users.Load(userID)
	if !ok {
		return 0
	}
	cell := val.(*userCell)
	cell.mu.RLock()
	defer cell.mu.RUnlock()

	delivered := 0
	for _, sess := range cell.sessions {
		if sess.ID() == exceptConnID {
			continue
		}
		if sess.Send(msg) {
			delivered++
		}
	}
	return delivered
}

// Stats reports a point-in-time snapshot of the users and sessions this
// hub holds (model.HubStats).
func (h *Hub) Stats() model.HubStats {
	stats := model.HubStats{}
	h.users.Range(func(_, v any) bool {
		cell := v.(*userCell)
		cell.mu.RLock()
		n := len(cell.sessions)
		cell.mu.RUnlock()
		if n > 0 {
			stats.TotalUsers++
			stats.TotalConnections += n
		}
		return true
	})
	return stats
}

// Shutdown closes every session on this node, e.g. during a graceful
// process stop.
func (h *Hub) Shutdown() {
	h.users.Range(func(key, v any) bool {
		cell := v.(*userCell)
		cell.mu.Lock()
		for _, sess := range cell.sessions {
			sess.Close()
		}
		cell.mu.Unlock()
		h.users.Delete(key)
		return true
	})
}
