package registry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/webitel/im-delivery-service/internal/domain/model"
)

// Session owns one WebSocket (or gRPC stream) write-half for a single
// (user_id, platform) slot, per spec §3's session-registry invariant.
type Session interface {
	ID() uuid.UUID
	UserID() string
	Platform() model.Platform
	// Send pushes a message to the session's outbound queue. It returns
	// false if the queue is full or the session is already closed.
	Send(msg *model.Msg) bool
	// Recv exposes the outbound queue for transports that pump it
	// themselves (gRPC Stream.Send loops, WS writer goroutines).
	Recv() <-chan *model.Msg
	// KnockOff delivers the close signal used when a second connection
	// takes this session's (user_id, platform) slot.
	KnockOff()
	// Done is closed once KnockOff or Close has fired.
	Done() <-chan struct{}
	Close()
}

var _ Session = (*session)(nil)

type session struct {
	id       uuid.UUID
	userID   string
	platform model.Platform
	sendCh   chan *model.Msg
	doneCh   chan struct{}
	closeOnce sync.Once
}

// NewSession constructs a session with a bounded outbound mailbox. bufSize
// mirrors the teacher's per-connection backpressure buffer.
func NewSession(userID string, platform model.Platform, bufSize int) Session {
	return &session{
		id:       uuid.New(),
		userID:   userID,
		platform: platform,
		sendCh:   make(chan *model.Msg, bufSize),
		doneCh:   make(chan struct{}),
	}
}

func (s *session) ID() uuid.UUID            { return s.id }
func (s *session) UserID() string           { return s.userID }
func (s *session) Platform() model.Platform { return s.platform }
func (s *session) Recv() <-chan *model.Msg  { return s.sendCh }
func (s *session) Done() <-chan struct{}    { return s.doneCh }

func (s *session) Send(msg *model.Msg) bool {
	select {
	case <-s.doneCh:
		return false
	default:
	}
	select {
	case s.sendCh <- msg:
		return true
	default:
		return false
	}
}

// KnockOff and Close are both idempotent terminal signals; KnockOff is
// used when a newcomer takes this slot (close code 4001), Close is used
// for ordinary teardown (reader/pinger exit, server shutdown).
func (s *session) KnockOff() { s.Close() }

func (s *session) Close() {
	s.closeOnce.Do(func() {
		close(s.doneCh)
	})
}

// ctxSession wraps a Session with a cancellation context so that reader/
// pinger/watcher tasks sharing one context all exit together, per §5's
// "each WebSocket session carries a cancellation primitive".
type ctxSession struct {
	Session
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCtxSession binds a session to a derived, cancellable context.
func NewCtxSession(parent context.Context, s Session) (*ctxSession, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	cs := &ctxSession{Session: s, ctx: ctx, cancel: cancel}
	go func() {
		select {
		case <-s.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return cs, ctx
}

func (cs *ctxSession) Cancel() { cs.cancel() }

// Sessions do not track activity, and nothing evicts idle sessions; a
// session ends only through KnockOff or Close. This blank reference
// keeps the time import in use.
var _ = time.Now
