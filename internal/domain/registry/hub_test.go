package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webitel/im-delivery-service/internal/domain/model"
)

func TestHubRegisterKnocksOffSamePlatform(t *testing.T) {
	hub := NewHub(nil)

	first := NewSession("u1", model.PlatformMobile, 4)
	second := NewSession("u1", model.PlatformMobile, 4)

	require.Nil(t, hub.Register(first))
	evicted := hub.Register(second)

	require.NotNil(t, evicted)
	assert.Equal(t, first.ID(), evicted.ID())
	select {
	case <-first.Done():
	default:
		t.Fatal("expected evicted session to be knocked off")
	}
}

func TestHubRegisterDistinctPlatformsCoexist(t *testing.T) {
	hub := NewHub(nil)

	mobile := NewSession("u1", model.PlatformMobile, 4)
	desktop := NewSession("u1", model.PlatformDesktop, 4)

	assert.Nil(t, hub.Register(mobile))
	assert.Nil(t, hub.Register(desktop))
	assert.True(t, hub.IsConnected("u1"))
}

func TestHubUnregisterIsCompareAndRemove(t *testing.T) {
	hub := NewHub(nil)

	stale := NewSession("u1", model.PlatformMobile, 4)
	hub.Register(stale)

	fresh := NewSession("u1", model.PlatformMobile, 4)
	hub.Register(fresh) // evicts stale

	// A deferred cleanup for the stale connection must not remove fresh.
	hub.Unregister("u1", stale.ID())
	assert.True(t, hub.IsConnected("u1"))

	hub.Unregister("u1", fresh.ID())
	assert.False(t, hub.IsConnected("u1"))
}

func TestHubSendToUserDeliversToEveryLocalPlatform(t *testing.T) {
	hub := NewHub(nil)
	mobile := NewSession("u1", model.PlatformMobile, 4)
	desktop := NewSession("u1", model.PlatformDesktop, 4)
	hub.Register(mobile)
	hub.Register(desktop)

	delivered := hub.SendToUser(&model.Msg{ReceiverID: "u1", Content: []byte("hi")})
	assert.Equal(t, 2, delivered)

	assert.Len(t, mobile.Recv(), 1)
	assert.Len(t, desktop.Recv(), 1)
}

func TestHubSendToUserUnknownReceiverDeliversNothing(t *testing.T) {
	hub := NewHub(nil)
	assert.Equal(t, 0, hub.SendToUser(&model.Msg{ReceiverID: "ghost"}))
}

func TestHubSendGroupToUserRewritesSeqPerMember(t *testing.T) {
	hub := NewHub(nil)
	a := NewSession("a", model.PlatformMobile, 4)
	b := NewSession("b", model.PlatformMobile, 4)
	hub.Register(a)
	hub.Register(b)

	msg := &model.Msg{GroupID: "g1", Seq: 0}
	members := []model.GroupMemSeq{
		{MemID: "a", CurSeq: 11},
		{MemID: "b", CurSeq: 22},
		{MemID: "ghost", CurSeq: 33},
	}

	delivered := hub.SendGroupToUser(msg, members)
	assert.Equal(t, 2, delivered)

	got := <-a.Recv()
	assert.Equal(t, int64(11), got.Seq)
	assert.Equal(t, "a", got.ReceiverID)

	got = <-b.Recv()
	assert.Equal(t, int64(22), got.Seq)
}

func TestHubMirrorToOtherPlatformsSkipsException(t *testing.T) {
	hub := NewHub(nil)
	mobile := NewSession("u1", model.PlatformMobile, 4)
	desktop := NewSession("u1", model.PlatformDesktop, 4)
	hub.Register(mobile)
	hub.Register(desktop)

	delivered := hub.MirrorToOtherPlatforms("u1", mobile.ID(), &model.Msg{})
	assert.Equal(t, 1, delivered)
	assert.Len(t, desktop.Recv(), 1)
	assert.Len(t, mobile.Recv(), 0)
}

func TestHubStatsCountsOnlyNonEmptyCells(t *testing.T) {
	hub := NewHub(nil)
	hub.Register(NewSession("u1", model.PlatformMobile, 4))
	hub.Register(NewSession("u1", model.PlatformDesktop, 4))
	hub.Register(NewSession("u2", model.PlatformWeb, 4))

	stats := hub.Stats()
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 3, stats.TotalConnections)
}

func TestHubShutdownClosesEverySession(t *testing.T) {
	hub := NewHub(nil)
	s := NewSession("u1", model.PlatformMobile, 4)
	hub.Register(s)

	hub.Shutdown()

	select {
	case <-s.Done():
	default:
		t.Fatal("expected session closed on shutdown")
	}
	assert.False(t, hub.IsConnected("u1"))
}

func TestSessionSendFailsAfterClose(t *testing.T) {
	s := NewSession("u1", model.PlatformMobile, 1)
	s.Close()
	assert.False(t, s.Send(&model.Msg{}))
}

func TestSessionSendFailsWhenQueueFull(t *testing.T) {
	s := NewSession("u1", model.PlatformMobile, 1)
	assert.True(t, s.Send(&model.Msg{}))
	assert.False(t, s.Send(&model.Msg{}))
}

func TestNewCtxSessionCancelsOnSessionClose(t *testing.T) {
	s := NewSession("u1", model.PlatformMobile, 1)
	_, ctx := NewCtxSession(t.Context(), s)

	s.Close()

	<-ctx.Done()
}
