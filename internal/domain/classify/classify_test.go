package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/webitel/im-delivery-service/internal/domain/model"
)

func TestLookupSingleMsg(t *testing.T) {
	rule := Lookup(model.SingleMsg)
	assert.Equal(t, DomainSingle, rule.Domain)
	assert.True(t, rule.NeedRecvSeq)
	assert.True(t, rule.NeedHistory)
	assert.True(t, rule.Persist)
	assert.False(t, rule.Transient)
}

func TestLookupGroupMsg(t *testing.T) {
	rule := Lookup(model.GroupMsg)
	assert.Equal(t, DomainGroup, rule.Domain)
	assert.True(t, rule.Persist)
}

func TestLookupReceiptAckTriadDeletesOnAck(t *testing.T) {
	for _, mt := range []model.MsgType{model.GroupDismissOrExitReceived, model.GroupInvitationReceived, model.FriendshipReceived} {
		rule := Lookup(mt)
		assert.True(t, rule.ReceiptAck, "%v should be a receipt-ack type", mt)
		assert.True(t, rule.DeleteOnAck, "%v should delete on ack", mt)
		assert.False(t, rule.Persist, "%v should not persist", mt)
	}
}

func TestLookupTransientCallSignalingNeverPersists(t *testing.T) {
	for _, mt := range []model.MsgType{model.SingleCallInvite, model.AgreeSingleCall, model.SingleCallOffer, model.Candidate} {
		rule := Lookup(mt)
		assert.True(t, rule.Transient, "%v should be transient", mt)
		assert.False(t, rule.Persist, "%v should not persist", mt)
	}
}

func TestLookupReadIsDomainNone(t *testing.T) {
	rule := Lookup(model.Read)
	assert.Equal(t, DomainNone, rule.Domain)
}

func TestLookupUnknownTypeFallsBackToNoOpSingle(t *testing.T) {
	rule := Lookup(model.MsgType(9999))
	assert.Equal(t, DomainSingle, rule.Domain)
	assert.False(t, rule.Persist)
	assert.False(t, rule.NeedRecvSeq)
}

func TestIsTransientMatchesTable(t *testing.T) {
	assert.True(t, IsTransient(model.SingleCallInvite))
	assert.False(t, IsTransient(model.SingleMsg))
}

func TestIsReceiptAckMatchesTable(t *testing.T) {
	assert.True(t, IsReceiptAck(model.FriendshipReceived))
	assert.False(t, IsReceiptAck(model.GroupMsg))
}
