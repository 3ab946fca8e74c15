// Package classify holds the §4.8 message-type classification table as
// data, per the design note in spec §9 ("classification table as data,
// not a switch buried in code").
package classify

import "github.com/webitel/im-delivery-service/internal/domain/model"

// Domain is the routing domain a message belongs to for sequence/fan-out
// purposes.
type Domain int8

const (
	DomainNone Domain = iota
	DomainSingle
	DomainGroup
)

// Rule is one row of the §4.8 table.
type Rule struct {
	Domain        Domain
	NeedRecvSeq   bool
	NeedHistory   bool
	Persist       bool
	ReceiptAck    bool
	Transient     bool // never persisted, per §4.2 step 7
	DeleteOnAck   bool // receipt-ack triad: delete the referenced inbox row
}

var table = map[model.MsgType]Rule{
	model.SingleMsg:                 {Domain: DomainSingle, NeedRecvSeq: true, NeedHistory: true, Persist: true},
	model.SingleCallInviteNotAnswer: {Domain: DomainSingle, NeedRecvSeq: true, NeedHistory: true, Persist: true},
	model.SingleCallInviteCancel:    {Domain: DomainSingle, NeedRecvSeq: true, NeedHistory: true, Persist: true},
	model.Hangup:                    {Domain: DomainSingle, NeedRecvSeq: true, NeedHistory: true, Persist: true},
	model.ConnectSingleCall:         {Domain: DomainSingle, NeedRecvSeq: true, NeedHistory: true, Persist: true, Transient: true},
	model.RejectSingleCall:          {Domain: DomainSingle, NeedRecvSeq: true, NeedHistory: true, Persist: true},
	model.FriendApplyReq:            {Domain: DomainSingle, NeedRecvSeq: true, NeedHistory: true, Persist: true},
	model.FriendApplyResp:           {Domain: DomainSingle, NeedRecvSeq: true, NeedHistory: true, Persist: true},
	model.FriendDelete:              {Domain: DomainSingle, NeedRecvSeq: true, NeedHistory: true, Persist: true},

	model.GroupMsg:           {Domain: DomainGroup, NeedRecvSeq: true, NeedHistory: true, Persist: true},
	model.GroupFile:          {Domain: DomainGroup, NeedRecvSeq: true, NeedHistory: true, Persist: true},
	model.GroupPoll:          {Domain: DomainGroup, NeedRecvSeq: true, NeedHistory: true, Persist: true},
	model.GroupAnnouncement:  {Domain: DomainGroup, NeedRecvSeq: true, NeedHistory: true, Persist: true},

	model.GroupInvitation:    {Domain: DomainGroup, NeedRecvSeq: true, NeedHistory: false, Persist: true},
	model.GroupInviteNew:     {Domain: DomainGroup, NeedRecvSeq: true, NeedHistory: false, Persist: true},
	model.GroupMemberExit:    {Domain: DomainGroup, NeedRecvSeq: true, NeedHistory: false, Persist: true},
	model.GroupRemoveMember:  {Domain: DomainGroup, NeedRecvSeq: true, NeedHistory: false, Persist: true},
	model.GroupDismiss:       {Domain: DomainGroup, NeedRecvSeq: true, NeedHistory: false, Persist: true},
	model.GroupUpdate:        {Domain: DomainGroup, NeedRecvSeq: true, NeedHistory: false, Persist: true},
	model.GroupMute:          {Domain: DomainGroup, NeedRecvSeq: true, NeedHistory: false, Persist: true},

	model.GroupDismissOrExitReceived: {Domain: DomainSingle, ReceiptAck: true, DeleteOnAck: true},
	model.GroupInvitationReceived:    {Domain: DomainSingle, ReceiptAck: true, DeleteOnAck: true},
	model.FriendshipReceived:         {Domain: DomainSingle, ReceiptAck: true, DeleteOnAck: true},

	model.SingleCallInvite: {Domain: DomainSingle, Transient: true},
	model.AgreeSingleCall:  {Domain: DomainSingle, Transient: true},
	model.SingleCallOffer:  {Domain: DomainSingle, Transient: true},
	model.Candidate:        {Domain: DomainSingle, Transient: true},

	model.FriendBlack:    {Domain: DomainSingle, Persist: true},
	model.MsgRecResp:     {Domain: DomainSingle, Persist: true},
	model.Notification:   {Domain: DomainSingle, Persist: true},
	model.Service:         {Domain: DomainSingle, Persist: true},

	model.Read: {Domain: DomainNone},
}

// Lookup returns the classification rule for t. Unknown types classify as
// a no-op single-domain, non-persisted row so an unrecognized value never
// panics the consumer — it is dropped after a log line at the call site.
func Lookup(t model.MsgType) Rule {
	if r, ok := table[t]; ok {
		return r
	}
	return Rule{Domain: DomainSingle}
}

// IsTransient reports whether msgType must skip persistence entirely
// (§4.2 step 7, §8 invariant 6).
func IsTransient(t model.MsgType) bool {
	return model.TransientSignalTypes[t]
}

// IsReceiptAck reports whether msgType is one of the three purge-on-ack
// types (§4.8, §8 invariant 5).
func IsReceiptAck(t model.MsgType) bool {
	return model.ReceiptAckTypes[t]
}
