// Package model holds the wire-independent entities shared by every
// transport and storage adapter: the canonical Msg envelope, the
// per-user sequence state, and the group fan-out helpers.
package model

// Platform identifies the originating client family of a session or a message.
type Platform int32

const (
	PlatformUnspecified Platform = iota
	PlatformMobile
	PlatformDesktop
	PlatformWeb
)

// MirrorPlatform returns the platform that should receive a mirrored copy
// of a message sent from p (§4.6: Mobile mirrors to Desktop and vice versa).
func (p Platform) MirrorPlatform() Platform {
	switch p {
	case PlatformMobile:
		return PlatformDesktop
	case PlatformDesktop:
		return PlatformMobile
	default:
		return PlatformUnspecified
	}
}

// ContentType is the payload encoding carried in Msg.Content.
type ContentType int32

const (
	ContentUnspecified ContentType = iota
	ContentText
	ContentImage
	ContentAudio
	ContentVideo
	ContentFile
	ContentEmoji
	ContentError
)

// MsgType enumerates every message variety the pipeline classifies in §4.8.
type MsgType int32

const (
	MsgTypeUnspecified MsgType = iota

	SingleMsg
	SingleCallInviteNotAnswer
	SingleCallInviteCancel
	Hangup
	ConnectSingleCall
	RejectSingleCall
	FriendApplyReq
	FriendApplyResp
	FriendDelete

	GroupMsg
	GroupFile
	GroupPoll
	GroupAnnouncement

	GroupInvitation
	GroupInviteNew
	GroupMemberExit
	GroupRemoveMember
	GroupDismiss
	GroupUpdate
	GroupMute

	GroupDismissOrExitReceived
	GroupInvitationReceived
	FriendshipReceived

	SingleCallInvite
	AgreeSingleCall
	SingleCallOffer
	Candidate

	FriendBlack
	MsgRecResp
	Notification
	Service

	Read
)

// Msg is the canonical envelope described by spec §3.
type Msg struct {
	ClientID      string
	ServerID      string
	SenderID      string
	ReceiverID    string
	GroupID       string
	Platform      Platform
	MsgType       MsgType
	ContentType   ContentType
	Content       []byte
	SendTime      int64
	SendSeq       int64
	Seq           int64
	IsRead        bool
	RelatedMsgID  string
}

// MsgRead is the decoded payload of a Read message's Content field.
type MsgRead struct {
	UserID  string  `json:"user_id"`
	MsgSeq  []int64 `json:"msg_seq"`
}

// GroupMemSeq is the per-member outcome of a batched group sequence
// allocation (§4.2 step 6, §4.3 incr_group_seq).
type GroupMemSeq struct {
	MemID      string
	CurSeq     int64
	NeedUpdate bool
}

// ReceiptAckTypes is the triad whose arrival purges a referenced inbox row
// instead of allocating one (§4.8, §8 invariant 5).
var ReceiptAckTypes = map[MsgType]bool{
	GroupDismissOrExitReceived: true,
	GroupInvitationReceived:    true,
	FriendshipReceived:         true,
}

// TransientSignalTypes never touch history or inbox (§4.2 step 7, §8 invariant 6).
var TransientSignalTypes = map[MsgType]bool{
	ConnectSingleCall: true,
	AgreeSingleCall:   true,
	Candidate:         true,
	SingleCallOffer:   true,
	SingleCallInvite:  true,
}
