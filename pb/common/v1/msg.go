// Package commonv1 mirrors the wire shape that `buf generate` would
// produce from api/proto/delivery/v1/msg.proto. It is hand-maintained in
// this tree only because the proto toolchain isn't run as part of this
// build; the source of truth for the wire contract is the .proto file.
package commonv1

// Platform mirrors model.Platform on the wire.
type Platform int32

const (
	Platform_PLATFORM_UNSPECIFIED Platform = iota
	Platform_MOBILE
	Platform_DESKTOP
	Platform_WEB
)

// MsgType mirrors model.MsgType on the wire.
type MsgType int32

const (
	MsgType_UNSPECIFIED MsgType = iota
	MsgType_SINGLE_MSG
	MsgType_SINGLE_CALL_INVITE_NOT_ANSWER
	MsgType_SINGLE_CALL_INVITE_CANCEL
	MsgType_HANGUP
	MsgType_CONNECT_SINGLE_CALL
	MsgType_REJECT_SINGLE_CALL
	MsgType_FRIEND_APPLY_REQ
	MsgType_FRIEND_APPLY_RESP
	MsgType_FRIEND_DELETE
	MsgType_GROUP_MSG
	MsgType_GROUP_FILE
	MsgType_GROUP_POLL
	MsgType_GROUP_ANNOUNCEMENT
	MsgType_GROUP_INVITATION
	MsgType_GROUP_INVITE_NEW
	MsgType_GROUP_MEMBER_EXIT
	MsgType_GROUP_REMOVE_MEMBER
	MsgType_GROUP_DISMISS
	MsgType_GROUP_UPDATE
	MsgType_GROUP_MUTE
	MsgType_GROUP_DISMISS_OR_EXIT_RECEIVED
	MsgType_GROUP_INVITATION_RECEIVED
	MsgType_FRIENDSHIP_RECEIVED
	MsgType_SINGLE_CALL_INVITE
	MsgType_AGREE_SINGLE_CALL
	MsgType_SINGLE_CALL_OFFER
	MsgType_CANDIDATE
	MsgType_FRIEND_BLACK
	MsgType_MSG_REC_RESP
	MsgType_NOTIFICATION
	MsgType_SERVICE
	MsgType_READ
)

// ContentType mirrors model.ContentType on the wire.
type ContentType int32

const (
	ContentType_CONTENT_UNSPECIFIED ContentType = iota
	ContentType_TEXT
	ContentType_IMAGE
	ContentType_AUDIO
	ContentType_VIDEO
	ContentType_FILE
	ContentType_EMOJI
	ContentType_ERROR
)

// Msg is the wire envelope for every transport (gRPC, WebSocket binary
// frames, Kafka record payloads). See spec §3 / §6.
type Msg struct {
	ClientId     string      `json:"client_id"`
	ServerId     string      `json:"server_id"`
	SenderId     string      `json:"sender_id"`
	ReceiverId   string      `json:"receiver_id"`
	GroupId      string      `json:"group_id,omitempty"`
	Platform     Platform    `json:"platform"`
	MsgType      MsgType     `json:"msg_type"`
	ContentType  ContentType `json:"content_type"`
	Content      []byte      `json:"content"`
	SendTime     int64       `json:"send_time"`
	SendSeq      int64       `json:"send_seq"`
	Seq          int64       `json:"seq"`
	IsRead       bool        `json:"is_read"`
	RelatedMsgId string      `json:"related_msg_id,omitempty"`
}

// GroupMemSeq is the per-member sequence allocation result carried by
// SendGroupMsgRequest and the consumer's group fan-out (§4.2 step 6).
type GroupMemSeq struct {
	MemId      string `json:"mem_id"`
	CurSeq     int64  `json:"cur_seq"`
	NeedUpdate bool   `json:"need_update"`
}
