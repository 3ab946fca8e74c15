// Package wire turns WebSocket frames into model.Msg and back, the
// gateway-side counterpart of the teacher's marshaller/ws package.
// Binary frames are the primary protocol (JSON payload over the
// binary opcode); Text frames are accepted from legacy clients as a
// plain JSON object with the same field names (§4.6).
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/webitel/im-delivery-service/internal/domain/model"
)

// frame is the over-the-wire shape of model.Msg; field names match
// the proto message's JSON names so legacy text clients can send the
// same object shape a generated client would.
type frame struct {
	ClientID     string `json:"client_id,omitempty"`
	ServerID     string `json:"server_id,omitempty"`
	SenderID     string `json:"sender_id,omitempty"`
	ReceiverID   string `json:"receiver_id,omitempty"`
	GroupID      string `json:"group_id,omitempty"`
	Platform     int32  `json:"platform,omitempty"`
	MsgType      int32  `json:"msg_type"`
	ContentType  int32  `json:"content_type,omitempty"`
	Content      []byte `json:"content,omitempty"`
	SendTime     int64  `json:"send_time,omitempty"`
	SendSeq      int64  `json:"send_seq,omitempty"`
	Seq          int64  `json:"seq,omitempty"`
	IsRead       bool   `json:"is_read,omitempty"`
	RelatedMsgID string `json:"related_msg_id,omitempty"`
}

func toFrame(m *model.Msg) frame {
	return frame{
		ClientID:     m.ClientID,
		ServerID:     m.ServerID,
		SenderID:     m.SenderID,
		ReceiverID:   m.ReceiverID,
		GroupID:      m.GroupID,
		Platform:     int32(m.Platform),
		MsgType:      int32(m.MsgType),
		ContentType:  int32(m.ContentType),
		Content:      m.Content,
		SendTime:     m.SendTime,
		SendSeq:      m.SendSeq,
		Seq:          m.Seq,
		IsRead:       m.IsRead,
		RelatedMsgID: m.RelatedMsgID,
	}
}

func (f frame) toMsg() *model.Msg {
	return &model.Msg{
		ClientID:     f.ClientID,
		ServerID:     f.ServerID,
		SenderID:     f.SenderID,
		ReceiverID:   f.ReceiverID,
		GroupID:      f.GroupID,
		Platform:     model.Platform(f.Platform),
		MsgType:      model.MsgType(f.MsgType),
		ContentType:  model.ContentType(f.ContentType),
		Content:      f.Content,
		SendTime:     f.SendTime,
		SendSeq:      f.SendSeq,
		Seq:          f.Seq,
		IsRead:       f.IsRead,
		RelatedMsgID: f.RelatedMsgID,
	}
}

// DecodeBinary decodes a Binary-opcode frame (the primary protocol).
func DecodeBinary(b []byte) (*model.Msg, error) {
	var f frame
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("wire: decode binary frame: %w", err)
	}
	return f.toMsg(), nil
}

// DecodeText decodes a Text-opcode frame from a legacy client.
func DecodeText(s string) (*model.Msg, error) {
	var f frame
	if err := json.Unmarshal([]byte(s), &f); err != nil {
		return nil, fmt.Errorf("wire: decode text frame: %w", err)
	}
	return f.toMsg(), nil
}

// Encode serialises a Msg for delivery to a session; both frame
// kinds share this encoder, only the WS opcode used to send it differs.
func Encode(m *model.Msg) ([]byte, error) {
	b, err := json.Marshal(toFrame(m))
	if err != nil {
		return nil, fmt.Errorf("wire: encode frame: %w", err)
	}
	return b, nil
}
