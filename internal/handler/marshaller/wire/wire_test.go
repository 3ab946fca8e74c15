package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webitel/im-delivery-service/internal/domain/model"
)

func TestEncodeDecodeBinaryRoundTrip(t *testing.T) {
	msg := &model.Msg{
		ClientID:   "c1",
		SenderID:   "u1",
		ReceiverID: "u2",
		Platform:   model.PlatformMobile,
		MsgType:    model.SingleMsg,
		Content:    []byte("hello"),
		SendTime:   1700000000,
		Seq:        7,
	}

	b, err := Encode(msg)
	require.NoError(t, err)

	got, err := DecodeBinary(b)
	require.NoError(t, err)
	assert.Equal(t, msg.ClientID, got.ClientID)
	assert.Equal(t, msg.SenderID, got.SenderID)
	assert.Equal(t, msg.ReceiverID, got.ReceiverID)
	assert.Equal(t, msg.Platform, got.Platform)
	assert.Equal(t, msg.MsgType, got.MsgType)
	assert.Equal(t, msg.Content, got.Content)
	assert.Equal(t, msg.Seq, got.Seq)
}

func TestDecodeTextAcceptsLegacyJSONObject(t *testing.T) {
	raw := `{"sender_id":"u1","receiver_id":"u2","msg_type":1,"content":"aGVsbG8="}`

	got, err := DecodeText(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.SenderID)
	assert.Equal(t, "u2", got.ReceiverID)
	assert.Equal(t, model.SingleMsg, got.MsgType)
	assert.Equal(t, []byte("hello"), got.Content)
}

func TestDecodeBinaryRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeBinary([]byte(`not json`))
	assert.Error(t, err)
}
