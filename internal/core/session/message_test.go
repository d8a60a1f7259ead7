package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalMessage_RejectsUnknownKind(t *testing.T) {
	_, err := UnmarshalMessage([]byte(`{"type":"telemetry"}`))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestUnmarshalMessage_RejectsGarbage(t *testing.T) {
	_, err := UnmarshalMessage([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestMessage_PayloadRejectsBadBase64(t *testing.T) {
	m := Message{Kind: KindAudio, Data: "***"}
	_, err := m.Payload()
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestNewFrameMessage_TagsMIME(t *testing.T) {
	m := NewFrameMessage([]byte{0xFF, 0xD8})
	assert.Equal(t, KindFrame, m.Kind)
	assert.Equal(t, "image/jpeg", m.MIME)

	payload, err := m.Payload()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8}, payload)
}
