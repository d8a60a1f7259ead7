package session

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

// Message kinds on the coaching wire.
const (
	KindFrame = "frame" // client → remote: one JPEG viewfinder frame
	KindAudio = "audio" // both directions: PCM chunk
	KindText  = "text"  // remote → client: partial coaching transcript
	KindClose = "close" // remote → client: server-initiated shutdown
)

// MIME tag carried with every frame payload.
const frameMIME = "image/jpeg"

// Message is the JSON envelope exchanged with the remote coaching
// collaborator. Binary payloads travel base64-encoded in Data.
type Message struct {
	Kind       string `json:"type"`
	MIME       string `json:"mime,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Data       string `json:"data,omitempty"`
	Text       string `json:"text,omitempty"`
	Partial    bool   `json:"partial,omitempty"`
}

// NewFrameMessage wraps an encoded JPEG frame.
func NewFrameMessage(jpegData []byte) Message {
	return Message{
		Kind: KindFrame,
		MIME: frameMIME,
		Data: base64.StdEncoding.EncodeToString(jpegData),
	}
}

// NewAudioMessage wraps a PCM chunk tagged with its sample rate.
func NewAudioMessage(pcm []byte, sampleRate int) Message {
	return Message{
		Kind:       KindAudio,
		SampleRate: sampleRate,
		Data:       base64.StdEncoding.EncodeToString(pcm),
	}
}

// Payload decodes the base64 data field.
func (m Message) Payload() ([]byte, error) {
	out, err := base64.StdEncoding.DecodeString(m.Data)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidEncoding, err.Error())
	}
	return out, nil
}

// Marshal serializes the message for the wire.
func (m Message) Marshal() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "marshal message")
	}
	return data, nil
}

// UnmarshalMessage parses a wire message and validates its kind.
func UnmarshalMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, errors.Wrap(ErrInvalidMessage, err.Error())
	}
	switch m.Kind {
	case KindFrame, KindAudio, KindText, KindClose:
		return m, nil
	default:
		return Message{}, errors.Wrapf(ErrUnknownKind, "%q", m.Kind)
	}
}
