// Package audio covers both halves of the coaching loop's sound path:
// microphone capture feeding the remote session and gapless playback of
// the speech it sends back.
package audio

import (
	"time"

	"github.com/pkg/errors"
)

// Sample rates fixed by the remote coaching protocol.
const (
	CaptureRate  = 16000 // microphone PCM, mono int16
	PlaybackRate = 24000 // remote speech PCM, mono int16
)

// Core audio errors
var (
	ErrSourceClosed = errors.New("audio source is closed")
	ErrEmptyChunk   = errors.New("empty audio chunk")
)

// Chunk is a run of little-endian mono int16 PCM samples.
type Chunk struct {
	PCM        []byte
	SampleRate int
}

// Duration returns the chunk's play time at its sample rate.
func (c Chunk) Duration() time.Duration {
	if c.SampleRate <= 0 || len(c.PCM) == 0 {
		return 0
	}
	samples := len(c.PCM) / 2
	return time.Duration(samples) * time.Second / time.Duration(c.SampleRate)
}

// CaptureSource is the microphone collaborator. Chunks carry CaptureRate
// PCM; the channel closes when the hardware is released.
type CaptureSource interface {
	Chunks() <-chan Chunk
	Close() error
}
