package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedPlay struct {
	pcm  []byte
	rate int
	at   time.Time
}

type fakeSink struct {
	plays []recordedPlay
	err   error
}

func (f *fakeSink) PlayAt(pcm []byte, sampleRate int, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.plays = append(f.plays, recordedPlay{pcm: pcm, rate: sampleRate, at: at})
	return nil
}

func pcmOfDuration(d time.Duration, rate int) []byte {
	samples := int(d.Seconds() * float64(rate))
	return make([]byte, samples*2)
}

func TestChunk_Duration(t *testing.T) {
	tests := []struct {
		name     string
		chunk    Chunk
		expected time.Duration
	}{
		{name: "One second at capture rate", chunk: Chunk{PCM: make([]byte, CaptureRate*2), SampleRate: CaptureRate}, expected: time.Second},
		{name: "Half second at playback rate", chunk: Chunk{PCM: make([]byte, PlaybackRate), SampleRate: PlaybackRate}, expected: 500 * time.Millisecond},
		{name: "Empty", chunk: Chunk{SampleRate: PlaybackRate}, expected: 0},
		{name: "No rate", chunk: Chunk{PCM: make([]byte, 100)}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.chunk.Duration())
		})
	}
}

func TestScheduler_BackToBack(t *testing.T) {
	sink := &fakeSink{}
	s := NewScheduler(sink)

	// Frozen clock: every chunk arrives "now", ahead of real time.
	base := time.UnixMilli(1_000_000)
	s.now = func() time.Time { return base }

	chunk := Chunk{PCM: pcmOfDuration(100*time.Millisecond, PlaybackRate), SampleRate: PlaybackRate}

	first, err := s.Enqueue(chunk)
	require.NoError(t, err)
	assert.Equal(t, base, first)

	second, err := s.Enqueue(chunk)
	require.NoError(t, err)
	assert.Equal(t, base.Add(100*time.Millisecond), second, "second chunk starts exactly at first chunk's end")

	third, err := s.Enqueue(chunk)
	require.NoError(t, err)
	assert.Equal(t, base.Add(200*time.Millisecond), third)

	require.Len(t, sink.plays, 3)
}

func TestScheduler_IdleGapPlaysImmediately(t *testing.T) {
	sink := &fakeSink{}
	s := NewScheduler(sink)

	now := time.UnixMilli(1_000_000)
	s.now = func() time.Time { return now }

	chunk := Chunk{PCM: pcmOfDuration(50*time.Millisecond, PlaybackRate), SampleRate: PlaybackRate}
	_, err := s.Enqueue(chunk)
	require.NoError(t, err)

	// The queue drained long before the next chunk arrives: it must start
	// at now, not at the stale queue end.
	now = now.Add(10 * time.Second)
	start, err := s.Enqueue(chunk)
	require.NoError(t, err)
	assert.Equal(t, now, start)
}

func TestScheduler_EmptyChunk(t *testing.T) {
	s := NewScheduler(&fakeSink{})
	_, err := s.Enqueue(Chunk{SampleRate: PlaybackRate})
	assert.ErrorIs(t, err, ErrEmptyChunk)
}

func TestScheduler_Reset(t *testing.T) {
	sink := &fakeSink{}
	s := NewScheduler(sink)

	base := time.UnixMilli(1_000_000)
	s.now = func() time.Time { return base }

	chunk := Chunk{PCM: pcmOfDuration(time.Second, PlaybackRate), SampleRate: PlaybackRate}
	_, err := s.Enqueue(chunk)
	require.NoError(t, err)

	s.Reset()
	start, err := s.Enqueue(chunk)
	require.NoError(t, err)
	assert.Equal(t, base, start, "reset discards the queued tail")
}
