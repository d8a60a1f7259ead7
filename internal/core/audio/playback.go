package audio

import (
	"sync"
	"time"
)

// Sink is the platform playback collaborator: it plays a PCM buffer
// starting at the given time.
type Sink interface {
	PlayAt(pcm []byte, sampleRate int, at time.Time) error
}

// Scheduler serializes playback buffers back-to-back with no gaps: each
// buffer starts at max(now, previous buffer's scheduled end). Remote
// speech arrives in small chunks faster than real time, so without this
// the chunks would talk over each other.
type Scheduler struct {
	mu      sync.Mutex
	sink    Sink
	nextEnd time.Time
	now     func() time.Time
}

// NewScheduler creates a scheduler over the given sink.
func NewScheduler(sink Sink) *Scheduler {
	return &Scheduler{
		sink: sink,
		now:  time.Now,
	}
}

// Enqueue schedules a chunk and returns its start time.
func (s *Scheduler) Enqueue(c Chunk) (time.Time, error) {
	if len(c.PCM) == 0 {
		return time.Time{}, ErrEmptyChunk
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	if s.nextEnd.After(start) {
		start = s.nextEnd
	}
	s.nextEnd = start.Add(c.Duration())

	if err := s.sink.PlayAt(c.PCM, c.SampleRate, start); err != nil {
		return time.Time{}, err
	}
	return start, nil
}

// Reset drops the queue tail so the next chunk plays immediately. Called
// when a session ends mid-sentence.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEnd = time.Time{}
}
