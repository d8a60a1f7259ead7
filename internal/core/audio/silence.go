package audio

import (
	"sync"
	"time"
)

// SilenceSource is a CaptureSource that emits zeroed chunks at the capture
// rate. It stands in for a real microphone in development and tests.
type SilenceSource struct {
	ch        chan Chunk
	stop      chan struct{}
	closeOnce sync.Once
}

var _ CaptureSource = (*SilenceSource)(nil)

// NewSilenceSource starts emitting one silent chunk per period.
func NewSilenceSource(period time.Duration) *SilenceSource {
	if period <= 0 {
		period = 100 * time.Millisecond
	}
	s := &SilenceSource{
		ch:   make(chan Chunk),
		stop: make(chan struct{}),
	}

	samples := int(period.Seconds() * CaptureRate)
	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		defer close(s.ch)
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				chunk := Chunk{PCM: make([]byte, samples*2), SampleRate: CaptureRate}
				select {
				case s.ch <- chunk:
				case <-s.stop:
					return
				}
			}
		}
	}()
	return s
}

func (s *SilenceSource) Chunks() <-chan Chunk {
	return s.ch
}

func (s *SilenceSource) Close() error {
	s.closeOnce.Do(func() { close(s.stop) })
	return nil
}
