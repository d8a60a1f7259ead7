package compositor

import (
	"context"
	"time"

	"github.com/posecoach/posecoach/internal/core/camera"
	"github.com/posecoach/posecoach/internal/core/observability/log"
	"github.com/posecoach/posecoach/internal/core/overlay"
	"github.com/posecoach/posecoach/internal/core/pose"
)

// FrameSink receives encoded coaching frames. The streaming session
// implements it.
type FrameSink interface {
	SendFrame(ctx context.Context, jpegData []byte) error
}

// Sampler drives the compositor on a fixed cadence. Each tick re-reads the
// latest overlay transform (last-value-wins; stale transforms are never
// queued), composes a frame and hands it to the sink without awaiting the
// send. If an encode or send outlives the interval the next tick still
// fires on schedule.
type Sampler struct {
	Interval   time.Duration
	Compositor *Compositor
	Source     camera.Source
	State      *overlay.State
	Viewport   Viewport

	// Asset returns the active pose overlay, or nil when none is selected.
	Asset func() pose.Asset

	// MaxQuiet bounds how long duplicate suppression may hold frames back.
	// A static scene still resends at this interval so the remote end keeps
	// receiving a picture. Zero selects a default of 16 intervals.
	MaxQuiet time.Duration

	Sink FrameSink
	Log  log.Logger

	lastSent time.Time
}

// Run ticks until the context is cancelled. Send failures are logged and
// dropped; they must never escape the sampling loop.
func (s *Sampler) Run(ctx context.Context) error {
	if s.Log == nil {
		s.Log = log.Nop()
	}
	interval := s.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	if s.MaxQuiet <= 0 {
		s.MaxQuiet = 16 * interval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sampler) tick(ctx context.Context) {
	frame, err := s.Source.Frame()
	if err != nil {
		s.Log.Debug("sampler: no frame", log.Err(err))
		return
	}

	var asset pose.Asset
	if s.Asset != nil {
		asset = s.Asset()
	}

	raster := s.Compositor.Compose(frame, asset, s.State.Get(), s.Viewport)
	data, changed, err := s.Compositor.EncodeJPEG(raster)
	if err != nil {
		s.Log.Warn("sampler: encode failed", log.Err(err))
		return
	}
	if !changed && time.Since(s.lastSent) < s.MaxQuiet {
		return
	}
	s.lastSent = time.Now()

	// Fire and forget: an in-flight send from the previous tick may still
	// be running, which wastes bandwidth but cannot corrupt state.
	go func() {
		if err := s.Sink.SendFrame(ctx, data); err != nil {
			s.Log.Debug("sampler: send dropped", log.Err(err))
		}
	}()
}
