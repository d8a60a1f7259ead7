package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/posecoach/posecoach/internal/config"
	"github.com/posecoach/posecoach/internal/core/audio"
	"github.com/posecoach/posecoach/internal/core/camera"
	"github.com/posecoach/posecoach/internal/core/compositor"
	"github.com/posecoach/posecoach/internal/core/observability/log"
	"github.com/posecoach/posecoach/internal/core/overlay"
	"github.com/posecoach/posecoach/internal/core/pose"
	"github.com/posecoach/posecoach/internal/core/session"
)

func main() {
	configPath := flag.String("config", "coach.yaml", "path to settings file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.Session.Endpoint == "" {
		fmt.Fprintln(os.Stderr, "config: session.endpoint is required")
		os.Exit(1)
	}

	logger := log.New(cfg.Log.Level)

	// Collaborator wiring. The camera and microphone here are development
	// stand-ins; device pipelines plug in behind the same interfaces.
	source := camera.NewStaticSource(placeholderFrame(1280, 720), camera.FacingFront)
	mic := audio.NewSilenceSource(100 * time.Millisecond)
	speaker := audio.NewScheduler(discardSink{})

	state := overlay.NewState()
	activePose := pose.New("t-pose", defaultPoseAsset())
	gallery := pose.NewGallery()

	comp := compositor.New(compositor.Config{CanvasScale: cfg.Compositor.CanvasScale, JPEGQuality: cfg.Compositor.JPEGQuality})
	sampler := &compositor.Sampler{
		Interval:   cfg.Compositor.SampleInterval.Std(),
		Compositor: comp,
		Source:     source,
		State:      state,
		Viewport:   compositor.Viewport{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height},
		Asset:      func() pose.Asset { return activePose.Asset },
		Log:        logger,
	}

	onText := func(token string, partial bool) {
		if !partial {
			fmt.Println()
		}
		fmt.Print(token)
	}

	sess := session.New(session.Config{
		Endpoint:       cfg.Session.Endpoint,
		DialTimeout:    cfg.Session.DialTimeout.Std(),
		WriteTimeout:   cfg.Session.WriteTimeout.Std(),
		MaxMessageSize: cfg.Session.MaxMessageSize,
	}, mic, speaker, sampler, onText, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err = sess.Start(ctx); err != nil {
		logger.Error("start session", log.Err(err))
		os.Exit(1)
	}

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)

	// SIGUSR1 stands in for the shutter button until a UI collaborator
	// exists: snap the current camera frame into the gallery.
	snapCh := make(chan os.Signal, 1)
	signal.Notify(snapCh, syscall.SIGUSR1)

	for {
		select {
		case <-snapCh:
			data, err := comp.CapturePhoto(source)
			if err != nil {
				logger.Warn("capture photo", log.Err(err))
				continue
			}
			saved := gallery.Add(data)
			logger.Info("photo captured",
				log.String("filename", saved.Filename),
				log.Int("gallery_size", gallery.Len()))
		case <-stopCh:
			logger.Info("stopping")
			if err = sess.Close(); err != nil {
				logger.Error("close session", log.Err(err))
			}
			return
		case <-sess.Done():
			if err = sess.Err(); err != nil {
				logger.Error("session ended", log.Err(err))
				os.Exit(1)
			}
			return
		}
	}
}

// discardSink drops playback audio; a real app hands it to the platform
// audio output.
type discardSink struct{}

func (discardSink) PlayAt([]byte, int, time.Time) error { return nil }

func placeholderFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 24, G: 24, B: 28, A: 255})
		}
	}
	return img
}

// defaultPoseAsset is a simple standing figure used until a pose is
// selected or generated.
func defaultPoseAsset() pose.Asset {
	return &pose.VectorAsset{
		ViewBoxW: 100,
		ViewBoxH: 200,
		Stroke:   3,
		Segments: []pose.Segment{
			{X1: 50, Y1: 20, X2: 50, Y2: 110},  // spine
			{X1: 50, Y1: 45, X2: 10, Y2: 45},   // left arm
			{X1: 50, Y1: 45, X2: 90, Y2: 45},   // right arm
			{X1: 50, Y1: 110, X2: 25, Y2: 190}, // left leg
			{X1: 50, Y1: 110, X2: 75, Y2: 190}, // right leg
		},
	}
}
