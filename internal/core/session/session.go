// Package session runs the duplex coaching link: viewfinder frames and
// microphone audio stream out over a websocket while text tokens and
// speech stream back. The session owns its hardware handles (microphone,
// periodic frame sampler, playback scheduler) and releases all of them on
// explicit stop, on remote close, and on error alike.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/posecoach/posecoach/internal/core/audio"
	"github.com/posecoach/posecoach/internal/core/compositor"
	"github.com/posecoach/posecoach/internal/core/observability/log"
)

// State is the session lifecycle position.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// TextHandler receives coaching transcript tokens. Partial tokens are
// concatenable fragments of one utterance.
type TextHandler func(token string, partial bool)

// Session is one coaching conversation. Not restartable; build a new one
// per conversation.
type Session struct {
	cfg     Config
	logger  log.Logger
	mic     audio.CaptureSource
	speaker *audio.Scheduler
	sampler *compositor.Sampler
	onText  TextHandler

	state  atomic.Int32
	conn   *conn
	cancel context.CancelFunc
	done   chan struct{}

	teardownOnce sync.Once
	errMu        sync.Mutex
	err          error
}

// New assembles a session around its hardware collaborators. The sampler's
// sink is pointed at the session on Start.
func New(cfg Config, mic audio.CaptureSource, speaker *audio.Scheduler, sampler *compositor.Sampler, onText TextHandler, logger log.Logger) *Session {
	if logger == nil {
		logger = log.Nop()
	}
	return &Session{
		cfg:     cfg,
		logger:  logger,
		mic:     mic,
		speaker: speaker,
		sampler: sampler,
		onText:  onText,
		done:    make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Err returns the terminal error after the session closed, nil for a
// clean client-initiated stop.
func (s *Session) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Start dials the remote collaborator and launches the streaming loops.
// It returns once the session is open; the loops run until Close, remote
// close, or a transport error, any of which releases every owned resource.
func (s *Session) Start(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateConnecting)) {
		return ErrAlreadyStarted
	}

	dialer := websocket.Dialer{HandshakeTimeout: s.cfg.DialTimeout}
	ws, resp, err := dialer.DialContext(ctx, s.cfg.Endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		s.finish(nil)
		return errors.Wrap(ErrDialFailed, err.Error())
	}

	s.conn = newConn(ws, s.cfg)
	if !s.state.CompareAndSwap(int32(StateConnecting), int32(StateOpen)) {
		// Close raced the dial; unwind immediately.
		s.finish(nil)
		return ErrClosed
	}
	s.logger.Info("session open", log.String("endpoint", s.cfg.Endpoint), log.String("conn_id", s.conn.id))

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return s.readLoop(gctx) })
	g.Go(func() error { return s.micLoop(gctx) })
	if s.sampler != nil {
		s.sampler.Sink = s
		g.Go(func() error { return s.sampler.Run(gctx) })
	}

	// Unblock the read loop when any sibling fails or Close cancels.
	g.Go(func() error {
		<-gctx.Done()
		_ = s.conn.close("session closed")
		return nil
	})

	go func() {
		err := g.Wait()
		s.finish(err)
	}()
	return nil
}

// SendFrame implements compositor.FrameSink: one composed JPEG viewfinder
// frame to the remote side. Sends after shutdown are dropped, not raised.
func (s *Session) SendFrame(_ context.Context, jpegData []byte) error {
	if s.State() != StateOpen {
		return ErrNotOpen
	}
	return s.conn.sendMessage(NewFrameMessage(jpegData))
}

// Metrics returns transport counters, zero-valued before Start.
func (s *Session) Metrics() Metrics {
	if s.conn == nil {
		return Metrics{}
	}
	return s.conn.metrics()
}

// Close is the explicit client-initiated stop. It is idempotent and waits
// for the streaming loops to finish and all resources to be released.
func (s *Session) Close() error {
	switch State(s.state.Load()) {
	case StateIdle:
		s.state.Store(int32(StateClosed))
		return nil
	case StateClosed:
		return nil
	}

	s.state.Store(int32(StateClosing))
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
	return nil
}

// Done is closed once the session is fully torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) readLoop(ctx context.Context) error {
	for {
		m, err := s.conn.receiveMessage()
		if err != nil {
			if ctx.Err() != nil || s.State() == StateClosing {
				return nil
			}
			return err
		}

		switch m.Kind {
		case KindText:
			if s.onText != nil {
				s.onText(m.Text, m.Partial)
			}
		case KindAudio:
			pcm, err := m.Payload()
			if err != nil {
				s.logger.Warn("session: bad audio payload", log.Err(err))
				continue
			}
			if s.speaker != nil {
				if _, err = s.speaker.Enqueue(audio.Chunk{PCM: pcm, SampleRate: m.SampleRate}); err != nil {
					s.logger.Warn("session: playback rejected chunk", log.Err(err))
				}
			}
		case KindClose:
			return ErrRemoteClosed
		default:
			s.logger.Debug("session: ignoring message", log.String("kind", m.Kind))
		}
	}
}

func (s *Session) micLoop(ctx context.Context) error {
	if s.mic == nil {
		<-ctx.Done()
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case chunk, ok := <-s.mic.Chunks():
			if !ok {
				return nil
			}
			if err := s.conn.sendMessage(NewAudioMessage(chunk.PCM, chunk.SampleRate)); err != nil {
				if ctx.Err() != nil || s.State() == StateClosing {
					return nil
				}
				return err
			}
		}
	}
}

// finish records the terminal error and releases everything exactly once.
func (s *Session) finish(err error) {
	if err != nil && !errors.Is(err, context.Canceled) && s.State() != StateClosing {
		s.errMu.Lock()
		s.err = err
		s.errMu.Unlock()
		s.logger.Warn("session failed", log.Err(err))
	}

	s.teardownOnce.Do(s.releaseHardware)
	if s.conn != nil {
		_ = s.conn.close("session closed")
	}
	s.state.Store(int32(StateClosed))
	close(s.done)
	s.logger.Info("session closed")
}

// releaseHardware frees every owned handle. Each release runs even when an
// earlier one fails; leaving the microphone open after an error is a
// defect, not an option.
func (s *Session) releaseHardware() {
	if s.mic != nil {
		if err := s.mic.Close(); err != nil {
			s.logger.Warn("session: microphone release failed", log.Err(err))
		}
	}
	if s.speaker != nil {
		s.speaker.Reset()
	}
}
