package session

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posecoach/posecoach/internal/core/audio"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// fakeMic feeds canned capture chunks and records its release.
type fakeMic struct {
	ch        chan audio.Chunk
	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeMic() *fakeMic {
	return &fakeMic{
		ch:     make(chan audio.Chunk, 8),
		closed: make(chan struct{}),
	}
}

func (m *fakeMic) Chunks() <-chan audio.Chunk { return m.ch }

func (m *fakeMic) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

type nopSink struct{}

func (nopSink) PlayAt([]byte, int, time.Time) error { return nil }

// collectSink records every scheduled playback chunk.
type collectSink struct {
	mu    sync.Mutex
	plays [][]byte
}

func (c *collectSink) PlayAt(pcm []byte, _ int, _ time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plays = append(c.plays, pcm)
	return nil
}

func (c *collectSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.plays)
}

// coachServer is a scripted remote collaborator for tests.
type coachServer struct {
	t        *testing.T
	mu       sync.Mutex
	received []Message
	conn     *websocket.Conn
	ready    chan struct{}
}

func newCoachServer(t *testing.T) (*coachServer, string, func()) {
	cs := &coachServer{t: t, ready: make(chan struct{})}
	s := httptest.NewServer(http.HandlerFunc(cs.handle))
	u := "ws" + strings.TrimPrefix(s.URL, "http")
	return cs, u, s.Close
}

func (cs *coachServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	cs.mu.Lock()
	cs.conn = conn
	cs.mu.Unlock()
	close(cs.ready)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		m, err := UnmarshalMessage(data)
		if err != nil {
			continue
		}
		cs.mu.Lock()
		cs.received = append(cs.received, m)
		cs.mu.Unlock()
	}
}

func (cs *coachServer) send(t *testing.T, m Message) {
	<-cs.ready
	data, err := m.Marshal()
	require.NoError(t, err)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	require.NoError(t, cs.conn.WriteMessage(websocket.TextMessage, data))
}

func (cs *coachServer) messages() []Message {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]Message, len(cs.received))
	copy(out, cs.received)
	return out
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startSession(t *testing.T, endpoint string, mic *fakeMic, speaker *audio.Scheduler, onText TextHandler) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint

	s := New(cfg, mic, speaker, nil, onText, nil)
	require.NoError(t, s.Start(context.Background()))
	require.Equal(t, StateOpen, s.State())
	return s
}

func TestSession_DialFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Endpoint = "ws://127.0.0.1:1/nowhere"
	cfg.DialTimeout = 200 * time.Millisecond

	mic := newFakeMic()
	s := New(cfg, mic, nil, nil, nil, nil)

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDialFailed)
	assert.Equal(t, StateClosed, s.State())

	// Even a failed open must leave no hardware dangling.
	select {
	case <-mic.closed:
	default:
		t.Fatal("microphone not released after dial failure")
	}
}

func TestSession_StreamsFramesAndAudio(t *testing.T) {
	server, endpoint, stop := newCoachServer(t)
	defer stop()

	mic := newFakeMic()
	s := startSession(t, endpoint, mic, nil, nil)
	defer func() { _ = s.Close() }()

	frame := []byte{0xFF, 0xD8, 0xFF, 0xD9}
	require.NoError(t, s.SendFrame(context.Background(), frame))

	pcm := make([]byte, 640)
	mic.ch <- audio.Chunk{PCM: pcm, SampleRate: audio.CaptureRate}

	waitFor(t, func() bool { return len(server.messages()) >= 2 }, "frame and audio to arrive")

	var gotFrame, gotAudio bool
	for _, m := range server.messages() {
		switch m.Kind {
		case KindFrame:
			gotFrame = true
			assert.Equal(t, "image/jpeg", m.MIME)
			payload, err := m.Payload()
			require.NoError(t, err)
			assert.Equal(t, frame, payload)
		case KindAudio:
			gotAudio = true
			assert.Equal(t, audio.CaptureRate, m.SampleRate)
			payload, err := m.Payload()
			require.NoError(t, err)
			assert.Equal(t, pcm, payload)
		}
	}
	assert.True(t, gotFrame, "frame message received")
	assert.True(t, gotAudio, "audio message received")
}

func TestSession_ReceivesTextAndSpeech(t *testing.T) {
	server, endpoint, stop := newCoachServer(t)
	defer stop()

	var textMu sync.Mutex
	var transcript strings.Builder
	onText := func(token string, partial bool) {
		textMu.Lock()
		defer textMu.Unlock()
		transcript.WriteString(token)
	}

	sink := &collectSink{}
	speaker := audio.NewScheduler(sink)

	mic := newFakeMic()
	s := startSession(t, endpoint, mic, speaker, onText)
	defer func() { _ = s.Close() }()

	server.send(t, Message{Kind: KindText, Text: "Raise your ", Partial: true})
	server.send(t, Message{Kind: KindText, Text: "left arm.", Partial: true})

	speech := make([]byte, 480)
	server.send(t, Message{
		Kind:       KindAudio,
		SampleRate: audio.PlaybackRate,
		Data:       base64.StdEncoding.EncodeToString(speech),
	})

	waitFor(t, func() bool {
		textMu.Lock()
		defer textMu.Unlock()
		return transcript.String() == "Raise your left arm." && sink.count() == 1
	}, "text tokens and speech chunk")
}

func TestSession_ExplicitCloseReleasesEverything(t *testing.T) {
	_, endpoint, stop := newCoachServer(t)
	defer stop()

	mic := newFakeMic()
	speaker := audio.NewScheduler(nopSink{})
	s := startSession(t, endpoint, mic, speaker, nil)

	require.NoError(t, s.Close())
	assert.Equal(t, StateClosed, s.State())
	assert.NoError(t, s.Err(), "client-initiated close is not an error")

	select {
	case <-mic.closed:
	default:
		t.Fatal("microphone not released on close")
	}

	// Sends after shutdown are rejected, never panicking.
	assert.ErrorIs(t, s.SendFrame(context.Background(), []byte{1}), ErrNotOpen)

	// Close is idempotent.
	assert.NoError(t, s.Close())
}

func TestSession_RemoteCloseTearsDown(t *testing.T) {
	server, endpoint, stop := newCoachServer(t)
	defer stop()

	mic := newFakeMic()
	s := startSession(t, endpoint, mic, nil, nil)

	server.send(t, Message{Kind: KindClose})

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not tear down on remote close")
	}

	assert.Equal(t, StateClosed, s.State())
	assert.ErrorIs(t, s.Err(), ErrRemoteClosed)

	select {
	case <-mic.closed:
	default:
		t.Fatal("microphone not released on remote close")
	}
}

func TestSession_StartTwice(t *testing.T) {
	_, endpoint, stop := newCoachServer(t)
	defer stop()

	s := startSession(t, endpoint, newFakeMic(), nil, nil)
	defer func() { _ = s.Close() }()

	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
}

func TestSession_MetricsCountTraffic(t *testing.T) {
	_, endpoint, stop := newCoachServer(t)
	defer stop()

	s := startSession(t, endpoint, newFakeMic(), nil, nil)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.SendFrame(context.Background(), []byte{0xAB}))
	m := s.Metrics()
	assert.Equal(t, uint64(1), m.MessagesSent)
	assert.NotZero(t, m.BytesSent)
}
