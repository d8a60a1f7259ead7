package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// conn wraps a websocket connection with serialized writes, an atomic
// closed flag and traffic counters.
type conn struct {
	id      string
	ws      *websocket.Conn
	cfg     Config
	writeMu sync.Mutex
	closed  int32

	messagesSent     uint64
	messagesReceived uint64
	bytesSent        uint64
	bytesReceived    uint64
}

func newConn(ws *websocket.Conn, cfg Config) *conn {
	if cfg.MaxMessageSize > 0 {
		ws.SetReadLimit(cfg.MaxMessageSize)
	}
	return &conn{
		id:  uuid.New().String(),
		ws:  ws,
		cfg: cfg,
	}
}

// sendMessage marshals and writes one wire message.
func (c *conn) sendMessage(m Message) error {
	if c.isClosed() {
		return ErrClosed
	}

	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if c.cfg.MaxMessageSize > 0 && int64(len(data)) > c.cfg.MaxMessageSize {
		return errors.Wrapf(ErrMessageTooLong, "%d bytes", len(data))
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.cfg.WriteTimeout > 0 {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	if err = c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.Wrap(ErrSendFailed, err.Error())
	}

	atomic.AddUint64(&c.messagesSent, 1)
	atomic.AddUint64(&c.bytesSent, uint64(len(data)))
	return nil
}

// receiveMessage blocks for the next wire message.
func (c *conn) receiveMessage() (Message, error) {
	if c.isClosed() {
		return Message{}, ErrClosed
	}

	messageType, data, err := c.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return Message{}, ErrRemoteClosed
		}
		return Message{}, errors.Wrap(err, "read message")
	}
	if messageType != websocket.TextMessage {
		return Message{}, ErrInvalidMessage
	}

	atomic.AddUint64(&c.messagesReceived, 1)
	atomic.AddUint64(&c.bytesReceived, uint64(len(data)))

	return UnmarshalMessage(data)
}

func (c *conn) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// close sends a close frame and tears down the socket. Safe to call more
// than once.
func (c *conn) close(reason string) error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}

	c.writeMu.Lock()
	closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, closeMessage, time.Now().Add(time.Second))
	c.writeMu.Unlock()

	return c.ws.Close()
}

// Metrics is a snapshot of connection traffic counters.
type Metrics struct {
	MessagesSent     uint64
	MessagesReceived uint64
	BytesSent        uint64
	BytesReceived    uint64
}

func (c *conn) metrics() Metrics {
	return Metrics{
		MessagesSent:     atomic.LoadUint64(&c.messagesSent),
		MessagesReceived: atomic.LoadUint64(&c.messagesReceived),
		BytesSent:        atomic.LoadUint64(&c.bytesSent),
		BytesReceived:    atomic.LoadUint64(&c.bytesReceived),
	}
}
