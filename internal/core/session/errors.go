package session

import "errors"

// Core session errors
var (
	// Lifecycle errors

	ErrAlreadyStarted = errors.New("session already started")
	ErrNotOpen        = errors.New("session is not open")
	ErrClosed         = errors.New("session is closed")

	// Transport errors

	ErrDialFailed     = errors.New("dial failed")
	ErrRemoteClosed   = errors.New("remote closed the session")
	ErrSendFailed     = errors.New("send failed")
	ErrMessageTooLong = errors.New("message exceeds size limit")

	// Message errors

	ErrInvalidMessage  = errors.New("invalid message")
	ErrUnknownKind     = errors.New("unknown message kind")
	ErrInvalidEncoding = errors.New("invalid payload encoding")
)
