package session

import "time"

// Config holds coaching session settings.
type Config struct {
	// Endpoint is the websocket URL of the remote coaching collaborator.
	Endpoint string

	// Network settings
	DialTimeout  time.Duration
	WriteTimeout time.Duration

	// MaxMessageSize bounds a single wire message; zero means unlimited.
	MaxMessageSize int64
}

// DefaultConfig returns sane session settings.
func DefaultConfig() Config {
	return Config{
		DialTimeout:    10 * time.Second,
		WriteTimeout:   5 * time.Second,
		MaxMessageSize: 8 << 20,
	}
}
