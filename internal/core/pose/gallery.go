package pose

import (
	"fmt"
	"sync"
	"time"
)

// Capture is one saved photo in the in-memory gallery.
type Capture struct {
	Filename   string
	JPEG       []byte
	CapturedAt time.Time
}

// Gallery is the session-local store of captured photos. Nothing is
// persisted beyond process lifetime; export happens through the JPEG bytes
// and filename.
type Gallery struct {
	mu    sync.RWMutex
	items []Capture
	now   func() time.Time
}

// NewGallery creates an empty gallery.
func NewGallery() *Gallery {
	return &Gallery{now: time.Now}
}

// Add stores a JPEG capture and returns its generated filename.
func (g *Gallery) Add(jpegData []byte) Capture {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.now()
	c := Capture{
		Filename:   fmt.Sprintf("pose-capture-%d.jpg", ts.UnixMilli()),
		JPEG:       jpegData,
		CapturedAt: ts,
	}
	g.items = append(g.items, c)
	return c
}

// List returns a copy of the gallery contents, oldest first.
func (g *Gallery) List() []Capture {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Capture, len(g.items))
	copy(out, g.items)
	return out
}

// Len returns the number of stored captures.
func (g *Gallery) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.items)
}

// Clear drops all stored captures.
func (g *Gallery) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.items = nil
}
