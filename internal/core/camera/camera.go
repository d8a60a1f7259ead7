// Package camera defines the video source collaborator: a supplier of
// raster frames at native resolution plus the active camera's facing mode.
package camera

import (
	"image"

	"github.com/pkg/errors"
)

// Facing identifies which camera supplies the frames. Front cameras
// deliver horizontally mirrored previews.
type Facing uint8

const (
	FacingBack Facing = iota
	FacingFront
)

// Mirrored reports whether captures from this facing need a horizontal
// flip before leaving the device.
func (f Facing) Mirrored() bool {
	return f == FacingFront
}

func (f Facing) String() string {
	if f == FacingFront {
		return "front"
	}
	return "back"
}

// Core camera errors
var (
	ErrUnavailable = errors.New("camera unavailable")
	ErrNoFrame     = errors.New("no frame available")
)

// Source supplies the current video frame. Implementations wrap real
// device pipelines; tests use a fixed-image fake.
type Source interface {
	// Frame returns the most recent frame as a drawable raster. The
	// returned image must not be mutated by the caller.
	Frame() (*image.RGBA, error)

	// Bounds returns the native pixel dimensions of the camera frames.
	Bounds() (width, height int)

	// Facing returns the active camera's facing mode.
	Facing() Facing
}

// Zoomer is implemented by sources whose hardware supports zoom. Callers
// type-assert and silently skip the adjustment when unsupported.
type Zoomer interface {
	SetZoom(factor float64) error
}

// Torcher is implemented by sources whose hardware has a torch. As with
// zoom, absence of the interface hides the feature rather than erroring.
type Torcher interface {
	SetTorch(on bool) error
}

// ApplyZoom sets the zoom factor if the source supports it. Unsupported
// hardware degrades silently.
func ApplyZoom(src Source, factor float64) error {
	z, ok := src.(Zoomer)
	if !ok {
		return nil
	}
	return z.SetZoom(factor)
}

// ApplyTorch toggles the torch if the source supports it.
func ApplyTorch(src Source, on bool) error {
	tc, ok := src.(Torcher)
	if !ok {
		return nil
	}
	return tc.SetTorch(on)
}

// StaticSource is a Source backed by a fixed image. It stands in for a
// real device in tests and offline development.
type StaticSource struct {
	Image  *image.RGBA
	Face   Facing
	Failed bool
}

var _ Source = (*StaticSource)(nil)

func NewStaticSource(img *image.RGBA, facing Facing) *StaticSource {
	return &StaticSource{Image: img, Face: facing}
}

func (s *StaticSource) Frame() (*image.RGBA, error) {
	if s.Failed || s.Image == nil {
		return nil, ErrNoFrame
	}
	return s.Image, nil
}

func (s *StaticSource) Bounds() (int, int) {
	if s.Image == nil {
		return 0, 0
	}
	b := s.Image.Bounds()
	return b.Dx(), b.Dy()
}

func (s *StaticSource) Facing() Facing {
	return s.Face
}
