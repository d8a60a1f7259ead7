package camera

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type zoomSource struct {
	StaticSource
	zoom float64
	err  error
}

func (z *zoomSource) SetZoom(factor float64) error {
	if z.err != nil {
		return z.err
	}
	z.zoom = factor
	return nil
}

func TestApplyZoom_UnsupportedDegradesSilently(t *testing.T) {
	src := NewStaticSource(image.NewRGBA(image.Rect(0, 0, 4, 4)), FacingBack)
	assert.NoError(t, ApplyZoom(src, 2.0), "missing capability is not an error")
	assert.NoError(t, ApplyTorch(src, true))
}

func TestApplyZoom_SupportedSourceReceivesFactor(t *testing.T) {
	src := &zoomSource{}
	assert.NoError(t, ApplyZoom(src, 3.5))
	assert.Equal(t, 3.5, src.zoom)
}

func TestApplyZoom_HardwareErrorSurfaces(t *testing.T) {
	src := &zoomSource{err: errors.New("lens busy")}
	assert.Error(t, ApplyZoom(src, 2.0))
}

func TestFacing(t *testing.T) {
	assert.True(t, FacingFront.Mirrored())
	assert.False(t, FacingBack.Mirrored())
	assert.Equal(t, "front", FacingFront.String())
	assert.Equal(t, "back", FacingBack.String())
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource(image.NewRGBA(image.Rect(0, 0, 8, 6)), FacingBack)
	w, h := src.Bounds()
	assert.Equal(t, 8, w)
	assert.Equal(t, 6, h)

	src.Failed = true
	_, err := src.Frame()
	assert.ErrorIs(t, err, ErrNoFrame)
}
