// Package compositor flattens {current video frame + transformed pose
// overlay + orientation markers} into a raster for the remote coaching
// collaborator, re-projecting the overlay transform from screen space into
// video pixel space under an object-cover fit.
package compositor

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/posecoach/posecoach/internal/core/overlay"
	"github.com/posecoach/posecoach/internal/core/pose"
	"github.com/posecoach/posecoach/pkg/generic"
)

// Viewport is the UI surface the overlay is rendered on, in screen pixels.
type Viewport struct {
	Width  float64
	Height float64
}

// Config tunes the compositor raster.
type Config struct {
	// CanvasScale is the ratio of the working raster width to the native
	// video width. Below 1 it trades AI-side resolution for encode speed.
	CanvasScale float64

	// JPEGQuality in [1, 100].
	JPEGQuality int
}

// DefaultConfig returns the reference compositor settings.
func DefaultConfig() Config {
	return Config{
		CanvasScale: 0.5,
		JPEGQuality: 80,
	}
}

// CoverScale returns the object-cover fit factor: the source is scaled by
// the larger of the two axis ratios so it fully covers the viewport,
// cropping overflow.
func CoverScale(screenW, screenH, videoW, videoH float64) float64 {
	if videoW <= 0 || videoH <= 0 {
		return 1
	}
	sx := screenW / videoW
	sy := screenH / videoH
	if sx > sy {
		return sx
	}
	return sy
}

// ConversionRatio maps a screen-space pixel offset into the compositor's
// raster-space offset, undoing the cover fit and applying the raster
// downscale.
func ConversionRatio(screenW, screenH, videoW, videoH, canvasScale float64) float64 {
	cover := CoverScale(screenW, screenH, videoW, videoH)
	if cover == 0 {
		return canvasScale
	}
	return canvasScale / cover
}

// Compositor builds coaching frames. It never mutates the shared overlay
// state; callers hand it the transform value read at sampling time.
type Compositor struct {
	cfg      Config
	buffers  *generic.Pool[*bytes.Buffer]
	lastHash uint64
}

// New creates a compositor with pooled encode buffers.
func New(cfg Config) *Compositor {
	if cfg.CanvasScale <= 0 {
		cfg.CanvasScale = 0.5
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 80
	}
	return &Compositor{
		cfg:     cfg,
		buffers: generic.NewPool(func() *bytes.Buffer { return &bytes.Buffer{} }),
	}
}

// Compose draws the frame, the transformed pose asset and the fixed
// orientation markers into a fresh raster. A nil asset composes the frame
// and markers only.
func (c *Compositor) Compose(frame *image.RGBA, asset pose.Asset, t overlay.Transform, vp Viewport) *image.RGBA {
	videoW := float64(frame.Bounds().Dx())
	videoH := float64(frame.Bounds().Dy())

	rasterW := int(videoW * c.cfg.CanvasScale)
	rasterH := int(videoH * c.cfg.CanvasScale)
	if rasterW < 1 {
		rasterW = 1
	}
	if rasterH < 1 {
		rasterH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, rasterW, rasterH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), frame, frame.Bounds(), draw.Src, nil)

	if asset != nil {
		c.drawOverlay(dst, asset, t, vp, videoW, videoH)
	}
	drawMarkers(dst)
	return dst
}

// drawOverlay re-projects the screen-space transform into raster space:
// origin at the raster center, then translate, rotate, scale, and draw the
// asset at the size it occupies on screen converted to raster pixels.
func (c *Compositor) drawOverlay(dst *image.RGBA, asset pose.Asset, t overlay.Transform, vp Viewport, videoW, videoH float64) {
	ratio := ConversionRatio(vp.Width, vp.Height, videoW, videoH, c.cfg.CanvasScale)

	assetW := int(vp.Width * ratio)
	assetH := int(vp.Height * ratio)
	if assetW < 1 || assetH < 1 {
		return
	}
	art := asset.Rasterize(assetW, assetH)

	cx := float64(dst.Bounds().Dx()) / 2
	cy := float64(dst.Bounds().Dy()) / 2

	m := translate(cx+t.X*ratio, cy+t.Y*ratio).
		Mul(rotateDegrees(t.Rotation)).
		Mul(scale(t.Scale)).
		Mul(translate(-float64(assetW)/2, -float64(assetH)/2))

	draw.ApproxBiLinear.Transform(dst, m.Aff3(), art, art.Bounds(), draw.Over, nil)
}

// drawMarkers stamps the subject-orientation glyphs at fixed raster
// positions. Screen-left carries "R" because it is the subject's right;
// the mapping encodes the subject's perspective, not the camera's, and
// never changes with camera facing.
func drawMarkers(dst *image.RGBA) {
	h := dst.Bounds().Dy()
	w := dst.Bounds().Dx()

	drawGlyph(dst, "R", 8, h/2)
	drawGlyph(dst, "L", w-16, h/2)
}

func drawGlyph(dst *image.RGBA, s string, x, y int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// EncodeJPEG compresses the raster. The second result is false when the
// raster is byte-identical to the previously encoded one, letting the
// sampler skip redundant sends while the scene is static.
func (c *Compositor) EncodeJPEG(img *image.RGBA) ([]byte, bool, error) {
	sum := xxhash.Sum64(img.Pix)
	changed := sum != c.lastHash
	c.lastHash = sum

	buf := c.buffers.Get()
	buf.Reset()
	defer c.buffers.Put(buf)

	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: c.cfg.JPEGQuality}); err != nil {
		return nil, changed, errors.Wrap(err, "encode frame")
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, changed, nil
}
