// Package pose holds reference overlay assets: target body positions the
// subject is coached into, either as vector linework or raster images.
package pose

import (
	"image"
	"image/color"
	"math"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Pose is an immutable reference overlay.
type Pose struct {
	ID    string
	Name  string
	Asset Asset
}

// New creates a pose with a fresh identifier.
func New(name string, asset Asset) Pose {
	return Pose{
		ID:    uuid.New().String(),
		Name:  name,
		Asset: asset,
	}
}

// Asset renders the overlay artwork into a raster of the given size.
type Asset interface {
	Rasterize(width, height int) *image.RGBA
}

// Segment is one stroked line of a vector pose, in viewbox coordinates.
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// VectorAsset is white linework defined against a viewbox, scaled to
// whatever raster size the compositor asks for.
type VectorAsset struct {
	ViewBoxW float64
	ViewBoxH float64
	Stroke   float64
	Segments []Segment
}

var _ Asset = (*VectorAsset)(nil)

// Rasterize scales the viewbox onto the target raster and strokes each
// segment as a filled quad.
func (v *VectorAsset) Rasterize(width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if v.ViewBoxW <= 0 || v.ViewBoxH <= 0 || width <= 0 || height <= 0 {
		return dst
	}

	sx := float64(width) / v.ViewBoxW
	sy := float64(height) / v.ViewBoxH
	half := v.Stroke / 2
	if half <= 0 {
		half = 1
	}

	r := vector.NewRasterizer(width, height)
	for _, s := range v.Segments {
		x1, y1 := s.X1*sx, s.Y1*sy
		x2, y2 := s.X2*sx, s.Y2*sy

		dx, dy := x2-x1, y2-y1
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		// Unit normal, scaled to half the stroke width.
		nx := -dy / length * half
		ny := dx / length * half

		r.MoveTo(float32(x1+nx), float32(y1+ny))
		r.LineTo(float32(x2+nx), float32(y2+ny))
		r.LineTo(float32(x2-nx), float32(y2-ny))
		r.LineTo(float32(x1-nx), float32(y1-ny))
		r.ClosePath()
	}
	r.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{})
	return dst
}

// RasterAsset is a pre-rendered overlay image, typically the output of the
// generation post-process.
type RasterAsset struct {
	Image image.Image
}

var _ Asset = (*RasterAsset)(nil)

// Rasterize resamples the source image to the requested size.
func (r *RasterAsset) Rasterize(width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if r.Image == nil || width <= 0 || height <= 0 {
		return dst
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), r.Image, r.Image.Bounds(), draw.Over, nil)
	return dst
}
