package compositor

import (
	"context"
	"image"
	"image/jpeg"

	"github.com/pkg/errors"

	"github.com/posecoach/posecoach/internal/core/camera"
	"github.com/posecoach/posecoach/internal/core/pose"
)

// CapturePhoto grabs one full native-resolution frame for local saving,
// mirrored horizontally first when the active camera is front-facing. The
// pose overlay is not baked in; it stays compositional in the UI layer.
func (c *Compositor) CapturePhoto(src camera.Source) ([]byte, error) {
	frame, err := src.Frame()
	if err != nil {
		return nil, errors.Wrap(err, "capture frame")
	}
	if src.Facing().Mirrored() {
		frame = MirrorHorizontal(frame)
	}

	buf := c.buffers.Get()
	buf.Reset()
	defer c.buffers.Put(buf)

	if err = jpeg.Encode(buf, frame, &jpeg.Options{Quality: c.cfg.JPEGQuality}); err != nil {
		return nil, errors.Wrap(err, "encode capture")
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// GeneratePose captures one full-resolution frame (mirrored for the front
// camera, like the photo path) and asks the generation collaborator to
// turn it into a new overlay pose. Failures leave any active pose alone.
func (c *Compositor) GeneratePose(ctx context.Context, src camera.Source, gen pose.Generator, name string) (pose.Pose, error) {
	frameJPEG, err := c.CapturePhoto(src)
	if err != nil {
		return pose.Pose{}, err
	}
	return pose.FromFrame(ctx, gen, frameJPEG, name)
}

// MirrorHorizontal returns a left-right flipped copy of the frame.
func MirrorHorizontal(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := src.PixOffset(x, y)
			di := dst.PixOffset(b.Max.X-1-(x-b.Min.X), y)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}
