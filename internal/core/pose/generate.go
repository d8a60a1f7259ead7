package pose

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"

	"github.com/pkg/errors"
)

// Luma below this threshold becomes fully transparent in generated
// linework; above it, alpha tracks brightness for soft antialiased edges.
const transparencyThreshold = 20

// The fixed instruction sent with every generation request.
const generationInstruction = "Trace the subject's body position in this photo as clean white " +
	"line art on a solid black background. Lines only, no shading, no text."

// Core generation errors
var (
	ErrNoImage          = errors.New("generator produced no image")
	ErrGenerationFailed = errors.New("pose generation failed")
)

// Generator is the external generative-image collaborator: one JPEG plus a
// fixed instruction in, zero or one JPEG out. A nil image with a nil error
// means "no image produced".
type Generator interface {
	Generate(ctx context.Context, frameJPEG []byte, instruction string) ([]byte, error)
}

// FromFrame sends a captured frame to the generator and converts the
// black-background/white-line result into a transparent overlay pose.
// A generation failure leaves any existing active pose untouched; the
// caller just surfaces a transient notice.
func FromFrame(ctx context.Context, gen Generator, frameJPEG []byte, name string) (Pose, error) {
	out, err := gen.Generate(ctx, frameJPEG, generationInstruction)
	if err != nil {
		return Pose{}, errors.Wrap(err, "pose generation request")
	}
	if len(out) == 0 {
		return Pose{}, ErrNoImage
	}

	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		return Pose{}, errors.Wrap(err, "decode generated image")
	}

	return New(name, &RasterAsset{Image: Transparency(img)}), nil
}

// Transparency converts black-background/white-line artwork into white
// linework on transparency: every pixel's color is forced to white and its
// alpha set from the mean of the 8-bit color channels, with anything
// darker than the threshold dropped to fully transparent.
func Transparency(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := src.At(x, y).RGBA()
			luma := uint8(((r >> 8) + (g >> 8) + (b >> 8)) / 3)

			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = 0xFF
			dst.Pix[i+1] = 0xFF
			dst.Pix[i+2] = 0xFF
			if luma < transparencyThreshold {
				dst.Pix[i+3] = 0
			} else {
				dst.Pix[i+3] = luma
			}
		}
	}
	return dst
}
