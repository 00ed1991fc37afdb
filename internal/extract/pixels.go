// Package extract implements the palette extraction pipeline: saturation and
// brightness adjustment, perceptual histogram quantisation, candidate scoring
// and farthest-point selection.
package extract

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/jmylchreest/spectra/internal/colour"
)

// PixelBuffer is a row-major pixel buffer with 3 (RGB) or 4 (RGBA) channels
// per pixel. Alpha, when present, is ignored by the pipeline.
type PixelBuffer struct {
	Pix      []uint8
	Width    int
	Height   int
	Channels int
}

// NewPixelBuffer wraps pix as a buffer and validates its shape.
func NewPixelBuffer(pix []uint8, width, height, channels int) (PixelBuffer, error) {
	buf := PixelBuffer{Pix: pix, Width: width, Height: height, Channels: channels}
	if err := buf.Validate(); err != nil {
		return PixelBuffer{}, err
	}
	return buf, nil
}

// FromImage copies img into an RGBA pixel buffer.
func FromImage(img image.Image) PixelBuffer {
	bounds := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}

	pix := make([]uint8, len(nrgba.Pix))
	copy(pix, nrgba.Pix)

	return PixelBuffer{
		Pix:      pix,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Channels: 4,
	}
}

// Len returns the number of pixels in the buffer.
func (b PixelBuffer) Len() int {
	return b.Width * b.Height
}

// At returns the colour of the pixel at linear index i.
func (b PixelBuffer) At(i int) colour.RGB {
	o := i * b.Channels
	return colour.RGB{R: b.Pix[o], G: b.Pix[o+1], B: b.Pix[o+2]}
}

// Validate checks that the buffer's dimensions and length agree.
func (b PixelBuffer) Validate() error {
	if b.Channels != 3 && b.Channels != 4 {
		return fmt.Errorf("%w: pixel buffer must have 3 or 4 channels, got %d", colour.ErrInvalidInput, b.Channels)
	}
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", colour.ErrInvalidInput, b.Width, b.Height)
	}
	if b.Len() > 0 && len(b.Pix) == 0 {
		return fmt.Errorf("%w: empty pixel buffer for %dx%d image", colour.ErrInvalidInput, b.Width, b.Height)
	}
	if want := b.Len() * b.Channels; len(b.Pix) != want {
		return fmt.Errorf("%w: pixel buffer has %d bytes, want %d for %dx%dx%d",
			colour.ErrInvalidInput, len(b.Pix), want, b.Width, b.Height, b.Channels)
	}
	return nil
}

// Image returns the buffer as an *image.NRGBA. Three-channel buffers are
// expanded with opaque alpha.
func (b PixelBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	if b.Channels == 4 {
		copy(img.Pix, b.Pix)
		return img
	}
	for i := 0; i < b.Len(); i++ {
		c := b.At(i)
		o := i * 4
		img.Pix[o] = c.R
		img.Pix[o+1] = c.G
		img.Pix[o+2] = c.B
		img.Pix[o+3] = 255
	}
	return img
}
