package tonemap

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// PixelBuffer stores non-premultiplied RGBA8 pixels row by row.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8 // len = Width*Height*4
}

// NewPixelBuffer allocates a zeroed buffer.
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// Validate checks that dimensions are positive and match the pixel slice.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil pixel buffer", ErrInvalidParams)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: buffer dimensions %dx%d", ErrInvalidParams, b.Width, b.Height)
	}
	if len(b.Pix) != b.Width*b.Height*4 {
		return fmt.Errorf("%w: buffer length %d, want %d for %dx%d",
			ErrInvalidParams, len(b.Pix), b.Width*b.Height*4, b.Width, b.Height)
	}
	return nil
}

// Clone returns a deep copy.
func (b *PixelBuffer) Clone() *PixelBuffer {
	out := &PixelBuffer{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(out.Pix, b.Pix)
	return out
}

// Equal reports whether both buffers hold the same dimensions and pixels.
func (b *PixelBuffer) Equal(other *PixelBuffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.Width != other.Width || b.Height != other.Height || len(b.Pix) != len(other.Pix) {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != other.Pix[i] {
			return false
		}
	}
	return true
}

// Image returns an NRGBA view sharing the buffer's pixels.
func (b *PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// FromImage converts any image into a fresh buffer anchored at the origin.
func FromImage(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := NewPixelBuffer(w, h)
	if src, ok := img.(*image.NRGBA); ok {
		for y := range h {
			i := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(out.Pix[y*w*4:(y+1)*w*4], src.Pix[i:i+w*4])
		}
		return out
	}
	draw.Draw(out.Image(), out.Image().Bounds(), img, bounds.Min, draw.Src)
	return out
}
