package tonemap

import "math/rand"

func newBuffer(w, h int, px func(x, y int) [4]uint8) *PixelBuffer {
	b := NewPixelBuffer(w, h)
	for y := range h {
		for x := range w {
			c := px(x, y)
			copy(b.Pix[(y*w+x)*4:], c[:])
		}
	}
	return b
}

func uniform(w, h int, c [4]uint8) *PixelBuffer {
	return newBuffer(w, h, func(int, int) [4]uint8 { return c })
}

func randomBuffer(w, h int, seed int64) *PixelBuffer {
	rnd := rand.New(rand.NewSource(seed))
	b := NewPixelBuffer(w, h)
	rnd.Read(b.Pix)
	// Keep a share of fully transparent pixels.
	for i := 3; i < len(b.Pix); i += 4 {
		if b.Pix[i] < 40 {
			b.Pix[i] = 0
		}
	}
	return b
}

func pixelAt(b *PixelBuffer, x, y int) [4]uint8 {
	i := (y*b.Width + x) * 4
	return [4]uint8{b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]}
}
