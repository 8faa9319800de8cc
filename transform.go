package tonemap

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Grayscale converts every pixel to its luma under policy p. Transparent pixels become
// (0,0,0,0) and all other pixels become fully opaque.
func Grayscale(src *PixelBuffer, p LumaPolicy, opts ...func(o *Options)) (*PixelBuffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if !p.valid() {
		return nil, fmt.Errorf("%w: unknown luma policy %d", ErrInvalidParams, int(p))
	}

	out := NewPixelBuffer(src.Width, src.Height)
	opt := buildOptions(opts)
	forRows(src.Height, opt.Workers, func(y0, y1 int) {
		for i := y0 * src.Width * 4; i < y1*src.Width*4; i += 4 {
			setOpaque(out.Pix, src.Pix, i, Luma(src.Pix[i], src.Pix[i+1], src.Pix[i+2], p))
		}
	})
	return out, nil
}

// Reflect converts pixels to luma under params.Luma and remaps the result through the
// anchor quantizer selected by params.Segmentation. Anchors are sorted internally, the
// caller's slice is not modified.
func Reflect(src *PixelBuffer, params Params, opts ...func(o *Options)) (*PixelBuffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	lut := intensityTable(params.Anchors.Sorted(), params.Segmentation)

	out := NewPixelBuffer(src.Width, src.Height)
	opt := buildOptions(opts)
	forRows(src.Height, opt.Workers, func(y0, y1 int) {
		for i := y0 * src.Width * 4; i < y1*src.Width*4; i += 4 {
			v := Luma(src.Pix[i], src.Pix[i+1], src.Pix[i+2], params.Luma)
			setOpaque(out.Pix, src.Pix, i, lut[v])
		}
	})
	return out, nil
}

// forRows splits [0, height) into contiguous row ranges and runs fn on each.
// Every output row depends only on the immutable input, so ranges never interact.
func forRows(height, workers int, fn func(y0, y1 int)) {
	if workers < 2 || height < 2 {
		fn(0, height)
		return
	}
	workers = min(workers, height)
	step := (height + workers - 1) / workers

	var g errgroup.Group
	for y0 := 0; y0 < height; y0 += step {
		y1 := min(y0+step, height)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
