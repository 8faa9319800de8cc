package tonemap

type rgb8 struct {
	r, g, b uint8
}

// preferred reports whether c should win over cur when both have the same count.
func (c rgb8) preferred(cur rgb8) bool {
	if c.r != cur.r {
		return c.r > cur.r
	}
	if c.g != cur.g {
		return c.g > cur.g
	}
	return c.b > cur.b
}

// Denoise replaces isolated pixels with the most frequent colour among their opaque
// 8-neighbours. A pixel is isolated when it is opaque, has at least one opaque
// neighbour and its RGB matches none of them. Count ties go to the larger red value
// (then green, then blue). Alpha is never modified and all lookups read the input.
func Denoise(src *PixelBuffer, opts ...func(o *Options)) (*PixelBuffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	out := src.Clone()
	opt := buildOptions(opts)
	w, h := src.Width, src.Height
	forRows(h, opt.Workers, func(y0, y1 int) {
		var (
			neighbors [8]rgb8
			counts    [8]int
		)
		for y := y0; y < y1; y++ {
			for x := range w {
				i := (y*w + x) * 4
				if src.Pix[i+3] == 0 {
					continue
				}
				cur := rgb8{src.Pix[i], src.Pix[i+1], src.Pix[i+2]}

				n := 0
				matched := false
				for dy := -1; dy <= 1 && !matched; dy++ {
					ny := y + dy
					if ny < 0 || ny >= h {
						continue
					}
					for dx := -1; dx <= 1; dx++ {
						nx := x + dx
						if (dx == 0 && dy == 0) || nx < 0 || nx >= w {
							continue
						}
						j := (ny*w + nx) * 4
						if src.Pix[j+3] == 0 {
							continue
						}
						c := rgb8{src.Pix[j], src.Pix[j+1], src.Pix[j+2]}
						if c == cur {
							matched = true
							break
						}
						neighbors[n] = c
						n++
					}
				}
				if matched || n == 0 {
					continue
				}

				best := majority(neighbors[:n], counts[:n])
				out.Pix[i], out.Pix[i+1], out.Pix[i+2] = best.r, best.g, best.b
			}
		}
	})
	return out, nil
}

// majority returns the most frequent colour, counts is scratch space of equal length.
func majority(colors []rgb8, counts []int) rgb8 {
	for i := range colors {
		counts[i] = 0
		for j := range colors {
			if colors[j] == colors[i] {
				counts[i]++
			}
		}
	}
	best, bestCount := colors[0], counts[0]
	for i := 1; i < len(colors); i++ {
		if counts[i] > bestCount || (counts[i] == bestCount && colors[i].preferred(best)) {
			best, bestCount = colors[i], counts[i]
		}
	}
	return best
}
