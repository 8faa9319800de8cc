package tonemap

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the luma distribution of opaque pixels.
type Stats struct {
	Opaque    int
	Mean      float64
	StdDev    float64
	Min       float64
	Max       float64
	Median    float64
	Histogram [256]int
}

// LumaStats computes luma statistics under policy p. Transparent pixels are ignored.
func LumaStats(buf *PixelBuffer, p LumaPolicy) (Stats, error) {
	if err := buf.Validate(); err != nil {
		return Stats{}, err
	}
	var s Stats
	x := opaqueLumas(buf, p, 1)
	if len(x) == 0 {
		return s, nil
	}
	for _, v := range x {
		s.Histogram[int(v)]++
	}
	s.Opaque = len(x)
	s.Min, s.Max = x[0], x[len(x)-1]
	s.Median = stat.Quantile(0.5, stat.Empirical, x, nil)
	if len(x) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(x, nil)
	} else {
		s.Mean = x[0]
	}
	return s, nil
}

// opaqueLumas returns sorted lumas of every step-th opaque pixel.
func opaqueLumas(buf *PixelBuffer, p LumaPolicy, step int) []float64 {
	step = max(step, 1)
	out := make([]float64, 0, len(buf.Pix)/4/step)
	for i := 0; i < len(buf.Pix); i += 4 * step {
		if buf.Pix[i+3] == 0 {
			continue
		}
		out = append(out, float64(Luma(buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], p)))
	}
	slices.Sort(out)
	return out
}
