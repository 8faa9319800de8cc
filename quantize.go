package tonemap

// QuantizeAverage maps an intensity to the midpoint of the anchor interval containing it.
//
// anchors must be sorted ascending and hold 1 to 10 values. Interval bounds are
// inclusive on both ends and the lowest matching interval wins. Below the first anchor
// the output is the midpoint of 0 and the second anchor, above the last one the
// midpoint of the second to last anchor and 255. A single anchor splits the range in
// two halves instead. An empty set returns v unchanged.
func QuantizeAverage(v uint8, anchors AnchorSet) uint8 {
	n := len(anchors)
	if n == 0 {
		return v
	}

	g := float64(v)

	if n == 1 {
		if g < anchors[0] {
			return uint8(anchors[0] / 2)
		}
		return uint8((anchors[0] + maxIntensity) / 2)
	}

	for i := 0; i < n-1; i++ {
		if g >= anchors[i] && g <= anchors[i+1] {
			return uint8((anchors[i] + anchors[i+1]) / 2)
		}
	}

	if g <= anchors[0] {
		// Uses the second anchor rather than the first; kept for output compatibility
		// with images produced by earlier releases.
		return uint8(anchors[1] / 2)
	}
	return uint8((anchors[n-2] + maxIntensity) / 2)
}

// PartialLadder returns the n+2 output levels used by Partial segmentation for n anchors:
// black, the midpoints of n equal-width segments, and white.
func PartialLadder(n int) []float64 {
	if n < 0 {
		n = 0
	}
	size := maxIntensity / float64(n+2)
	ladder := make([]float64, 0, n+2)
	ladder = append(ladder, 0)
	for k := 1; k <= n; k++ {
		start := float64(k) * size
		end := float64(k+1) * size
		ladder = append(ladder, (start+end)/2)
	}
	return append(ladder, maxIntensity)
}

// QuantizePartial maps an intensity to a fixed ladder step chosen by the anchor interval
// containing it. Interval matching follows QuantizeAverage; below the first anchor is
// black, above the last is white.
func QuantizePartial(v uint8, anchors AnchorSet) uint8 {
	return quantizePartial(v, anchors, PartialLadder(len(anchors)))
}

func quantizePartial(v uint8, anchors AnchorSet, ladder []float64) uint8 {
	n := len(anchors)
	if n == 0 {
		return v
	}

	g := float64(v)

	if n == 1 {
		if g < anchors[0] {
			return uint8(ladder[0])
		}
		return uint8(ladder[2])
	}

	for i := 0; i < n-1; i++ {
		if g >= anchors[i] && g <= anchors[i+1] {
			return uint8(ladder[i+1])
		}
	}

	if g <= anchors[0] {
		return uint8(ladder[0])
	}
	return uint8(ladder[len(ladder)-1])
}

// EvenAnchors places n anchors at 255/(n+2)*(i+1), the default slider layout.
func EvenAnchors(n int) AnchorSet {
	if n <= 0 {
		return nil
	}
	size := maxIntensity / float64(n+2)
	out := make(AnchorSet, n)
	for i := range out {
		out[i] = size * float64(i+1)
	}
	return out
}

// intensityTable precomputes the quantizer output for every input intensity.
func intensityTable(sorted AnchorSet, seg SegmentationPolicy) [256]uint8 {
	var lut [256]uint8
	switch seg {
	case SegmentPartial:
		ladder := PartialLadder(len(sorted))
		for v := range lut {
			lut[v] = quantizePartial(uint8(v), sorted, ladder)
		}
	default:
		for v := range lut {
			lut[v] = QuantizeAverage(uint8(v), sorted)
		}
	}
	return lut
}
