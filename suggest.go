package tonemap

import (
	"fmt"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/stat"
)

// SuggestMethod selects how SuggestAnchors derives anchors from an image.
type SuggestMethod int

const (
	// SuggestEven spaces anchors evenly, ignoring image content.
	SuggestEven SuggestMethod = iota
	// SuggestQuantile places anchors at equally spaced luma quantiles.
	SuggestQuantile
	// SuggestKMeans clusters luma into n+1 groups and splits between them.
	SuggestKMeans
	// SuggestDominant splits between the lumas of n+1 dominant colors.
	SuggestDominant
)

func (m SuggestMethod) String() string {
	switch m {
	case SuggestQuantile:
		return "quantile"
	case SuggestKMeans:
		return "kmeans"
	case SuggestDominant:
		return "dominant"
	default:
		return "even"
	}
}

// ParseSuggestMethod maps a name to a method, reporting false for unknown names.
func ParseSuggestMethod(s string) (SuggestMethod, bool) {
	for _, m := range []SuggestMethod{SuggestEven, SuggestQuantile, SuggestKMeans, SuggestDominant} {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

// Suggestion is a proposed anchor set.
type Suggestion struct {
	Anchors AnchorSet
	// Method is the method that produced Anchors, it differs from the requested one
	// after a fallback to SuggestEven.
	Method SuggestMethod
}

const maxSuggestSamples = 12000

// SuggestAnchors proposes n anchors for buf. Clustering methods fall back to even
// spacing when the image does not have n+1 distinguishable levels.
func SuggestAnchors(buf *PixelBuffer, n int, method SuggestMethod, luma LumaPolicy) (Suggestion, error) {
	if err := buf.Validate(); err != nil {
		return Suggestion{}, err
	}
	if n < MinAnchors || n > MaxAnchors {
		return Suggestion{}, fmt.Errorf("%w: anchor count %d outside %d..%d", ErrInvalidParams, n, MinAnchors, MaxAnchors)
	}

	var levels []float64
	switch method {
	case SuggestEven:
	case SuggestQuantile:
		if x := opaqueLumas(buf, luma, 1); len(x) > 0 {
			anchors := make(AnchorSet, n)
			for i := range anchors {
				anchors[i] = stat.Quantile(float64(i+1)/float64(n+1), stat.Empirical, x, nil)
			}
			return Suggestion{Anchors: anchors, Method: method}, nil
		}
	case SuggestKMeans:
		levels = kmeansLevels(buf, n+1, luma)
	case SuggestDominant:
		levels = dominantLevels(buf, n+1, luma)
	default:
		return Suggestion{}, fmt.Errorf("%w: unknown suggest method %d", ErrInvalidParams, int(method))
	}

	if len(levels) == n+1 {
		return Suggestion{Anchors: midpoints(levels), Method: method}, nil
	}
	return Suggestion{Anchors: EvenAnchors(n), Method: SuggestEven}, nil
}

// midpoints returns the n-1 boundaries between n ascending levels.
func midpoints(levels []float64) AnchorSet {
	out := make(AnchorSet, 0, len(levels)-1)
	for i := 0; i+1 < len(levels); i++ {
		out = append(out, (levels[i]+levels[i+1])/2)
	}
	return out
}

func kmeansLevels(buf *PixelBuffer, k int, luma LumaPolicy) []float64 {
	// Subsample to keep kmeans tractable on large images.
	x := opaqueLumas(buf, luma, buf.Width*buf.Height/maxSuggestSamples+1)
	if len(distinct(slices.Clone(x))) < k {
		return nil
	}

	dataset := make(clusters.Observations, 0, len(x))
	for _, v := range x {
		dataset = append(dataset, clusters.Coordinates{v / maxIntensity})
	}
	cc, err := kmeans.New().Partition(dataset, k)
	if err != nil || len(cc) != k {
		return nil
	}

	levels := make([]float64, 0, k)
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) == 0 {
			return nil
		}
		levels = append(levels, math.Round(c.Center[0]*maxIntensity))
	}
	slices.Sort(levels)
	return distinct(levels)
}

func dominantLevels(buf *PixelBuffer, k int, luma LumaPolicy) []float64 {
	candidates := dominantcolor.FindWeight(buf.Image(), k)
	if len(candidates) < k {
		return nil
	}
	palette := make([]colorful.Color, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		palette = append(palette, col.Clamped())
	}
	sortByBrightness(palette)

	levels := make([]float64, 0, len(palette))
	for _, c := range palette {
		r, g, b := c.RGB255()
		levels = append(levels, float64(Luma(r, g, b, luma)))
	}
	// Brightness order is perceptual, the chosen luma policy may disagree with it.
	slices.Sort(levels)
	return distinct(levels)
}

// sortByBrightness orders colors from darkest to brightest by relative luminance.
func sortByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		ri, gi, bi := a.LinearRgb()
		rj, gj, bj := b.LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

// distinct drops repeated values from a sorted slice.
func distinct(sorted []float64) []float64 {
	return slices.Compact(sorted)
}
