package tonemap

import (
	"fmt"
	"math"
	"slices"
)

// LumaPolicy selects how a single intensity is derived from RGB.
type LumaPolicy int

const (
	// LumaBT601 is the integer-weighted ITU-R BT.601 luma, stored as "Default".
	LumaBT601 LumaPolicy = iota
	// LumaMax takes the largest of R, G and B.
	LumaMax
	// LumaMin takes the smallest of R, G and B.
	LumaMin
)

// String returns the wire name of the policy.
func (p LumaPolicy) String() string {
	switch p {
	case LumaBT601:
		return "Default"
	case LumaMax:
		return "Max"
	case LumaMin:
		return "Min"
	default:
		return fmt.Sprintf("LumaPolicy(%d)", int(p))
	}
}

func (p LumaPolicy) valid() bool {
	return p >= LumaBT601 && p <= LumaMin
}

// ParseLumaPolicy maps a name to a policy. Wire names ("Default", "Max", "Min") and
// lower-case command line spellings are accepted, anything else reports false.
func ParseLumaPolicy(s string) (LumaPolicy, bool) {
	switch s {
	case "Default", "default", "bt601":
		return LumaBT601, true
	case "Max", "max":
		return LumaMax, true
	case "Min", "min":
		return LumaMin, true
	default:
		return 0, false
	}
}

// SegmentationPolicy selects how anchors turn into an intensity mapping.
type SegmentationPolicy int

const (
	// SegmentAverage maps each anchor interval to the midpoint of its bounds.
	SegmentAverage SegmentationPolicy = iota
	// SegmentPartial maps anchor intervals to a fixed, evenly spaced ladder.
	SegmentPartial
)

// String returns the wire name of the policy.
func (p SegmentationPolicy) String() string {
	switch p {
	case SegmentAverage:
		return "Average"
	case SegmentPartial:
		return "Partial"
	default:
		return fmt.Sprintf("SegmentationPolicy(%d)", int(p))
	}
}

func (p SegmentationPolicy) valid() bool {
	return p == SegmentAverage || p == SegmentPartial
}

// ParseSegmentationPolicy maps a name to a policy, reporting false for unknown names.
func ParseSegmentationPolicy(s string) (SegmentationPolicy, bool) {
	switch s {
	case "Average", "average":
		return SegmentAverage, true
	case "Partial", "partial":
		return SegmentPartial, true
	default:
		return 0, false
	}
}

// AnchorSet is a list of breakpoint intensities in [0, 255].
// Producers may pass anchors in any order.
type AnchorSet []float64

// Validate checks anchor count and range.
func (a AnchorSet) Validate() error {
	if len(a) < MinAnchors || len(a) > MaxAnchors {
		return fmt.Errorf("%w: anchor count %d outside %d..%d", ErrInvalidParams, len(a), MinAnchors, MaxAnchors)
	}
	for i, v := range a {
		if math.IsNaN(v) || v < 0 || v > maxIntensity {
			return fmt.Errorf("%w: anchor %d value %v outside [0, 255]", ErrInvalidParams, i, v)
		}
	}
	return nil
}

// Sorted returns an ascending copy.
func (a AnchorSet) Sorted() AnchorSet {
	s := slices.Clone(a)
	slices.Sort(s)
	return s
}

// Params fully determines a reflection.
type Params struct {
	Anchors      AnchorSet
	Segmentation SegmentationPolicy
	Luma         LumaPolicy
}

// Validate checks anchors and policies.
func (p Params) Validate() error {
	if err := p.Anchors.Validate(); err != nil {
		return err
	}
	if !p.Segmentation.valid() {
		return fmt.Errorf("%w: unknown segmentation policy %d", ErrInvalidParams, int(p.Segmentation))
	}
	if !p.Luma.valid() {
		return fmt.Errorf("%w: unknown luma policy %d", ErrInvalidParams, int(p.Luma))
	}
	return nil
}

// Options controls transform execution.
type Options struct {
	// Workers is the number of goroutines sharing rows, values below 2 run inline.
	Workers int
}

func buildOptions(opts []func(o *Options)) Options {
	var opt Options
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	return opt
}
