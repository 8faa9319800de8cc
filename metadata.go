package tonemap

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// AnchorMetadata records the parameters that produced a reflected image.
type AnchorMetadata struct {
	Anchors      AnchorSet
	Segmentation SegmentationPolicy
	Luma         LumaPolicy
}

// Params converts metadata back into transform parameters.
func (m AnchorMetadata) Params() Params {
	return Params{Anchors: m.Anchors, Segmentation: m.Segmentation, Luma: m.Luma}
}

// DecodedMetadata holds whatever fields could be recovered from a metadata payload.
// Absent or unrecognized fields have their Has flag unset.
type DecodedMetadata struct {
	Anchors         AnchorSet // nil when absent
	Segmentation    SegmentationPolicy
	HasSegmentation bool
	Luma            LumaPolicy
	HasLuma         bool
}

// Metadata completes decoded fields into AnchorMetadata, using Average and Default for
// missing policies. It reports false when no valid anchors were decoded.
func (d DecodedMetadata) Metadata() (AnchorMetadata, bool) {
	if len(d.Anchors) == 0 {
		return AnchorMetadata{}, false
	}
	m := AnchorMetadata{Anchors: d.Anchors, Segmentation: SegmentAverage, Luma: LumaBT601}
	if d.HasSegmentation {
		m.Segmentation = d.Segmentation
	}
	if d.HasLuma {
		m.Luma = d.Luma
	}
	return m, true
}

// MetadataCodec converts anchor metadata to and from its textual payload.
type MetadataCodec interface {
	Encode(m AnchorMetadata) string
	Decode(text string) DecodedMetadata
}

// TextCodec writes the compact single-line payload
//
//	{"anchors":[64,128,192],"reflectionMode":"Average","grayscaleMode":"Default"}
//
// and reads it back by scanning for keys, so field order and whitespace are free but
// other JSON constructs are not understood.
type TextCodec struct{}

var _ MetadataCodec = TextCodec{}

// Encode renders m with anchors rounded to integers.
func (TextCodec) Encode(m AnchorMetadata) string {
	var sb strings.Builder
	sb.WriteString(`{"` + metaKeyAnchors + `":[`)
	for i, v := range m.Anchors {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(int64(math.Round(v)), 10))
	}
	sb.WriteString(`],"` + metaKeyReflection + `":"` + m.Segmentation.String() + `"`)
	sb.WriteString(`,"` + metaKeyGrayscale + `":"` + m.Luma.String() + `"}`)
	return sb.String()
}

// Decode scans text for the anchors list and both policy names.
func (TextCodec) Decode(text string) DecodedMetadata {
	var d DecodedMetadata
	if a, ok := DecodeAnchors(text, metaKeyAnchors); ok {
		d.Anchors = a
	}
	if s, ok := decodeString(text, metaKeyReflection); ok {
		// Wire names are case-sensitive, lower-case command line spellings do not count.
		if p, ok := ParseSegmentationPolicy(s); ok && p.String() == s {
			d.Segmentation, d.HasSegmentation = p, true
		}
	}
	if s, ok := decodeString(text, metaKeyGrayscale); ok {
		if p, ok := ParseLumaPolicy(s); ok && p.String() == s {
			d.Luma, d.HasLuma = p, true
		}
	}
	return d
}

var (
	reAnchors    = regexp.MustCompile(`"` + metaKeyAnchors + `"\s*:\s*\[([^\]]*)\]`)
	reReflection = regexp.MustCompile(`"` + metaKeyReflection + `"\s*:\s*"([^"]*)"`)
	reGrayscale  = regexp.MustCompile(`"` + metaKeyGrayscale + `"\s*:\s*"([^"]*)"`)
)

func listPattern(key string) *regexp.Regexp {
	if key == metaKeyAnchors {
		return reAnchors
	}
	return regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*\[([^\]]*)\]`)
}

func stringPattern(key string) *regexp.Regexp {
	switch key {
	case metaKeyReflection:
		return reReflection
	case metaKeyGrayscale:
		return reGrayscale
	default:
		return regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*"([^"]*)"`)
	}
}

// DecodeAnchors finds key in text and parses the bracketed list that follows it.
// Entries that are not numbers in [0, 255] are skipped. It reports false when the key
// is missing or the result is not a valid anchor set.
func DecodeAnchors(text, key string) (AnchorSet, bool) {
	m := listPattern(key).FindStringSubmatch(text)
	if len(m) != 2 {
		return nil, false
	}
	var out AnchorSet
	for _, item := range strings.Split(m[1], ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(item), 64)
		if err != nil || math.IsNaN(v) || v < 0 || v > maxIntensity {
			continue
		}
		out = append(out, v)
	}
	if out.Validate() != nil {
		return nil, false
	}
	return out, true
}

func decodeString(text, key string) (string, bool) {
	m := stringPattern(key).FindStringSubmatch(text)
	if len(m) != 2 {
		return "", false
	}
	return m[1], true
}
