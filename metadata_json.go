package tonemap

import (
	"encoding/json"
	"math"
)

// JSONCodec reads and writes the same payload as TextCodec with encoding/json.
// It rejects input that is not a JSON object but still skips malformed anchor entries.
type JSONCodec struct{}

var _ MetadataCodec = JSONCodec{}

type metadataDoc struct {
	Anchors    []int64 `json:"anchors"`
	Reflection string  `json:"reflectionMode"`
	Grayscale  string  `json:"grayscaleMode"`
}

// Encode renders m with anchors rounded to integers.
func (JSONCodec) Encode(m AnchorMetadata) string {
	doc := metadataDoc{
		Anchors:    make([]int64, len(m.Anchors)),
		Reflection: m.Segmentation.String(),
		Grayscale:  m.Luma.String(),
	}
	for i, v := range m.Anchors {
		doc.Anchors[i] = int64(math.Round(v))
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	return string(payload)
}

// Decode unmarshals text field by field.
func (JSONCodec) Decode(text string) DecodedMetadata {
	var (
		d      DecodedMetadata
		fields map[string]json.RawMessage
	)
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return d
	}

	if raw, ok := fields[metaKeyAnchors]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			var out AnchorSet
			for _, item := range items {
				var v float64
				if err := json.Unmarshal(item, &v); err != nil || v < 0 || v > maxIntensity {
					continue
				}
				out = append(out, v)
			}
			if out.Validate() == nil {
				d.Anchors = out
			}
		}
	}

	var s string
	if raw, ok := fields[metaKeyReflection]; ok && json.Unmarshal(raw, &s) == nil {
		if p, ok := ParseSegmentationPolicy(s); ok && p.String() == s {
			d.Segmentation, d.HasSegmentation = p, true
		}
	}
	if raw, ok := fields[metaKeyGrayscale]; ok && json.Unmarshal(raw, &s) == nil {
		if p, ok := ParseLumaPolicy(s); ok && p.String() == s {
			d.Luma, d.HasLuma = p, true
		}
	}
	return d
}
