package tonemap

import (
	"slices"
	"testing"
)

func TestTextCodecEncode(t *testing.T) {
	got := TextCodec{}.Encode(AnchorMetadata{
		Anchors:      AnchorSet{64, 128, 192},
		Segmentation: SegmentAverage,
		Luma:         LumaBT601,
	})
	want := `{"anchors":[64,128,192],"reflectionMode":"Average","grayscaleMode":"Default"}`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}

	got = TextCodec{}.Encode(AnchorMetadata{Anchors: AnchorSet{63.5, 127.4, 0.49}})
	if want := `{"anchors":[64,127,0],"reflectionMode":"Average","grayscaleMode":"Default"}`; got != want {
		t.Fatalf("rounding: got %s", got)
	}
}

func TestCodecsRoundTrip(t *testing.T) {
	m := AnchorMetadata{Anchors: AnchorSet{64, 128, 192}, Segmentation: SegmentPartial, Luma: LumaMax}
	for _, c := range []MetadataCodec{TextCodec{}, JSONCodec{}} {
		d := c.Decode(c.Encode(m))
		got, ok := d.Metadata()
		if !ok {
			t.Fatalf("%T: metadata not decoded", c)
		}
		if !slices.Equal(got.Anchors, m.Anchors) || got.Segmentation != m.Segmentation || got.Luma != m.Luma {
			t.Fatalf("%T: got %+v", c, got)
		}
	}
}

func TestCodecsAgree(t *testing.T) {
	m := AnchorMetadata{Anchors: AnchorSet{10.2, 250}, Segmentation: SegmentPartial, Luma: LumaMin}
	if a, b := (TextCodec{}).Encode(m), (JSONCodec{}).Encode(m); a != b {
		t.Fatalf("encodings differ: %s vs %s", a, b)
	}

	for _, text := range []string{
		`{"grayscaleMode":"Max", "anchors": [ 5 , 6 ], "reflectionMode" : "Partial"}`,
		`{"anchors":[64,"abc",192]}`,
		`{"reflectionMode":"Partial"}`,
		`{"anchors":[1,2,3,4,5,6,7,8,9,10,11]}`,
	} {
		a, b := TextCodec{}.Decode(text), JSONCodec{}.Decode(text)
		if !slices.Equal(a.Anchors, b.Anchors) || a.HasLuma != b.HasLuma || a.Luma != b.Luma ||
			a.HasSegmentation != b.HasSegmentation || a.Segmentation != b.Segmentation {
			t.Fatalf("%s: text %+v, json %+v", text, a, b)
		}
	}
}

func TestTextCodecDecode(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		anchors AnchorSet
		seg     string // empty when absent
		luma    string
	}{
		{
			name:    "reordered with whitespace",
			text:    `{ "grayscaleMode" : "Min",  "anchors" : [ 12 ,200 ], "reflectionMode":"Partial" }`,
			anchors: AnchorSet{12, 200},
			seg:     "Partial",
			luma:    "Min",
		},
		{
			name:    "invalid entry skipped",
			text:    `{"anchors":[64,abc,192]}`,
			anchors: AnchorSet{64, 192},
		},
		{
			name:    "out of range skipped",
			text:    `{"anchors":[-3,300,5]}`,
			anchors: AnchorSet{5},
		},
		{
			name: "missing anchors",
			text: `{"reflectionMode":"Average","grayscaleMode":"Max"}`,
			seg:  "Average",
			luma: "Max",
		},
		{
			name: "lower case enums",
			text: `{"anchors":[1],"reflectionMode":"partial","grayscaleMode":"max"}`,
			anchors: AnchorSet{1},
		},
		{
			name: "unknown enums",
			text: `{"anchors":[1],"reflectionMode":"Median","grayscaleMode":"Luminance"}`,
			anchors: AnchorSet{1},
		},
		{
			name: "too many anchors",
			text: `{"anchors":[1,2,3,4,5,6,7,8,9,10,11]}`,
		},
		{
			name: "empty list",
			text: `{"anchors":[]}`,
		},
		{
			name: "garbage",
			text: `not metadata`,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := TextCodec{}.Decode(c.text)
			if !slices.Equal(d.Anchors, c.anchors) {
				t.Fatalf("anchors %v, want %v", d.Anchors, c.anchors)
			}
			if d.HasSegmentation != (c.seg != "") || (d.HasSegmentation && d.Segmentation.String() != c.seg) {
				t.Fatalf("segmentation %v/%v, want %q", d.Segmentation, d.HasSegmentation, c.seg)
			}
			if d.HasLuma != (c.luma != "") || (d.HasLuma && d.Luma.String() != c.luma) {
				t.Fatalf("luma %v/%v, want %q", d.Luma, d.HasLuma, c.luma)
			}
		})
	}
}

func TestDecodedMetadataDefaults(t *testing.T) {
	m, ok := TextCodec{}.Decode(`{"anchors":[100]}`).Metadata()
	if !ok {
		t.Fatal("metadata not decoded")
	}
	if m.Segmentation != SegmentAverage || m.Luma != LumaBT601 {
		t.Fatalf("unexpected defaults %+v", m)
	}
	if _, ok := (TextCodec{}).Decode(`{"grayscaleMode":"Max"}`).Metadata(); ok {
		t.Fatal("metadata without anchors reported")
	}
}

func TestDecodeAnchorsCustomKey(t *testing.T) {
	a, ok := DecodeAnchors(`{"my.key":[7, 8]}`, "my.key")
	if !ok || !slices.Equal(a, AnchorSet{7, 8}) {
		t.Fatalf("got %v %v", a, ok)
	}
	if _, ok := DecodeAnchors(`{"myXkey":[7]}`, "my.key"); ok {
		t.Fatal("key treated as a pattern")
	}
}

func TestJSONCodecRejectsNonObject(t *testing.T) {
	d := JSONCodec{}.Decode(`"anchors":[1,2]`)
	if d.Anchors != nil || d.HasLuma || d.HasSegmentation {
		t.Fatalf("unexpected %+v", d)
	}
}
