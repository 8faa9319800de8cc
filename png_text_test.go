package tonemap

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"slices"
	"testing"

	"github.com/vearutop/tonemap/internal/pngx"
)

func encoded(t *testing.T, buf *PixelBuffer) []byte {
	t.Helper()
	data, err := EncodePNG(buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := randomBuffer(17, 5, 9)
	got, err := DecodeImage(encoded(t, src))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Equal(src) {
		t.Fatal("pixels differ after round trip")
	}
}

func TestDecodeImageJPEG(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 4))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	var b bytes.Buffer
	if err := jpeg.Encode(&b, img, nil); err != nil {
		t.Fatalf("jpeg: %v", err)
	}
	buf, err := DecodeImage(b.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if buf.Width != 8 || buf.Height != 4 || pixelAt(buf, 0, 0)[3] != 255 {
		t.Fatalf("unexpected buffer %dx%d %v", buf.Width, buf.Height, pixelAt(buf, 0, 0))
	}
	if _, err := DecodeImage([]byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFromImagePaletted(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 2, 1), color.Palette{
		color.NRGBA{R: 1, G: 2, B: 3, A: 255},
		color.NRGBA{},
	})
	img.Pix[1] = 1
	buf := FromImage(img)
	if pixelAt(buf, 0, 0) != [4]uint8{1, 2, 3, 255} || pixelAt(buf, 1, 0)[3] != 0 {
		t.Fatalf("unexpected pixels %v", buf.Pix)
	}
}

func TestEmbedAndReadAnchorMetadata(t *testing.T) {
	data := encoded(t, uniform(3, 3, [4]uint8{9, 9, 9, 255}))
	m := AnchorMetadata{Anchors: AnchorSet{64, 128, 192}, Segmentation: SegmentPartial, Luma: LumaMax}

	for _, embed := range []func([]byte, string, string) ([]byte, error){EmbedText, EmbedCompressedText} {
		out, err := embed(data, DefaultMetadataKey, TextCodec{}.Encode(m))
		if err != nil {
			t.Fatalf("embed: %v", err)
		}
		got, ok, err := ReadAnchorMetadata(out, DefaultMetadataKey, nil)
		if err != nil || !ok {
			t.Fatalf("read: %v %v", ok, err)
		}
		if !slices.Equal(got.Anchors, m.Anchors) || got.Segmentation != m.Segmentation || got.Luma != m.Luma {
			t.Fatalf("got %+v", got)
		}

		img, err := DecodeImage(out)
		if err != nil {
			t.Fatalf("decode with metadata: %v", err)
		}
		if pixelAt(img, 2, 2) != [4]uint8{9, 9, 9, 255} {
			t.Fatal("pixels changed by embedding")
		}

		ok, err = HasAnchorMetadata(bytes.NewReader(out), DefaultMetadataKey)
		if err != nil || !ok {
			t.Fatalf("streaming check: %v %v", ok, err)
		}
	}
}

func TestEmbedTextReplaces(t *testing.T) {
	data := encoded(t, uniform(2, 2, [4]uint8{1, 1, 1, 255}))
	out, err := EmbedText(data, "anchors", `{"anchors":[10]}`)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	out, err = EmbedCompressedText(out, "other", "keep me")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	out, err = EmbedText(out, "anchors", `{"anchors":[20]}`)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}

	chunks, err := pngx.Chunks(out)
	if err != nil {
		t.Fatalf("chunks: %v", err)
	}
	n := 0
	for _, c := range chunks {
		if c.IsText() {
			if k, _, err := pngx.ParseText(c); err == nil && k == "anchors" {
				n++
			}
		}
	}
	if n != 1 {
		t.Fatalf("%d anchors chunks, want 1", n)
	}

	text, ok, err := ReadText(out, "anchors")
	if err != nil || !ok || text != `{"anchors":[20]}` {
		t.Fatalf("got %q %v %v", text, ok, err)
	}
	text, ok, err = ReadText(out, "other")
	if err != nil || !ok || text != "keep me" {
		t.Fatalf("other key: %q %v %v", text, ok, err)
	}
}

func TestReadAnchorMetadataMissing(t *testing.T) {
	data := encoded(t, uniform(2, 2, [4]uint8{1, 1, 1, 255}))
	if _, ok, err := ReadAnchorMetadata(data, DefaultMetadataKey, JSONCodec{}); ok || err != nil {
		t.Fatalf("got %v %v", ok, err)
	}
	ok, err := HasAnchorMetadata(bytes.NewReader(data), DefaultMetadataKey)
	if ok || err != nil {
		t.Fatalf("streaming check: %v %v", ok, err)
	}

	out, err := EmbedText(data, DefaultMetadataKey, `{"grayscaleMode":"Max"}`)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if _, ok, err := ReadAnchorMetadata(out, DefaultMetadataKey, nil); ok || err != nil {
		t.Fatalf("payload without anchors: %v %v", ok, err)
	}

	if _, _, err := ReadAnchorMetadata([]byte("GIF89a"), DefaultMetadataKey, nil); err == nil {
		t.Fatal("expected error for non-png input")
	}
}

func TestEmbedTextBadKeyword(t *testing.T) {
	data := encoded(t, uniform(1, 1, [4]uint8{}))
	for _, key := range []string{"", "bad\x00key", string(make([]byte, 80))} {
		if _, err := EmbedText(data, key, "x"); !errors.Is(err, pngx.ErrKeyword) {
			t.Fatalf("key %q: got %v", key, err)
		}
	}
}
