package tonemap

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder.
	_ "image/jpeg" // Register JPEG decoder.
	"image/png"
	"io"

	_ "golang.org/x/image/bmp"  // Register BMP decoder.
	_ "golang.org/x/image/tiff" // Register TIFF decoder.
	_ "golang.org/x/image/webp" // Register WebP decoder.

	"github.com/vearutop/tonemap/internal/pngx"
)

// DecodeImage decodes PNG, JPEG, GIF (first frame), BMP, TIFF or WebP bytes into a buffer.
func DecodeImage(data []byte) (*PixelBuffer, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", b.Dx(), b.Dy())
	}
	return FromImage(img), nil
}

// EncodePNG encodes the buffer as a non-premultiplied RGBA PNG.
func EncodePNG(buf *PixelBuffer) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := png.Encode(&out, buf.Image()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// EmbedText stores text under key in a tEXt chunk of the PNG data, replacing any
// existing text chunk with the same key.
func EmbedText(pngData []byte, key, text string) ([]byte, error) {
	return pngx.ReplaceText(pngData, key, text)
}

// EmbedCompressedText is EmbedText using a zlib compressed zTXt chunk.
func EmbedCompressedText(pngData []byte, key, text string) ([]byte, error) {
	return pngx.ReplaceCompressedText(pngData, key, text)
}

// ReadText returns the text stored under key in tEXt, zTXt or iTXt chunks.
func ReadText(pngData []byte, key string) (string, bool, error) {
	return pngx.FindText(pngData, key)
}

// ReadAnchorMetadata decodes anchor metadata stored under key. A missing key or an
// unusable payload reports false without error; errors are reserved for malformed PNG.
func ReadAnchorMetadata(pngData []byte, key string, codec MetadataCodec) (AnchorMetadata, bool, error) {
	text, ok, err := ReadText(pngData, key)
	if err != nil || !ok {
		return AnchorMetadata{}, false, err
	}
	if codec == nil {
		codec = TextCodec{}
	}
	m, ok := codec.Decode(text).Metadata()
	return m, ok, nil
}

// HasAnchorMetadata performs a streaming check for a text chunk named key without
// reading image data. Writers place metadata before IDAT, chunks after it are not seen.
func HasAnchorMetadata(r io.Reader, key string) (bool, error) {
	return pngx.ScanText(r, key)
}
