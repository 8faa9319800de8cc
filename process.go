package tonemap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
)

// Step is one operation applied to a session.
type Step func(s *Session) error

// GrayscaleStep converts the original image with policy p.
func GrayscaleStep(p LumaPolicy) Step {
	return func(s *Session) error { return s.ApplyGrayscale(p) }
}

// ReflectStep reflects the original image with params.
func ReflectStep(params Params) Step {
	return func(s *Session) error { return s.ApplyReflection(params) }
}

// CleanStep denoises the current result.
func CleanStep() Step {
	return func(s *Session) error { return s.Clean() }
}

// RestoreStep drops the current result in favour of the original image.
func RestoreStep() Step {
	return func(s *Session) error {
		s.Restore()
		return nil
	}
}

// ProcessOptions controls Process and ProcessFile.
type ProcessOptions struct {
	// Transform options passed to every step.
	Transform []func(o *Options)
	// EmbedAnchors stores the last reflection's anchors in the output PNG.
	EmbedAnchors bool
	// MetadataKey is the PNG text keyword, DefaultMetadataKey when empty.
	MetadataKey string
	// Codec encodes metadata, TextCodec when nil.
	Codec MetadataCodec
	// CompressMetadata writes a zTXt chunk instead of tEXt.
	CompressMetadata bool
	// PreviewWidth bounds the preview size in both dimensions, 512 when zero.
	PreviewWidth uint
	// PreviewOut is a path for a nearest-neighbour preview PNG, used by ProcessFile.
	PreviewOut string
	OnResult   func(res *ProcessResult)
}

// ProcessResult contains the encoded output and what produced it.
type ProcessResult struct {
	PNG      []byte
	Image    *PixelBuffer
	Metadata *AnchorMetadata // nil unless a reflection was applied
}

// Process decodes an image, applies steps in order and encodes the result as PNG.
func Process(data []byte, steps []Step, opts ...func(o *ProcessOptions)) (*ProcessResult, error) {
	opt := ProcessOptions{}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	if opt.MetadataKey == "" {
		opt.MetadataKey = DefaultMetadataKey
	}
	if opt.Codec == nil {
		opt.Codec = TextCodec{}
	}

	img, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	s, err := NewSession(img, opt.Transform...)
	if err != nil {
		return nil, err
	}
	for i, step := range steps {
		if err := step(s); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	res := ProcessResult{Image: s.Current()}
	if m, ok := s.AnchorMetadata(); ok {
		res.Metadata = &m
	}

	res.PNG, err = EncodePNG(res.Image)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	if opt.EmbedAnchors {
		if res.Metadata == nil {
			return nil, errors.New("no color reflection anchors available to write into metadata")
		}
		embed := EmbedText
		if opt.CompressMetadata {
			embed = EmbedCompressedText
		}
		res.PNG, err = embed(res.PNG, opt.MetadataKey, opt.Codec.Encode(*res.Metadata))
		if err != nil {
			return nil, fmt.Errorf("embed metadata: %w", err)
		}
	}

	if opt.OnResult != nil {
		opt.OnResult(&res)
	}
	return &res, nil
}

// ProcessFile reads inPath, processes it and writes the PNG to outPath. If
// ProcessOptions.PreviewOut is set, a downscaled preview is written as well.
func ProcessFile(inPath, outPath string, steps []Step, opts ...func(o *ProcessOptions)) error {
	data, err := os.ReadFile(filepath.Clean(inPath))
	if err != nil {
		return err
	}
	res, err := Process(data, steps, opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Clean(outPath), res.PNG, 0o644); err != nil {
		return err
	}

	opt := ProcessOptions{}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}

	if opt.PreviewOut != "" {
		preview, err := EncodePNG(Preview(res.Image, opt.PreviewWidth))
		if err != nil {
			return fmt.Errorf("encode preview: %w", err)
		}
		if err := os.WriteFile(filepath.Clean(opt.PreviewOut), preview, 0o644); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
	}
	return nil
}

// ReadAnchorMetadataFile reads anchor metadata from a PNG file.
func ReadAnchorMetadataFile(path, key string, codec MetadataCodec) (AnchorMetadata, bool, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return AnchorMetadata{}, false, err
	}
	return ReadAnchorMetadata(data, key, codec)
}

// Preview downscales buf to fit a size x size box using the nearest-neighbour kernel
// of nfnt/resize, keeping the aspect ratio. Images that already fit are copied unchanged.
func Preview(buf *PixelBuffer, size uint) *PixelBuffer {
	if size == 0 {
		size = defaultPreviewWidth
	}
	if uint(buf.Width) <= size && uint(buf.Height) <= size {
		return buf.Clone()
	}
	return FromImage(resize.Thumbnail(size, size, buf.Image(), resize.NearestNeighbor))
}
