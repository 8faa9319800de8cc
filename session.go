package tonemap

import "slices"

// Session keeps the original image and the current result of the last operation.
// It is not safe for concurrent use.
type Session struct {
	original *PixelBuffer
	current  *PixelBuffer
	opts     []func(o *Options)

	meta    AnchorMetadata
	applied bool
}

// NewSession starts a session on a copy of img.
func NewSession(img *PixelBuffer, opts ...func(o *Options)) (*Session, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		original: img.Clone(),
		current:  img.Clone(),
		opts:     opts,
	}, nil
}

// Original returns a copy of the loaded image.
func (s *Session) Original() *PixelBuffer {
	return s.original.Clone()
}

// Current returns a copy of the latest result.
func (s *Session) Current() *PixelBuffer {
	return s.current.Clone()
}

// Restore discards the current result in favour of the original image.
func (s *Session) Restore() {
	s.current = s.original.Clone()
}

// ApplyGrayscale replaces the current result with a grayscale rendition of the original.
func (s *Session) ApplyGrayscale(p LumaPolicy) error {
	out, err := Grayscale(s.original, p, s.opts...)
	if err != nil {
		return err
	}
	s.current = out
	return nil
}

// ApplyReflection replaces the current result with a reflection of the original and
// records params as the session's anchor metadata.
func (s *Session) ApplyReflection(params Params) error {
	out, err := Reflect(s.original, params, s.opts...)
	if err != nil {
		return err
	}
	s.current = out
	s.meta = AnchorMetadata{
		Anchors:      slices.Clone(params.Anchors),
		Segmentation: params.Segmentation,
		Luma:         params.Luma,
	}
	s.applied = true
	return nil
}

// Clean denoises the current result in place of itself.
func (s *Session) Clean() error {
	out, err := Denoise(s.current, s.opts...)
	if err != nil {
		return err
	}
	s.current = out
	return nil
}

// AnchorMetadata returns parameters of the latest reflection. It reports false until a
// reflection has been applied in this session.
func (s *Session) AnchorMetadata() (AnchorMetadata, bool) {
	if !s.applied {
		return AnchorMetadata{}, false
	}
	m := s.meta
	m.Anchors = slices.Clone(m.Anchors)
	return m, true
}
