package pngx

import (
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/zlib"
)

const (
	maxKeywordLen = 79
	maxTextLen    = 1 << 20
)

// ErrKeyword reports a keyword that cannot be stored in a tEXt chunk.
var ErrKeyword = errors.New("png text keyword must be 1-79 printable latin-1 bytes")

func splitKeyword(body []byte) (string, []byte, bool) {
	i := bytes.IndexByte(body, 0)
	if i <= 0 {
		return "", nil, false
	}
	return string(body[:i]), body[i+1:], true
}

// ParseText returns keyword and text of a tEXt, zTXt or iTXt chunk.
func ParseText(c Chunk) (keyword, text string, err error) {
	k, rest, ok := splitKeyword(c.Data)
	if !ok {
		return "", "", errors.New("text chunk missing keyword")
	}
	switch c.Type {
	case TypeText:
		return k, string(rest), nil
	case TypeZText:
		if len(rest) < 1 || rest[0] != 0 {
			return "", "", errors.New("unsupported zTXt compression method")
		}
		t, err := inflate(rest[1:])
		if err != nil {
			return "", "", err
		}
		return k, string(t), nil
	case TypeIText:
		if len(rest) < 2 {
			return "", "", errors.New("truncated iTXt chunk")
		}
		compressed, method := rest[0], rest[1]
		rest = rest[2:]
		// Skip language tag and translated keyword.
		for range 2 {
			i := bytes.IndexByte(rest, 0)
			if i < 0 {
				return "", "", errors.New("truncated iTXt chunk")
			}
			rest = rest[i+1:]
		}
		if compressed == 0 {
			return k, string(rest), nil
		}
		if method != 0 {
			return "", "", errors.New("unsupported iTXt compression method")
		}
		t, err := inflate(rest)
		if err != nil {
			return "", "", err
		}
		return k, string(t), nil
	default:
		return "", "", errors.New("not a text chunk: " + c.Type)
	}
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, maxTextLen+1))
	if err != nil {
		return nil, err
	}
	if len(out) > maxTextLen {
		return nil, errors.New("text chunk too large")
	}
	return out, nil
}

func validKeyword(keyword string) error {
	if len(keyword) == 0 || len(keyword) > maxKeywordLen {
		return ErrKeyword
	}
	for i := 0; i < len(keyword); i++ {
		c := keyword[i]
		if c < 32 || (c > 126 && c < 161) {
			return ErrKeyword
		}
	}
	return nil
}

// FindText returns the text stored under keyword, searching tEXt, zTXt and iTXt chunks.
func FindText(data []byte, keyword string) (string, bool, error) {
	chunks, err := Chunks(data)
	if err != nil {
		return "", false, err
	}
	for _, c := range chunks {
		if !c.IsText() {
			continue
		}
		k, t, err := ParseText(c)
		if err != nil {
			continue
		}
		if k == keyword {
			return t, true, nil
		}
	}
	return "", false, nil
}

// ReplaceText stores text under keyword in a tEXt chunk placed right after IHDR and
// removes any other text chunk with the same keyword.
func ReplaceText(data []byte, keyword, text string) ([]byte, error) {
	if err := validKeyword(keyword); err != nil {
		return nil, err
	}
	body := make([]byte, 0, len(keyword)+1+len(text))
	body = append(body, keyword...)
	body = append(body, 0)
	body = append(body, text...)
	return replaceChunk(data, keyword, Chunk{Type: TypeText, Data: body})
}

// ReplaceCompressedText is ReplaceText with a zlib compressed zTXt chunk.
func ReplaceCompressedText(data []byte, keyword, text string) ([]byte, error) {
	if err := validKeyword(keyword); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(keyword)
	buf.Write([]byte{0, 0}) // separator, compression method 0
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write([]byte(text)); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return replaceChunk(data, keyword, Chunk{Type: TypeZText, Data: buf.Bytes()})
}

func replaceChunk(data []byte, keyword string, text Chunk) ([]byte, error) {
	chunks, err := Chunks(data)
	if err != nil {
		return nil, err
	}
	out := make([]Chunk, 0, len(chunks)+1)
	out = append(out, chunks[0], text)
	for _, c := range chunks[1:] {
		if c.IsText() {
			if k, _, ok := splitKeyword(c.Data); ok && k == keyword {
				continue
			}
		}
		out = append(out, c)
	}
	return Assemble(out), nil
}
