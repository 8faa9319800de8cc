// Package pngx reads and rewrites PNG chunk streams without decoding pixels.
package pngx

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

// Signature is the 8-byte PNG file header.
var Signature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Chunk types handled by this package.
const (
	TypeIHDR  = "IHDR"
	TypeIDAT  = "IDAT"
	TypeIEND  = "IEND"
	TypeText  = "tEXt"
	TypeZText = "zTXt"
	TypeIText = "iTXt"
)

const maxChunkLen = 1<<31 - 1

// Chunk is a single PNG chunk. Data excludes length, type and CRC.
type Chunk struct {
	Type string
	Data []byte
}

// IsText reports whether the chunk carries textual metadata.
func (c Chunk) IsText() bool {
	return c.Type == TypeText || c.Type == TypeZText || c.Type == TypeIText
}

// Chunks splits a PNG file into chunks, verifying signature, lengths and CRCs.
// Parsing stops after IEND.
func Chunks(data []byte) ([]Chunk, error) {
	if len(data) < len(Signature) || !bytes.Equal(data[:len(Signature)], Signature) {
		return nil, errors.New("invalid png signature")
	}
	var chunks []Chunk
	pos := len(Signature)
	for pos < len(data) {
		if pos+8 > len(data) {
			return nil, errors.New("truncated chunk header")
		}
		length := int(binary.BigEndian.Uint32(data[pos:]))
		if length > maxChunkLen || pos+12+length > len(data) {
			return nil, errors.New("invalid chunk length")
		}
		typ := string(data[pos+4 : pos+8])
		body := data[pos+8 : pos+8+length]
		sum := binary.BigEndian.Uint32(data[pos+8+length:])
		if crc32.ChecksumIEEE(data[pos+4:pos+8+length]) != sum {
			return nil, errors.New("chunk " + typ + " crc mismatch")
		}
		chunks = append(chunks, Chunk{Type: typ, Data: append([]byte(nil), body...)})
		pos += 12 + length
		if typ == TypeIEND {
			break
		}
	}
	if len(chunks) == 0 || chunks[0].Type != TypeIHDR {
		return nil, errors.New("png must start with IHDR")
	}
	return chunks, nil
}

// WriteChunk appends a chunk with length prefix and CRC.
func WriteChunk(out *bytes.Buffer, typ string, data []byte) {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(len(data)))
	copy(hdr[4:], typ)
	out.Write(hdr[:])
	out.Write(data)

	crc := crc32.NewIEEE()
	_, _ = crc.Write(hdr[4:])
	_, _ = crc.Write(data)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	out.Write(sum[:])
}

// Assemble writes the signature followed by chunks.
func Assemble(chunks []Chunk) []byte {
	var out bytes.Buffer
	out.Write(Signature)
	for _, c := range chunks {
		WriteChunk(&out, c.Type, c.Data)
	}
	return out.Bytes()
}

// ScanText walks chunk headers from r until the first IDAT and reports whether a text
// chunk with the given keyword precedes it. Only text chunk bodies are read.
func ScanText(r io.Reader, keyword string) (bool, error) {
	br := bufio.NewReader(r)
	sig := make([]byte, len(Signature))
	if _, err := io.ReadFull(br, sig); err != nil {
		return false, err
	}
	if !bytes.Equal(sig, Signature) {
		return false, errors.New("invalid png signature")
	}
	var hdr [8]byte
	for {
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		length := int64(binary.BigEndian.Uint32(hdr[:4]))
		typ := string(hdr[4:])
		switch typ {
		case TypeIDAT, TypeIEND:
			return false, nil
		case TypeText, TypeZText, TypeIText:
			if length > maxTextLen {
				return false, errors.New("text chunk too large")
			}
			body := make([]byte, length)
			if _, err := io.ReadFull(br, body); err != nil {
				return false, err
			}
			if k, _, ok := splitKeyword(body); ok && k == keyword {
				return true, nil
			}
			if err := discardN(br, 4); err != nil {
				return false, err
			}
		default:
			if err := discardN(br, length+4); err != nil {
				return false, err
			}
		}
	}
}

func discardN(br *bufio.Reader, n int64) error {
	_, err := io.CopyN(io.Discard, br, n)
	return err
}
