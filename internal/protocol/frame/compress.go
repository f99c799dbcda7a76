package frame

import (
	"errors"
	"fmt"
	"strings"

	"github.com/klauspost/compress/snappy"
)

// Compression names a frame body compression algorithm.
type Compression string

const (
	CompressionNone   Compression = "none"
	CompressionSnappy Compression = "snappy"
)

var (
	ErrUnknownCompression = errors.New("frame: unknown compression")
	ErrNoCompression      = errors.New("frame: compressed body but no compression negotiated")
)

func ParseCompression(raw string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(raw))); c {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionSnappy:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCompression, raw)
	}
}

// DecompressBody undoes frame body compression. A body whose declared
// decompressed size exceeds limits.MaxBodyBytes fails with ErrBodyTooLarge
// before anything is allocated.
func DecompressBody(alg Compression, body []byte, limits Limits) ([]byte, error) {
	switch alg {
	case CompressionSnappy:
		n, err := snappy.DecodedLen(body)
		if err != nil {
			return nil, fmt.Errorf("frame: snappy decode: %w", err)
		}
		if n > limits.MaxBodyBytes {
			return nil, fmt.Errorf("%w: decompressed %d > %d", ErrBodyTooLarge, n, limits.MaxBodyBytes)
		}
		out, err := snappy.Decode(nil, body)
		if err != nil {
			return nil, fmt.Errorf("frame: snappy decode: %w", err)
		}
		return out, nil
	case CompressionNone, "":
		return nil, ErrNoCompression
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, alg)
	}
}

// CompressBody compresses body with alg. CompressionNone returns body.
func CompressBody(alg Compression, body []byte) ([]byte, error) {
	switch alg {
	case CompressionSnappy:
		return snappy.Encode(nil, body), nil
	case CompressionNone, "":
		return body, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, alg)
	}
}
