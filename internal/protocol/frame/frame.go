package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	HeaderLen         = 9
	FlagCompression   = 0x01
	FlagTracing       = 0x02
	VersionResponseV4 = 0x84
	OpcodeResult      = 0x08
)

var (
	ErrShortHeader     = errors.New("frame: short header")
	ErrBodyTooLarge    = errors.New("frame: body too large")
	ErrNegativeBodyLen = errors.New("frame: negative body length")
	ErrCellTooLarge    = errors.New("frame: cell too large")
)

// Header is the native protocol v4 frame header.
type Header struct {
	Version byte
	Flags   byte
	Stream  int16
	Opcode  byte
	Length  int32
}

// Frame is one complete wire message. Body is stored as received; use
// Decode to undo compression.
type Frame struct {
	Header Header
	Body   []byte
}

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxBodyBytes int
	MaxCellBytes int
}

func DefaultLimits() Limits {
	return Limits{
		MaxBodyBytes: 256 * 1024 * 1024,
		MaxCellBytes: 16 * 1024 * 1024,
	}
}

// ReadCell reads the next cell from s and rejects cells over MaxCellBytes.
// A zero MaxCellBytes disables the check.
func (l Limits) ReadCell(s *Slice) (*Slice, error) {
	cell, err := s.ReadCell()
	if err != nil {
		return nil, err
	}
	if cell != nil && l.MaxCellBytes > 0 && cell.Len() > l.MaxCellBytes {
		return nil, fmt.Errorf("%w: %d > %d", ErrCellTooLarge, cell.Len(), l.MaxCellBytes)
	}
	return cell, nil
}

func ReadFrame(r io.Reader, limits Limits) (Frame, error) {
	var fixed [HeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return Frame{}, ErrShortHeader
		}
		return Frame{}, err
	}

	h, err := DecodeHeader(fixed[:])
	if err != nil {
		return Frame{}, err
	}
	if h.Length < 0 {
		return Frame{}, ErrNegativeBodyLen
	}
	if int(h.Length) > limits.MaxBodyBytes {
		return Frame{}, ErrBodyTooLarge
	}

	body := make([]byte, h.Length)
	if h.Length > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				return Frame{}, ErrTruncated
			}
			return Frame{}, err
		}
	}
	return Frame{Header: h, Body: body}, nil
}

func WriteFrame(w io.Writer, f Frame, limits Limits) error {
	if len(f.Body) > limits.MaxBodyBytes {
		return ErrBodyTooLarge
	}
	h := f.Header
	h.Length = int32(len(f.Body))
	if _, err := w.Write(EncodeHeader(h)); err != nil {
		return err
	}
	if len(f.Body) > 0 {
		if _, err := w.Write(f.Body); err != nil {
			return err
		}
	}
	return nil
}

// Decode returns the uncompressed body as a Slice. Compressed bodies are
// decoded with alg and must fit limits.MaxBodyBytes once decompressed; an
// uncompressed body is returned as is.
func (f Frame) Decode(alg Compression, limits Limits) (Slice, error) {
	if f.Header.Flags&FlagCompression == 0 {
		return NewSlice(f.Body), nil
	}
	body, err := DecompressBody(alg, f.Body, limits)
	if err != nil {
		return Slice{}, err
	}
	return NewSlice(body), nil
}

func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderLen)
	buf[0] = h.Version
	buf[1] = h.Flags
	binary.BigEndian.PutUint16(buf[2:4], uint16(h.Stream))
	buf[4] = h.Opcode
	binary.BigEndian.PutUint32(buf[5:9], uint32(h.Length))
	return buf
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) != HeaderLen {
		return Header{}, fmt.Errorf("frame: invalid header length: %d", len(b))
	}
	return Header{
		Version: b[0],
		Flags:   b[1],
		Stream:  int16(binary.BigEndian.Uint16(b[2:4])),
		Opcode:  b[4],
		Length:  int32(binary.BigEndian.Uint32(b[5:9])),
	}, nil
}
