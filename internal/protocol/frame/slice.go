package frame

import (
	"encoding/binary"
	"errors"
	"slices"
)

var (
	ErrTruncated      = errors.New("frame: truncated data")
	ErrNegativeLength = errors.New("frame: negative length")
)

// Slice is a zero-copy view into a received frame body. A *Slice that is
// nil stands for a NULL cell; a non-nil Slice of length zero is the empty
// value.
type Slice struct {
	mem []byte
}

func NewSlice(b []byte) Slice {
	return Slice{mem: b}
}

// AsSlice returns the viewed bytes. The result aliases the frame buffer.
func (s Slice) AsSlice() []byte {
	return s.mem
}

func (s Slice) Len() int {
	return len(s.mem)
}

func (s Slice) IsEmpty() bool {
	return len(s.mem) == 0
}

// ToBytes returns the viewed bytes as a shared Bytes handle. Capacity is
// clipped so appends on the result never write into the frame.
func (s Slice) ToBytes() Bytes {
	return Bytes(slices.Clip(s.mem))
}

// ReadRaw consumes n bytes.
func (s *Slice) ReadRaw(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeLength
	}
	if n > len(s.mem) {
		return nil, ErrTruncated
	}
	out := s.mem[:n:n]
	s.mem = s.mem[n:]
	return out, nil
}

// ReadInt consumes a protocol [int].
func (s *Slice) ReadInt() (int32, error) {
	b, err := s.ReadRaw(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// ReadCell consumes a protocol [bytes] value. A negative length yields a
// nil Slice, meaning NULL.
func (s *Slice) ReadCell() (*Slice, error) {
	n, err := s.ReadInt()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	b, err := s.ReadRaw(int(n))
	if err != nil {
		return nil, err
	}
	return &Slice{mem: b}, nil
}

// Bytes is an owned handle on cell bytes that may share memory with other
// handles. It is never appended in place by this module.
type Bytes []byte
