package deserialize

import (
	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
)

func ensureNotNullFrameSlice[T any](typ cqltype.ColumnType, v *frame.Slice) (frame.Slice, error) {
	if v == nil {
		return frame.Slice{}, mkDeserErr[T](typ, ExpectedNonNull{})
	}
	return *v, nil
}

func ensureNotNullSlice[T any](typ cqltype.ColumnType, v *frame.Slice) ([]byte, error) {
	s, err := ensureNotNullFrameSlice[T](typ, v)
	if err != nil {
		return nil, err
	}
	return s.AsSlice(), nil
}

func ensureNotNullOwned[T any](typ cqltype.ColumnType, v *frame.Slice) (frame.Bytes, error) {
	s, err := ensureNotNullFrameSlice[T](typ, v)
	if err != nil {
		return nil, err
	}
	return s.ToBytes(), nil
}

// ensureExactLength returns b when it is exactly size bytes long.
func ensureExactLength[T any](typ cqltype.ColumnType, b []byte, size int) ([]byte, error) {
	if len(b) != size {
		return nil, mkDeserErr[T](typ, ByteLengthMismatch{Expected: size, Got: len(b)})
	}
	return b, nil
}
