package deserialize

import (
	"bytes"
	"unicode/utf8"
	"unsafe"

	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
)

// Blob returns a view into the frame buffer. The result must not outlive
// the buffer and must not be modified.
var Blob Deserializer[[]byte] = strict(func(typ cqltype.ColumnType, v *frame.Slice) ([]byte, error) {
	return ensureNotNullSlice[[]byte](typ, v)
}, cqltype.KindBlob)

// BlobOwned returns a private copy of the payload.
var BlobOwned Deserializer[[]byte] = strict(func(typ cqltype.ColumnType, v *frame.Slice) ([]byte, error) {
	b, err := ensureNotNullSlice[[]byte](typ, v)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}, cqltype.KindBlob)

// BlobShared returns a Bytes handle sharing the frame buffer.
var BlobShared Deserializer[frame.Bytes] = strict(func(typ cqltype.ColumnType, v *frame.Slice) (frame.Bytes, error) {
	return ensureNotNullOwned[frame.Bytes](typ, v)
}, cqltype.KindBlob)

// Text accepts ascii and text columns and returns an owned string.
var Text Deserializer[string] = strict(func(typ cqltype.ColumnType, v *frame.Slice) (string, error) {
	b, err := checkedText[string](typ, v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}, cqltype.KindAscii, cqltype.KindText)

// TextBorrowed returns a string sharing the frame buffer. The buffer must
// not be modified while the string is in use.
var TextBorrowed Deserializer[string] = strict(func(typ cqltype.ColumnType, v *frame.Slice) (string, error) {
	b, err := checkedText[string](typ, v)
	if err != nil || len(b) == 0 {
		return "", err
	}
	return unsafe.String(&b[0], len(b)), nil
}, cqltype.KindAscii, cqltype.KindText)

// checkedText validates the payload as UTF-8, and as ascii when typ is
// ascii.
func checkedText[T any](typ cqltype.ColumnType, v *frame.Slice) ([]byte, error) {
	b, err := ensureNotNullSlice[T](typ, v)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		return nil, mkDeserErr[T](typ, InvalidUTF8{Offset: validPrefix(b)})
	}
	if typ.Kind == cqltype.KindAscii && !isASCII(b) {
		return nil, mkDeserErr[T](typ, ExpectedASCII{})
	}
	return b, nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c > 0x7f {
			return false
		}
	}
	return true
}

func validPrefix(b []byte) int {
	n := 0
	for n < len(b) {
		r, size := utf8.DecodeRune(b[n:])
		if r == utf8.RuneError && size <= 1 {
			return n
		}
		n += size
	}
	return n
}
