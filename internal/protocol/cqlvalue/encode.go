package cqlvalue

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/danmuck/cqlcell/internal/protocol/frame"
)

var ErrUnencodable = errors.New("cqlvalue: cannot encode value")

// Encode returns the cell payload of v, without the [bytes] length prefix.
// It exists to build fixtures; it performs no type checking against a
// column type.
func Encode(v Value) ([]byte, error) {
	return appendValue(nil, v)
}

func appendValue(dst []byte, v Value) ([]byte, error) {
	switch x := v.(type) {
	case Ascii:
		return append(dst, string(x)...), nil
	case Text:
		return append(dst, string(x)...), nil
	case Blob:
		return append(dst, x...), nil
	case Boolean:
		if x {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil
	case TinyInt:
		return append(dst, byte(x)), nil
	case SmallInt:
		return binary.BigEndian.AppendUint16(dst, uint16(x)), nil
	case Int:
		return binary.BigEndian.AppendUint32(dst, uint32(x)), nil
	case BigInt:
		return binary.BigEndian.AppendUint64(dst, uint64(x)), nil
	case Counter:
		return binary.BigEndian.AppendUint64(dst, uint64(x)), nil
	case Float:
		return binary.BigEndian.AppendUint32(dst, math.Float32bits(float32(x))), nil
	case Double:
		return binary.BigEndian.AppendUint64(dst, math.Float64bits(float64(x))), nil
	case Timestamp:
		return binary.BigEndian.AppendUint64(dst, uint64(x)), nil
	case Time:
		return binary.BigEndian.AppendUint64(dst, uint64(x)), nil
	case Date:
		return binary.BigEndian.AppendUint32(dst, uint32(x)), nil
	case UUID:
		return append(dst, x[:]...), nil
	case TimeUUID:
		return append(dst, x[:]...), nil
	case Inet:
		if !x.Addr.IsValid() {
			return nil, fmt.Errorf("%w: invalid inet address", ErrUnencodable)
		}
		return append(dst, x.Addr.AsSlice()...), nil
	case Varint:
		return append(dst, x.raw...), nil
	case Decimal:
		dst = binary.BigEndian.AppendUint32(dst, uint32(x.Scale))
		return append(dst, x.Unscaled.raw...), nil
	case Duration:
		dst = appendVint(dst, int64(x.Months))
		dst = appendVint(dst, int64(x.Days))
		return appendVint(dst, x.Nanoseconds), nil
	case Custom:
		return append(dst, x.Data...), nil
	case Empty:
		return dst, nil
	case List:
		return appendElems(dst, x)
	case Set:
		return appendElems(dst, x)
	case Map:
		dst = frame.AppendInt(dst, int32(len(x)))
		var err error
		for _, e := range x {
			if dst, err = appendCell(dst, e.Key); err != nil {
				return nil, err
			}
			if dst, err = appendCell(dst, e.Value); err != nil {
				return nil, err
			}
		}
		return dst, nil
	case Tuple:
		var err error
		for _, e := range x {
			if dst, err = appendCell(dst, e); err != nil {
				return nil, err
			}
		}
		return dst, nil
	case UDT:
		var err error
		for _, f := range x.Fields {
			if dst, err = appendCell(dst, f.Value); err != nil {
				return nil, err
			}
		}
		return dst, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnencodable, v)
	}
}

func appendElems(dst []byte, elems []Value) ([]byte, error) {
	dst = frame.AppendInt(dst, int32(len(elems)))
	var err error
	for _, e := range elems {
		if dst, err = appendCell(dst, e); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// appendCell writes v as a [bytes] value; a nil v is NULL.
func appendCell(dst []byte, v Value) ([]byte, error) {
	if v == nil {
		return frame.AppendNull(dst), nil
	}
	payload, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return frame.AppendCell(dst, payload), nil
}

func appendVint(dst []byte, v int64) []byte {
	u := uint64(v<<1) ^ uint64(v>>63)
	size := (639 - bits.LeadingZeros64(u|1)*9) >> 6
	if size == 1 {
		return append(dst, byte(u))
	}
	var buf [9]byte
	extra := size - 1
	if extra == 8 {
		buf[0] = 0xff
		binary.BigEndian.PutUint64(buf[1:], u)
		return append(dst, buf[:]...)
	}
	for i := extra; i >= 1; i-- {
		buf[i] = byte(u)
		u >>= 8
	}
	buf[0] = ^(byte(0xff) >> extra) | byte(u)
	return append(dst, buf[:size]...)
}
