package deserialize

import (
	"bytes"
	"encoding/binary"
	"math"
	"slices"

	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/cqlvalue"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
)

// strictType accepts exactly the listed column kinds.
type strictType[T any] struct {
	accepted []cqltype.Kind
	conv     func(typ cqltype.ColumnType, v *frame.Slice) (T, error)
}

func (s strictType[T]) TypeCheck(typ cqltype.ColumnType) error {
	if slices.Contains(s.accepted, typ.Kind) {
		return nil
	}
	return mkTypeCheckErr[T](typ, MismatchedType{Expected: slices.Clone(s.accepted)})
}

func (s strictType[T]) Deserialize(typ cqltype.ColumnType, v *frame.Slice) (T, error) {
	return s.conv(typ, v)
}

type emptiableType[T any] struct {
	strictType[T]
}

func (emptiableType[T]) Emptiable() {}

func strict[T any](conv func(cqltype.ColumnType, *frame.Slice) (T, error), kinds ...cqltype.Kind) strictType[T] {
	return strictType[T]{accepted: kinds, conv: conv}
}

func emptiable[T any](conv func(cqltype.ColumnType, *frame.Slice) (T, error), kinds ...cqltype.Kind) emptiableType[T] {
	return emptiableType[T]{strict(conv, kinds...)}
}

// fixedWidth builds a binding for a value of exactly width bytes.
func fixedWidth[T any](width int, conv func([]byte) T, kinds ...cqltype.Kind) emptiableType[T] {
	return emptiable(func(typ cqltype.ColumnType, v *frame.Slice) (T, error) {
		var zero T
		b, err := ensureNotNullSlice[T](typ, v)
		if err != nil {
			return zero, err
		}
		if b, err = ensureExactLength[T](typ, b, width); err != nil {
			return zero, err
		}
		return conv(b), nil
	}, kinds...)
}

var (
	// Bool decodes a 1 byte boolean; any non-zero byte is true.
	Bool EmptiableDeserializer[bool] = fixedWidth(1, func(b []byte) bool {
		return b[0] != 0
	}, cqltype.KindBoolean)

	// Int8 decodes tinyint.
	Int8 EmptiableDeserializer[int8] = fixedWidth(1, func(b []byte) int8 {
		return int8(b[0])
	}, cqltype.KindTinyInt)

	// Int16 decodes smallint.
	Int16 EmptiableDeserializer[int16] = fixedWidth(2, func(b []byte) int16 {
		return int16(binary.BigEndian.Uint16(b))
	}, cqltype.KindSmallInt)

	// Int32 decodes int.
	Int32 EmptiableDeserializer[int32] = fixedWidth(4, func(b []byte) int32 {
		return int32(binary.BigEndian.Uint32(b))
	}, cqltype.KindInt)

	// Int64 decodes bigint and counter.
	Int64 EmptiableDeserializer[int64] = fixedWidth(8, func(b []byte) int64 {
		return int64(binary.BigEndian.Uint64(b))
	}, cqltype.KindBigInt, cqltype.KindCounter)

	// Float32 decodes a big-endian IEEE 754 float.
	Float32 EmptiableDeserializer[float32] = fixedWidth(4, func(b []byte) float32 {
		return math.Float32frombits(binary.BigEndian.Uint32(b))
	}, cqltype.KindFloat)

	// Float64 decodes a big-endian IEEE 754 double.
	Float64 EmptiableDeserializer[float64] = fixedWidth(8, func(b []byte) float64 {
		return math.Float64frombits(binary.BigEndian.Uint64(b))
	}, cqltype.KindDouble)
)

// Varint copies the payload verbatim; no normalization is applied.
var Varint EmptiableDeserializer[cqlvalue.Varint] = emptiable(func(typ cqltype.ColumnType, v *frame.Slice) (cqlvalue.Varint, error) {
	b, err := ensureNotNullSlice[cqlvalue.Varint](typ, v)
	if err != nil {
		return cqlvalue.Varint{}, err
	}
	return cqlvalue.VarintFromBytes(bytes.Clone(b)), nil
}, cqltype.KindVarint)

var Decimal EmptiableDeserializer[cqlvalue.Decimal] = emptiable(func(typ cqltype.ColumnType, v *frame.Slice) (cqlvalue.Decimal, error) {
	s, err := ensureNotNullFrameSlice[cqlvalue.Decimal](typ, v)
	if err != nil {
		return cqlvalue.Decimal{}, err
	}
	scale, err := s.ReadInt()
	if err != nil {
		return cqlvalue.Decimal{}, mkDeserErr[cqlvalue.Decimal](typ, GenericParseError{Err: err})
	}
	return cqlvalue.Decimal{
		Unscaled: cqlvalue.VarintFromBytes(bytes.Clone(s.AsSlice())),
		Scale:    scale,
	}, nil
}, cqltype.KindDecimal)

// Counter is strict: a counter column never carries the empty value.
var Counter Deserializer[cqlvalue.Counter] = strict(func(typ cqltype.ColumnType, v *frame.Slice) (cqlvalue.Counter, error) {
	b, err := ensureNotNullSlice[cqlvalue.Counter](typ, v)
	if err != nil {
		return 0, err
	}
	if b, err = ensureExactLength[cqlvalue.Counter](typ, b, 8); err != nil {
		return 0, err
	}
	return cqlvalue.Counter(int64(binary.BigEndian.Uint64(b))), nil
}, cqltype.KindCounter)
