package deserialize

import (
	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
)

type nullable[T any] struct {
	inner Deserializer[T]
}

// Nullable decodes NULL as a nil pointer without consulting inner.
func Nullable[T any](inner Deserializer[T]) Deserializer[*T] {
	return nullable[T]{inner: inner}
}

func (n nullable[T]) TypeCheck(typ cqltype.ColumnType) error {
	return n.inner.TypeCheck(typ)
}

func (n nullable[T]) Deserialize(typ cqltype.ColumnType, v *frame.Slice) (*T, error) {
	if v == nil {
		return nil, nil
	}
	x, err := n.inner.Deserialize(typ, v)
	if err != nil {
		return nil, err
	}
	return &x, nil
}

// MaybeEmpty holds either the empty value or a decoded T.
type MaybeEmpty[T any] struct {
	Empty bool
	Value T
}

// EmptyValue returns the empty MaybeEmpty.
func EmptyValue[T any]() MaybeEmpty[T] {
	return MaybeEmpty[T]{Empty: true}
}

// ValueOf wraps a decoded value.
func ValueOf[T any](v T) MaybeEmpty[T] {
	return MaybeEmpty[T]{Value: v}
}

// Get returns the value and true, or the zero value and false when empty.
func (m MaybeEmpty[T]) Get() (T, bool) {
	if m.Empty {
		var zero T
		return zero, false
	}
	return m.Value, true
}

type maybeEmpty[T any] struct {
	inner EmptiableDeserializer[T]
}

// MaybeEmptyOf rejects NULL and decodes a zero-length cell as EmptyValue
// without consulting inner.
func MaybeEmptyOf[T any](inner EmptiableDeserializer[T]) Deserializer[MaybeEmpty[T]] {
	return maybeEmpty[T]{inner: inner}
}

func (m maybeEmpty[T]) TypeCheck(typ cqltype.ColumnType) error {
	return m.inner.TypeCheck(typ)
}

func (m maybeEmpty[T]) Deserialize(typ cqltype.ColumnType, v *frame.Slice) (MaybeEmpty[T], error) {
	s, err := ensureNotNullFrameSlice[MaybeEmpty[T]](typ, v)
	if err != nil {
		return MaybeEmpty[T]{}, err
	}
	if s.IsEmpty() {
		return EmptyValue[T](), nil
	}
	x, err := m.inner.Deserialize(typ, v)
	if err != nil {
		return MaybeEmpty[T]{}, err
	}
	return ValueOf(x), nil
}
