package deserialize

import (
	"errors"
	"reflect"
	"slices"

	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/cqlvalue"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
)

var ErrUnhashableKey = errors.New("deserialize: map key value is not comparable")

var (
	listKinds = []cqltype.Kind{cqltype.KindList, cqltype.KindSet}
	mapKinds  = []cqltype.Kind{cqltype.KindMap}
)

type listOf[T any] struct {
	elem Deserializer[T]
}

// ListOf decodes list and set columns into a slice, decoding each element
// with elem. NULL elements are passed to elem as nil.
func ListOf[T any](elem Deserializer[T]) Deserializer[[]T] {
	return listOf[T]{elem: elem}
}

func (l listOf[T]) TypeCheck(typ cqltype.ColumnType) error {
	if !slices.Contains(listKinds, typ.Kind) {
		return mkTypeCheckErr[[]T](typ, MismatchedType{Expected: slices.Clone(listKinds)})
	}
	return checkElems[[]T](typ, l.elem.TypeCheck)
}

func (l listOf[T]) Deserialize(typ cqltype.ColumnType, v *frame.Slice) ([]T, error) {
	s, err := ensureNotNullFrameSlice[[]T](typ, v)
	if err != nil {
		return nil, err
	}
	elemType, ok := typ.Elem(0)
	if !ok {
		return nil, mkDeserErr[[]T](typ, GenericParseError{Err: cqlvalue.ErrMissingParams})
	}
	n, err := readCount[[]T](typ, &s, 4)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, n)
	for range n {
		cell, err := s.ReadCell()
		if err != nil {
			return nil, mkDeserErr[[]T](typ, GenericParseError{Err: err})
		}
		x, err := l.elem.Deserialize(elemType, cell)
		if err != nil {
			return nil, mkDeserErr[[]T](typ, ElementDeserializationFailed{Err: err})
		}
		out = append(out, x)
	}
	return out, nil
}

type mapOf[K comparable, V any] struct {
	key      Deserializer[K]
	val      Deserializer[V]
	checkKey bool
}

// MapOf decodes map columns. When K is an interface type, keys whose
// dynamic value is not comparable fail with ErrUnhashableKey.
func MapOf[K comparable, V any](key Deserializer[K], val Deserializer[V]) Deserializer[map[K]V] {
	return mapOf[K, V]{
		key:      key,
		val:      val,
		checkKey: reflect.TypeFor[K]().Kind() == reflect.Interface,
	}
}

func (m mapOf[K, V]) TypeCheck(typ cqltype.ColumnType) error {
	if !slices.Contains(mapKinds, typ.Kind) {
		return mkTypeCheckErr[map[K]V](typ, MismatchedType{Expected: slices.Clone(mapKinds)})
	}
	return checkElems[map[K]V](typ, m.key.TypeCheck, m.val.TypeCheck)
}

func (m mapOf[K, V]) Deserialize(typ cqltype.ColumnType, v *frame.Slice) (map[K]V, error) {
	s, err := ensureNotNullFrameSlice[map[K]V](typ, v)
	if err != nil {
		return nil, err
	}
	keyType, ok1 := typ.Elem(0)
	valType, ok2 := typ.Elem(1)
	if !ok1 || !ok2 {
		return nil, mkDeserErr[map[K]V](typ, GenericParseError{Err: cqlvalue.ErrMissingParams})
	}
	n, err := readCount[map[K]V](typ, &s, 8)
	if err != nil {
		return nil, err
	}
	out := make(map[K]V, n)
	for range n {
		kc, err := s.ReadCell()
		if err != nil {
			return nil, mkDeserErr[map[K]V](typ, GenericParseError{Err: err})
		}
		vc, err := s.ReadCell()
		if err != nil {
			return nil, mkDeserErr[map[K]V](typ, GenericParseError{Err: err})
		}
		k, err := m.key.Deserialize(keyType, kc)
		if err != nil {
			return nil, mkDeserErr[map[K]V](typ, ElementDeserializationFailed{Err: err})
		}
		if m.checkKey && !reflect.ValueOf(&k).Elem().Comparable() {
			return nil, mkDeserErr[map[K]V](typ, ElementDeserializationFailed{Err: ErrUnhashableKey})
		}
		x, err := m.val.Deserialize(valType, vc)
		if err != nil {
			return nil, mkDeserErr[map[K]V](typ, ElementDeserializationFailed{Err: err})
		}
		out[k] = x
	}
	return out, nil
}

// checkElems runs one element check per type parameter, in order.
func checkElems[T any](typ cqltype.ColumnType, checks ...func(cqltype.ColumnType) error) error {
	for i, check := range checks {
		et, ok := typ.Elem(i)
		if !ok {
			return mkTypeCheckErr[T](typ, ElementTypeMismatch{Err: cqlvalue.ErrMissingParams})
		}
		if err := check(et); err != nil {
			return mkTypeCheckErr[T](typ, ElementTypeMismatch{Err: err})
		}
	}
	return nil
}

// readCount reads an element count and bounds it by the bytes left, given
// the smallest encoded size of one element.
func readCount[T any](typ cqltype.ColumnType, s *frame.Slice, minElemSize int) (int, error) {
	n, err := s.ReadInt()
	if err != nil {
		return 0, mkDeserErr[T](typ, GenericParseError{Err: err})
	}
	if n < 0 {
		return 0, mkDeserErr[T](typ, GenericParseError{Err: cqlvalue.ErrNegativeCount})
	}
	if int(n) > s.Len()/minElemSize {
		return 0, mkDeserErr[T](typ, GenericParseError{Err: frame.ErrTruncated})
	}
	return int(n), nil
}
