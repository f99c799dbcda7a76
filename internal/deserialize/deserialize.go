// Package deserialize decodes CQL cells into typed Go values.
//
// Every binding implements Deserializer: TypeCheck validates a column type
// once per result shape and Deserialize decodes one cell. Deserialize never
// assumes TypeCheck ran; given a column type it does not accept it returns
// an error rather than misreading memory.
//
// A nil *frame.Slice is a NULL cell. A non-nil slice of length zero is the
// empty value, which most fixed-width types cannot represent; wrap those
// bindings with MaybeEmptyOf to receive it. Nullable turns NULL into a nil
// pointer.
//
// Bindings are immutable and safe for concurrent use.
package deserialize

import (
	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
)

// Deserializer decodes cells of some column types into T.
type Deserializer[T any] interface {
	// TypeCheck returns nil or a TypeCheckError. It does not look at data.
	TypeCheck(typ cqltype.ColumnType) error
	// Deserialize returns the value or a DeserializationError. v is nil for
	// NULL. Borrowing bindings return values that alias v.
	Deserialize(typ cqltype.ColumnType, v *frame.Slice) (T, error)
}

// EmptiableDeserializer is implemented by bindings whose Go type has no
// representation for the empty value. Only those can be wrapped by
// MaybeEmptyOf.
type EmptiableDeserializer[T any] interface {
	Deserializer[T]
	Emptiable()
}

// DecodeCell type-checks typ, reads the next [bytes] cell from buf and
// decodes it with d. Frame read failures are reported as GenericParseError.
func DecodeCell[T any](d Deserializer[T], typ cqltype.ColumnType, buf *frame.Slice) (T, error) {
	var zero T
	if err := d.TypeCheck(typ); err != nil {
		return zero, err
	}
	cell, err := buf.ReadCell()
	if err != nil {
		return zero, mkDeserErr[T](typ, GenericParseError{Err: err})
	}
	return d.Deserialize(typ, cell)
}
