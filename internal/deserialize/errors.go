package deserialize

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
)

// TypeCheckError is returned by TypeCheck when a Go type cannot be decoded
// from a column type. Unwrap yields the Kind.
type TypeCheckError struct {
	GoType  string
	CQLType cqltype.ColumnType
	Kind    TypeCheckErrorKind
}

func (e TypeCheckError) Error() string {
	return fmt.Sprintf("deserialize: failed to type check Go type %s against CQL type %s: %v", e.GoType, e.CQLType, e.Kind)
}

func (e TypeCheckError) Unwrap() error {
	return e.Kind
}

// TypeCheckErrorKind discriminates type check failures.
type TypeCheckErrorKind interface {
	error
	typeCheckErrorKind()
}

// MismatchedType means the column type is not in the accepted set.
type MismatchedType struct {
	Expected []cqltype.Kind
}

func (k MismatchedType) Error() string {
	names := make([]string, len(k.Expected))
	for i, e := range k.Expected {
		names[i] = e.String()
	}
	return "expected one of the CQL types: [" + strings.Join(names, ", ") + "]"
}

// ElementTypeMismatch means a collection element binding rejected the
// element type.
type ElementTypeMismatch struct {
	Err error
}

func (k ElementTypeMismatch) Error() string {
	return "element type mismatch: " + k.Err.Error()
}

func (k ElementTypeMismatch) Unwrap() error {
	return k.Err
}

func (MismatchedType) typeCheckErrorKind()      {}
func (ElementTypeMismatch) typeCheckErrorKind() {}

// DeserializationError is returned by Deserialize. Unwrap yields the Kind.
type DeserializationError struct {
	GoType  string
	CQLType cqltype.ColumnType
	Kind    DeserializationErrorKind
}

func (e DeserializationError) Error() string {
	return fmt.Sprintf("deserialize: failed to deserialize Go type %s from CQL type %s: %v", e.GoType, e.CQLType, e.Kind)
}

func (e DeserializationError) Unwrap() error {
	return e.Kind
}

// DeserializationErrorKind discriminates decode failures.
type DeserializationErrorKind interface {
	error
	deserializationErrorKind()
}

// GenericParseError carries a low-level frame or parser failure.
type GenericParseError struct {
	Err error
}

func (k GenericParseError) Error() string {
	return k.Err.Error()
}

func (k GenericParseError) Unwrap() error {
	return k.Err
}

// ExpectedNonNull means a NULL cell reached a binding that needs a value.
type ExpectedNonNull struct{}

func (ExpectedNonNull) Error() string {
	return "expected a non-null value, got null"
}

// ByteLengthMismatch means a fixed-width value had the wrong size.
type ByteLengthMismatch struct {
	Expected int
	Got      int
}

func (k ByteLengthMismatch) Error() string {
	return fmt.Sprintf("the CQL type requires %d bytes, but got %d", k.Expected, k.Got)
}

// ExpectedASCII means an ascii column held a byte above 0x7f.
type ExpectedASCII struct{}

func (ExpectedASCII) Error() string {
	return "expected a valid ASCII string"
}

// InvalidUTF8 means a text value was not valid UTF-8. Offset is the length
// of the longest valid prefix.
type InvalidUTF8 struct {
	Offset int
}

func (k InvalidUTF8) Error() string {
	return fmt.Sprintf("invalid utf-8 sequence from index %d", k.Offset)
}

// ElementDeserializationFailed wraps the failure of a collection element.
type ElementDeserializationFailed struct {
	Err error
}

func (k ElementDeserializationFailed) Error() string {
	return "failed to deserialize collection element: " + k.Err.Error()
}

func (k ElementDeserializationFailed) Unwrap() error {
	return k.Err
}

func (GenericParseError) deserializationErrorKind()            {}
func (ExpectedNonNull) deserializationErrorKind()              {}
func (ByteLengthMismatch) deserializationErrorKind()           {}
func (ExpectedASCII) deserializationErrorKind()                {}
func (InvalidUTF8) deserializationErrorKind()                  {}
func (ElementDeserializationFailed) deserializationErrorKind() {}

func goTypeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

func mkTypeCheckErr[T any](typ cqltype.ColumnType, kind TypeCheckErrorKind) error {
	return mkTypeCheckErrNamed(goTypeName[T](), typ, kind)
}

func mkTypeCheckErrNamed(name string, typ cqltype.ColumnType, kind TypeCheckErrorKind) error {
	return TypeCheckError{GoType: name, CQLType: typ, Kind: kind}
}

func mkDeserErr[T any](typ cqltype.ColumnType, kind DeserializationErrorKind) error {
	return mkDeserErrNamed(goTypeName[T](), typ, kind)
}

func mkDeserErrNamed(name string, typ cqltype.ColumnType, kind DeserializationErrorKind) error {
	return DeserializationError{GoType: name, CQLType: typ, Kind: kind}
}
