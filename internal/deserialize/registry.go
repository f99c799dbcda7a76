package deserialize

import (
	"cmp"
	"errors"
	"fmt"

	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/cqlvalue"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
)

var (
	ErrUnknownMode     = errors.New("deserialize: unknown binding mode")
	ErrModeUnavailable = errors.New("deserialize: binding mode not built into this binary")
)

// Binding is a Deserializer with its Go type erased, for callers that pick
// bindings at runtime.
type Binding interface {
	GoType() string
	TypeCheck(typ cqltype.ColumnType) error
	DeserializeAny(typ cqltype.ColumnType, v *frame.Slice) (any, error)
}

type erased[T any] struct {
	d Deserializer[T]
}

// Erase wraps d as a Binding. DeserializeAny returns T boxed in any.
func Erase[T any](d Deserializer[T]) Binding {
	return erased[T]{d: d}
}

func (e erased[T]) GoType() string                         { return goTypeName[T]() }
func (e erased[T]) TypeCheck(typ cqltype.ColumnType) error { return e.d.TypeCheck(typ) }

func (e erased[T]) DeserializeAny(typ cqltype.ColumnType, v *frame.Slice) (any, error) {
	x, err := e.d.Deserialize(typ, v)
	if err != nil {
		return nil, err
	}
	return x, nil
}

// nullableBinding flattens Nullable output: nil for NULL, T otherwise.
type nullableBinding[T any] struct {
	d Deserializer[*T]
}

func (b nullableBinding[T]) GoType() string                         { return goTypeName[T]() }
func (b nullableBinding[T]) TypeCheck(typ cqltype.ColumnType) error { return b.d.TypeCheck(typ) }

func (b nullableBinding[T]) DeserializeAny(typ cqltype.ColumnType, v *frame.Slice) (any, error) {
	p, err := b.d.Deserialize(typ, v)
	if err != nil || p == nil {
		return nil, err
	}
	return *p, nil
}

// emptiableBinding flattens Nullable(MaybeEmptyOf) output: nil for NULL,
// cqlvalue.Empty for the empty value, T otherwise.
type emptiableBinding[T any] struct {
	d Deserializer[*MaybeEmpty[T]]
}

func (b emptiableBinding[T]) GoType() string                         { return goTypeName[T]() }
func (b emptiableBinding[T]) TypeCheck(typ cqltype.ColumnType) error { return b.d.TypeCheck(typ) }

func (b emptiableBinding[T]) DeserializeAny(typ cqltype.ColumnType, v *frame.Slice) (any, error) {
	p, err := b.d.Deserialize(typ, v)
	if err != nil || p == nil {
		return nil, err
	}
	if x, ok := p.Get(); ok {
		return x, nil
	}
	return cqlvalue.Empty{}, nil
}

func observe[T any](d Deserializer[T], obs Observer) Deserializer[T] {
	if obs == nil {
		return d
	}
	return Observed(d, obs)
}

func eraseNullable[T any](d Deserializer[T], obs Observer) Binding {
	return nullableBinding[T]{d: observe(Nullable(d), obs)}
}

func eraseEmptiable[T any](d EmptiableDeserializer[T], obs Observer) Binding {
	return emptiableBinding[T]{d: observe(Nullable(MaybeEmptyOf(d)), obs)}
}

type (
	VarintMode  string
	DecimalMode string
	BlobMode    string
	TextMode    string
)

const (
	VarintModeNative VarintMode = "native"
	VarintModeBigInt VarintMode = "bigint"

	DecimalModeNative DecimalMode = "native"
	DecimalModeInf    DecimalMode = "inf"

	BlobModeBorrowed BlobMode = "borrowed"
	BlobModeOwned    BlobMode = "owned"
	BlobModeShared   BlobMode = "shared"

	TextModeOwned    TextMode = "owned"
	TextModeBorrowed TextMode = "borrowed"
)

var decimalBindings = map[DecimalMode]func(Observer) Binding{
	DecimalModeNative: func(obs Observer) Binding { return eraseEmptiable(Decimal, obs) },
}

// Options selects the pluggable bindings. Zero fields take the native or
// owned default.
type Options struct {
	Varint   VarintMode
	Decimal  DecimalMode
	Blob     BlobMode
	Text     TextMode
	Observer Observer
}

// Registry maps column kinds to bindings. Kinds without a typed binding
// decode through Dynamic. Lookups are read-only and safe for concurrent
// use.
type Registry struct {
	byKind   map[cqltype.Kind]Binding
	fallback Binding
}

func NewRegistry(opts Options) (*Registry, error) {
	obs := opts.Observer
	r := &Registry{
		byKind: map[cqltype.Kind]Binding{
			cqltype.KindBoolean:   eraseEmptiable(Bool, obs),
			cqltype.KindTinyInt:   eraseEmptiable(Int8, obs),
			cqltype.KindSmallInt:  eraseEmptiable(Int16, obs),
			cqltype.KindInt:       eraseEmptiable(Int32, obs),
			cqltype.KindBigInt:    eraseEmptiable(Int64, obs),
			cqltype.KindFloat:     eraseEmptiable(Float32, obs),
			cqltype.KindDouble:    eraseEmptiable(Float64, obs),
			cqltype.KindCounter:   eraseNullable(Counter, obs),
			cqltype.KindUUID:      eraseEmptiable(UUID, obs),
			cqltype.KindTimeUUID:  eraseEmptiable(TimeUUID, obs),
			cqltype.KindInet:      eraseEmptiable(Inet, obs),
			cqltype.KindTimestamp: eraseEmptiable(Timestamp, obs),
			cqltype.KindDate:      eraseEmptiable(Date, obs),
			cqltype.KindTime:      eraseEmptiable(Time, obs),
		},
		fallback: eraseNullable(Dynamic, obs),
	}

	switch mode := cmp.Or(opts.Varint, VarintModeNative); mode {
	case VarintModeNative:
		r.byKind[cqltype.KindVarint] = eraseEmptiable(Varint, obs)
	case VarintModeBigInt:
		r.byKind[cqltype.KindVarint] = eraseEmptiable(BigInt, obs)
	default:
		return nil, fmt.Errorf("%w: varint %q", ErrUnknownMode, mode)
	}

	switch mode := cmp.Or(opts.Decimal, DecimalModeNative); mode {
	case DecimalModeNative, DecimalModeInf:
		build, ok := decimalBindings[mode]
		if !ok {
			return nil, fmt.Errorf("%w: decimal %q", ErrModeUnavailable, mode)
		}
		r.byKind[cqltype.KindDecimal] = build(obs)
	default:
		return nil, fmt.Errorf("%w: decimal %q", ErrUnknownMode, mode)
	}

	switch mode := cmp.Or(opts.Blob, BlobModeOwned); mode {
	case BlobModeBorrowed:
		r.byKind[cqltype.KindBlob] = eraseNullable(Blob, obs)
	case BlobModeOwned:
		r.byKind[cqltype.KindBlob] = eraseNullable(BlobOwned, obs)
	case BlobModeShared:
		r.byKind[cqltype.KindBlob] = eraseNullable(BlobShared, obs)
	default:
		return nil, fmt.Errorf("%w: blob %q", ErrUnknownMode, mode)
	}

	var text Binding
	switch mode := cmp.Or(opts.Text, TextModeOwned); mode {
	case TextModeOwned:
		text = eraseNullable(Text, obs)
	case TextModeBorrowed:
		text = eraseNullable(TextBorrowed, obs)
	default:
		return nil, fmt.Errorf("%w: text %q", ErrUnknownMode, mode)
	}
	r.byKind[cqltype.KindAscii] = text
	r.byKind[cqltype.KindText] = text

	return r, nil
}

// Lookup returns the binding for typ.
func (r *Registry) Lookup(typ cqltype.ColumnType) Binding {
	if b, ok := r.byKind[typ.Kind]; ok {
		return b
	}
	return r.fallback
}

// Decode type-checks and decodes one cell. NULL decodes to nil and the
// empty value of a fixed-width type to cqlvalue.Empty.
func (r *Registry) Decode(typ cqltype.ColumnType, v *frame.Slice) (any, error) {
	b := r.Lookup(typ)
	if err := b.TypeCheck(typ); err != nil {
		return nil, err
	}
	return b.DeserializeAny(typ, v)
}
