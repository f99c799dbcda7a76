package deserialize

import (
	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
)

// Observer is told the outcome of every call made through Observed. err is
// nil on success. Implementations must be safe for concurrent use.
type Observer interface {
	ObserveTypeCheck(goType string, typ cqltype.ColumnType, err error)
	ObserveDeserialize(goType string, typ cqltype.ColumnType, err error)
}

type observed[T any] struct {
	inner  Deserializer[T]
	obs    Observer
	goType string
}

// Observed reports each call on inner to obs and returns inner's results
// unchanged.
func Observed[T any](inner Deserializer[T], obs Observer) Deserializer[T] {
	return observed[T]{inner: inner, obs: obs, goType: goTypeName[T]()}
}

func (o observed[T]) TypeCheck(typ cqltype.ColumnType) error {
	err := o.inner.TypeCheck(typ)
	o.obs.ObserveTypeCheck(o.goType, typ, err)
	return err
}

func (o observed[T]) Deserialize(typ cqltype.ColumnType, v *frame.Slice) (T, error) {
	x, err := o.inner.Deserialize(typ, v)
	o.obs.ObserveDeserialize(o.goType, typ, err)
	return x, err
}
