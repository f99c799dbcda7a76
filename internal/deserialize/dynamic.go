package deserialize

import (
	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/cqlvalue"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
)

type dynamic struct{}

// Dynamic decodes any column type into a cqlvalue.Value. It is the binding
// of choice when the Go type is not known statically, including as the
// element binding of a collection.
var Dynamic Deserializer[cqlvalue.Value] = dynamic{}

func (dynamic) TypeCheck(cqltype.ColumnType) error {
	return nil
}

func (dynamic) Deserialize(typ cqltype.ColumnType, v *frame.Slice) (cqlvalue.Value, error) {
	s, err := ensureNotNullFrameSlice[cqlvalue.Value](typ, v)
	if err != nil {
		return nil, err
	}
	val, err := cqlvalue.Parse(typ, s)
	if err != nil {
		return nil, mkDeserErr[cqlvalue.Value](typ, GenericParseError{Err: err})
	}
	return val, nil
}
