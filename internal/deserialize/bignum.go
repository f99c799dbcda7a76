package deserialize

import (
	"math/big"

	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/cqlvalue"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
)

// BigInt decodes a varint into a freshly allocated *big.Int. An empty
// payload is handled by MaybeEmptyOf; decoded directly it is zero.
var BigInt EmptiableDeserializer[*big.Int] = emptiable(func(typ cqltype.ColumnType, v *frame.Slice) (*big.Int, error) {
	b, err := ensureNotNullSlice[*big.Int](typ, v)
	if err != nil {
		return nil, err
	}
	return cqlvalue.VarintFromBytes(b).BigInt(), nil
}, cqltype.KindVarint)
