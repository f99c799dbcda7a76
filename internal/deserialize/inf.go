//go:build !cqlcell_noinf

package deserialize

import (
	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/cqlvalue"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
	"gopkg.in/inf.v0"
)

// InfDecimal decodes a decimal into *inf.Dec. Build with cqlcell_noinf to
// drop the inf.v0 dependency.
var InfDecimal EmptiableDeserializer[*inf.Dec] = emptiable(func(typ cqltype.ColumnType, v *frame.Slice) (*inf.Dec, error) {
	s, err := ensureNotNullFrameSlice[*inf.Dec](typ, v)
	if err != nil {
		return nil, err
	}
	scale, err := s.ReadInt()
	if err != nil {
		return nil, mkDeserErr[*inf.Dec](typ, GenericParseError{Err: err})
	}
	unscaled := cqlvalue.VarintFromBytes(s.AsSlice()).BigInt()
	return inf.NewDecBig(unscaled, inf.Scale(scale)), nil
}, cqltype.KindDecimal)

func init() {
	decimalBindings[DecimalModeInf] = func(obs Observer) Binding {
		return eraseEmptiable(InfDecimal, obs)
	}
}
