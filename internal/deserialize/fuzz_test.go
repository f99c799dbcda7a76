package deserialize

import (
	"testing"

	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
)

func fuzzBindings() []Binding {
	bs := []Binding{
		Erase(Dynamic),
		Erase(ListOf(Dynamic)),
		Erase(ListOf(Nullable(Int32))),
		Erase(MapOf(Dynamic, Dynamic)),
		Erase(MapOf(Text, Nullable(Int64))),
		Erase(Nullable(MaybeEmptyOf(Decimal))),
	}
	for _, tc := range bindingCases() {
		bs = append(bs, tc.b)
	}
	return bs
}

func fuzzTypes() []cqltype.ColumnType {
	return append(allTypes(),
		cqltype.List(cqltype.List(cqltype.Varint)),
		cqltype.Map(cqltype.List(cqltype.Int), cqltype.Decimal),
		cqltype.Tuple(cqltype.Duration, cqltype.Inet),
		cqltype.ColumnType{Kind: cqltype.KindList},
		cqltype.ColumnType{Kind: cqltype.KindMap, Params: []cqltype.ColumnType{cqltype.Int}},
		cqltype.ColumnType{Kind: cqltype.KindUDT},
		cqltype.ColumnType{Kind: cqltype.Kind(0xabcd)},
	)
}

func FuzzDeserializeNeverPanics(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x01})
	f.Add([]byte{0, 0, 0, 1, 0, 0, 0, 4, 0, 0, 0, 7})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff})
	f.Add([]byte{0x7f, 0xff, 0xff, 0xff, 0, 0})
	f.Add([]byte("café"))
	f.Add([]byte{0xc0, 0x80, 0xff})

	bindings := fuzzBindings()
	types := fuzzTypes()
	f.Fuzz(func(t *testing.T, data []byte) {
		for _, b := range bindings {
			for _, typ := range types {
				s := frame.NewSlice(data)
				_, _ = b.DeserializeAny(typ, &s)
				_, _ = b.DeserializeAny(typ, nil)
			}
		}
	})
}
