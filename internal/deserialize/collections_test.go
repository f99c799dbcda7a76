package deserialize

import (
	"testing"

	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/cqlvalue"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOfTypeCheck(t *testing.T) {
	l := ListOf(Int32)
	assert.NoError(t, l.TypeCheck(cqltype.List(cqltype.Int)))
	assert.NoError(t, l.TypeCheck(cqltype.Set(cqltype.Int)))

	var mm MismatchedType
	require.ErrorAs(t, l.TypeCheck(cqltype.Int), &mm)
	assert.Equal(t, []cqltype.Kind{cqltype.KindList, cqltype.KindSet}, mm.Expected)

	err := l.TypeCheck(cqltype.List(cqltype.Text))
	var etm ElementTypeMismatch
	require.ErrorAs(t, err, &etm)
	var inner TypeCheckError
	require.ErrorAs(t, etm.Err, &inner)
	assert.Equal(t, cqltype.Text, inner.CQLType)

	assert.ErrorIs(t, l.TypeCheck(cqltype.ColumnType{Kind: cqltype.KindList}), cqlvalue.ErrMissingParams)
}

func TestListOfDeserialize(t *testing.T) {
	b := encode(t, cqlvalue.List{cqlvalue.Int(1), cqlvalue.Int(2), cqlvalue.Int(3)})
	got, err := ListOf(Int32).Deserialize(cqltype.List(cqltype.Int), cell(b))
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, got)

	got, err = ListOf(Int32).Deserialize(cqltype.List(cqltype.Int), cell(frame.AppendInt(nil, 0)))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListOfNullElements(t *testing.T) {
	b := frame.AppendInt(nil, 2)
	b = frame.AppendCell(b, []byte{0, 0, 0, 1})
	b = frame.AppendNull(b)

	_, err := ListOf(Int32).Deserialize(cqltype.List(cqltype.Int), cell(b))
	var edf ElementDeserializationFailed
	require.ErrorAs(t, err, &edf)
	assert.ErrorIs(t, err, ExpectedNonNull{})

	got, err := ListOf(Nullable(Int32)).Deserialize(cqltype.List(cqltype.Int), cell(b))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int32(1), *got[0])
	assert.Nil(t, got[1])
}

func TestListOfMalformed(t *testing.T) {
	typ := cqltype.List(cqltype.Int)
	cases := [][]byte{
		{0, 0},
		{0xff, 0xff, 0xff, 0xff},
		{0x7f, 0xff, 0xff, 0xff},
		append(frame.AppendInt(nil, 1), 0, 0, 0, 9, 1),
	}
	for _, b := range cases {
		_, err := ListOf(Int32).Deserialize(typ, cell(b))
		var gpe GenericParseError
		assert.ErrorAs(t, err, &gpe, "%x", b)
	}
	_, err := ListOf(Int32).Deserialize(cqltype.ColumnType{Kind: cqltype.KindList}, cell(frame.AppendInt(nil, 0)))
	assert.ErrorIs(t, err, cqlvalue.ErrMissingParams)
}

func TestListOfDynamicElements(t *testing.T) {
	typ := cqltype.List(cqltype.Map(cqltype.Text, cqltype.Int))
	in := cqlvalue.List{
		cqlvalue.Map{{Key: cqlvalue.Text("a"), Value: cqlvalue.Int(1)}},
		cqlvalue.Map{},
	}
	l := ListOf(Dynamic)
	require.NoError(t, l.TypeCheck(typ))
	got, err := l.Deserialize(typ, cell(encode(t, in)))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, in[0], got[0])
}

func TestMapOf(t *testing.T) {
	typ := cqltype.Map(cqltype.Text, cqltype.BigInt)
	m := MapOf(Text, Nullable(Int64))
	require.NoError(t, m.TypeCheck(typ))

	b := frame.AppendInt(nil, 2)
	b = frame.AppendCell(b, []byte("a"))
	b = frame.AppendCell(b, []byte{0, 0, 0, 0, 0, 0, 0, 5})
	b = frame.AppendCell(b, []byte("b"))
	b = frame.AppendNull(b)

	got, err := m.Deserialize(typ, cell(b))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), *got["a"])
	assert.Nil(t, got["b"])
}

func TestMapOfTypeCheck(t *testing.T) {
	m := MapOf(Text, Int64)
	var mm MismatchedType
	require.ErrorAs(t, m.TypeCheck(cqltype.List(cqltype.Text)), &mm)
	assert.Equal(t, []cqltype.Kind{cqltype.KindMap}, mm.Expected)

	var etm ElementTypeMismatch
	assert.ErrorAs(t, m.TypeCheck(cqltype.Map(cqltype.Int, cqltype.BigInt)), &etm)
	assert.ErrorAs(t, m.TypeCheck(cqltype.Map(cqltype.Text, cqltype.Text)), &etm)
	assert.ErrorIs(t, m.TypeCheck(cqltype.ColumnType{Kind: cqltype.KindMap, Params: []cqltype.ColumnType{cqltype.Text}}), cqlvalue.ErrMissingParams)
}

func TestMapOfDynamicUnhashableKey(t *testing.T) {
	typ := cqltype.Map(cqltype.List(cqltype.Int), cqltype.Int)
	in := cqlvalue.Map{{Key: cqlvalue.List{cqlvalue.Int(1)}, Value: cqlvalue.Int(2)}}
	m := MapOf(Dynamic, Dynamic)
	require.NoError(t, m.TypeCheck(typ))

	var err error
	assert.NotPanics(t, func() {
		_, err = m.Deserialize(typ, cell(encode(t, in)))
	})
	assert.ErrorIs(t, err, ErrUnhashableKey)

	scalar := cqltype.Map(cqltype.Text, cqltype.Int)
	got, err := m.Deserialize(scalar, cell(encode(t, cqlvalue.Map{{Key: cqlvalue.Text("k"), Value: cqlvalue.Int(2)}})))
	require.NoError(t, err)
	assert.Equal(t, map[cqlvalue.Value]cqlvalue.Value{cqlvalue.Text("k"): cqlvalue.Int(2)}, got)
}
