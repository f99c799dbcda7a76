package deserialize

import (
	"math/big"
	"net/netip"
	"testing"
	"time"

	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/cqlvalue"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compatCheck decodes b with both d and Dynamic and requires that the typed
// result, converted by lift, equals the dynamic one.
func compatCheck[T any](t *testing.T, d Deserializer[T], typ cqltype.ColumnType, b []byte, lift func(T) cqlvalue.Value) {
	t.Helper()
	require.NoError(t, d.TypeCheck(typ))
	require.NoError(t, Dynamic.TypeCheck(typ))

	typed, err := d.Deserialize(typ, cell(b))
	require.NoError(t, err, typ.String())
	dyn, err := Dynamic.Deserialize(typ, cell(b))
	require.NoError(t, err, typ.String())
	assert.Equal(t, dyn, lift(typed), typ.String())
}

func TestCompatWithDynamic(t *testing.T) {
	id := uuid.MustParse("8e2e3f56-0d4f-11ee-be56-0242ac120002")

	compatCheck(t, Bool, cqltype.Boolean, []byte{1}, func(v bool) cqlvalue.Value { return cqlvalue.Boolean(v) })
	compatCheck(t, Int8, cqltype.TinyInt, []byte{0x80}, func(v int8) cqlvalue.Value { return cqlvalue.TinyInt(v) })
	compatCheck(t, Int16, cqltype.SmallInt, []byte{0x12, 0x34}, func(v int16) cqlvalue.Value { return cqlvalue.SmallInt(v) })
	compatCheck(t, Int32, cqltype.Int, []byte{0xde, 0xad, 0xbe, 0xef}, func(v int32) cqlvalue.Value { return cqlvalue.Int(v) })
	compatCheck(t, Int64, cqltype.BigInt, []byte{1, 2, 3, 4, 5, 6, 7, 8}, func(v int64) cqlvalue.Value { return cqlvalue.BigInt(v) })
	compatCheck(t, Float32, cqltype.Float, []byte{0x40, 0x49, 0x0f, 0xdb}, func(v float32) cqlvalue.Value { return cqlvalue.Float(v) })
	compatCheck(t, Float64, cqltype.Double, []byte{0x40, 0x09, 0x21, 0xfb, 0x54, 0x44, 0x2d, 0x18}, func(v float64) cqlvalue.Value { return cqlvalue.Double(v) })
	compatCheck(t, Counter, cqltype.Counter, []byte{0, 0, 0, 0, 0, 0, 0x30, 0x39}, func(v cqlvalue.Counter) cqlvalue.Value { return v })
	compatCheck(t, Varint, cqltype.Varint, []byte{0xff, 0x00, 0x01}, func(v cqlvalue.Varint) cqlvalue.Value { return v })
	compatCheck(t, Decimal, cqltype.Decimal, []byte{0, 0, 0, 3, 0x04, 0xd2}, func(v cqlvalue.Decimal) cqlvalue.Value { return v })
	compatCheck(t, BlobOwned, cqltype.Blob, []byte{0xca, 0xfe}, func(v []byte) cqlvalue.Value { return cqlvalue.Blob(v) })
	compatCheck(t, Text, cqltype.Text, []byte("żółw"), func(v string) cqlvalue.Value { return cqlvalue.Text(v) })
	compatCheck(t, Text, cqltype.Ascii, []byte("turtle"), func(v string) cqlvalue.Value { return cqlvalue.Ascii(v) })
	compatCheck(t, UUID, cqltype.UUID, id[:], func(v uuid.UUID) cqlvalue.Value { return cqlvalue.UUID(v) })
	compatCheck(t, TimeUUID, cqltype.TimeUUID, id[:], func(v uuid.UUID) cqlvalue.Value { return cqlvalue.TimeUUID(v) })
	compatCheck(t, Inet, cqltype.Inet, netip.MustParseAddr("2001:db8::1").AsSlice(), func(v netip.Addr) cqlvalue.Value { return cqlvalue.Inet{Addr: v} })
	compatCheck(t, Timestamp, cqltype.Timestamp, []byte{0, 0, 1, 0x88, 0x8a, 0x3c, 0x4d, 0x00}, func(v time.Time) cqlvalue.Value { return cqlvalue.TimestampOf(v) })
	compatCheck(t, Date, cqltype.Date, []byte{0x80, 0, 0x4d, 0x2e}, func(v cqlvalue.Date) cqlvalue.Value { return v })
	compatCheck(t, Time, cqltype.Time, []byte{0, 0, 0x0b, 0x9d, 0x4e, 0x3a, 0x20, 0x00}, func(v time.Duration) cqlvalue.Value { return cqlvalue.Time(v) })
	compatCheck(t, BigInt, cqltype.Varint, []byte{0x80, 0, 0, 0, 0, 0, 0, 0, 0}, func(v *big.Int) cqlvalue.Value { return cqlvalue.VarintFromBigInt(v).Normalize() })
}

func TestCompatBigIntMatchesVarint(t *testing.T) {
	payloads := [][]byte{{0x00}, {0x7f}, {0x80}, {0xff, 0xff}, {0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}}
	for _, b := range payloads {
		native, err := Varint.Deserialize(cqltype.Varint, cell(b))
		require.NoError(t, err)
		bridged, err := BigInt.Deserialize(cqltype.Varint, cell(b))
		require.NoError(t, err)
		assert.Zero(t, native.BigInt().Cmp(bridged), "%x", b)
		assert.Equal(t, b, native.Bytes(), "bridge must not change native binding")
	}
}
