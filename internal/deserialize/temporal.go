package deserialize

import (
	"encoding/binary"
	"net/netip"
	"time"

	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/cqlvalue"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
	"github.com/google/uuid"
)

var (
	UUID EmptiableDeserializer[uuid.UUID] = fixedWidth(16, func(b []byte) uuid.UUID {
		var id uuid.UUID
		copy(id[:], b)
		return id
	}, cqltype.KindUUID, cqltype.KindTimeUUID)

	// TimeUUID only accepts timeuuid columns.
	TimeUUID EmptiableDeserializer[uuid.UUID] = fixedWidth(16, func(b []byte) uuid.UUID {
		var id uuid.UUID
		copy(id[:], b)
		return id
	}, cqltype.KindTimeUUID)

	// Timestamp decodes milliseconds since the Unix epoch, in UTC.
	Timestamp EmptiableDeserializer[time.Time] = fixedWidth(8, func(b []byte) time.Time {
		return time.UnixMilli(int64(binary.BigEndian.Uint64(b))).UTC()
	}, cqltype.KindTimestamp)

	Date EmptiableDeserializer[cqlvalue.Date] = fixedWidth(4, func(b []byte) cqlvalue.Date {
		return cqlvalue.Date(binary.BigEndian.Uint32(b))
	}, cqltype.KindDate)

	// Time decodes nanoseconds since midnight.
	Time EmptiableDeserializer[time.Duration] = fixedWidth(8, func(b []byte) time.Duration {
		return time.Duration(int64(binary.BigEndian.Uint64(b)))
	}, cqltype.KindTime)
)

// Inet accepts 4 byte IPv4 and 16 byte IPv6 payloads. Other sizes report
// ByteLengthMismatch against 16.
var Inet EmptiableDeserializer[netip.Addr] = emptiable(func(typ cqltype.ColumnType, v *frame.Slice) (netip.Addr, error) {
	b, err := ensureNotNullSlice[netip.Addr](typ, v)
	if err != nil {
		return netip.Addr{}, err
	}
	addr, ok := netip.AddrFromSlice(b)
	if !ok {
		return netip.Addr{}, mkDeserErr[netip.Addr](typ, ByteLengthMismatch{Expected: 16, Got: len(b)})
	}
	return addr, nil
}, cqltype.KindInet)
