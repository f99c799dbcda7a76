// Package cqlvalue holds the dynamically typed representation of a CQL
// value and the recursive parser that produces it from a cell.
package cqlvalue

import (
	"math"
	"net/netip"
	"time"

	"github.com/google/uuid"
)

// Value is any decoded CQL value. The set of implementations is closed.
type Value interface {
	isValue()
}

type (
	Ascii     string
	Text      string
	Blob      []byte
	Boolean   bool
	Double    float64
	Float     float32
	TinyInt   int8
	SmallInt  int16
	Int       int32
	BigInt    int64
	Counter   int64
	UUID      uuid.UUID
	TimeUUID  uuid.UUID
	Varint    struct{ raw []byte }
	Timestamp int64 // milliseconds since the Unix epoch
	Time      int64 // nanoseconds since midnight
	Date      uint32
)

// Decimal is an arbitrary-precision decimal: Unscaled * 10^-Scale.
type Decimal struct {
	Unscaled Varint
	Scale    int32
}

type Inet struct {
	Addr netip.Addr
}

type Duration struct {
	Months      int32
	Days        int32
	Nanoseconds int64
}

// Custom carries the raw payload of a server-side custom type.
type Custom struct {
	Class string
	Data  []byte
}

// Empty is a zero-length non-NULL payload of a type that has no empty
// representation of its own.
type Empty struct{}

// List and Set hold elements in wire order.
type (
	List []Value
	Set  []Value
)

// Map holds entries in wire order.
type Map []MapEntry

type MapEntry struct {
	Key   Value
	Value Value
}

// Tuple holds one entry per element. A nil entry is a NULL element.
type Tuple []Value

// UDT holds the fields present in the payload, in declaration order. A nil
// field value is NULL.
type UDT struct {
	Keyspace string
	Name     string
	Fields   []UDTField
}

type UDTField struct {
	Name  string
	Value Value
}

func (Ascii) isValue()     {}
func (Text) isValue()      {}
func (Blob) isValue()      {}
func (Boolean) isValue()   {}
func (Double) isValue()    {}
func (Float) isValue()     {}
func (TinyInt) isValue()   {}
func (SmallInt) isValue()  {}
func (Int) isValue()       {}
func (BigInt) isValue()    {}
func (Counter) isValue()   {}
func (UUID) isValue()      {}
func (TimeUUID) isValue()  {}
func (Varint) isValue()    {}
func (Decimal) isValue()   {}
func (Timestamp) isValue() {}
func (Time) isValue()      {}
func (Date) isValue()      {}
func (Inet) isValue()      {}
func (Duration) isValue()  {}
func (Custom) isValue()    {}
func (Empty) isValue()     {}
func (List) isValue()      {}
func (Set) isValue()       {}
func (Map) isValue()       {}
func (Tuple) isValue()     {}
func (UDT) isValue()       {}

// Time returns the timestamp in UTC.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t)).UTC()
}

func TimestampOf(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// Duration returns the time of day as an offset from midnight.
func (t Time) Duration() time.Duration {
	return time.Duration(t)
}

// dateEpoch is the wire value of 1970-01-01.
const dateEpoch = 1 << 31

// Days returns the signed day count relative to 1970-01-01.
func (d Date) Days() int64 {
	return int64(d) - dateEpoch
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Unix(d.Days()*86400, 0).UTC()
}

// DateOf returns the date containing t, in UTC. Dates outside the wire
// range are clamped.
func DateOf(t time.Time) Date {
	days := math.Floor(float64(t.Unix()) / 86400)
	v := days + dateEpoch
	switch {
	case v < 0:
		return 0
	case v > math.MaxUint32:
		return math.MaxUint32
	}
	return Date(uint32(v))
}
