// Package cqltype describes the declared CQL type of a result column.
//
// A ColumnType is produced by the result-metadata layer and handed to the
// deserialize package by value. Nothing in this module mutates one after
// construction.
package cqltype

import (
	"fmt"
	"strings"
)

// Kind is the CQL protocol option ID of a column type.
type Kind uint16

// Option IDs from the native protocol [option] encoding.
const (
	KindCustom    Kind = 0x0000
	KindAscii     Kind = 0x0001
	KindBigInt    Kind = 0x0002
	KindBlob      Kind = 0x0003
	KindBoolean   Kind = 0x0004
	KindCounter   Kind = 0x0005
	KindDecimal   Kind = 0x0006
	KindDouble    Kind = 0x0007
	KindFloat     Kind = 0x0008
	KindInt       Kind = 0x0009
	KindTimestamp Kind = 0x000B
	KindUUID      Kind = 0x000C
	KindText      Kind = 0x000D
	KindVarint    Kind = 0x000E
	KindTimeUUID  Kind = 0x000F
	KindInet      Kind = 0x0010
	KindDate      Kind = 0x0011
	KindTime      Kind = 0x0012
	KindSmallInt  Kind = 0x0013
	KindTinyInt   Kind = 0x0014
	KindDuration  Kind = 0x0015
	KindList      Kind = 0x0020
	KindMap       Kind = 0x0021
	KindSet       Kind = 0x0022
	KindUDT       Kind = 0x0030
	KindTuple     Kind = 0x0031
)

var kindNames = map[Kind]string{
	KindCustom:    "custom",
	KindAscii:     "ascii",
	KindBigInt:    "bigint",
	KindBlob:      "blob",
	KindBoolean:   "boolean",
	KindCounter:   "counter",
	KindDecimal:   "decimal",
	KindDouble:    "double",
	KindFloat:     "float",
	KindInt:       "int",
	KindTimestamp: "timestamp",
	KindUUID:      "uuid",
	KindText:      "text",
	KindVarint:    "varint",
	KindTimeUUID:  "timeuuid",
	KindInet:      "inet",
	KindDate:      "date",
	KindTime:      "time",
	KindSmallInt:  "smallint",
	KindTinyInt:   "tinyint",
	KindDuration:  "duration",
	KindList:      "list",
	KindMap:       "map",
	KindSet:       "set",
	KindUDT:       "udt",
	KindTuple:     "tuple",
}

// String returns the CQL name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown_kind_0x%04x", uint16(k))
}

// IsCollection reports whether k is list, set or map.
func (k Kind) IsCollection() bool {
	return k == KindList || k == KindSet || k == KindMap
}

// ColumnType is the descriptor of one result column.
type ColumnType struct {
	Kind Kind
	// Custom holds the server-side class name when Kind is KindCustom.
	Custom string
	// Params holds element types: [elem] for list and set, [key, value]
	// for map, one entry per element for tuple.
	Params []ColumnType
	// UDT is set when Kind is KindUDT.
	UDT *UDTInfo
}

// UDTInfo names a user-defined type and its fields in declaration order.
type UDTInfo struct {
	Keyspace string
	Name     string
	Fields   []UDTField
}

// UDTField is one field of a user-defined type.
type UDTField struct {
	Name string
	Type ColumnType
}

// Native descriptors.
var (
	Ascii     = ColumnType{Kind: KindAscii}
	BigInt    = ColumnType{Kind: KindBigInt}
	Blob      = ColumnType{Kind: KindBlob}
	Boolean   = ColumnType{Kind: KindBoolean}
	Counter   = ColumnType{Kind: KindCounter}
	Date      = ColumnType{Kind: KindDate}
	Decimal   = ColumnType{Kind: KindDecimal}
	Double    = ColumnType{Kind: KindDouble}
	Duration  = ColumnType{Kind: KindDuration}
	Float     = ColumnType{Kind: KindFloat}
	Inet      = ColumnType{Kind: KindInet}
	Int       = ColumnType{Kind: KindInt}
	SmallInt  = ColumnType{Kind: KindSmallInt}
	Text      = ColumnType{Kind: KindText}
	Time      = ColumnType{Kind: KindTime}
	Timestamp = ColumnType{Kind: KindTimestamp}
	TimeUUID  = ColumnType{Kind: KindTimeUUID}
	TinyInt   = ColumnType{Kind: KindTinyInt}
	UUID      = ColumnType{Kind: KindUUID}
	Varint    = ColumnType{Kind: KindVarint}
)

// Natives lists every native descriptor, in option ID order.
func Natives() []ColumnType {
	return []ColumnType{
		Ascii, BigInt, Blob, Boolean, Counter, Decimal, Double, Float, Int,
		Timestamp, UUID, Text, Varint, TimeUUID, Inet, Date, Time, SmallInt,
		TinyInt, Duration,
	}
}

// List returns a list<elem> descriptor.
func List(elem ColumnType) ColumnType {
	return ColumnType{Kind: KindList, Params: []ColumnType{elem}}
}

// Set returns a set<elem> descriptor.
func Set(elem ColumnType) ColumnType {
	return ColumnType{Kind: KindSet, Params: []ColumnType{elem}}
}

// Map returns a map<key, value> descriptor.
func Map(key, value ColumnType) ColumnType {
	return ColumnType{Kind: KindMap, Params: []ColumnType{key, value}}
}

// Tuple returns a tuple<elems...> descriptor.
func Tuple(elems ...ColumnType) ColumnType {
	return ColumnType{Kind: KindTuple, Params: elems}
}

// UserDefined returns a descriptor for keyspace.name with the given fields.
func UserDefined(keyspace, name string, fields ...UDTField) ColumnType {
	return ColumnType{Kind: KindUDT, UDT: &UDTInfo{Keyspace: keyspace, Name: name, Fields: fields}}
}

// CustomType returns a descriptor for a server-side custom class.
func CustomType(class string) ColumnType {
	return ColumnType{Kind: KindCustom, Custom: class}
}

// Elem returns the i-th type parameter, or false if the descriptor does not
// carry one.
func (t ColumnType) Elem(i int) (ColumnType, bool) {
	if i < 0 || i >= len(t.Params) {
		return ColumnType{}, false
	}
	return t.Params[i], true
}

// String renders the descriptor in CQL notation.
func (t ColumnType) String() string {
	switch t.Kind {
	case KindList, KindSet, KindMap, KindTuple:
		parts := make([]string, 0, len(t.Params))
		for _, p := range t.Params {
			parts = append(parts, p.String())
		}
		return t.Kind.String() + "<" + strings.Join(parts, ", ") + ">"
	case KindUDT:
		if t.UDT == nil {
			return "udt"
		}
		if t.UDT.Keyspace == "" {
			return t.UDT.Name
		}
		return t.UDT.Keyspace + "." + t.UDT.Name
	case KindCustom:
		return "'" + t.Custom + "'"
	default:
		return t.Kind.String()
	}
}
