package cqlvalue

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"net/netip"
	"unicode/utf8"

	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/danmuck/cqlcell/internal/protocol/frame"
	"github.com/google/uuid"
)

var (
	ErrInvalidLength    = errors.New("cqlvalue: invalid length")
	ErrInvalidUTF8      = errors.New("cqlvalue: invalid utf-8")
	ErrNotASCII         = errors.New("cqlvalue: non-ascii byte in ascii value")
	ErrNullElement      = errors.New("cqlvalue: null collection element")
	ErrNegativeCount    = errors.New("cqlvalue: negative element count")
	ErrMissingParams    = errors.New("cqlvalue: type descriptor lacks element types")
	ErrUnsupportedType  = errors.New("cqlvalue: unsupported type")
	ErrMalformedVint    = errors.New("cqlvalue: malformed vint")
	ErrTrailingDuration = errors.New("cqlvalue: trailing bytes in duration")
)

// Parse decodes a non-NULL cell of type typ. A zero-length cell decodes to
// Empty unless typ is ascii, text or blob.
func Parse(typ cqltype.ColumnType, v frame.Slice) (Value, error) {
	b := v.AsSlice()
	if len(b) == 0 {
		switch typ.Kind {
		case cqltype.KindAscii, cqltype.KindText, cqltype.KindBlob:
		default:
			return Empty{}, nil
		}
	}

	switch typ.Kind {
	case cqltype.KindAscii:
		for i, c := range b {
			if c > 0x7f {
				return nil, fmt.Errorf("%w at offset %d", ErrNotASCII, i)
			}
		}
		return Ascii(string(b)), nil
	case cqltype.KindText:
		if !utf8.Valid(b) {
			return nil, ErrInvalidUTF8
		}
		return Text(string(b)), nil
	case cqltype.KindBlob:
		return Blob(b), nil
	case cqltype.KindBoolean:
		if err := exact(typ, b, 1); err != nil {
			return nil, err
		}
		return Boolean(b[0] != 0), nil
	case cqltype.KindTinyInt:
		if err := exact(typ, b, 1); err != nil {
			return nil, err
		}
		return TinyInt(int8(b[0])), nil
	case cqltype.KindSmallInt:
		if err := exact(typ, b, 2); err != nil {
			return nil, err
		}
		return SmallInt(int16(binary.BigEndian.Uint16(b))), nil
	case cqltype.KindInt:
		if err := exact(typ, b, 4); err != nil {
			return nil, err
		}
		return Int(int32(binary.BigEndian.Uint32(b))), nil
	case cqltype.KindBigInt:
		if err := exact(typ, b, 8); err != nil {
			return nil, err
		}
		return BigInt(int64(binary.BigEndian.Uint64(b))), nil
	case cqltype.KindCounter:
		if err := exact(typ, b, 8); err != nil {
			return nil, err
		}
		return Counter(int64(binary.BigEndian.Uint64(b))), nil
	case cqltype.KindFloat:
		if err := exact(typ, b, 4); err != nil {
			return nil, err
		}
		return Float(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
	case cqltype.KindDouble:
		if err := exact(typ, b, 8); err != nil {
			return nil, err
		}
		return Double(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
	case cqltype.KindTimestamp:
		if err := exact(typ, b, 8); err != nil {
			return nil, err
		}
		return Timestamp(int64(binary.BigEndian.Uint64(b))), nil
	case cqltype.KindTime:
		if err := exact(typ, b, 8); err != nil {
			return nil, err
		}
		return Time(int64(binary.BigEndian.Uint64(b))), nil
	case cqltype.KindDate:
		if err := exact(typ, b, 4); err != nil {
			return nil, err
		}
		return Date(binary.BigEndian.Uint32(b)), nil
	case cqltype.KindUUID, cqltype.KindTimeUUID:
		if err := exact(typ, b, 16); err != nil {
			return nil, err
		}
		var id uuid.UUID
		copy(id[:], b)
		if typ.Kind == cqltype.KindTimeUUID {
			return TimeUUID(id), nil
		}
		return UUID(id), nil
	case cqltype.KindInet:
		addr, ok := netip.AddrFromSlice(b)
		if !ok {
			return nil, fmt.Errorf("%w: inet expects 4 or 16 bytes, got %d", ErrInvalidLength, len(b))
		}
		return Inet{Addr: addr}, nil
	case cqltype.KindVarint:
		return VarintFromBytes(b), nil
	case cqltype.KindDecimal:
		return parseDecimal(b)
	case cqltype.KindDuration:
		return parseDuration(b)
	case cqltype.KindCustom:
		return Custom{Class: typ.Custom, Data: b}, nil
	case cqltype.KindList, cqltype.KindSet:
		elems, err := parseSequence(typ, v)
		if err != nil {
			return nil, err
		}
		if typ.Kind == cqltype.KindSet {
			return Set(elems), nil
		}
		return List(elems), nil
	case cqltype.KindMap:
		return parseMap(typ, v)
	case cqltype.KindTuple:
		return parseTuple(typ, v)
	case cqltype.KindUDT:
		return parseUDT(typ, v)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
	}
}

func exact(typ cqltype.ColumnType, b []byte, n int) error {
	if len(b) != n {
		return fmt.Errorf("%w: %s expects %d bytes, got %d", ErrInvalidLength, typ, n, len(b))
	}
	return nil
}

func parseDecimal(b []byte) (Value, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("%w: decimal expects at least 4 bytes, got %d", ErrInvalidLength, len(b))
	}
	return Decimal{
		Scale:    int32(binary.BigEndian.Uint32(b[:4])),
		Unscaled: VarintFromBytes(b[4:]),
	}, nil
}

func parseDuration(b []byte) (Value, error) {
	months, b, err := readVint(b)
	if err != nil {
		return nil, err
	}
	days, b, err := readVint(b)
	if err != nil {
		return nil, err
	}
	nanos, b, err := readVint(b)
	if err != nil {
		return nil, err
	}
	if len(b) != 0 {
		return nil, ErrTrailingDuration
	}
	if months < math.MinInt32 || months > math.MaxInt32 || days < math.MinInt32 || days > math.MaxInt32 {
		return nil, fmt.Errorf("%w: duration field out of int32 range", ErrMalformedVint)
	}
	return Duration{Months: int32(months), Days: int32(days), Nanoseconds: nanos}, nil
}

// readVint reads a zigzag-encoded variable length integer. The number of
// leading one bits in the first byte is the count of extra bytes.
func readVint(b []byte) (int64, []byte, error) {
	if len(b) == 0 {
		return 0, nil, ErrMalformedVint
	}
	extra := bits.LeadingZeros8(^b[0])
	if len(b) < 1+extra {
		return 0, nil, ErrMalformedVint
	}
	u := uint64(b[0] & (0xff >> extra))
	for _, c := range b[1 : 1+extra] {
		u = u<<8 | uint64(c)
	}
	return int64(u>>1) ^ -int64(u&1), b[1+extra:], nil
}

func param(typ cqltype.ColumnType, i int) (cqltype.ColumnType, error) {
	p, ok := typ.Elem(i)
	if !ok {
		return cqltype.ColumnType{}, fmt.Errorf("%w: %s", ErrMissingParams, typ)
	}
	return p, nil
}

func readCount(v *frame.Slice) (int, error) {
	n, err := v.ReadInt()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, ErrNegativeCount
	}
	return int(n), nil
}

func readElem(typ cqltype.ColumnType, v *frame.Slice) (Value, error) {
	cell, err := v.ReadCell()
	if err != nil {
		return nil, err
	}
	if cell == nil {
		return nil, ErrNullElement
	}
	return Parse(typ, *cell)
}

func parseSequence(typ cqltype.ColumnType, v frame.Slice) ([]Value, error) {
	elemType, err := param(typ, 0)
	if err != nil {
		return nil, err
	}
	n, err := readCount(&v)
	if err != nil {
		return nil, err
	}
	// Each element takes at least 4 bytes, so n is bounded by the payload
	// before anything is allocated.
	if n > v.Len()/4 {
		return nil, frame.ErrTruncated
	}
	out := make([]Value, 0, n)
	for range n {
		e, err := readElem(elemType, &v)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func parseMap(typ cqltype.ColumnType, v frame.Slice) (Value, error) {
	keyType, err := param(typ, 0)
	if err != nil {
		return nil, err
	}
	valType, err := param(typ, 1)
	if err != nil {
		return nil, err
	}
	n, err := readCount(&v)
	if err != nil {
		return nil, err
	}
	if n > v.Len()/8 {
		return nil, frame.ErrTruncated
	}
	out := make(Map, 0, n)
	for range n {
		k, err := readElem(keyType, &v)
		if err != nil {
			return nil, err
		}
		val, err := readElem(valType, &v)
		if err != nil {
			return nil, err
		}
		out = append(out, MapEntry{Key: k, Value: val})
	}
	return out, nil
}

func readOptional(typ cqltype.ColumnType, v *frame.Slice) (Value, error) {
	cell, err := v.ReadCell()
	if err != nil || cell == nil {
		return nil, err
	}
	return Parse(typ, *cell)
}

func parseTuple(typ cqltype.ColumnType, v frame.Slice) (Value, error) {
	out := make(Tuple, 0, len(typ.Params))
	for _, et := range typ.Params {
		e, err := readOptional(et, &v)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func parseUDT(typ cqltype.ColumnType, v frame.Slice) (Value, error) {
	if typ.UDT == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingParams, typ)
	}
	out := UDT{Keyspace: typ.UDT.Keyspace, Name: typ.UDT.Name}
	for _, f := range typ.UDT.Fields {
		// Fields added to the type after the value was written are absent
		// from the payload.
		if v.IsEmpty() {
			break
		}
		e, err := readOptional(f.Type, &v)
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, UDTField{Name: f.Name, Value: e})
	}
	return out, nil
}
