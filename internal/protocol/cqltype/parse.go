package cqltype

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownType   = errors.New("cqltype: unknown type name")
	ErrBadParamCount = errors.New("cqltype: wrong number of type parameters")
	ErrSyntax        = errors.New("cqltype: syntax error")
)

// ParseError reports where a type string failed to parse.
type ParseError struct {
	Input string
	Pos   int
	Err   error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("cqltype: parse %q at offset %d: %v", e.Input, e.Pos, e.Err)
}

func (e ParseError) Unwrap() error {
	return e.Err
}

var nativeByName = map[string]ColumnType{
	"ascii":     Ascii,
	"bigint":    BigInt,
	"blob":      Blob,
	"boolean":   Boolean,
	"counter":   Counter,
	"date":      Date,
	"decimal":   Decimal,
	"double":    Double,
	"duration":  Duration,
	"float":     Float,
	"inet":      Inet,
	"int":       Int,
	"smallint":  SmallInt,
	"text":      Text,
	"varchar":   Text,
	"time":      Time,
	"timestamp": Timestamp,
	"timeuuid":  TimeUUID,
	"tinyint":   TinyInt,
	"uuid":      UUID,
	"varint":    Varint,
}

// Parse reads a type in CQL notation, e.g. "map<text, frozen<list<int>>>".
// frozen<> is accepted and dropped. A quoted name is a custom type.
// User-defined types cannot be expressed without their field list and are
// rejected.
func Parse(s string) (ColumnType, error) {
	p := &parser{in: s}
	t, err := p.parseType()
	if err != nil {
		return ColumnType{}, err
	}
	p.skipSpace()
	if p.pos != len(p.in) {
		return ColumnType{}, p.fail(ErrSyntax)
	}
	return t, nil
}

// MustParse is Parse for fixed strings.
func MustParse(s string) ColumnType {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	in  string
	pos int
}

func (p *parser) fail(err error) error {
	return ParseError{Input: p.in, Pos: p.pos, Err: err}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.in) && (p.in[p.pos] == ' ' || p.in[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.in) {
		return 0
	}
	return p.in[p.pos]
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.in) {
		c := p.in[p.pos]
		if c == '_' || c == '.' || (c >= '0' && c <= '9') || (c|0x20 >= 'a' && c|0x20 <= 'z') {
			p.pos++
			continue
		}
		break
	}
	return p.in[start:p.pos]
}

func (p *parser) parseType() (ColumnType, error) {
	p.skipSpace()
	if p.peek() == '\'' {
		end := strings.IndexByte(p.in[p.pos+1:], '\'')
		if end < 0 {
			return ColumnType{}, p.fail(ErrSyntax)
		}
		class := p.in[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
		return CustomType(class), nil
	}

	namePos := p.pos
	name := strings.ToLower(p.ident())
	if name == "" {
		return ColumnType{}, p.fail(ErrSyntax)
	}
	p.skipSpace()

	var params []ColumnType
	if p.peek() == '<' {
		p.pos++
		for {
			t, err := p.parseType()
			if err != nil {
				return ColumnType{}, err
			}
			params = append(params, t)
			p.skipSpace()
			switch p.peek() {
			case ',':
				p.pos++
				continue
			case '>':
				p.pos++
			default:
				return ColumnType{}, p.fail(ErrSyntax)
			}
			break
		}
	}

	want := -1
	var build func() ColumnType
	switch name {
	case "frozen":
		want = 1
		build = func() ColumnType { return params[0] }
	case "list":
		want = 1
		build = func() ColumnType { return List(params[0]) }
	case "set":
		want = 1
		build = func() ColumnType { return Set(params[0]) }
	case "map":
		want = 2
		build = func() ColumnType { return Map(params[0], params[1]) }
	case "tuple":
		if len(params) == 0 {
			return ColumnType{}, p.fail(ErrBadParamCount)
		}
		return Tuple(params...), nil
	default:
		t, ok := nativeByName[name]
		if !ok {
			p.pos = namePos
			return ColumnType{}, p.fail(fmt.Errorf("%w: %s", ErrUnknownType, name))
		}
		if params != nil {
			return ColumnType{}, p.fail(ErrBadParamCount)
		}
		return t, nil
	}
	if len(params) != want {
		return ColumnType{}, p.fail(ErrBadParamCount)
	}
	return build(), nil
}
