package cqlvalue

import (
	"bytes"
	"math/big"
	"strconv"
	"strings"
)

// VarintFromBytes wraps signed big-endian two's-complement bytes without
// copying or normalizing them.
func VarintFromBytes(b []byte) Varint {
	return Varint{raw: b}
}

func VarintFromInt64(v int64) Varint {
	return VarintFromBigInt(big.NewInt(v))
}

// VarintFromBigInt returns the shortest encoding of n.
func VarintFromBigInt(n *big.Int) Varint {
	return Varint{raw: bigToSigned(n)}
}

// Bytes returns the encoding exactly as received.
func (v Varint) Bytes() []byte {
	return v.raw
}

// BigInt converts the value. An empty encoding is zero.
func (v Varint) BigInt() *big.Int {
	return signedToBig(v.raw)
}

// Normalize strips redundant sign-extension bytes. The result shares memory
// with v.
func (v Varint) Normalize() Varint {
	b := v.raw
	if len(b) == 0 {
		return Varint{raw: []byte{0}}
	}
	for len(b) > 1 {
		if (b[0] == 0x00 && b[1]&0x80 == 0) || (b[0] == 0xff && b[1]&0x80 != 0) {
			b = b[1:]
			continue
		}
		break
	}
	return Varint{raw: b}
}

// Equal compares numeric values, ignoring redundant sign extension.
func (v Varint) Equal(o Varint) bool {
	return bytes.Equal(v.Normalize().raw, o.Normalize().raw)
}

func (v Varint) String() string {
	return v.BigInt().String()
}

func (d Decimal) Equal(o Decimal) bool {
	return d.Scale == o.Scale && d.Unscaled.Equal(o.Unscaled)
}

// plainZeroLimit caps the zeros String pads in plain notation. Beyond it
// the value is rendered in scientific notation so the output stays
// proportional to the digit count.
const plainZeroLimit = 20

// String renders the decimal in plain notation, e.g. "1.23" or "-0.005".
// Scales that would need more than plainZeroLimit padding zeros render in
// scientific notation, e.g. "1.2E-40".
func (d Decimal) String() string {
	n := d.Unscaled.BigInt()
	neg := n.Sign() < 0
	digits := new(big.Int).Abs(n).String()
	scale := int64(d.Scale)
	ndigits := int64(len(digits))

	switch {
	case scale <= 0 && -scale <= plainZeroLimit:
		digits += strings.Repeat("0", int(-scale))
	case scale >= ndigits && scale-ndigits <= plainZeroLimit:
		digits = "0." + strings.Repeat("0", int(scale-ndigits)) + digits
	case scale > 0 && scale < ndigits:
		cut := ndigits - scale
		digits = digits[:cut] + "." + digits[cut:]
	default:
		digits = scientific(digits, ndigits-1-scale)
	}
	if neg {
		return "-" + digits
	}
	return digits
}

// scientific renders digits as d.dddE<exp>, with an explicit sign on the
// exponent.
func scientific(digits string, exp int64) string {
	coef := digits[:1]
	if len(digits) > 1 {
		coef += "." + digits[1:]
	}
	sign := "+"
	if exp < 0 {
		sign = "-"
		exp = -exp
	}
	return coef + "E" + sign + strconv.FormatInt(exp, 10)
}

func signedToBig(b []byte) *big.Int {
	n := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(b))*8))
	}
	return n
}

func bigToSigned(n *big.Int) []byte {
	switch n.Sign() {
	case 0:
		return []byte{0}
	case 1:
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	default:
		width := uint(n.BitLen()/8+1) * 8
		b := new(big.Int).Add(n, new(big.Int).Lsh(big.NewInt(1), width)).Bytes()
		if len(b) >= 2 && b[0] == 0xff && b[1]&0x80 != 0 {
			b = b[1:]
		}
		return b
	}
}
