// Package bigint provides the arbitrary-precision signed integer used for
// token amounts whose precision exceeds 64 bits, and the endian-tagged
// fixed-width unsigned integers (128/160/168/256/512 bit) used for hashes,
// program hashes, and asset identifiers throughout the wallet engine.
//
// The fixed-width types are modeled on the shape of
// github.com/decred/dcrd/chaincfg/chainhash.Hash (a fixed byte array with
// String/Bytes/SetBytes and a well-known zero value), generalized to the
// several widths spec §3 requires.
package bigint

import (
	"fmt"
	"math/big"
)

// BigInt wraps math/big.Int to give it the decimal/hex text codecs the
// spec requires, without leaking big.Int's mutable-receiver API into the
// rest of the module.
type BigInt struct {
	v big.Int
}

// Zero is the additive identity.
var Zero = BigInt{}

// NewFromInt64 builds a BigInt from a native int64.
func NewFromInt64(n int64) BigInt {
	var b BigInt
	b.v.SetInt64(n)
	return b
}

// NewFromString parses s (base 10) into a BigInt. ok is false if s isn't a
// valid decimal integer.
func NewFromString(s string) (BigInt, bool) {
	var b BigInt
	_, ok := b.v.SetString(s, 10)
	return b, ok
}

// NewFromHex parses s (base 16, optionally "0x"-prefixed) into a BigInt.
func NewFromHex(s string) (BigInt, bool) {
	if len(s) > 1 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	var b BigInt
	_, ok := b.v.SetString(s, 16)
	return b, ok
}

// String renders the decimal text form.
func (b BigInt) String() string {
	return b.v.String()
}

// Hex renders the hexadecimal text form, unprefixed.
func (b BigInt) Hex() string {
	return b.v.Text(16)
}

// Sign returns -1, 0, or 1 depending on whether b is negative, zero, or
// positive.
func (b BigInt) Sign() int {
	return b.v.Sign()
}

// IsZero reports whether b is the zero value.
func (b BigInt) IsZero() bool {
	return b.v.Sign() == 0
}

// Add returns b + other.
func (b BigInt) Add(other BigInt) BigInt {
	var out BigInt
	out.v.Add(&b.v, &other.v)
	return out
}

// Sub returns b - other.
func (b BigInt) Sub(other BigInt) BigInt {
	var out BigInt
	out.v.Sub(&b.v, &other.v)
	return out
}

// Mul returns b * other.
func (b BigInt) Mul(other BigInt) BigInt {
	var out BigInt
	out.v.Mul(&b.v, &other.v)
	return out
}

// Cmp compares b to other, returning -1, 0, or 1.
func (b BigInt) Cmp(other BigInt) int {
	return b.v.Cmp(&other.v)
}

// Int64 returns b truncated to an int64. ok is false if b doesn't fit.
func (b BigInt) Int64() (n int64, ok bool) {
	if !b.v.IsInt64() {
		return 0, false
	}
	return b.v.Int64(), true
}

// MarshalJSON implements json.Marshaler, rendering the decimal form as a
// JSON string (amounts can exceed the safe float64 range).
func (b BigInt) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", b.String())), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, ok := NewFromString(s)
	if !ok {
		return fmt.Errorf("bigint: invalid decimal string %q", s)
	}
	*b = parsed
	return nil
}
