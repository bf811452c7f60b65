package bigint

import (
	"encoding/hex"
	"fmt"
)

// Uint128 is a 128-bit (16-byte) value stored big-endian internally, the
// way chainhash.Hash stores its 32 bytes.
type Uint128 [16]byte

// Uint160 is a 160-bit (20-byte) value, used for program hashes.
type Uint160 [20]byte

// Uint168 is a 168-bit (21-byte) value: a one-byte address prefix plus a
// Uint160 program hash, kept together so Address can round-trip through a
// single fixed-width field the way deserialized transaction outputs do
// (spec §4.2: "deserialized outputs accept any 168-bit hash").
type Uint168 [21]byte

// Uint256 is a 256-bit (32-byte) value, used for transaction and block
// hashes and for assetIDs.
type Uint256 [32]byte

// Uint512 is a 512-bit (64-byte) value, used for cosigner-aggregate
// program data and double-length signatures.
type Uint512 [64]byte

// EmptyUint256 is the well-defined zero constant for Uint256.
var EmptyUint256 Uint256

// Bytes returns a copy of the raw big-endian bytes.
func (u Uint256) Bytes() []byte {
	out := make([]byte, len(u))
	copy(out, u[:])
	return out
}

// SetBytes copies b (which must be len(Uint256)) into u.
func (u *Uint256) SetBytes(b []byte) {
	copy(u[:], b)
}

// String renders the big-endian hex form.
func (u Uint256) String() string {
	return hex.EncodeToString(u[:])
}

// Reverse returns u with its byte order flipped — used when a hash stored
// internally big-endian needs to be displayed little-endian, or vice
// versa (spec §3: "256-bit supports byte-reverse").
func (u Uint256) Reverse() Uint256 {
	var out Uint256
	for i, b := range u {
		out[len(u)-1-i] = b
	}
	return out
}

// IsZero reports whether u is the zero value.
func (u Uint256) IsZero() bool {
	return u == EmptyUint256
}

// Uint256FromHex parses a big-endian hex string into a Uint256.
func Uint256FromHex(s string) (Uint256, error) {
	var out Uint256
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != len(out) {
		return out, errWrongLength(len(out), len(b))
	}
	copy(out[:], b)
	return out, nil
}

// Bytes returns a copy of the raw bytes.
func (u Uint160) Bytes() []byte {
	out := make([]byte, len(u))
	copy(out, u[:])
	return out
}

// String renders the big-endian hex form.
func (u Uint160) String() string {
	return hex.EncodeToString(u[:])
}

// Bytes returns a copy of the raw bytes.
func (u Uint168) Bytes() []byte {
	out := make([]byte, len(u))
	copy(out, u[:])
	return out
}

// String renders the big-endian hex form.
func (u Uint168) String() string {
	return hex.EncodeToString(u[:])
}

// Prefix returns the address-prefix byte, the first byte of a Uint168.
func (u Uint168) Prefix() byte {
	return u[0]
}

// IsZero reports whether u is the zero value.
func (u Uint168) IsZero() bool {
	return u == Uint168{}
}

// ProgramHash returns the Uint160 program hash embedded after the prefix
// byte.
func (u Uint168) ProgramHash() Uint160 {
	var h Uint160
	copy(h[:], u[1:])
	return h
}

// NewUint168 assembles a Uint168 from a prefix byte and a 160-bit program
// hash.
func NewUint168(prefix byte, hash Uint160) Uint168 {
	var u Uint168
	u[0] = prefix
	copy(u[1:], hash[:])
	return u
}

// Bytes returns a copy of the raw bytes.
func (u Uint512) Bytes() []byte {
	out := make([]byte, len(u))
	copy(out, u[:])
	return out
}

// String renders the big-endian hex form.
func (u Uint512) String() string {
	return hex.EncodeToString(u[:])
}

func errWrongLength(want, got int) error {
	return fmt.Errorf("bigint: expected %d bytes, got %d", want, got)
}
