// Package address implements address encoding/decoding and the
// program-hash <-> address conversions spec §4.2 describes: base58-check
// text with a one-byte prefix, and pay-to-address script templates for
// single-key and multi-sig redeem scripts.
//
// The Address value itself mirrors the shape of
// github.com/decred/dcrd/txscript/v4/stdaddr.Address — a small value type
// with a String() form and a way to recover the underlying script — as
// used throughout the teacher (input/adaptors.go, lnwallet/interface.go,
// lnwallet/dcrwallet/signer.go), generalized here to the prefix/program-hash
// scheme spec §3 and §6 define instead of Decred's own.
package address

import (
	"crypto/sha256"

	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/chainparams"
	"github.com/elaspv/spvwallet/errs"
	"golang.org/x/crypto/ripemd160"
)

// Address is a prefix byte plus a 160-bit program hash, exactly as spec §3
// defines it.
type Address struct {
	Prefix      chainparams.AddressPrefix
	ProgramHash bigint.Uint160
}

// String renders the base58-check text form: base58(prefix || hash ||
// checksum[0..4]), checksum = sha256(sha256(prefix||hash)).
func (a Address) String() string {
	payload := make([]byte, 0, 21)
	payload = append(payload, byte(a.Prefix))
	payload = append(payload, a.ProgramHash[:]...)

	checksum := doubleSHA256(payload)
	payload = append(payload, checksum[:4]...)

	return base58Encode(payload)
}

// Hash168 packs the prefix and program hash into the single fixed-width
// 168-bit field used on the wire for outputs (spec §4.2: "deserialized
// outputs accept any 168-bit hash").
func (a Address) Hash168() bigint.Uint168 {
	return bigint.NewUint168(byte(a.Prefix), a.ProgramHash)
}

// FromHash168 reconstructs an Address from its packed wire form without
// validating the checksum — deserialized outputs are not required to
// round-trip through base58.
func FromHash168(h bigint.Uint168) Address {
	return Address{
		Prefix:      chainparams.AddressPrefix(h.Prefix()),
		ProgramHash: h.ProgramHash(),
	}
}

// FromString base58-decodes s and verifies its embedded checksum. An
// invalid address is a construction error (spec §4.2), surfaced as an
// *errs.Error of kind KindInvalidArgument.
func FromString(s string) (Address, error) {
	const op = "address.FromString"

	raw, ok := base58Decode(s)
	if !ok || len(raw) < 25 {
		return Address{}, errs.E(op, errs.KindInvalidArgument)
	}

	payload := raw[:len(raw)-4]
	checksum := raw[len(raw)-4:]

	want := doubleSHA256(payload)
	for i := 0; i < 4; i++ {
		if want[i] != checksum[i] {
			return Address{}, errs.E(op, errs.KindInvalidArgument)
		}
	}

	var a Address
	a.Prefix = chainparams.AddressPrefix(payload[0])
	copy(a.ProgramHash[:], payload[1:21])
	return a, nil
}

// FromPubKey builds an address with the given prefix from a single
// compressed public key: programHash = ripemd160(sha256(redeemScript)), where the
// redeem script is 0x21 || pubkey || OP_CHECKSIG (spec §4.2).
func FromPubKey(prefix chainparams.AddressPrefix, pubKey []byte) (Address, error) {
	const op = "address.FromPubKey"

	if len(pubKey) != 33 {
		return Address{}, errs.E(op, errs.KindInvalidArgument)
	}

	script := StandardRedeemScript(pubKey)
	hash := programHash(script)

	return Address{Prefix: prefix, ProgramHash: hash}, nil
}

// FromMultiSig builds a MultiSig-prefix address from an m-of-n cosigner
// set, per the multi-sig redeem script template.
func FromMultiSig(m int, pubKeys [][]byte) (Address, error) {
	const op = "address.FromMultiSig"

	if m <= 0 || m > len(pubKeys) || len(pubKeys) > chainparams.MaxMultiSigCosigners {
		return Address{}, errs.E(op, errs.KindInvalidArgument)
	}

	script, err := MultiSigRedeemScript(m, pubKeys)
	if err != nil {
		return Address{}, errs.E(op, errs.KindInvalidArgument, err)
	}
	hash := programHash(script)

	return Address{Prefix: chainparams.PrefixMultiSig, ProgramHash: hash}, nil
}

func programHash(script []byte) bigint.Uint160 {
	sh := sha256.Sum256(script)
	ripe := ripemd160.New()
	ripe.Write(sh[:])
	sum := ripe.Sum(nil)

	var out bigint.Uint160
	copy(out[:], sum)
	return out
}

func doubleSHA256(b []byte) [32]byte {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}
