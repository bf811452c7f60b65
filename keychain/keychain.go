// Package keychain implements hierarchical deterministic key derivation
// and the per-wallet address book (SubAccount) that enumerates addresses
// owned by the user with gap-limit discovery.
//
// Derivation itself is delegated to
// github.com/decred/dcrd/hdkeychain/v3 — the teacher's own dependency for
// exactly this purpose — rather than reimplemented; KeyDescriptor is
// carried over by name from the teacher's
// lnwallet/dcrwallet/signer.go (`keychain.KeyDescriptor{PubKey: pubKey}`).
package keychain

import (
	"github.com/decred/dcrd/chaincfg/v3"
	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/decred/dcrd/hdkeychain/v3"
	"github.com/elaspv/spvwallet/errs"
)

// Branch distinguishes the external (receive) chain from the internal
// (change) chain, matching BIP32/44 convention.
type Branch uint32

const (
	// BranchExternal is chain index 0.
	BranchExternal Branch = 0

	// BranchInternal is chain index 1.
	BranchInternal Branch = 1

	// BranchDID is a separate branch used for decentralized-identifier
	// addresses (spec §4.3).
	BranchDID Branch = 2
)

// KeyLocator identifies a derived key by its branch and index within that
// branch.
type KeyLocator struct {
	Branch Branch
	Index  uint32
}

// KeyDescriptor couples a KeyLocator with the already-derived public key,
// mirroring the teacher's keychain.KeyDescriptor shape
// (keychain.KeyDescriptor{PubKey: pubKey}) used by SignOutputRaw/SignMessage.
type KeyDescriptor struct {
	KeyLocator
	PubKey *secp256k1.PublicKey
}

// HDKeyChain wraps a single extended key and the parameters needed to
// walk its children.
type HDKeyChain struct {
	master *hdkeychain.ExtendedKey
	params *chaincfg.Params
}

// NewFromSeed derives the master extended key from a BIP39-style seed.
func NewFromSeed(seed []byte, params *chaincfg.Params) (*HDKeyChain, error) {
	const op = "keychain.NewFromSeed"

	master, err := hdkeychain.NewMaster(seed, params)
	if err != nil {
		return nil, errs.E(op, errs.KindInvalidArgument, err)
	}

	return &HDKeyChain{master: master, params: params}, nil
}

// Neuter returns a public-only HDKeyChain capable of deriving non-hardened
// children but incapable of signing, per spec §4.3 ("public-only
// branches").
func (c *HDKeyChain) Neuter() (*HDKeyChain, error) {
	const op = "keychain.Neuter"

	pub, err := c.master.Neuter(c.params)
	if err != nil {
		return nil, errs.E(op, errs.KindInvalidArgument, err)
	}

	return &HDKeyChain{master: pub, params: c.params}, nil
}

// IsPrivate reports whether this chain can derive private keys.
func (c *HDKeyChain) IsPrivate() bool {
	return c.master.IsPrivate()
}

// Child derives the child at index within branch, hardening the index
// first if hardened is true.
func (c *HDKeyChain) Child(branch Branch, index uint32, hardened bool) (*hdkeychain.ExtendedKey, error) {
	const op = "keychain.Child"

	branchKey, err := c.master.Child(uint32(branch))
	if err != nil {
		return nil, errs.E(op, errs.KindInvalidArgument, err)
	}

	childIndex := index
	if hardened {
		childIndex += hdkeychain.HardenedKeyStart
	}

	child, err := branchKey.Child(childIndex)
	if err != nil {
		return nil, errs.E(op, errs.KindInvalidArgument, err)
	}

	return child, nil
}

// DeriveKeyDescriptor derives the key at loc and returns its public key
// wrapped in a KeyDescriptor.
func (c *HDKeyChain) DeriveKeyDescriptor(loc KeyLocator) (KeyDescriptor, error) {
	const op = "keychain.DeriveKeyDescriptor"

	child, err := c.Child(loc.Branch, loc.Index, false)
	if err != nil {
		return KeyDescriptor{}, err
	}

	pub, err := child.ECPubKey()
	if err != nil {
		return KeyDescriptor{}, errs.E(op, errs.KindInvalidArgument, err)
	}

	return KeyDescriptor{KeyLocator: loc, PubKey: pub}, nil
}

// DerivePrivKey derives the private key for desc's locator. It fails with
// KindSign if this chain is public-only.
func (c *HDKeyChain) DerivePrivKey(desc KeyDescriptor) (*secp256k1.PrivateKey, error) {
	const op = "keychain.DerivePrivKey"

	if !c.IsPrivate() {
		return nil, errs.E(op, errs.KindSign)
	}

	child, err := c.Child(desc.Branch, desc.Index, false)
	if err != nil {
		return nil, err
	}

	priv, err := child.ECPrivKey()
	if err != nil {
		return nil, errs.E(op, errs.KindSign, err)
	}

	return priv, nil
}
