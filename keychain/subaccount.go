package keychain

import (
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v3/ecdsa"
	"github.com/elaspv/spvwallet/address"
	"github.com/elaspv/spvwallet/chainparams"
	"github.com/elaspv/spvwallet/errs"
)

// AddressInfo is one entry in a SubAccount's address book.
type AddressInfo struct {
	Address address.Address
	Locator KeyLocator
	Used    bool
}

// SubAccount is the address book for one wallet account: it enumerates
// external/internal chain addresses with gap-limit discovery, holds
// owner/DID public keys, and — for multi-sig accounts — the cosigner set
// and signing threshold. It owns the redeem-script construction used
// during signing, per spec §4.3.
type SubAccount struct {
	mu sync.Mutex

	chain *HDKeyChain
	params struct {
		gapExternal int
		gapInternal int
	}

	// single-address mode exposes exactly one external address (index
	// 0/0); multi-address mode follows the gap-limit rule below.
	singleAddress bool

	external []AddressInfo
	internal []AddressInfo
	did      []AddressInfo

	// cosigners holds the full multi-sig pubkey set (including this
	// account's own key) and m the signing threshold. Empty cosigners
	// means this is a single-signature account.
	cosigners [][]byte
	m         int

	prefix chainparams.AddressPrefix
}

// NewSingleAddress builds a single-address SubAccount exposing index 0/0
// on both the external and internal chains.
func NewSingleAddress(chain *HDKeyChain, prefix chainparams.AddressPrefix) (*SubAccount, error) {
	sa := &SubAccount{
		chain:         chain,
		singleAddress: true,
		prefix:        prefix,
	}
	sa.params.gapExternal = chainparams.GapLimitExternal
	sa.params.gapInternal = chainparams.GapLimitInternal

	if _, err := sa.extendExternal(1); err != nil {
		return nil, err
	}
	if _, err := sa.extendInternal(1); err != nil {
		return nil, err
	}
	return sa, nil
}

// NewMultiAddress builds a gap-limit-discovery SubAccount, pre-populating
// gapLimit addresses on both chains.
func NewMultiAddress(chain *HDKeyChain, prefix chainparams.AddressPrefix) (*SubAccount, error) {
	sa := &SubAccount{
		chain:  chain,
		prefix: prefix,
	}
	sa.params.gapExternal = chainparams.GapLimitExternal
	sa.params.gapInternal = chainparams.GapLimitInternal

	if _, err := sa.extendExternal(sa.params.gapExternal); err != nil {
		return nil, err
	}
	if _, err := sa.extendInternal(sa.params.gapInternal); err != nil {
		return nil, err
	}
	return sa, nil
}

// NewMultiSig upgrades chain's own key into a cosigner of an m-of-n
// multi-sig account. cosigners is the full public-key set including this
// account's own key (in any order); m is the signing threshold.
func NewMultiSig(chain *HDKeyChain, m int, cosigners [][]byte) (*SubAccount, error) {
	const op = "keychain.NewMultiSig"

	if m <= 0 || m > len(cosigners) || len(cosigners) > chainparams.MaxMultiSigCosigners {
		return nil, errs.E(op, errs.KindInvalidArgument)
	}

	sa := &SubAccount{
		chain:     chain,
		prefix:    chainparams.PrefixMultiSig,
		cosigners: cosigners,
		m:         m,
	}
	sa.params.gapExternal = chainparams.GapLimitExternal
	sa.params.gapInternal = chainparams.GapLimitInternal

	if _, err := sa.extendExternal(sa.params.gapExternal); err != nil {
		return nil, err
	}
	if _, err := sa.extendInternal(sa.params.gapInternal); err != nil {
		return nil, err
	}
	return sa, nil
}

func (sa *SubAccount) deriveAddress(branch Branch, index uint32) (address.Address, error) {
	desc, err := sa.chain.DeriveKeyDescriptor(KeyLocator{Branch: branch, Index: index})
	if err != nil {
		return address.Address{}, err
	}

	if len(sa.cosigners) > 0 {
		pubKeys := make([][]byte, 0, len(sa.cosigners))
		for _, c := range sa.cosigners {
			pubKeys = append(pubKeys, c)
		}
		// Replace the slot matching this account's own key at this
		// locator with the freshly derived one.
		pubKeys = append(pubKeys, desc.PubKey.SerializeCompressed())
		return address.FromMultiSig(sa.m, pubKeys)
	}

	return address.FromPubKey(sa.prefix, desc.PubKey.SerializeCompressed())
}

func (sa *SubAccount) extendExternal(count int) ([]AddressInfo, error) {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	return sa.extendLocked(&sa.external, BranchExternal, count)
}

func (sa *SubAccount) extendInternal(count int) ([]AddressInfo, error) {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	return sa.extendLocked(&sa.internal, BranchInternal, count)
}

func (sa *SubAccount) extendLocked(chain *[]AddressInfo, branch Branch, count int) ([]AddressInfo, error) {
	start := uint32(len(*chain))
	added := make([]AddressInfo, 0, count)
	for i := uint32(0); i < uint32(count); i++ {
		addr, err := sa.deriveAddress(branch, start+i)
		if err != nil {
			return nil, err
		}
		info := AddressInfo{
			Address: addr,
			Locator: KeyLocator{Branch: branch, Index: start + i},
		}
		*chain = append(*chain, info)
		added = append(added, info)
	}
	return added, nil
}

// MarkUsed records that addr has been referenced by a wallet transaction,
// then tops the owning chain back up to gapLimit unused addresses ahead
// of the new highest-used index (spec §4.6: "Extend unused-address
// windows by gapLimit on both chains").
func (sa *SubAccount) MarkUsed(addr address.Address) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	if sa.singleAddress {
		return
	}

	markAndCountUnused := func(chain []AddressInfo) int {
		unused := 0
		for i := range chain {
			if chain[i].Address == addr {
				chain[i].Used = true
			}
			if !chain[i].Used {
				unused++
			}
		}
		return unused
	}

	if unused := markAndCountUnused(sa.external); unused < sa.params.gapExternal {
		sa.extendLocked(&sa.external, BranchExternal, sa.params.gapExternal-unused)
	}
	if unused := markAndCountUnused(sa.internal); unused < sa.params.gapInternal {
		sa.extendLocked(&sa.internal, BranchInternal, sa.params.gapInternal-unused)
	}
}

// IsOwnAddress reports whether addr belongs to this account's external,
// internal, or DID chains.
func (sa *SubAccount) IsOwnAddress(addr address.Address) bool {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	for _, c := range [][]AddressInfo{sa.external, sa.internal, sa.did} {
		for _, info := range c {
			if info.Address == addr {
				return true
			}
		}
	}
	return false
}

// UnusedExternalAddress returns the first unused address on the external
// chain, extending the chain if every known address has been used.
func (sa *SubAccount) UnusedExternalAddress() (address.Address, error) {
	return sa.unused(&sa.external, BranchExternal, sa.params.gapExternal)
}

// UnusedInternalAddress returns the first unused change address.
func (sa *SubAccount) UnusedInternalAddress() (address.Address, error) {
	return sa.unused(&sa.internal, BranchInternal, sa.params.gapInternal)
}

func (sa *SubAccount) unused(chain *[]AddressInfo, branch Branch, gap int) (address.Address, error) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	for _, info := range *chain {
		if !info.Used {
			return info.Address, nil
		}
	}

	added, err := sa.extendLocked(chain, branch, gap)
	if err != nil {
		return address.Address{}, err
	}
	return added[0].Address, nil
}

// DIDAddress derives (and caches) the DID address at index, from the
// separate DID key branch (spec §4.3).
func (sa *SubAccount) DIDAddress(index uint32) (address.Address, error) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	for _, info := range sa.did {
		if info.Locator.Index == index {
			return info.Address, nil
		}
	}

	addr, err := sa.deriveAddress(BranchDID, index)
	if err != nil {
		return address.Address{}, err
	}
	sa.did = append(sa.did, AddressInfo{
		Address: addr,
		Locator: KeyLocator{Branch: BranchDID, Index: index},
	})
	return addr, nil
}

// IsMultiSig reports whether this account has any cosigners configured,
// whatever its threshold m.
func (sa *SubAccount) IsMultiSig() bool {
	return len(sa.cosigners) > 0
}

// Threshold returns the signing threshold m for a multi-sig account.
func (sa *SubAccount) Threshold() int {
	return sa.m
}

// Cosigners returns the full cosigner public-key set.
func (sa *SubAccount) Cosigners() [][]byte {
	return sa.cosigners
}

// RedeemScript returns the redeem script backing addr's signature
// coverage: single-key or multi-sig, matching whichever template
// constructed the address.
func (sa *SubAccount) RedeemScript(addr address.Address) ([]byte, error) {
	if sa.IsMultiSig() {
		return address.MultiSigRedeemScript(sa.m, sa.cosigners)
	}

	loc, err := sa.locatorFor(addr)
	if err != nil {
		return nil, err
	}
	desc, err := sa.chain.DeriveKeyDescriptor(loc)
	if err != nil {
		return nil, err
	}
	return address.StandardRedeemScript(desc.PubKey.SerializeCompressed()), nil
}

// LocatorForAddress returns the branch/index locator owning addr, if
// addr belongs to this account's external or internal chain. Used by
// the wallet's ascending-order tie-break (spec §4.6 "TxCompare":
// "internal-chain-index, then external-chain-index").
func (sa *SubAccount) LocatorForAddress(addr address.Address) (KeyLocator, bool) {
	loc, err := sa.locatorFor(addr)
	return loc, err == nil
}

func (sa *SubAccount) locatorFor(addr address.Address) (KeyLocator, error) {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	for _, c := range [][]AddressInfo{sa.external, sa.internal} {
		for _, info := range c {
			if info.Address == addr {
				return info.Locator, nil
			}
		}
	}
	return KeyLocator{}, errs.E("keychain.locatorFor", errs.KindSign)
}

// SignDigest signs digest with the private key owning addr. For
// multi-sig accounts this returns this account's own partial signature
// only; the caller (GroupedAsset/Wallet signing path) assembles the
// complete scriptSig additively as cosigners contribute.
func (sa *SubAccount) SignDigest(addr address.Address, digest [32]byte) (*ecdsa.Signature, error) {
	const op = "keychain.SignDigest"

	loc, err := sa.locatorFor(addr)
	if err != nil && !sa.IsMultiSig() {
		return nil, errs.E(op, errs.KindSign, err)
	}
	if sa.IsMultiSig() {
		// The own-key locator for a multi-sig account is always the
		// external chain's 0th key, matching single-external-address
		// multi-sig accounts (spec §4.3).
		loc = KeyLocator{Branch: BranchExternal, Index: 0}
	}

	priv, err := sa.chain.DerivePrivKey(KeyDescriptor{KeyLocator: loc})
	if err != nil {
		return nil, errs.E(op, errs.KindSign, err)
	}

	sig := signDigest(priv, digest)
	return sig, nil
}
