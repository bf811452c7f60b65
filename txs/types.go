// Package txs implements the tagged-variant transaction model of spec §3
// and §4.4: inputs, outputs, attributes, programs, and a versioned,
// polymorphic payload.
//
// Input references reuse the shape of
// github.com/decred/dcrd/wire.OutPoint{Hash,Index} — the teacher's own
// dependency for exactly this purpose — rather than inventing a parallel
// type, and amounts are bigint.BigInt values.
package txs

import (
	"github.com/decred/dcrd/wire"
	"github.com/elaspv/spvwallet/bigint"
)

// Type tags a transaction's payload variant.
type Type uint8

const (
	TypeCoinBase              Type = 0x00
	TypeRegisterAsset         Type = 0x01
	TypeTransferAsset         Type = 0x02
	TypeRecord                Type = 0x03
	TypeDeploy                Type = 0x04
	TypeSideChainPow          Type = 0x05
	TypeRechargeToSideChain   Type = 0x06
	TypeWithdrawFromSideChain Type = 0x07
	TypeTransferCrossChain    Type = 0x08
	TypeRegisterProducer      Type = 0x09
	TypeCancelProducer        Type = 0x0a
	TypeUpdateProducer        Type = 0x0b
	TypeReturnDepositCoin     Type = 0x0c
	TypeActivateProducer      Type = 0x0d
	TypeVote                  Type = 0x0e
	TypeCRCProposal           Type = 0x1f
)

// AttributeUsage enumerates the typed attribute kinds spec §3 calls for
// (pulled from original_source's attribute usages, dropped by the
// distillation but useful for a complete memo/nonce model).
type AttributeUsage uint8

const (
	AttrNonce           AttributeUsage = 0x00
	AttrConfirmations   AttributeUsage = 0x01
	AttrMemo            AttributeUsage = 0x81
	AttrDescription     AttributeUsage = 0x90
	AttrDescriptionURL  AttributeUsage = 0x91
	AttrScript          AttributeUsage = 0x20
)

// Attribute is a typed, varbytes-encoded key/value pair attached to a
// transaction.
type Attribute struct {
	Usage AttributeUsage
	Data  []byte
}

// Input references a prior (txHash, index), reusing wire.OutPoint.
type Input struct {
	wire.OutPoint
	Sequence uint32
}

// Output carries one spendable value. FixedIndex is assigned at creation
// and stays stable under output stripping (spec §3, §4.7).
type Output struct {
	AssetID    bigint.Uint256
	Amount     bigint.BigInt
	Address    bigint.Uint168
	OutputLock uint32
	FixedIndex uint16

	// VoteContents holds the vote attachments for this output, per spec
	// §4.5 ("supplied VoteContent attaches to the first output").
	VoteContents []VoteContent
}

// Program is the witness/signature block attached to an input: the
// redeem script ("code") plus the signature pushes ("parameter"). It is
// excluded from the transaction's identity hash (spec §3, §4.4;
// original_source's SubWallet.cpp program construction).
type Program struct {
	Code      []byte
	Parameter []byte
}

// Transaction is the tagged-variant transaction model of spec §3.
type Transaction struct {
	Version        byte
	Type           Type
	PayloadVersion byte
	Payload        Payload
	Attributes     []Attribute
	Inputs         []Input
	Outputs        []Output
	LockTime       uint32
	Programs       []Program

	// BlockHeight and Timestamp are not part of the wire serialization;
	// they are filled in from the peer/database layer once a tx is
	// confirmed.
	BlockHeight uint32
	Timestamp   uint32

	// Fee is computed by the composing GroupedAsset, not serialized.
	Fee bigint.BigInt

	hash     bigint.Uint256
	hashSet  bool
}

// Contained reports whether this transaction is "contained" in a wallet
// that owns the given set of addresses and previously-seen outpoints, per
// spec §3: an output pays a wallet address, OR an input spends a
// wallet-known output, OR it registers an asset.
func (t *Transaction) Contained(isOwnAddress func(bigint.Uint168) bool, isKnownOutpoint func(wire.OutPoint) bool) bool {
	if t.Type == TypeRegisterAsset {
		return true
	}
	for _, out := range t.Outputs {
		if isOwnAddress(out.Address) {
			return true
		}
	}
	for _, in := range t.Inputs {
		if isKnownOutpoint(in.OutPoint) {
			return true
		}
	}
	return false
}

// Strip drops every output that doesn't pay a wallet-owned address from a
// pure-receive transaction — one with no input spending a wallet-known
// outpoint (spec §4.7). FixedIndex already records each surviving output's
// original position, so any other transaction's input that references this
// one by (hash, original index) keeps resolving correctly after the drop.
//
// Strip is a no-op until Hash has been cached at least once: the identity
// hash is defined over the full, unstripped output set (spec §4.4), so
// calling Hash() after a Strip that ran first would silently corrupt it.
// Callers must call Hash() before Strip, exactly as RegisterTransaction
// does.
func (t *Transaction) Strip(isOwnAddress func(bigint.Uint168) bool, isKnownOutpoint func(wire.OutPoint) bool) {
	if !t.hashSet || t.IsCoinBase() || len(t.Outputs) == 0 {
		return
	}
	for _, in := range t.Inputs {
		if isKnownOutpoint(in.OutPoint) {
			return
		}
	}

	kept := make([]Output, 0, len(t.Outputs))
	for _, out := range t.Outputs {
		if isOwnAddress(out.Address) {
			kept = append(kept, out)
		}
	}
	if len(kept) == len(t.Outputs) {
		return
	}
	t.Outputs = kept
}

// IsCoinBase reports whether this is the first (reward) transaction of a
// block.
func (t *Transaction) IsCoinBase() bool {
	return t.Type == TypeCoinBase
}
