// Package chainparams collects the protocol-wide constants the rest of the
// wallet engine is parameterized over: chain identifiers, address prefix
// bytes, and the fixed tunables from spec §6.
package chainparams

// ChainID names one of the three chains this engine understands.
type ChainID string

const (
	// ChainELA is the main chain.
	ChainELA ChainID = "ELA"

	// ChainID identity chain.
	ChainIDChain ChainID = "IDChain"

	// ChainTokenChain is the token/asset side chain.
	ChainTokenChain ChainID = "TokenChain"
)

// AddressPrefix is the single byte prefixed to a program hash before
// base58-check encoding.
type AddressPrefix byte

const (
	PrefixStandard  AddressPrefix = 0x21
	PrefixMultiSig  AddressPrefix = 0x12
	PrefixCrossChain AddressPrefix = 0x4B
	PrefixDeposit   AddressPrefix = 0x1F
	PrefixIDChain   AddressPrefix = 0x67
	PrefixDestroy   AddressPrefix = 0x00
)

const (
	// TxUnconfirmed is the sentinel block height for an unconfirmed
	// transaction.
	TxUnconfirmed = 0x7FFFFFFF

	// DefaultFeePerKB is the default fee rate, in sats per kilobyte.
	DefaultFeePerKB = 10000

	// GapLimitExternal is the number of unused external addresses kept
	// ahead of the highest referenced index.
	GapLimitExternal = 10

	// GapLimitInternal is the number of unused change addresses kept
	// ahead of the highest referenced index.
	GapLimitInternal = 5

	// CoinbaseMaturity is the number of confirmations a coinbase output
	// needs before it is spendable.
	CoinbaseMaturity = 100

	// MaxMultiSigCosigners bounds the cosigner count of a multi-sig
	// account.
	MaxMultiSigCosigners = 6
)

// ELAAssetID is the well-known assetID installed on wallet construction for
// the native asset, per spec §9 (modeled as a constant, not process-wide
// state).
var ELAAssetID = [32]byte{
	0xb0, 0x37, 0xdb, 0x96, 0x4a, 0x23, 0x15, 0x5d,
	0x3d, 0x12, 0x44, 0x45, 0x94, 0xf2, 0x76, 0x8b,
	0x07, 0x8f, 0xc3, 0x76, 0x40, 0x91, 0x98, 0xcf,
	0x91, 0xee, 0x55, 0x4a, 0x91, 0x1b, 0x2a, 0xa1,
}
