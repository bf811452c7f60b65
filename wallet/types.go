// Package wallet implements the ingestion state machine of spec §4.6–4.8:
// a single wallet's transaction bookkeeping, per-asset UTXO pools, and
// listener fan-out.
//
// The locking discipline — one exclusive mutex guarding all wallet state,
// released before any listener callback — is grounded on
// lnwallet/dcrwallet/spvsync.go's mtx sync.Mutex pattern, and the
// listener shape is grounded on lnwallet.TransactionSubscription
// (ConfirmedTransactions()/UnconfirmedTransactions() channels plus
// Cancel()), adapted to named callbacks instead of raw channels since
// spec §4.8 calls for synchronous, ordered delivery rather than a
// channel-based subscription.
package wallet

import (
	"sync"

	"github.com/decred/dcrd/wire"
	"github.com/elaspv/spvwallet/address"
	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/chainparams"
	"github.com/elaspv/spvwallet/groupedasset"
	"github.com/elaspv/spvwallet/keychain"
	"github.com/elaspv/spvwallet/txs"
)

// Listener receives the Wallet's ingestion events, fired synchronously
// and in order after the internal mutation completes and the lock is
// released (spec §4.8).
type Listener interface {
	BalanceChanged(assetID bigint.Uint256, newBalance bigint.BigInt)
	TxAdded(tx *txs.Transaction)
	TxUpdated(tx *txs.Transaction)
	TxDeleted(hash bigint.Uint256, notifyUser bool, recommendRescan bool)
	CoinBaseTxAdded(tx *txs.Transaction)
	CoinBaseTxUpdated(hashes []bigint.Uint256, height uint32, timestamp uint32)
	AssetRegistered(assetID bigint.Uint256, asset txs.Asset, amount bigint.BigInt)
}

// Wallet is one logical SPV wallet: a chain ID, a single SubAccount, the
// per-asset UTXO groups, and the ascending-ordered transaction history
// (spec §3 "Wallet state").
type Wallet struct {
	mtx sync.Mutex

	ChainID     chainparams.ChainID
	WalletID    string
	blockHeight uint32
	feePerKb    uint64

	account *keychain.SubAccount

	groupedAssets map[bigint.Uint256]*groupedasset.GroupedAsset

	// transactions is allTx's ascending-ordered projection (spec §3
	// invariant 1: both hold the same transactions).
	transactions []*txs.Transaction
	allTx        map[bigint.Uint256]*txs.Transaction

	coinbaseTxs []*txs.Transaction
	coinbaseSet map[bigint.Uint256]struct{}

	spendingOutputs map[wire.OutPoint]struct{}

	// knownOutpoints is the set of (txHash, index) pairs the wallet has
	// ever credited to one of its own outputs, kept independent of
	// maturity/spent state so ContainsTx can recognize a spend of an
	// already-mature-and-removed UTXO (spec §3: "any input spends a
	// wallet-known output").
	knownOutpoints map[wire.OutPoint]struct{}

	listener Listener
}

// New constructs an empty Wallet ready to replay a stored snapshot
// (spec §3 "Lifecycle").
func New(chainID chainparams.ChainID, walletID string, account *keychain.SubAccount, feePerKb uint64, listener Listener) *Wallet {
	return &Wallet{
		ChainID:         chainID,
		WalletID:        walletID,
		blockHeight:     chainparams.TxUnconfirmed,
		feePerKb:        feePerKb,
		account:         account,
		groupedAssets:   make(map[bigint.Uint256]*groupedasset.GroupedAsset),
		allTx:           make(map[bigint.Uint256]*txs.Transaction),
		coinbaseSet:     make(map[bigint.Uint256]struct{}),
		spendingOutputs: make(map[wire.OutPoint]struct{}),
		knownOutpoints:  make(map[wire.OutPoint]struct{}),
		listener:        listener,
	}
}

// InstallAsset registers a GroupedAsset the wallet should track,
// typically called once at construction for the native asset and again
// whenever a registerAsset transaction confirms (spec §4.6
// "UpdateTransactions").
func (w *Wallet) InstallAsset(g *groupedasset.GroupedAsset) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	w.groupedAssets[g.AssetID] = g
}

// BlockHeight returns the wallet's current chain tip.
func (w *Wallet) BlockHeight() uint32 {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.blockHeight
}

// SetBlockHeight updates the wallet's view of the chain tip.
func (w *Wallet) SetBlockHeight(height uint32) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	w.blockHeight = height
}

// GroupedAsset returns the tracked GroupedAsset for assetID, or nil if
// unknown.
func (w *Wallet) GroupedAsset(assetID bigint.Uint256) *groupedasset.GroupedAsset {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.groupedAssets[assetID]
}

// GetBalance returns assetID's current mature balance (spec §5 "Read-only
// queries take the same lock").
func (w *Wallet) GetBalance(assetID bigint.Uint256) bigint.BigInt {
	w.mtx.Lock()
	g, height := w.groupedAssets[assetID], w.blockHeight
	w.mtx.Unlock()

	if g == nil {
		return bigint.Zero
	}
	return g.Balance(height)
}

// Transactions returns a copy of the wallet's ascending-ordered
// transaction history.
func (w *Wallet) Transactions() []*txs.Transaction {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	out := make([]*txs.Transaction, len(w.transactions))
	copy(out, w.transactions)
	return out
}

// ContainsTx reports whether tx is "contained" in this wallet, per spec
// §3: an output pays an owned address, OR an input spends a
// wallet-known outpoint, OR it registers an asset.
func (w *Wallet) ContainsTx(tx *txs.Transaction) bool {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.containsTxLocked(tx)
}

func (w *Wallet) containsTxLocked(tx *txs.Transaction) bool {
	return tx.Contained(w.isOwnHash168Locked, w.isKnownOutpointLocked)
}

func (w *Wallet) isOwnHash168Locked(h bigint.Uint168) bool {
	return w.account.IsOwnAddress(address.FromHash168(h))
}

func (w *Wallet) isKnownOutpointLocked(op wire.OutPoint) bool {
	_, ok := w.knownOutpoints[op]
	return ok
}
