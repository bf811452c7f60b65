// Package groupedasset implements the per-asset UTXO pool and transaction
// composition logic of spec §4.5: coin selection, fee iteration, change,
// consolidation, voting, and deposit retrieval, one GroupedAsset per
// assetID.
package groupedasset

import (
	"sync"

	"github.com/decred/dcrd/wire"
	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/chainparams"
	"github.com/elaspv/spvwallet/txs"
)

// UTXO is one spendable (or maturing) output, per spec §3.
type UTXO struct {
	TxHash      bigint.Uint256
	Index       uint16
	Timestamp   uint32
	BlockHeight uint32
	Output      txs.Output
	Spent       bool
}

// OutPoint returns the (txHash, index) this UTXO's owning input would
// reference.
func (u UTXO) OutPoint() wire.OutPoint {
	var h [32]byte
	copy(h[:], u.TxHash[:])
	return wire.OutPoint{Hash: h, Index: uint32(u.Index)}
}

// Mature reports whether a coinbase UTXO has cleared CoinbaseMaturity
// confirmations as of currentHeight (spec §3 invariant 5).
func (u UTXO) Mature(currentHeight uint32) bool {
	if u.BlockHeight == chainparams.TxUnconfirmed {
		return false
	}
	return u.BlockHeight+chainparams.CoinbaseMaturity <= currentHeight
}

// GroupedAsset holds one asset's UTXO pool, following spec §3's
// `{asset, utxos, coinbaseUTXOs, voteUTXOs, balance}` shape — an ordered
// set per bucket so selection order (largest-first / oldest-first) is
// reproducible. Balance is never cached: coinbase maturity depends on
// the caller's current height, so it is recomputed fresh on every
// Balance/Candidates call instead of stored alongside the pools.
type GroupedAsset struct {
	mu sync.Mutex

	AssetID bigint.Uint256
	Asset   txs.Asset

	utxos         []UTXO
	coinbaseUTXOs []UTXO
	voteUTXOs     []UTXO
}

// New constructs an empty GroupedAsset for assetID.
func New(assetID bigint.Uint256, asset txs.Asset) *GroupedAsset {
	return &GroupedAsset{AssetID: assetID, Asset: asset}
}

// AddUTXO inserts u into the matching bucket. It is the wallet ingestion
// path's (spec §4.6) sole writer of pool state.
func (g *GroupedAsset) AddUTXO(u UTXO, isCoinbase bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if isCoinbase {
		g.coinbaseUTXOs = append(g.coinbaseUTXOs, u)
		return
	}
	g.utxos = append(g.utxos, u)
}

// RemoveUTXO deletes the UTXO referenced by op from whichever bucket
// holds it (spec §3 invariant 4: confirming a spend removes the
// referenced UTXO from the owning asset's utxos).
func (g *GroupedAsset) RemoveUTXO(op wire.OutPoint) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.utxos = removeOutPoint(g.utxos, op)
	g.coinbaseUTXOs = removeOutPoint(g.coinbaseUTXOs, op)
	g.voteUTXOs = removeOutPoint(g.voteUTXOs, op)
}

func removeOutPoint(list []UTXO, op wire.OutPoint) []UTXO {
	out := list[:0:0]
	for _, u := range list {
		if u.OutPoint() != op {
			out = append(out, u)
		}
	}
	return out
}

// Balance returns the currently spendable balance for this asset as of
// currentHeight: every non-coinbase UTXO plus any coinbase UTXO that has
// cleared CoinbaseMaturity confirmations (spec §3 invariant 3, and
// invariant 5's "become spendable when blockHeight + 100 ≤
// currentBlockHeight" — a coinbase credit is otherwise uncounted).
func (g *GroupedAsset) Balance(currentHeight uint32) bigint.BigInt {
	g.mu.Lock()
	defer g.mu.Unlock()

	total := bigint.Zero
	for _, u := range g.utxos {
		total = total.Add(u.Output.Amount)
	}
	for _, u := range matureCoinbase(g.coinbaseUTXOs, currentHeight, nil) {
		total = total.Add(u.Output.Amount)
	}
	return total
}

// Candidates returns a snapshot of every spendable UTXO not referenced by
// spendingOutputs and, if fromAddress is non-nil, restricted to that
// address (spec §4.5 step 2): the non-coinbase pool plus any coinbase
// UTXO that has cleared CoinbaseMaturity confirmations (spec §3
// invariant 5), so a matured coinbase output is selectable by
// CreateTxForOutputs/Consolidate/Vote exactly like any other UTXO.
func (g *GroupedAsset) Candidates(currentHeight uint32, spendingOutputs map[wire.OutPoint]struct{}, fromAddress *bigint.Uint168) []UTXO {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]UTXO, 0, len(g.utxos)+len(g.coinbaseUTXOs))
	for _, u := range g.utxos {
		if !includeCandidate(u, spendingOutputs, fromAddress) {
			continue
		}
		out = append(out, u)
	}
	for _, u := range matureCoinbase(g.coinbaseUTXOs, currentHeight, spendingOutputs) {
		if fromAddress != nil && u.Output.Address != *fromAddress {
			continue
		}
		out = append(out, u)
	}
	return out
}

func includeCandidate(u UTXO, spendingOutputs map[wire.OutPoint]struct{}, fromAddress *bigint.Uint168) bool {
	if _, spending := spendingOutputs[u.OutPoint()]; spending {
		return false
	}
	if fromAddress != nil && u.Output.Address != *fromAddress {
		return false
	}
	return true
}

// matureCoinbase filters list down to coinbase UTXOs that have cleared
// CoinbaseMaturity confirmations, aren't already spent, and aren't
// referenced by spendingOutputs. Unlocked: callers already hold g.mu.
func matureCoinbase(list []UTXO, currentHeight uint32, spendingOutputs map[wire.OutPoint]struct{}) []UTXO {
	out := make([]UTXO, 0, len(list))
	for _, u := range list {
		if u.Spent || !u.Mature(currentHeight) {
			continue
		}
		if _, spending := spendingOutputs[u.OutPoint()]; spending {
			continue
		}
		out = append(out, u)
	}
	return out
}

// MatureCoinbaseCandidates returns coinbase UTXOs that have cleared
// CoinbaseMaturity confirmations and aren't already spent/spending — the
// coinbase-only view callers (e.g. a "maturing deposits" UI) can use
// instead of the merged Candidates set.
func (g *GroupedAsset) MatureCoinbaseCandidates(currentHeight uint32, spendingOutputs map[wire.OutPoint]struct{}) []UTXO {
	g.mu.Lock()
	defer g.mu.Unlock()
	return matureCoinbase(g.coinbaseUTXOs, currentHeight, spendingOutputs)
}
