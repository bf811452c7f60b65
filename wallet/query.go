package wallet

import (
	"bytes"
	"sort"

	"github.com/decred/dcrd/wire"
	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/groupedasset"
	"github.com/elaspv/spvwallet/txs"
)

// AssetIDs returns every assetID this wallet tracks a GroupedAsset for.
func (w *Wallet) AssetIDs() []bigint.Uint256 {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	out := make([]bigint.Uint256, 0, len(w.groupedAssets))
	for id := range w.groupedAssets {
		out = append(out, id)
	}
	return out
}

// GetAllAssets returns up to count assetIDs starting at start, the
// restartable-lazy-sequence pagination spec §9 calls for ("GetAllUTXO,
// GetAllTransactions return restartable finite lazy sequences; callers
// paginate with (start, count)"), extended here to asset enumeration for
// consistency across every multi-valued query this wallet exposes.
func (w *Wallet) GetAllAssets(start, count int) []bigint.Uint256 {
	all := w.AssetIDs()
	sort.Slice(all, func(i, j int) bool {
		return bytes.Compare(all[i][:], all[j][:]) < 0
	})
	return paginateAssets(all, start, count)
}

func paginateAssets(all []bigint.Uint256, start, count int) []bigint.Uint256 {
	if start >= len(all) {
		return nil
	}
	end := start + count
	if end > len(all) || count < 0 {
		end = len(all)
	}
	return all[start:end]
}

// GetAllUTXO returns up to count UTXOs of assetID starting at index
// start (spec §9 "restartable finite lazy sequences").
func (w *Wallet) GetAllUTXO(assetID bigint.Uint256, start, count int) []groupedasset.UTXO {
	g := w.GroupedAsset(assetID)
	if g == nil {
		return nil
	}
	all := g.Candidates(w.BlockHeight(), w.SpendingOutputsSnapshot(), nil)
	if start >= len(all) {
		return nil
	}
	end := start + count
	if end > len(all) || count < 0 {
		end = len(all)
	}
	return all[start:end]
}

// GetAllTransactions returns up to count transactions from the wallet's
// ascending-ordered history starting at index start.
func (w *Wallet) GetAllTransactions(start, count int) []*txs.Transaction {
	all := w.Transactions()
	if start >= len(all) {
		return nil
	}
	end := start + count
	if end > len(all) || count < 0 {
		end = len(all)
	}
	return all[start:end]
}

// SpendingOutputsSnapshot returns a copy of the set of outpoints
// currently referenced by unconfirmed inputs, for callers composing a
// transaction outside the wallet's own lock (e.g. groupedasset.Consolidate,
// which needs the same view RegisterTransaction would see).
func (w *Wallet) SpendingOutputsSnapshot() map[wire.OutPoint]struct{} {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	out := make(map[wire.OutPoint]struct{}, len(w.spendingOutputs))
	for op := range w.spendingOutputs {
		out[op] = struct{}{}
	}
	return out
}
