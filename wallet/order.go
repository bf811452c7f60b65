package wallet

import (
	"github.com/elaspv/spvwallet/address"
	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/chainparams"
	"github.com/elaspv/spvwallet/keychain"
	"github.com/elaspv/spvwallet/txs"
)

// txReferences reports whether a spends one of b's outputs, i.e. a has
// an input whose outpoint hash equals b's identity hash.
func txReferences(a, b *txs.Transaction) bool {
	bh := b.Hash()
	for _, in := range a.Inputs {
		if bigint.Uint256(in.Hash) == bh {
			return true
		}
	}
	return false
}

// chainIndices returns the lowest internal-chain and external-chain key
// index referenced by any of tx's outputs that pay an address owned by
// account, used as the final ordering tie-break (spec §4.6 "TxCompare").
func chainIndices(tx *txs.Transaction, account *keychain.SubAccount) (internal, external uint32, hasInternal, hasExternal bool) {
	for _, out := range tx.Outputs {
		addr := address.FromHash168(out.Address)
		loc, ok := account.LocatorForAddress(addr)
		if !ok {
			continue
		}
		switch loc.Branch {
		case keychain.BranchInternal:
			if !hasInternal || loc.Index < internal {
				internal, hasInternal = loc.Index, true
			}
		case keychain.BranchExternal:
			if !hasExternal || loc.Index < external {
				external, hasExternal = loc.Index, true
			}
		}
	}
	return internal, external, hasInternal, hasExternal
}

// txCompare orders a and b per spec §4.6's "Ascending order" rule:
// blockHeight ascending (UNCONFIRMED sorts last); if a references b as
// an input, b sorts first (and vice versa); otherwise internal-chain-
// index, then external-chain-index; it returns 0 when none of these
// separate them, and insertTxLocked then keeps insertion order by placing
// the new transaction after every equal one.
func txCompare(a, b *txs.Transaction, account *keychain.SubAccount) int {
	switch {
	case a.BlockHeight != b.BlockHeight:
		if a.BlockHeight == chainparams.TxUnconfirmed {
			return 1
		}
		if b.BlockHeight == chainparams.TxUnconfirmed {
			return -1
		}
		if a.BlockHeight < b.BlockHeight {
			return -1
		}
		return 1
	case txReferences(a, b):
		return 1
	case txReferences(b, a):
		return -1
	}

	aInt, aExt, aHasInt, aHasExt := chainIndices(a, account)
	bInt, bExt, bHasInt, bHasExt := chainIndices(b, account)

	if aHasInt && bHasInt && aInt != bInt {
		if aInt < bInt {
			return -1
		}
		return 1
	}
	if aHasExt && bHasExt && aExt != bExt {
		if aExt < bExt {
			return -1
		}
		return 1
	}
	return 0
}

// txIsAscending reports whether a sorts strictly before b under
// txCompare.
func txIsAscending(a, b *txs.Transaction, account *keychain.SubAccount) bool {
	return txCompare(a, b, account) < 0
}

// insertTxLocked places tx into w.transactions by the ascending-order rule,
// using a stable linear insertion point search (spec §4.6 "InsertTx").
func (w *Wallet) insertTxLocked(tx *txs.Transaction) {
	i := 0
	for ; i < len(w.transactions); i++ {
		if txIsAscending(tx, w.transactions[i], w.account) {
			break
		}
	}
	w.transactions = append(w.transactions, nil)
	copy(w.transactions[i+1:], w.transactions[i:])
	w.transactions[i] = tx
}
