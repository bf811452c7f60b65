package wallet

import (
	"testing"

	"github.com/decred/dcrd/chaincfg/v3"
	"github.com/decred/dcrd/hdkeychain/v3"
	"github.com/elaspv/spvwallet/address"
	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/chainparams"
	"github.com/elaspv/spvwallet/groupedasset"
	"github.com/elaspv/spvwallet/keychain"
	"github.com/elaspv/spvwallet/txs"
	"github.com/stretchr/testify/require"
)

type fakeListener struct {
	balanceChanged []bigint.Uint256
	txAdded        []*txs.Transaction
	txUpdated      []*txs.Transaction
	txDeleted      []bigint.Uint256
	coinBaseAdded  []*txs.Transaction
	assetsAdded    []bigint.Uint256
}

func (f *fakeListener) BalanceChanged(assetID bigint.Uint256, _ bigint.BigInt) {
	f.balanceChanged = append(f.balanceChanged, assetID)
}
func (f *fakeListener) TxAdded(tx *txs.Transaction)   { f.txAdded = append(f.txAdded, tx) }
func (f *fakeListener) TxUpdated(tx *txs.Transaction) { f.txUpdated = append(f.txUpdated, tx) }
func (f *fakeListener) TxDeleted(hash bigint.Uint256, _ bool, _ bool) {
	f.txDeleted = append(f.txDeleted, hash)
}
func (f *fakeListener) CoinBaseTxAdded(tx *txs.Transaction) {
	f.coinBaseAdded = append(f.coinBaseAdded, tx)
}
func (f *fakeListener) CoinBaseTxUpdated(_ []bigint.Uint256, _ uint32, _ uint32) {}
func (f *fakeListener) AssetRegistered(assetID bigint.Uint256, _ txs.Asset, _ bigint.BigInt) {
	f.assetsAdded = append(f.assetsAdded, assetID)
}

func newTestWallet(t *testing.T) (*Wallet, *keychain.SubAccount, *fakeListener) {
	t.Helper()
	seed := make([]byte, hdkeychain.RecommendedSeedLen)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	chain, err := keychain.NewFromSeed(seed, chaincfg.MainNetParams())
	require.NoError(t, err)
	account, err := keychain.NewMultiAddress(chain, chainparams.PrefixStandard)
	require.NoError(t, err)

	listener := &fakeListener{}
	w := New(chainparams.ChainELA, "test-wallet", account, chainparams.DefaultFeePerKB, listener)
	w.InstallAsset(groupedasset.New(bigint.Uint256(chainparams.ELAAssetID), txs.Asset{Name: "ELA"}))
	w.SetBlockHeight(100)
	return w, account, listener
}

func payToOwned(t *testing.T, account *keychain.SubAccount, amount int64) txs.Output {
	t.Helper()
	addr, err := account.UnusedExternalAddress()
	require.NoError(t, err)
	return txs.Output{
		AssetID: bigint.Uint256(chainparams.ELAAssetID),
		Amount:  bigint.NewFromInt64(amount),
		Address: addr.Hash168(),
	}
}

func TestRegisterTransactionCreditsConfirmedReceive(t *testing.T) {
	w, account, listener := newTestWallet(t)

	tx := &txs.Transaction{
		Type:        txs.TypeTransferAsset,
		Payload:     &txs.EmptyPayload{},
		Outputs:     []txs.Output{payToOwned(t, account, 50000)},
		BlockHeight: 100,
		Timestamp:   1000,
	}

	ok, err := w.RegisterTransaction(tx)
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, listener.txAdded, 1)
	require.Contains(t, listener.balanceChanged, bigint.Uint256(chainparams.ELAAssetID))
	require.Equal(t, "50000", w.GetBalance(bigint.Uint256(chainparams.ELAAssetID)).String())
	require.Len(t, w.Transactions(), 1)
}

func TestRegisterTransactionUnconfirmedDoesNotCreditBalance(t *testing.T) {
	w, account, listener := newTestWallet(t)

	tx := &txs.Transaction{
		Type:        txs.TypeTransferAsset,
		Payload:     &txs.EmptyPayload{},
		Outputs:     []txs.Output{payToOwned(t, account, 50000)},
		BlockHeight: chainparams.TxUnconfirmed,
	}

	ok, err := w.RegisterTransaction(tx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, listener.balanceChanged)
	require.Equal(t, "0", w.GetBalance(bigint.Uint256(chainparams.ELAAssetID)).String())
}

func TestRegisterTransactionIgnoresUnrelatedTx(t *testing.T) {
	w, _, listener := newTestWallet(t)

	unrelated := &txs.Transaction{
		Type:    txs.TypeTransferAsset,
		Payload: &txs.EmptyPayload{},
		Outputs: []txs.Output{{
			AssetID: bigint.Uint256(chainparams.ELAAssetID),
			Amount:  bigint.NewFromInt64(1000),
			Address: address.Address{Prefix: chainparams.PrefixStandard}.Hash168(),
		}},
		BlockHeight: 100,
	}

	ok, err := w.RegisterTransaction(unrelated)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, listener.txAdded)
}

func TestRegisterTransactionRejectsUnsignedSpend(t *testing.T) {
	w, _, _ := newTestWallet(t)

	tx := &txs.Transaction{
		Type:    txs.TypeTransferAsset,
		Payload: &txs.EmptyPayload{},
		Inputs:  []txs.Input{{}},
	}

	_, err := w.RegisterTransaction(tx)
	require.Error(t, err)
}

func TestUpdateTransactionsPromotesUnconfirmed(t *testing.T) {
	w, account, listener := newTestWallet(t)

	tx := &txs.Transaction{
		Type:        txs.TypeTransferAsset,
		Payload:     &txs.EmptyPayload{},
		Outputs:     []txs.Output{payToOwned(t, account, 70000)},
		BlockHeight: chainparams.TxUnconfirmed,
	}
	ok, err := w.RegisterTransaction(tx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "0", w.GetBalance(bigint.Uint256(chainparams.ELAAssetID)).String())

	err = w.UpdateTransactions([]bigint.Uint256{tx.Hash()}, 150, 2000)
	require.NoError(t, err)

	require.Len(t, listener.txUpdated, 1)
	require.Equal(t, uint32(150), tx.BlockHeight)
	require.Equal(t, "70000", w.GetBalance(bigint.Uint256(chainparams.ELAAssetID)).String())
}

func TestRemoveTransactionReversesBalance(t *testing.T) {
	w, account, listener := newTestWallet(t)

	tx := &txs.Transaction{
		Type:        txs.TypeTransferAsset,
		Payload:     &txs.EmptyPayload{},
		Outputs:     []txs.Output{payToOwned(t, account, 30000)},
		BlockHeight: 100,
	}
	ok, err := w.RegisterTransaction(tx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "30000", w.GetBalance(bigint.Uint256(chainparams.ELAAssetID)).String())

	err = w.RemoveTransaction(tx.Hash())
	require.NoError(t, err)

	require.Contains(t, listener.txDeleted, tx.Hash())
	require.Empty(t, w.Transactions())
	require.Equal(t, "0", w.GetBalance(bigint.Uint256(chainparams.ELAAssetID)).String())
}

func TestSetTxUnconfirmedAfterReorgsAboveHeight(t *testing.T) {
	w, account, _ := newTestWallet(t)

	tx := &txs.Transaction{
		Type:        txs.TypeTransferAsset,
		Payload:     &txs.EmptyPayload{},
		Outputs:     []txs.Output{payToOwned(t, account, 40000)},
		BlockHeight: 150,
	}
	ok, err := w.RegisterTransaction(tx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "40000", w.GetBalance(bigint.Uint256(chainparams.ELAAssetID)).String())

	err = w.SetTxUnconfirmedAfter(100)
	require.NoError(t, err)

	require.Equal(t, uint32(chainparams.TxUnconfirmed), tx.BlockHeight)
	require.Equal(t, "0", w.GetBalance(bigint.Uint256(chainparams.ELAAssetID)).String())
}

// Spec §8 boundary case: a receive tx with 5 outputs of which 1 pays the
// wallet strips down to a single output whose FixedIndex still names its
// original position.
func TestRegisterTransactionStripsNonWalletOutputs(t *testing.T) {
	w, account, _ := newTestWallet(t)

	other := address.Address{Prefix: chainparams.PrefixStandard}.Hash168()
	owned := payToOwned(t, account, 25000)

	outputs := make([]txs.Output, 5)
	for i := range outputs {
		if uint16(i) == 3 {
			outputs[i] = owned
		} else {
			outputs[i] = txs.Output{
				AssetID: bigint.Uint256(chainparams.ELAAssetID),
				Amount:  bigint.NewFromInt64(1000),
				Address: other,
			}
		}
		outputs[i].FixedIndex = uint16(i)
	}

	tx := &txs.Transaction{
		Type:        txs.TypeTransferAsset,
		Payload:     &txs.EmptyPayload{},
		Outputs:     outputs,
		BlockHeight: 100,
	}

	ok, err := w.RegisterTransaction(tx)
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, tx.Outputs, 1)
	require.Equal(t, uint16(3), tx.Outputs[0].FixedIndex)
	require.Equal(t, "25000", w.GetBalance(bigint.Uint256(chainparams.ELAAssetID)).String())
}

func TestCoinBaseTransactionRoutesToCoinBaseAdded(t *testing.T) {
	w, account, listener := newTestWallet(t)

	cb := &txs.Transaction{
		Type:        txs.TypeCoinBase,
		Payload:     &txs.CoinBasePayload{},
		Outputs:     []txs.Output{payToOwned(t, account, 500000)},
		BlockHeight: 100,
	}

	ok, err := w.RegisterTransaction(cb)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, listener.coinBaseAdded, 1)
	require.Empty(t, listener.txAdded)
}
