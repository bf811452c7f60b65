package groupedasset

import (
	"testing"

	"github.com/decred/dcrd/chaincfg/v3"
	"github.com/decred/dcrd/hdkeychain/v3"
	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/chainparams"
	"github.com/elaspv/spvwallet/errs"
	"github.com/elaspv/spvwallet/keychain"
	"github.com/elaspv/spvwallet/txs"
	"github.com/stretchr/testify/require"
)

func testAccount(t *testing.T) *keychain.SubAccount {
	t.Helper()
	seed := make([]byte, hdkeychain.RecommendedSeedLen)
	for i := range seed {
		seed[i] = byte(i)
	}
	chain, err := keychain.NewFromSeed(seed, chaincfg.MainNetParams())
	require.NoError(t, err)
	sa, err := keychain.NewMultiAddress(chain, chainparams.PrefixStandard)
	require.NoError(t, err)
	return sa
}

func utxoOf(t *testing.T, amount int64, height uint32) UTXO {
	t.Helper()
	amt := bigint.NewFromInt64(amount)
	var hash bigint.Uint256
	hash[0] = byte(amount)
	return UTXO{
		TxHash:      hash,
		Index:       0,
		BlockHeight: height,
		Output: txs.Output{
			AssetID: bigint.Uint256(chainparams.ELAAssetID),
			Amount:  amt,
		},
	}
}

func TestCreateTxForOutputsSelectsUntilTargetMet(t *testing.T) {
	account := testAccount(t)
	g := New(bigint.Uint256(chainparams.ELAAssetID), txs.Asset{Name: "ELA"})
	g.AddUTXO(utxoOf(t, 100000, 10), false)
	g.AddUTXO(utxoOf(t, 50000, 10), false)
	g.AddUTXO(utxoOf(t, 10000, 10), false)

	payTo, err := account.UnusedExternalAddress()
	require.NoError(t, err)

	tx, err := g.CreateTxForOutputs(CreateTxForOutputsOptions{
		Type:    txs.TypeTransferAsset,
		Payload: &txs.EmptyPayload{},
		Outputs: []txs.Output{{
			AssetID: bigint.Uint256(chainparams.ELAAssetID),
			Amount:  bigint.NewFromInt64(120000),
			Address: payTo.Hash168(),
		}},
		FeePerKb:      chainparams.DefaultFeePerKB,
		CurrentHeight: 200,
		Account:       account,
	})
	require.NoError(t, err)
	require.NotEmpty(t, tx.Inputs)
	require.True(t, tx.Fee.Sign() > 0)
	require.Len(t, tx.Outputs, 2) // payment + change

	var totalOut bigint.BigInt
	for _, o := range tx.Outputs {
		totalOut = totalOut.Add(o.Amount)
	}
	require.Equal(t, "120000", tx.Outputs[0].Amount.String())
}

func TestCreateTxForOutputsInsufficientBalance(t *testing.T) {
	account := testAccount(t)
	g := New(bigint.Uint256(chainparams.ELAAssetID), txs.Asset{Name: "ELA"})
	g.AddUTXO(utxoOf(t, 100, 10), false)

	payTo, err := account.UnusedExternalAddress()
	require.NoError(t, err)

	_, err = g.CreateTxForOutputs(CreateTxForOutputsOptions{
		Type:    txs.TypeTransferAsset,
		Payload: &txs.EmptyPayload{},
		Outputs: []txs.Output{{
			AssetID: bigint.Uint256(chainparams.ELAAssetID),
			Amount:  bigint.NewFromInt64(100000),
			Address: payTo.Hash168(),
		}},
		FeePerKb:      chainparams.DefaultFeePerKB,
		CurrentHeight: 200,
		Account:       account,
	})
	require.Error(t, err)
	require.True(t, errs.Match(err, errs.KindInsufficientBalance))
}

func TestCreateTxForOutputsRejectsNonPositiveAmount(t *testing.T) {
	account := testAccount(t)
	g := New(bigint.Uint256(chainparams.ELAAssetID), txs.Asset{Name: "ELA"})

	payTo, err := account.UnusedExternalAddress()
	require.NoError(t, err)

	_, err = g.CreateTxForOutputs(CreateTxForOutputsOptions{
		Type:    txs.TypeTransferAsset,
		Payload: &txs.EmptyPayload{},
		Outputs: []txs.Output{{
			AssetID: bigint.Uint256(chainparams.ELAAssetID),
			Amount:  bigint.Zero,
			Address: payTo.Hash168(),
		}},
		FeePerKb:      chainparams.DefaultFeePerKB,
		CurrentHeight: 200,
		Account:       account,
	})
	require.Error(t, err)
	require.True(t, errs.Match(err, errs.KindCreateTransaction))
}

func TestConsolidateSweepsAllCandidates(t *testing.T) {
	account := testAccount(t)
	g := New(bigint.Uint256(chainparams.ELAAssetID), txs.Asset{Name: "ELA"})
	g.AddUTXO(utxoOf(t, 10000, 1), false)
	g.AddUTXO(utxoOf(t, 20000, 2), false)
	g.AddUTXO(utxoOf(t, 30000, 3), false)

	tx, err := g.Consolidate(account, 200, nil, chainparams.DefaultFeePerKB)
	require.NoError(t, err)
	require.Len(t, tx.Inputs, 3)
	require.Len(t, tx.Outputs, 1)
	require.True(t, tx.Outputs[0].Amount.Cmp(bigint.NewFromInt64(60000)) < 0)
}

func TestConsolidateNoCandidates(t *testing.T) {
	account := testAccount(t)
	g := New(bigint.Uint256(chainparams.ELAAssetID), txs.Asset{Name: "ELA"})

	_, err := g.Consolidate(account, 200, nil, chainparams.DefaultFeePerKB)
	require.Error(t, err)
	require.True(t, errs.Match(err, errs.KindInsufficientBalance))
}

func TestVoteExcludesConflictingPriorVote(t *testing.T) {
	account := testAccount(t)
	g := New(bigint.Uint256(chainparams.ELAAssetID), txs.Asset{Name: "ELA"})

	locked := utxoOf(t, 50000, 1)
	locked.Output.VoteContents = []txs.VoteContent{{Type: txs.VoteTypeDelegate}}
	g.AddUTXO(locked, false)
	g.AddUTXO(utxoOf(t, 80000, 1), false)

	tx, dropped, err := g.Vote(VoteOptions{
		Contents:      []txs.VoteContent{{Type: txs.VoteTypeDelegate, Candidates: []txs.CandidateVotes{{Candidate: []byte{1, 2, 3}, Votes: bigint.NewFromInt64(1)}}}},
		VoteType:      txs.VoteTypeDelegate,
		Account:       account,
		FeePerKb:      chainparams.DefaultFeePerKB,
		CurrentHeight: 200,
	})
	require.NoError(t, err)
	require.Len(t, dropped, 1)
	require.Len(t, tx.Inputs, 1)
	require.Equal(t, tx.Outputs[0].VoteContents[0].Type, txs.VoteTypeDelegate)
}
