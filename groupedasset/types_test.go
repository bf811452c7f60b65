package groupedasset

import (
	"testing"

	"github.com/decred/dcrd/wire"
	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/chainparams"
	"github.com/elaspv/spvwallet/txs"
	"github.com/stretchr/testify/require"
)

func coinbaseUTXOOf(t *testing.T, amount int64, height uint32) UTXO {
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

// Spec §8 scenario 1: receive a coinbase credit of 100,000,000 at height 10,
// then GetBalance at height 110 must report it spendable.
func TestBalanceCountsMaturedCoinbase(t *testing.T) {
	g := New(bigint.Uint256(chainparams.ELAAssetID), txs.Asset{Name: "ELA"})
	g.AddUTXO(coinbaseUTXOOf(t, 100000000, 10), true)

	require.Equal(t, "0", g.Balance(10).String())
	require.Equal(t, "0", g.Balance(109).String())
	require.Equal(t, "100000000", g.Balance(110).String())
}

func TestCandidatesIncludesMaturedCoinbase(t *testing.T) {
	g := New(bigint.Uint256(chainparams.ELAAssetID), txs.Asset{Name: "ELA"})
	g.AddUTXO(coinbaseUTXOOf(t, 100000000, 10), true)

	require.Empty(t, g.Candidates(109, nil, nil))

	candidates := g.Candidates(110, nil, nil)
	require.Len(t, candidates, 1)
	require.Equal(t, "100000000", candidates[0].Output.Amount.String())
}

func TestMatureCoinbaseCandidatesExcludesSpending(t *testing.T) {
	g := New(bigint.Uint256(chainparams.ELAAssetID), txs.Asset{Name: "ELA"})
	u := coinbaseUTXOOf(t, 100000000, 10)
	g.AddUTXO(u, true)

	spending := map[wire.OutPoint]struct{}{u.OutPoint(): {}}
	require.Empty(t, g.MatureCoinbaseCandidates(110, spending))
	require.Len(t, g.MatureCoinbaseCandidates(110, nil), 1)
}
