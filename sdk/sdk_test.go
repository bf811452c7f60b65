package sdk

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/chainparams"
	"github.com/elaspv/spvwallet/txs"
	"github.com/stretchr/testify/require"
)

func sampleTx(t *testing.T) *txs.Transaction {
	t.Helper()

	tx := &txs.Transaction{
		Type:    txs.TypeTransferAsset,
		Payload: &txs.EmptyPayload{},
		Outputs: []txs.Output{{
			AssetID: bigint.Uint256(chainparams.ELAAssetID),
			Amount:  bigint.NewFromInt64(5000),
		}},
		Fee: bigint.NewFromInt64(10000),
	}
	return tx
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tx := sampleTx(t)

	env, err := Encode(tx, chainparams.ChainELA)
	require.NoError(t, err)
	require.Equal(t, "base64", env.Algorithm)
	require.Equal(t, "ELA", env.ChainID)
	require.Equal(t, int64(10000), env.Fee)
	require.Len(t, env.ID, 8)

	got, err := Decode(env)
	require.NoError(t, err)

	if got.Hash() != tx.Hash() {
		t.Fatalf("round-trip hash mismatch\nwant: %s\ngot:  %s", spew.Sdump(tx), spew.Sdump(got))
	}
}

func TestUnmarshalEnvelopeRejectsGarbage(t *testing.T) {
	_, err := UnmarshalEnvelope([]byte("not json"))
	require.Error(t, err)
}

func TestDecodeRejectsUnknownAlgorithm(t *testing.T) {
	_, err := Decode(&Envelope{Algorithm: "rot13", Data: ""})
	require.Error(t, err)
}
