package main

import (
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/decred/dcrd/chaincfg/v3"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/hdkeychain/v3"
	"github.com/jedib0t/go-pretty/table"
	"github.com/urfave/cli"

	"github.com/elaspv/spvwallet/address"
	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/chainparams"
	"github.com/elaspv/spvwallet/config"
	"github.com/elaspv/spvwallet/groupedasset"
	"github.com/elaspv/spvwallet/keychain"
	"github.com/elaspv/spvwallet/txs"
	"github.com/elaspv/spvwallet/wallet"
)

// noopListener discards every wallet event; spvwalletctl is a one-shot
// tool, not a long-running daemon with subscribers.
type noopListener struct{}

func (noopListener) BalanceChanged(bigint.Uint256, bigint.BigInt)            {}
func (noopListener) TxAdded(*txs.Transaction)                                {}
func (noopListener) TxUpdated(*txs.Transaction)                              {}
func (noopListener) TxDeleted(bigint.Uint256, bool, bool)                    {}
func (noopListener) CoinBaseTxAdded(*txs.Transaction)                        {}
func (noopListener) CoinBaseTxUpdated([]bigint.Uint256, uint32, uint32)      {}
func (noopListener) AssetRegistered(bigint.Uint256, txs.Asset, bigint.BigInt) {}

// openWallet loads the CLI's config, derives the seed-backed SubAccount
// from a seed computed from the datadir path by seedFor (no seed file is
// read or written, so repeated invocations of this offline demo tool see
// the same addresses), and builds an empty Wallet ready for
// RegisterTransaction replay.
func openWallet(ctx *cli.Context) (*wallet.Wallet, *keychain.SubAccount, error) {
	cfg, err := config.Load(ctx.Args())
	if err != nil {
		return nil, nil, err
	}

	seed := seedFor(cfg.DataDir)
	chain, err := keychain.NewFromSeed(seed, chaincfg.MainNetParams())
	if err != nil {
		return nil, nil, err
	}

	account, err := keychain.NewMultiAddress(chain, chainparams.PrefixStandard)
	if err != nil {
		return nil, nil, err
	}

	w := wallet.New(cfg.ChainID(), "spvwalletctl", account, cfg.FeePerKB, noopListener{})
	w.InstallAsset(groupedasset.New(bigint.Uint256(chainparams.ELAAssetID), txs.Asset{Name: "ELA"}))

	return w, account, nil
}

// seedFor derives a stable demo seed from the datadir path so repeated
// invocations against the same --datadir produce the same address book,
// without requiring a real key-management flow for this CLI walkthrough.
func seedFor(dataDir string) []byte {
	sum := sha256.Sum256([]byte("spvwalletctl-demo-seed|" + dataDir))
	seed := make([]byte, hdkeychain.RecommendedSeedLen)
	for i := range seed {
		seed[i] = sum[i%len(sum)]
	}
	return seed
}

var balanceCommand = cli.Command{
	Name:   "balance",
	Usage:  "Display the wallet's balance for every known asset.",
	Action: actionDecorator(runBalance),
}

func runBalance(ctx *cli.Context) error {
	w, _, err := openWallet(ctx)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Asset ID", "Balance"})
	for _, assetID := range w.AssetIDs() {
		g := w.GroupedAsset(assetID)
		t.AppendRow(table.Row{assetID.String(), formatBalance(assetID, g.Balance(w.BlockHeight()))})
	}
	t.Render()
	return nil
}

// formatBalance renders bal in whole-coin units for the chain's own
// native asset using dcrutil.Amount (the teacher's own base-unit
// formatting type), whose String() prints eight-decimal whole-coin units
// followed by dcrutil's own "DCR" unit suffix; every other asset's balance has no fixed decimal
// convention this CLI can assume, so it prints the raw integer instead.
func formatBalance(assetID bigint.Uint256, bal bigint.BigInt) string {
	n, ok := bal.Int64()
	if assetID != bigint.Uint256(chainparams.ELAAssetID) || !ok {
		return bal.String()
	}
	return dcrutil.Amount(n).String()
}

var receiveCommand = cli.Command{
	Name:   "receive",
	Usage:  "Print the next unused receive address.",
	Action: actionDecorator(runReceive),
}

func runReceive(ctx *cli.Context) error {
	_, account, err := openWallet(ctx)
	if err != nil {
		return err
	}
	addr, err := account.UnusedExternalAddress()
	if err != nil {
		return err
	}
	fmt.Println(addr.String())
	return nil
}

var sendCommand = cli.Command{
	Name:      "send",
	Usage:     "Compose (but do not broadcast) a transaction paying an address.",
	ArgsUsage: "address amount",
	Action:    actionDecorator(runSend),
}

func runSend(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 2 {
		return cli.ShowCommandHelp(ctx, "send")
	}

	addr, err := address.FromString(args.Get(0))
	if err != nil {
		return err
	}
	amount, ok := bigint.NewFromString(args.Get(1))
	if !ok {
		return fmt.Errorf("spvwalletctl: invalid amount %q", args.Get(1))
	}

	w, account, err := openWallet(ctx)
	if err != nil {
		return err
	}

	g := w.GroupedAsset(bigint.Uint256(chainparams.ELAAssetID))
	tx, err := g.CreateTxForOutputs(groupedasset.CreateTxForOutputsOptions{
		Type:          txs.TypeTransferAsset,
		Payload:       &txs.EmptyPayload{},
		Outputs:       []txs.Output{{AssetID: g.AssetID, Amount: amount, Address: addr.Hash168()}},
		FeePerKb:      chainparams.DefaultFeePerKB,
		CurrentHeight: w.BlockHeight(),
		Account:       account,
	})
	if err != nil {
		return err
	}

	fmt.Printf("composed tx %s, fee %s\n", tx.Hash(), tx.Fee)
	return nil
}

var consolidateCommand = cli.Command{
	Name:   "consolidate",
	Usage:  "Sweep every spendable UTXO into a single output back to this wallet.",
	Action: actionDecorator(runConsolidate),
}

func runConsolidate(ctx *cli.Context) error {
	w, account, err := openWallet(ctx)
	if err != nil {
		return err
	}

	g := w.GroupedAsset(bigint.Uint256(chainparams.ELAAssetID))
	tx, err := g.Consolidate(account, w.BlockHeight(), w.SpendingOutputsSnapshot(), chainparams.DefaultFeePerKB)
	if err != nil {
		return err
	}

	fmt.Printf("composed consolidation tx %s, %d inputs, fee %s\n", tx.Hash(), len(tx.Inputs), tx.Fee)
	return nil
}
