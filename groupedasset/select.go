package groupedasset

import (
	"sort"

	"github.com/decred/dcrd/wire"
	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/chainparams"
	"github.com/elaspv/spvwallet/errs"
	"github.com/elaspv/spvwallet/keychain"
	"github.com/elaspv/spvwallet/txs"
)

// feeForSize rounds size up to the next kilobyte and multiplies by
// feePerKb, per spec §4.5 step 6: "fee = ceil(estimatedSize / 1000) *
// feePerKb".
func feeForSize(size int, feePerKb uint64) bigint.BigInt {
	kb := (size + 999) / 1000
	return bigint.NewFromInt64(int64(kb) * int64(feePerKb))
}

func newEstimatorFor(account *keychain.SubAccount) *sizeEstimator {
	est := newSizeEstimator()
	if account != nil && account.IsMultiSig() {
		est.useMultiSig(account.Threshold(), len(account.Cosigners()))
	}
	return est
}

// accumulate selects candidates in order, adding one input at a time
// and recomputing the fee-inclusive target after each addition — the
// literal reading of spec §4.5 step 6 ("after each input added,
// recompute the target; stop when totalIn ≥ target"), the same
// select/estimate/recompute shape as
// lnwallet/chanfunding/coin_select.go's CoinSelect loop, specialized to
// a single incremental pass instead of CoinSelect's restart-on-miss
// loop. est must already reflect every output the finished transaction
// will carry, including a provisional change output.
func accumulate(candidates []UTXO, outputSum bigint.BigInt, feePerKb uint64, est *sizeEstimator) (selected []UTXO, totalIn, fee bigint.BigInt, err error) {
	const op = "groupedasset.accumulate"

	totalIn = bigint.Zero
	target := outputSum
	for _, u := range candidates {
		selected = append(selected, u)
		totalIn = totalIn.Add(u.Output.Amount)
		est.AddInput()

		fee = feeForSize(est.Size(), feePerKb)
		target = outputSum.Add(fee)

		if totalIn.Cmp(target) >= 0 {
			return selected, totalIn, fee, nil
		}
	}

	shortfall := target.Sub(totalIn)
	return nil, bigint.Zero, bigint.Zero, errs.WithShortfall(op, shortfall.String())
}

func selectExact(candidates []UTXO, target bigint.BigInt) ([]UTXO, bigint.BigInt, error) {
	const op = "groupedasset.selectExact"

	var selected []UTXO
	totalIn := bigint.Zero
	for _, u := range candidates {
		selected = append(selected, u)
		totalIn = totalIn.Add(u.Output.Amount)
		if totalIn.Cmp(target) >= 0 {
			return selected, totalIn, nil
		}
	}
	shortfall := target.Sub(totalIn)
	return nil, bigint.Zero, errs.WithShortfall(op, shortfall.String())
}

func sumOutputs(outputs []txs.Output) bigint.BigInt {
	sum := bigint.Zero
	for _, o := range outputs {
		sum = sum.Add(o.Amount)
	}
	return sum
}

func sumUTXOs(utxos []UTXO) bigint.BigInt {
	sum := bigint.Zero
	for _, u := range utxos {
		sum = sum.Add(u.Output.Amount)
	}
	return sum
}

func (g *GroupedAsset) changeOutput(account *keychain.SubAccount, amount bigint.BigInt) (txs.Output, error) {
	const op = "groupedasset.changeOutput"

	addr, err := account.UnusedInternalAddress()
	if err != nil {
		return txs.Output{}, errs.E(op, errs.KindCreateTransaction, err)
	}
	return txs.Output{
		AssetID: g.AssetID,
		Amount:  amount,
		Address: addr.Hash168(),
	}, nil
}

// CreateTxForOutputsOptions bundles CreateTxForOutputs's parameters
// (spec §4.5).
type CreateTxForOutputsOptions struct {
	Type           txs.Type
	Payload        txs.Payload
	PayloadVersion byte
	Outputs        []txs.Output
	FromAddress    *bigint.Uint168
	Memo           string
	SendMax        bool

	FeePerKb        uint64
	CurrentHeight   uint32
	SpendingOutputs map[wire.OutPoint]struct{}
	Account         *keychain.SubAccount

	// ELAFeeAsset supplies the separate ELA-denominated fee input and
	// change when this GroupedAsset is not the native ELA asset (spec
	// §4.5 step 8). Left nil when g itself is the ELA asset.
	ELAFeeAsset *GroupedAsset
}

func isELAAsset(assetID bigint.Uint256) bool {
	return assetID == bigint.Uint256(chainparams.ELAAssetID)
}

// CreateTxForOutputs composes a spendable transaction paying
// opts.Outputs from this asset's UTXO pool, per spec §4.5.
func (g *GroupedAsset) CreateTxForOutputs(opts CreateTxForOutputsOptions) (*txs.Transaction, error) {
	const op = "groupedasset.CreateTxForOutputs"

	if len(opts.Outputs) == 0 {
		return nil, errs.E(op, errs.KindCreateTransaction)
	}
	for _, o := range opts.Outputs {
		if o.Amount.Sign() <= 0 || o.Address.IsZero() {
			return nil, errs.E(op, errs.KindCreateTransaction)
		}
	}

	candidates := g.Candidates(opts.CurrentHeight, opts.SpendingOutputs, opts.FromAddress)
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Output.Amount.Cmp(candidates[j].Output.Amount) > 0
	})

	outputs := make([]txs.Output, len(opts.Outputs))
	copy(outputs, opts.Outputs)
	outputSum := sumOutputs(outputs)

	payingFeeHere := isELAAsset(g.AssetID) || opts.ELAFeeAsset == nil

	tx := &txs.Transaction{
		Type:           opts.Type,
		Payload:        opts.Payload,
		PayloadVersion: opts.PayloadVersion,
	}
	if opts.Memo != "" {
		tx.Attributes = append(tx.Attributes, txs.Attribute{Usage: txs.AttrMemo, Data: []byte(opts.Memo)})
	}

	var fee bigint.BigInt

	switch {
	case opts.SendMax:
		if len(candidates) == 0 {
			return nil, errs.E(op, errs.KindInsufficientBalance)
		}
		est := newEstimatorFor(opts.Account)
		for range candidates {
			est.AddInput()
		}
		for range outputs {
			est.AddOutput()
		}
		fee = feeForSize(est.Size(), opts.FeePerKb)
		totalIn := sumUTXOs(candidates)
		if totalIn.Cmp(fee) <= 0 {
			return nil, errs.WithShortfall(op, fee.Sub(totalIn).String())
		}
		outputs[0].Amount = totalIn.Sub(fee)
		for _, u := range candidates {
			tx.Inputs = append(tx.Inputs, txs.Input{OutPoint: u.OutPoint()})
		}

	case payingFeeHere:
		est := newEstimatorFor(opts.Account)
		for range outputs {
			est.AddOutput()
		}
		est.AddOutput() // provisional change output
		selected, totalIn, f, err := accumulate(candidates, outputSum, opts.FeePerKb, est)
		if err != nil {
			return nil, err
		}
		fee = f
		for _, u := range selected {
			tx.Inputs = append(tx.Inputs, txs.Input{OutPoint: u.OutPoint()})
		}
		if change := totalIn.Sub(outputSum).Sub(fee); change.Sign() > 0 {
			changeOut, err := g.changeOutput(opts.Account, change)
			if err != nil {
				return nil, err
			}
			outputs = append(outputs, changeOut)
		}

	default:
		// Non-ELA asset: select exactly enough of this asset to cover
		// the requested outputs, with no fee folded in — the ELA fee
		// asset pays the network fee separately (spec §4.5 step 8).
		selected, totalIn, err := selectExact(candidates, outputSum)
		if err != nil {
			return nil, err
		}
		for _, u := range selected {
			tx.Inputs = append(tx.Inputs, txs.Input{OutPoint: u.OutPoint()})
		}
		if change := totalIn.Sub(outputSum); change.Sign() > 0 {
			changeOut, err := g.changeOutput(opts.Account, change)
			if err != nil {
				return nil, err
			}
			outputs = append(outputs, changeOut)
		}

		feeEst := newEstimatorFor(opts.Account)
		for range tx.Inputs {
			feeEst.AddInput()
		}
		for range outputs {
			feeEst.AddOutput()
		}
		feeEst.AddOutput() // provisional ELA change output

		feeCandidates := opts.ELAFeeAsset.Candidates(opts.CurrentHeight, opts.SpendingOutputs, nil)
		sort.Slice(feeCandidates, func(i, j int) bool {
			return feeCandidates[i].Output.Amount.Cmp(feeCandidates[j].Output.Amount) > 0
		})
		feeSelected, feeTotalIn, f, err := accumulate(feeCandidates, bigint.Zero, opts.FeePerKb, feeEst)
		if err != nil {
			return nil, errs.E(op, errs.KindInsufficientBalance, err)
		}
		fee = f
		for _, u := range feeSelected {
			tx.Inputs = append(tx.Inputs, txs.Input{OutPoint: u.OutPoint()})
		}
		if feeChange := feeTotalIn.Sub(fee); feeChange.Sign() > 0 {
			changeOut, err := opts.ELAFeeAsset.changeOutput(opts.Account, feeChange)
			if err != nil {
				return nil, err
			}
			outputs = append(outputs, changeOut)
		}
	}

	for i := range outputs {
		outputs[i].FixedIndex = uint16(i)
	}
	tx.Outputs = outputs
	tx.Fee = fee

	return tx, nil
}

// Consolidate sweeps every candidate UTXO of this asset into a single
// output paying the wallet's own address, minus fee (spec §4.5
// "Consolidate").
func (g *GroupedAsset) Consolidate(account *keychain.SubAccount, currentHeight uint32, spendingOutputs map[wire.OutPoint]struct{}, feePerKb uint64) (*txs.Transaction, error) {
	const op = "groupedasset.Consolidate"

	candidates := g.Candidates(currentHeight, spendingOutputs, nil)
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].BlockHeight < candidates[j].BlockHeight
	})
	if len(candidates) == 0 {
		return nil, errs.E(op, errs.KindInsufficientBalance)
	}

	receive, err := account.UnusedExternalAddress()
	if err != nil {
		return nil, errs.E(op, errs.KindCreateTransaction, err)
	}

	est := newEstimatorFor(account)
	for range candidates {
		est.AddInput()
	}
	est.AddOutput()
	fee := feeForSize(est.Size(), feePerKb)
	totalIn := sumUTXOs(candidates)
	if totalIn.Cmp(fee) <= 0 {
		return nil, errs.WithShortfall(op, fee.Sub(totalIn).String())
	}

	tx := &txs.Transaction{Type: txs.TypeTransferAsset, Payload: &txs.EmptyPayload{}}
	for _, u := range candidates {
		tx.Inputs = append(tx.Inputs, txs.Input{OutPoint: u.OutPoint()})
	}
	tx.Outputs = []txs.Output{{
		AssetID:    g.AssetID,
		Amount:     totalIn.Sub(fee),
		Address:    receive.Hash168(),
		FixedIndex: 0,
	}}
	tx.Fee = fee
	return tx, nil
}

// VoteContentDrop records a candidate UTXO excluded from a Vote
// composition because its existing vote lock forbade reuse.
type VoteContentDrop struct {
	UTXO  UTXO
	Prior txs.VoteContent
}

// VoteOptions bundles Vote's parameters (spec §4.5 "Vote").
type VoteOptions struct {
	Contents        []txs.VoteContent
	VoteType        txs.VoteType
	Account         *keychain.SubAccount
	FeePerKb        uint64
	CurrentHeight   uint32
	SpendingOutputs map[wire.OutPoint]struct{}
}

func votesConflict(existing []txs.VoteContent, requested txs.VoteType) *txs.VoteContent {
	for i := range existing {
		if existing[i].Type == requested {
			return &existing[i]
		}
	}
	return nil
}

// Vote composes a vote transaction: the supplied VoteContent attaches
// to the first output, and any candidate UTXO whose existing vote lock
// forbids reuse under the requested vote type is excluded, with the
// caller told which prior votes were dropped (spec §4.5 "Vote").
func (g *GroupedAsset) Vote(opts VoteOptions) (*txs.Transaction, []VoteContentDrop, error) {
	const op = "groupedasset.Vote"

	g.mu.Lock()
	all := append([]UTXO(nil), g.voteUTXOs...)
	all = append(all, g.utxos...)
	g.mu.Unlock()

	var (
		candidates []UTXO
		dropped    []VoteContentDrop
	)
	for _, u := range all {
		if !u.Mature(opts.CurrentHeight) && u.BlockHeight != chainparams.TxUnconfirmed {
			continue
		}
		if _, spending := opts.SpendingOutputs[u.OutPoint()]; spending {
			continue
		}
		if prior := votesConflict(u.Output.VoteContents, opts.VoteType); prior != nil {
			dropped = append(dropped, VoteContentDrop{UTXO: u, Prior: *prior})
			continue
		}
		candidates = append(candidates, u)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Output.Amount.Cmp(candidates[j].Output.Amount) > 0
	})

	if len(candidates) == 0 {
		return nil, nil, errs.E(op, errs.KindInsufficientBalance)
	}

	est := newEstimatorFor(opts.Account)
	est.AddOutput()
	selected, totalIn, fee, err := accumulate(candidates, bigint.Zero, opts.FeePerKb, est)
	if err != nil {
		return nil, nil, err
	}

	receive, err := opts.Account.UnusedExternalAddress()
	if err != nil {
		return nil, nil, errs.E(op, errs.KindCreateTransaction, err)
	}

	tx := &txs.Transaction{Type: txs.TypeVote, Payload: &txs.EmptyPayload{}}
	for _, u := range selected {
		tx.Inputs = append(tx.Inputs, txs.Input{OutPoint: u.OutPoint()})
	}
	tx.Outputs = []txs.Output{{
		AssetID:      g.AssetID,
		Amount:       totalIn.Sub(fee),
		Address:      receive.Hash168(),
		VoteContents: opts.Contents,
	}}
	tx.Fee = fee
	return tx, dropped, nil
}

// CreateRetrieveDepositTx spends deposit-address UTXOs back to a normal
// address (spec §4.5 "CreateRetrieveDepositTx").
func (g *GroupedAsset) CreateRetrieveDepositTx(account *keychain.SubAccount, depositAddress bigint.Uint168, currentHeight uint32, spendingOutputs map[wire.OutPoint]struct{}, feePerKb uint64) (*txs.Transaction, error) {
	const op = "groupedasset.CreateRetrieveDepositTx"

	candidates := g.Candidates(currentHeight, spendingOutputs, &depositAddress)
	if len(candidates) == 0 {
		return nil, errs.E(op, errs.KindInsufficientBalance)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Output.Amount.Cmp(candidates[j].Output.Amount) > 0
	})

	receive, err := account.UnusedExternalAddress()
	if err != nil {
		return nil, errs.E(op, errs.KindCreateTransaction, err)
	}

	est := newEstimatorFor(account)
	est.AddOutput()
	selected, totalIn, fee, err := accumulate(candidates, bigint.Zero, feePerKb, est)
	if err != nil {
		return nil, err
	}

	tx := &txs.Transaction{Type: txs.TypeReturnDepositCoin, Payload: &txs.EmptyPayload{}}
	for _, u := range selected {
		tx.Inputs = append(tx.Inputs, txs.Input{OutPoint: u.OutPoint()})
	}
	tx.Outputs = []txs.Output{{
		AssetID: g.AssetID,
		Amount:  totalIn.Sub(fee),
		Address: receive.Hash168(),
	}}
	tx.Fee = fee
	return tx, nil
}
