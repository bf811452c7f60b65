package txs

import (
	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/bytestream"
)

// TransferCrossChainPayload moves value from the main chain to a side
// chain, one (address, amount) pair per output consumed.
type TransferCrossChainPayload struct {
	Addresses     []string
	Amounts       []bigint.BigInt
	AssetIDs      []bigint.Uint256
}

func (p *TransferCrossChainPayload) Serialize(w *bytestream.Writer, payloadVersion byte) {
	w.WriteVarUint(uint64(len(p.Addresses)))
	for i, addr := range p.Addresses {
		w.WriteVarString(addr)
		w.WriteVarString(p.Amounts[i].String())
		w.WriteBytes(p.AssetIDs[i][:])
	}
}

func (p *TransferCrossChainPayload) Deserialize(r *bytestream.Reader, payloadVersion byte) error {
	n, ok := r.ReadVarUint()
	if !ok {
		return r.Err()
	}
	p.Addresses = make([]string, 0, n)
	p.Amounts = make([]bigint.BigInt, 0, n)
	p.AssetIDs = make([]bigint.Uint256, 0, n)
	for i := uint64(0); i < n; i++ {
		addr, ok := r.ReadVarString()
		if !ok {
			return r.Err()
		}
		amtStr, ok := r.ReadVarString()
		if !ok {
			return r.Err()
		}
		amt, parsed := bigint.NewFromString(amtStr)
		if !parsed {
			return r.Err()
		}
		assetBytes, ok := r.ReadBytes(32)
		if !ok {
			return r.Err()
		}
		var assetID bigint.Uint256
		copy(assetID[:], assetBytes)

		p.Addresses = append(p.Addresses, addr)
		p.Amounts = append(p.Amounts, amt)
		p.AssetIDs = append(p.AssetIDs, assetID)
	}
	return nil
}

func (p *TransferCrossChainPayload) ToJSON() interface{} {
	return struct {
		Addresses []string `json:"addresses"`
	}{p.Addresses}
}

// WithdrawFromSideChainPayload moves value from a side chain back to the
// main chain, referencing the side-chain transactions being withdrawn.
// Deposit-coin retrieval (CreateRetrieveDepositTx) does not use it; that
// transaction carries an EmptyPayload.
type WithdrawFromSideChainPayload struct {
	BlockHeight         uint32
	GenesisBlockAddress string
	SideChainTxHashes   []bigint.Uint256
}

func (p *WithdrawFromSideChainPayload) Serialize(w *bytestream.Writer, payloadVersion byte) {
	w.WriteUint32LE(p.BlockHeight)
	w.WriteVarString(p.GenesisBlockAddress)
	w.WriteVarUint(uint64(len(p.SideChainTxHashes)))
	for _, h := range p.SideChainTxHashes {
		w.WriteBytes(h[:])
	}
}

func (p *WithdrawFromSideChainPayload) Deserialize(r *bytestream.Reader, payloadVersion byte) error {
	var ok bool
	if p.BlockHeight, ok = r.ReadUint32LE(); !ok {
		return r.Err()
	}
	if p.GenesisBlockAddress, ok = r.ReadVarString(); !ok {
		return r.Err()
	}
	n, ok := r.ReadVarUint()
	if !ok {
		return r.Err()
	}
	p.SideChainTxHashes = make([]bigint.Uint256, 0, n)
	for i := uint64(0); i < n; i++ {
		b, ok := r.ReadBytes(32)
		if !ok {
			return r.Err()
		}
		var h bigint.Uint256
		copy(h[:], b)
		p.SideChainTxHashes = append(p.SideChainTxHashes, h)
	}
	return nil
}

func (p *WithdrawFromSideChainPayload) ToJSON() interface{} {
	return struct {
		BlockHeight uint32 `json:"blockHeight"`
	}{p.BlockHeight}
}
