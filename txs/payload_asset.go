package txs

import (
	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/bytestream"
)

// AssetType classifies what a registered asset represents.
type AssetType uint8

const (
	AssetTypeToken AssetType = 0x00
	AssetTypeShare AssetType = 0x01
)

// AssetRecordType controls whether an asset's total supply is fixed at
// registration or can grow (unbalanced), per original_source's asset
// model.
type AssetRecordType uint8

const (
	AssetRecordBalance   AssetRecordType = 0x00
	AssetRecordUnbalance AssetRecordType = 0x01
)

// Asset is the registered-asset record (spec §6 Asset table; fields
// supplemented from original_source since the distilled spec only names
// the table, not its columns).
type Asset struct {
	Name        string
	Description string
	Precision   byte
	AssetType   AssetType
	RecordType  AssetRecordType
}

// RegisterAssetPayload registers a new asset, minting Amount units to
// Controller (spec §4.6: "if any registerAsset payload is confirmed,
// installs the new asset group").
type RegisterAssetPayload struct {
	Asset      Asset
	Amount     bigint.BigInt
	Controller bigint.Uint168
}

func (p *RegisterAssetPayload) Serialize(w *bytestream.Writer, payloadVersion byte) {
	w.WriteVarString(p.Asset.Name)
	w.WriteVarString(p.Asset.Description)
	w.WriteUint8(p.Asset.Precision)
	w.WriteUint8(uint8(p.Asset.AssetType))
	w.WriteUint8(uint8(p.Asset.RecordType))
	w.WriteVarString(p.Amount.String())
	w.WriteBytes(p.Controller[:])
}

func (p *RegisterAssetPayload) Deserialize(r *bytestream.Reader, payloadVersion byte) error {
	var ok bool
	if p.Asset.Name, ok = r.ReadVarString(); !ok {
		return r.Err()
	}
	if p.Asset.Description, ok = r.ReadVarString(); !ok {
		return r.Err()
	}
	var u8 uint8
	if u8, ok = r.ReadUint8(); !ok {
		return r.Err()
	}
	p.Asset.Precision = u8
	if u8, ok = r.ReadUint8(); !ok {
		return r.Err()
	}
	p.Asset.AssetType = AssetType(u8)
	if u8, ok = r.ReadUint8(); !ok {
		return r.Err()
	}
	p.Asset.RecordType = AssetRecordType(u8)

	amountStr, ok := r.ReadVarString()
	if !ok {
		return r.Err()
	}
	amount, parsed := bigint.NewFromString(amountStr)
	if !parsed {
		return r.Err()
	}
	p.Amount = amount

	ctrl, ok := r.ReadBytes(21)
	if !ok {
		return r.Err()
	}
	copy(p.Controller[:], ctrl)
	return nil
}

func (p *RegisterAssetPayload) ToJSON() interface{} {
	return struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Precision   byte   `json:"precision"`
		Amount      string `json:"amount"`
	}{p.Asset.Name, p.Asset.Description, p.Asset.Precision, p.Amount.String()}
}
