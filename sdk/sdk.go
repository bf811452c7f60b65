// Package sdk implements the public façade's JSON envelope (spec §6
// "Encoded transaction envelope"): the boundary format the CLI/SDK glue
// exchanges with callers outside this module, translating between it and
// the internal txs.Transaction/bytestream representation.
package sdk

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"

	"github.com/elaspv/spvwallet/bytestream"
	"github.com/elaspv/spvwallet/chainparams"
	"github.com/elaspv/spvwallet/errs"
	"github.com/elaspv/spvwallet/txs"
)

// Envelope is the wire shape of spec §6's JSON envelope.
type Envelope struct {
	Algorithm string `json:"Algorithm"`
	ID        string `json:"ID"`
	Data      string `json:"Data"`
	ChainID   string `json:"ChainID"`
	Fee       int64  `json:"Fee"`
}

// Encode serializes tx (with programs) and wraps it in the envelope spec
// §6 defines, for chainID.
func Encode(tx *txs.Transaction, chainID chainparams.ChainID) (*Envelope, error) {
	const op = "sdk.Encode"

	fee, ok := tx.Fee.Int64()
	if !ok {
		return nil, errs.E(op, errs.KindInvalidArgument)
	}

	hash := tx.Hash()
	idHex := hex.EncodeToString(hash[:4])

	return &Envelope{
		Algorithm: "base64",
		ID:        idHex,
		Data:      base64.StdEncoding.EncodeToString(tx.Bytes()),
		ChainID:   string(chainID),
		Fee:       fee,
	}, nil
}

// Decode unwraps env, base64-decoding and deserializing its Data field
// back into a txs.Transaction.
func Decode(env *Envelope) (*txs.Transaction, error) {
	const op = "sdk.Decode"

	if env.Algorithm != "base64" {
		return nil, errs.E(op, errs.KindInvalidArgument)
	}

	raw, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, errs.E(op, errs.KindInvalidArgument, err)
	}

	r := bytestream.NewReader(raw)
	tx, err := txs.Deserialize(r)
	if err != nil {
		return nil, errs.E(op, errs.KindJSONArrayError, err)
	}
	return tx, nil
}

// MarshalJSON renders env as the flat JSON object the SDK boundary
// expects.
func (env *Envelope) MarshalJSON() ([]byte, error) {
	type alias Envelope
	return json.Marshal((*alias)(env))
}

// UnmarshalEnvelope parses raw JSON bytes into an Envelope, surfacing a
// KindJSONArrayError on malformed input per spec §7.
func UnmarshalEnvelope(raw []byte) (*Envelope, error) {
	const op = "sdk.UnmarshalEnvelope"

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errs.E(op, errs.KindJSONArrayError, err)
	}
	return &env, nil
}
