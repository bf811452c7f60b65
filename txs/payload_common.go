package txs

import "github.com/elaspv/spvwallet/bytestream"

// EmptyPayload backs transaction types whose semantic content lives
// entirely in their inputs/outputs/attributes (TransferAsset, Vote,
// Record): there is nothing beyond the type tag to serialize.
type EmptyPayload struct{}

func (p *EmptyPayload) Serialize(w *bytestream.Writer, payloadVersion byte) {}

func (p *EmptyPayload) Deserialize(r *bytestream.Reader, payloadVersion byte) error {
	return nil
}

func (p *EmptyPayload) ToJSON() interface{} {
	return struct{}{}
}

// CoinBasePayload carries the single free-form content field a coinbase
// transaction's payload holds (typically the block-producer's identity
// note).
type CoinBasePayload struct {
	Content []byte
}

func (p *CoinBasePayload) Serialize(w *bytestream.Writer, payloadVersion byte) {
	w.WriteVarBytes(p.Content)
}

func (p *CoinBasePayload) Deserialize(r *bytestream.Reader, payloadVersion byte) error {
	b, ok := r.ReadVarBytes()
	if !ok {
		return r.Err()
	}
	p.Content = b
	return nil
}

func (p *CoinBasePayload) ToJSON() interface{} {
	return struct {
		Content string `json:"content"`
	}{Content: string(p.Content)}
}
