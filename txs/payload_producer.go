package txs

import (
	"encoding/hex"

	"github.com/elaspv/spvwallet/bytestream"
)

// RegisterProducerPayload registers a block-producer (DPoS delegate)
// candidacy.
type RegisterProducerPayload struct {
	OwnerPublicKey []byte
	NodePublicKey  []byte
	NickName       string
	URL            string
	Location       uint64
	Address        string
	Signature      []byte
}

func (p *RegisterProducerPayload) Serialize(w *bytestream.Writer, payloadVersion byte) {
	w.WriteVarBytes(p.OwnerPublicKey)
	w.WriteVarBytes(p.NodePublicKey)
	w.WriteVarString(p.NickName)
	w.WriteVarString(p.URL)
	w.WriteUint64LE(p.Location)
	w.WriteVarString(p.Address)
	w.WriteVarBytes(p.Signature)
}

func (p *RegisterProducerPayload) Deserialize(r *bytestream.Reader, payloadVersion byte) error {
	var ok bool
	if p.OwnerPublicKey, ok = r.ReadVarBytes(); !ok {
		return r.Err()
	}
	if p.NodePublicKey, ok = r.ReadVarBytes(); !ok {
		return r.Err()
	}
	if p.NickName, ok = r.ReadVarString(); !ok {
		return r.Err()
	}
	if p.URL, ok = r.ReadVarString(); !ok {
		return r.Err()
	}
	if p.Location, ok = r.ReadUint64LE(); !ok {
		return r.Err()
	}
	if p.Address, ok = r.ReadVarString(); !ok {
		return r.Err()
	}
	if p.Signature, ok = r.ReadVarBytes(); !ok {
		return r.Err()
	}
	return nil
}

func (p *RegisterProducerPayload) ToJSON() interface{} {
	return struct {
		NickName string `json:"nickName"`
		URL      string `json:"url"`
	}{p.NickName, p.URL}
}

// CancelProducerPayload withdraws a previously-registered producer
// candidacy.
type CancelProducerPayload struct {
	OwnerPublicKey []byte
	Signature      []byte
}

func (p *CancelProducerPayload) Serialize(w *bytestream.Writer, payloadVersion byte) {
	w.WriteVarBytes(p.OwnerPublicKey)
	w.WriteVarBytes(p.Signature)
}

func (p *CancelProducerPayload) Deserialize(r *bytestream.Reader, payloadVersion byte) error {
	var ok bool
	if p.OwnerPublicKey, ok = r.ReadVarBytes(); !ok {
		return r.Err()
	}
	if p.Signature, ok = r.ReadVarBytes(); !ok {
		return r.Err()
	}
	return nil
}

func (p *CancelProducerPayload) ToJSON() interface{} {
	return struct {
		OwnerPublicKey string `json:"ownerPublicKey"`
	}{hex.EncodeToString(p.OwnerPublicKey)}
}
