package txs

import (
	"encoding/hex"

	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/bytestream"
)

// CRCProposalType classifies what a CR council proposal asks for
// (normal budget request, upgrade-code, secretary-general change, ...).
type CRCProposalType uint16

const (
	CRCProposalNormal           CRCProposalType = 0x0000
	CRCProposalELIP             CRCProposalType = 0x0100
	CRCProposalSecretaryGeneral CRCProposalType = 0x0004
)

// CRCProposalVersion01 is the payloadVersion at which CRSponsorDID/
// CRSignature were added to the proposal payload (spec §4.4: "the
// payload decoder selects fields by version (e.g., CR proposals added
// crSponsorDID in a later version)"). Version 0 payloads carry neither
// field.
const CRCProposalVersion01 byte = 0x01

// CRCProposalPayload carries a CR council budget proposal through its
// two signing stages: the sponsor signs the unsigned body, then the CR
// sponsor DID co-signs over the sponsor-signed body (original_source's
// CRCProposal SerializeSponsorSigned / Serialize split).
type CRCProposalPayload struct {
	Type             CRCProposalType
	SponsorPublicKey []byte
	DraftHash        bigint.Uint256
	Budgets          []bigint.BigInt
	Recipient        bigint.Uint168
	Signature        []byte
	CRSponsorDID     bigint.Uint168
	CRSignature      []byte
}

func (p *CRCProposalPayload) serializeUnsigned(w *bytestream.Writer) {
	w.WriteUint16LE(uint16(p.Type))
	w.WriteVarBytes(p.SponsorPublicKey)
	w.WriteBytes(p.DraftHash[:])
	w.WriteVarUint(uint64(len(p.Budgets)))
	for _, b := range p.Budgets {
		n, _ := b.Int64()
		w.WriteUint64LE(uint64(n))
	}
	w.WriteBytes(p.Recipient[:])
}

func (p *CRCProposalPayload) deserializeUnsigned(r *bytestream.Reader) error {
	typ, ok := r.ReadUint16LE()
	if !ok {
		return r.Err()
	}
	p.Type = CRCProposalType(typ)

	if p.SponsorPublicKey, ok = r.ReadVarBytes(); !ok {
		return r.Err()
	}

	draftHash, ok := r.ReadBytes(32)
	if !ok {
		return r.Err()
	}
	copy(p.DraftHash[:], draftHash)

	n, ok := r.ReadVarUint()
	if !ok {
		return r.Err()
	}
	p.Budgets = make([]bigint.BigInt, 0, n)
	for i := uint64(0); i < n; i++ {
		v, ok := r.ReadUint64LE()
		if !ok {
			return r.Err()
		}
		p.Budgets = append(p.Budgets, bigint.NewFromInt64(int64(v)))
	}

	recipient, ok := r.ReadBytes(21)
	if !ok {
		return r.Err()
	}
	copy(p.Recipient[:], recipient)
	return nil
}

// Serialize writes the CR-sponsor-signed payload: unsigned body, sponsor
// signature, and — for payloadVersion >= CRCProposalVersion01 only — the
// CR sponsor DID and its signature.
func (p *CRCProposalPayload) Serialize(w *bytestream.Writer, payloadVersion byte) {
	p.serializeUnsigned(w)
	w.WriteVarBytes(p.Signature)
	if payloadVersion >= CRCProposalVersion01 {
		w.WriteBytes(p.CRSponsorDID[:])
		w.WriteVarBytes(p.CRSignature)
	}
}

func (p *CRCProposalPayload) Deserialize(r *bytestream.Reader, payloadVersion byte) error {
	if err := p.deserializeUnsigned(r); err != nil {
		return err
	}
	var ok bool
	if p.Signature, ok = r.ReadVarBytes(); !ok {
		return r.Err()
	}
	if payloadVersion < CRCProposalVersion01 {
		return nil
	}
	crSponsorDID, ok := r.ReadBytes(21)
	if !ok {
		return r.Err()
	}
	copy(p.CRSponsorDID[:], crSponsorDID)
	if p.CRSignature, ok = r.ReadVarBytes(); !ok {
		return r.Err()
	}
	return nil
}

func (p *CRCProposalPayload) ToJSON() interface{} {
	budgets := make([]string, len(p.Budgets))
	for i, b := range p.Budgets {
		budgets[i] = b.String()
	}
	return struct {
		Type             CRCProposalType `json:"type"`
		SponsorPublicKey string          `json:"sponsorPublicKey"`
		DraftHash        string          `json:"draftHash"`
		Budgets          []string        `json:"budgets"`
		Recipient        string          `json:"recipient"`
		CRSponsorDID     string          `json:"crSponsorDID"`
	}{
		p.Type,
		hex.EncodeToString(p.SponsorPublicKey),
		p.DraftHash.String(),
		budgets,
		p.Recipient.String(),
		p.CRSponsorDID.String(),
	}
}
