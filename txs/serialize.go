package txs

import (
	"crypto/sha256"
	"fmt"

	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/bytestream"
)

func (a *Attribute) serialize(w *bytestream.Writer) {
	w.WriteUint8(uint8(a.Usage))
	w.WriteVarBytes(a.Data)
}

func (a *Attribute) deserialize(r *bytestream.Reader) error {
	usage, ok := r.ReadUint8()
	if !ok {
		return r.Err()
	}
	a.Usage = AttributeUsage(usage)
	if a.Data, ok = r.ReadVarBytes(); !ok {
		return r.Err()
	}
	return nil
}

func (in *Input) serialize(w *bytestream.Writer) {
	w.WriteBytes(in.Hash[:])
	w.WriteUint32LE(in.Index)
	w.WriteUint32LE(in.Sequence)
}

func (in *Input) deserialize(r *bytestream.Reader) error {
	h, ok := r.ReadBytes(32)
	if !ok {
		return r.Err()
	}
	copy(in.Hash[:], h)
	if in.Index, ok = r.ReadUint32LE(); !ok {
		return r.Err()
	}
	if in.Sequence, ok = r.ReadUint32LE(); !ok {
		return r.Err()
	}
	return nil
}

func (o *Output) serialize(w *bytestream.Writer) {
	w.WriteBytes(o.AssetID[:])
	w.WriteVarString(o.Amount.String())
	w.WriteBytes(o.Address[:])
	w.WriteUint32LE(o.OutputLock)
	w.WriteUint16LE(o.FixedIndex)
	SerializeVoteOutputs(w, o.VoteContents)
}

func (o *Output) deserialize(r *bytestream.Reader) error {
	assetID, ok := r.ReadBytes(32)
	if !ok {
		return r.Err()
	}
	copy(o.AssetID[:], assetID)

	amountStr, ok := r.ReadVarString()
	if !ok {
		return r.Err()
	}
	amount, parsed := bigint.NewFromString(amountStr)
	if !parsed {
		return fmt.Errorf("txs: output has malformed amount %q", amountStr)
	}
	o.Amount = amount

	address, ok := r.ReadBytes(21)
	if !ok {
		return r.Err()
	}
	copy(o.Address[:], address)

	if o.OutputLock, ok = r.ReadUint32LE(); !ok {
		return r.Err()
	}
	if o.FixedIndex, ok = r.ReadUint16LE(); !ok {
		return r.Err()
	}

	votes, err := DeserializeVoteOutputs(r)
	if err != nil {
		return err
	}
	o.VoteContents = votes
	return nil
}

func (p *Program) serialize(w *bytestream.Writer) {
	w.WriteVarBytes(p.Code)
	w.WriteVarBytes(p.Parameter)
}

func (p *Program) deserialize(r *bytestream.Reader) error {
	var ok bool
	if p.Code, ok = r.ReadVarBytes(); !ok {
		return r.Err()
	}
	if p.Parameter, ok = r.ReadVarBytes(); !ok {
		return r.Err()
	}
	return nil
}

// serializeUnsigned writes version, type, payloadVersion, payload,
// attributes, inputs, outputs, and lockTime — everything except
// programs, per spec §4.4: "the identity hash is computed over the
// variant without programs".
func (t *Transaction) serializeUnsigned(w *bytestream.Writer) {
	w.WriteUint8(t.Version)
	w.WriteUint8(uint8(t.Type))
	w.WriteUint8(t.PayloadVersion)

	if t.Payload != nil {
		t.Payload.Serialize(w, t.PayloadVersion)
	}

	w.WriteVarUint(uint64(len(t.Attributes)))
	for i := range t.Attributes {
		t.Attributes[i].serialize(w)
	}

	w.WriteVarUint(uint64(len(t.Inputs)))
	for i := range t.Inputs {
		t.Inputs[i].serialize(w)
	}

	w.WriteVarUint(uint64(len(t.Outputs)))
	for i := range t.Outputs {
		t.Outputs[i].serialize(w)
	}

	w.WriteUint32LE(t.LockTime)
}

// Serialize writes the full on-wire form: the unsigned body followed by
// programs (spec §4.4 "with programs" flavor).
func (t *Transaction) Serialize(w *bytestream.Writer) {
	t.serializeUnsigned(w)
	w.WriteVarUint(uint64(len(t.Programs)))
	for i := range t.Programs {
		t.Programs[i].serialize(w)
	}
}

// Bytes returns the full (with-programs) wire encoding.
func (t *Transaction) Bytes() []byte {
	w := bytestream.NewWriter()
	t.Serialize(w)
	return w.Bytes()
}

// DigestBytes returns the unsigned-body encoding each program's
// signature covers (spec §4.4 "without programs" flavor).
func (t *Transaction) DigestBytes() []byte {
	w := bytestream.NewWriter()
	t.serializeUnsigned(w)
	return w.Bytes()
}

// Hash returns the transaction's identity hash: double-SHA-256 of the
// serialization excluding programs, cached after first computation
// since neither the unsigned body nor the hash change once built.
func (t *Transaction) Hash() bigint.Uint256 {
	if t.hashSet {
		return t.hash
	}
	first := sha256.Sum256(t.DigestBytes())
	second := sha256.Sum256(first[:])
	t.hash = bigint.Uint256(second)
	t.hashSet = true
	return t.hash
}

// Deserialize reads a Transaction from its full (with-programs) wire
// form.
func Deserialize(r *bytestream.Reader) (*Transaction, error) {
	t := &Transaction{}

	var ok bool
	if t.Version, ok = r.ReadUint8(); !ok {
		return nil, r.Err()
	}
	typ, ok := r.ReadUint8()
	if !ok {
		return nil, r.Err()
	}
	t.Type = Type(typ)

	if t.PayloadVersion, ok = r.ReadUint8(); !ok {
		return nil, r.Err()
	}

	payload, err := NewPayload(t.Type)
	if err != nil {
		return nil, err
	}
	if err := payload.Deserialize(r, t.PayloadVersion); err != nil {
		return nil, err
	}
	t.Payload = payload

	n, ok := r.ReadVarUint()
	if !ok {
		return nil, r.Err()
	}
	t.Attributes = make([]Attribute, n)
	for i := range t.Attributes {
		if err := t.Attributes[i].deserialize(r); err != nil {
			return nil, err
		}
	}

	n, ok = r.ReadVarUint()
	if !ok {
		return nil, r.Err()
	}
	t.Inputs = make([]Input, n)
	for i := range t.Inputs {
		if err := t.Inputs[i].deserialize(r); err != nil {
			return nil, err
		}
	}

	n, ok = r.ReadVarUint()
	if !ok {
		return nil, r.Err()
	}
	t.Outputs = make([]Output, n)
	for i := range t.Outputs {
		if err := t.Outputs[i].deserialize(r); err != nil {
			return nil, err
		}
	}

	if t.LockTime, ok = r.ReadUint32LE(); !ok {
		return nil, r.Err()
	}

	n, ok = r.ReadVarUint()
	if !ok {
		return nil, r.Err()
	}
	t.Programs = make([]Program, n)
	for i := range t.Programs {
		if err := t.Programs[i].deserialize(r); err != nil {
			return nil, err
		}
	}

	return t, nil
}
