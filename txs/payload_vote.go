package txs

import (
	"github.com/elaspv/spvwallet/bigint"
	"github.com/elaspv/spvwallet/bytestream"
)

// VoteType enumerates what a CandidateVotes entry is voting for
// (original_source's CR voting payloads, supplemented per spec §3).
type VoteType byte

const (
	VoteTypeDelegate        VoteType = 0x00
	VoteTypeCRC             VoteType = 0x01
	VoteTypeCRCProposal     VoteType = 0x02
	VoteTypeCRCImpeachment  VoteType = 0x03
)

// CandidateVotes pairs one candidate (a producer public key or CR DID)
// with the BigInt vote weight assigned to it.
type CandidateVotes struct {
	Candidate []byte
	Votes     bigint.BigInt
}

// VoteContent is one vote attachment on an output, per spec §4.5.
type VoteContent struct {
	Type       VoteType
	Candidates []CandidateVotes
}

func (v VoteContent) serialize(w *bytestream.Writer) {
	w.WriteUint8(byte(v.Type))
	w.WriteVarUint(uint64(len(v.Candidates)))
	for _, c := range v.Candidates {
		w.WriteVarBytes(c.Candidate)
		w.WriteVarString(c.Votes.String())
	}
}

func deserializeVoteContent(r *bytestream.Reader) (VoteContent, error) {
	var v VoteContent
	typ, ok := r.ReadUint8()
	if !ok {
		return v, r.Err()
	}
	v.Type = VoteType(typ)

	n, ok := r.ReadVarUint()
	if !ok {
		return v, r.Err()
	}
	v.Candidates = make([]CandidateVotes, 0, n)
	for i := uint64(0); i < n; i++ {
		cand, ok := r.ReadVarBytes()
		if !ok {
			return v, r.Err()
		}
		votesStr, ok := r.ReadVarString()
		if !ok {
			return v, r.Err()
		}
		votes, parsed := bigint.NewFromString(votesStr)
		if !parsed {
			return v, r.Err()
		}
		v.Candidates = append(v.Candidates, CandidateVotes{Candidate: cand, Votes: votes})
	}
	return v, nil
}

// SerializeVoteOutputs writes out's vote attachments, called by
// Output serialization.
func SerializeVoteOutputs(w *bytestream.Writer, contents []VoteContent) {
	w.WriteVarUint(uint64(len(contents)))
	for _, c := range contents {
		c.serialize(w)
	}
}

// DeserializeVoteOutputs reads the vote attachments written by
// SerializeVoteOutputs.
func DeserializeVoteOutputs(r *bytestream.Reader) ([]VoteContent, error) {
	n, ok := r.ReadVarUint()
	if !ok {
		return nil, r.Err()
	}
	out := make([]VoteContent, 0, n)
	for i := uint64(0); i < n; i++ {
		v, err := deserializeVoteContent(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
