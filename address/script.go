package address

import (
	"fmt"

	"github.com/decred/dcrd/txscript/v4"
)

// StandardRedeemScript builds the single-key redeem script: a push of the
// compressed pubkey followed by OP_CHECKSIG, built with txscript's
// ScriptBuilder (the teacher's own dependency for script assembly) rather
// than hand-laid-out opcode bytes.
func StandardRedeemScript(pubKey []byte) []byte {
	script, err := txscript.NewScriptBuilder().
		AddData(pubKey).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	if err != nil {
		// AddData/AddOp only fail on pushes too large to encode; a
		// compressed pubkey is always well within that limit.
		panic(fmt.Sprintf("address: building standard redeem script: %v", err))
	}
	return script
}

// MultiSigRedeemScript builds the m-of-n multi-sig template:
// OP_m <pubkey pushes...> OP_n OP_CHECKMULTISIG, with pubkeys sorted by
// their serialized form so the script is canonical regardless of cosigner
// enumeration order.
func MultiSigRedeemScript(m int, pubKeys [][]byte) ([]byte, error) {
	n := len(pubKeys)
	if m <= 0 || n == 0 || m > n || n > 16 {
		return nil, fmt.Errorf("address: invalid multisig template %d-of-%d", m, n)
	}

	sorted := sortedPubKeys(pubKeys)

	builder := txscript.NewScriptBuilder().AddInt64(int64(m))
	for _, pk := range sorted {
		builder.AddData(pk)
	}
	builder.AddInt64(int64(n)).AddOp(txscript.OP_CHECKMULTISIG)

	script, err := builder.Script()
	if err != nil {
		return nil, fmt.Errorf("address: building multisig redeem script: %w", err)
	}
	return script, nil
}

func sortedPubKeys(pubKeys [][]byte) [][]byte {
	out := make([][]byte, len(pubKeys))
	copy(out, pubKeys)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && lessPubKey(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func lessPubKey(a, b []byte) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
