package keychain

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v3"
	"github.com/decred/dcrd/dcrec/secp256k1/v3/ecdsa"
)

// signDigest produces an ECDSA secp256k1 signature over digest, matching
// the teacher's sign.RawTxInSignature/ecdsa.Sign usage in
// lnwallet/dcrwallet/signer.go.
func signDigest(priv *secp256k1.PrivateKey, digest [32]byte) *ecdsa.Signature {
	return ecdsa.Sign(priv, digest[:])
}
