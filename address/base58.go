package address

import "math/big"

// alphabet is the Bitcoin base58 alphabet, as spec §6 requires.
const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var (
	bigRadix  = big.NewInt(58)
	bigZero   = big.NewInt(0)
	decodeMap [256]int8
)

func init() {
	for i := range decodeMap {
		decodeMap[i] = -1
	}
	for i, c := range alphabet {
		decodeMap[c] = int8(i)
	}
}

// base58Encode encodes b using the Bitcoin alphabet, preserving leading
// zero bytes as leading '1' characters.
func base58Encode(b []byte) string {
	x := new(big.Int).SetBytes(b)

	answer := make([]byte, 0, len(b)*136/100+1)
	mod := new(big.Int)
	for x.Cmp(bigZero) > 0 {
		x.DivMod(x, bigRadix, mod)
		answer = append(answer, alphabet[mod.Int64()])
	}

	for _, c := range b {
		if c != 0 {
			break
		}
		answer = append(answer, alphabet[0])
	}

	reverse(answer)
	return string(answer)
}

// base58Decode decodes s, returning ok=false if s contains a character
// outside the alphabet.
func base58Decode(s string) ([]byte, bool) {
	answer := big.NewInt(0)
	scratch := new(big.Int)
	for i := 0; i < len(s); i++ {
		d := decodeMap[s[i]]
		if d == -1 {
			return nil, false
		}
		answer.Mul(answer, bigRadix)
		scratch.SetInt64(int64(d))
		answer.Add(answer, scratch)
	}

	decoded := answer.Bytes()
	numZeros := 0
	for numZeros < len(s) && s[numZeros] == alphabet[0] {
		numZeros++
	}

	out := make([]byte, numZeros+len(decoded))
	copy(out[numZeros:], decoded)
	return out, true
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
