package idkit

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/sha3"
)

// HashToField hashes the input with Keccak-256 and drops the least significant byte of the
// digest, so that the result fits in the scalar field used by the proof circuits.
func HashToField(input []byte) *big.Int {
	h := sha3.NewLegacyKeccak256()
	h.Write(input)
	digest := new(big.Int).SetBytes(h.Sum(nil))
	return digest.Rsh(digest, 8)
}

// EncodeSignal returns the commitment to the signal as sent in a request:
// 0x followed by 64 lowercase hex digits.
func EncodeSignal(signal string) string {
	return fmt.Sprintf("0x%064x", HashToField([]byte(signal)))
}
