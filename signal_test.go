package idkit

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func TestEncodeSignal(t *testing.T) {
	require.Equal(t, "0x00c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a4", EncodeSignal(""))
	require.Equal(t, EncodeSignal(""), EncodeSignal(""))

	// The commitment is the Keccak-256 digest without its last byte
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte("test-action"))
	digest := hex.EncodeToString(h.Sum(nil))
	encoded := EncodeSignal("test-action")
	require.Equal(t, "0x00"+digest[:62], encoded)
	require.Equal(t, encoded, EncodeSignal("test-action"))
	require.Len(t, encoded, 66)

	require.NotEqual(t, encoded, EncodeSignal("test-action2"))
}

func TestHashToField(t *testing.T) {
	// The top byte is always zero, so the field element is below 2^248
	for _, input := range []string{"", "a", "test-action", "0x1234"} {
		require.LessOrEqual(t, HashToField([]byte(input)).BitLen(), 248)
	}
}
