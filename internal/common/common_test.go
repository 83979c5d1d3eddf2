package common

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBase64Decode(t *testing.T) {
	data := []byte{0xfb, 0xff, 0xbf, 0x01}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		decoded, err := Base64Decode([]byte(enc.EncodeToString(data)))
		require.NoError(t, err)
		require.Equal(t, data, decoded)
	}

	_, err := Base64Decode([]byte("not base64!"))
	require.Error(t, err)
}

func TestRandomBytes(t *testing.T) {
	b, err := RandomBytes(nil, 32)
	require.NoError(t, err)
	require.Len(t, b, 32)

	b, err = RandomBytes(bytes.NewReader([]byte{1, 2, 3}), 3)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, b)

	// Source too short
	_, err = RandomBytes(bytes.NewReader([]byte{1}), 2)
	require.Error(t, err)
}
