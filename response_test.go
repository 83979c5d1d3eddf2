package idkit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeProof(t *testing.T) {
	result, err := DecodeResponseJSON([]byte(`{
		"proof": "0x1aa8b8f3b2d2de5ff452c0e1a83e29d6bf46fb83ef35dc5957121ff3d3698a11",
		"merkle_root": "0x2264a66d162d7893e12ea8e3c072c51e785bc085ad655f64c10c1a61e00f0bc2",
		"nullifier_hash": "0x2bf8406809dcefb1486dadc96c0a897db9bab002053054cf64272db512c6fbd8",
		"credential_type": "orb"
	}`))
	require.NoError(t, err)
	require.IsType(t, &Proof{}, result)
	proof := result.(*Proof)
	require.Equal(t, CredentialTypeOrb, proof.CredentialType)
	require.Equal(t, "0x2264a66d162d7893e12ea8e3c072c51e785bc085ad655f64c10c1a61e00f0bc2", proof.MerkleRoot)
	require.Equal(t, "0x2bf8406809dcefb1486dadc96c0a897db9bab002053054cf64272db512c6fbd8", proof.NullifierHash)
}

func TestDecodeError(t *testing.T) {
	result, err := DecodeResponse(map[string]interface{}{"error_code": "verification_rejected"})
	require.NoError(t, err)
	require.Equal(t, &ErrorVerificationRejected, result)

	// error_code takes precedence over a proof
	result, err = DecodeResponse(map[string]interface{}{
		"error_code":      "credential_unavailable",
		"proof":           "0x01",
		"merkle_root":     "0x02",
		"nullifier_hash":  "0x03",
		"credential_type": "device",
	})
	require.NoError(t, err)
	require.Equal(t, &ErrorCredentialUnavailable, result)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := DecodeResponse(map[string]interface{}{"error_code": "no_such_error"})
	require.ErrorIs(t, err, ErrUnknownErrorCode)

	_, err = DecodeResponse(map[string]interface{}{"error_code": 42})
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = DecodeResponse(map[string]interface{}{"merkle_root": "0x02"})
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = DecodeResponse(map[string]interface{}{})
	require.ErrorIs(t, err, ErrMalformedResponse)

	// Incomplete proof
	_, err = DecodeResponse(map[string]interface{}{"proof": "0x01", "credential_type": "orb"})
	require.ErrorIs(t, err, ErrMalformedResponse)

	// Unknown credential type
	_, err = DecodeResponse(map[string]interface{}{
		"proof":           "0x01",
		"merkle_root":     "0x02",
		"nullifier_hash":  "0x03",
		"credential_type": "passport",
	})
	require.ErrorIs(t, err, ErrMalformedResponse)

	// Wrong field type
	_, err = DecodeResponse(map[string]interface{}{
		"proof":           42,
		"merkle_root":     "0x02",
		"nullifier_hash":  "0x03",
		"credential_type": "orb",
	})
	require.ErrorIs(t, err, ErrMalformedResponse)

	for _, data := range []string{`[]`, `null`, `"proof"`, `{`} {
		_, err = DecodeResponseJSON([]byte(data))
		require.ErrorIs(t, err, ErrMalformedResponse, data)
	}
}
