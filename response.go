package idkit

import (
	"encoding/json"

	"github.com/go-errors/errors"
	"github.com/mitchellh/mapstructure"
)

var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrUnknownErrorCode  = errors.New("unknown error code")
)

// Proof is the result of a successful verification.
type Proof struct {
	Proof          string         `json:"proof" mapstructure:"proof"`
	MerkleRoot     string         `json:"merkle_root" mapstructure:"merkle_root"`
	NullifierHash  string         `json:"nullifier_hash" mapstructure:"nullifier_hash"`
	CredentialType CredentialType `json:"credential_type" mapstructure:"credential_type"`
}

// Result is the decoded content of a completed request: either a *Proof or an *AppError.
type Result interface {
	result()
}

func (*Proof) result()    {}
func (*AppError) result() {}

// DecodeResponse decodes a decrypted response object. The error_code field takes
// precedence: an object containing it is an error result, even if it also contains
// a proof. Otherwise the object must be a complete proof.
func DecodeResponse(obj map[string]interface{}) (Result, error) {
	if raw, ok := obj["error_code"]; ok {
		code, ok := raw.(string)
		if !ok {
			return nil, errors.Errorf("%w: error_code is not a string", ErrMalformedResponse)
		}
		appErr, err := ParseErrorCode(code)
		if err != nil {
			return nil, err
		}
		return &appErr, nil
	}

	if _, ok := obj["proof"]; !ok {
		return nil, errors.Errorf("%w: neither error_code nor proof present", ErrMalformedResponse)
	}

	proof := &Proof{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: proof})
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to create decoder", 0)
	}
	if err = decoder.Decode(obj); err != nil {
		return nil, errors.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if proof.Proof == "" || proof.MerkleRoot == "" || proof.NullifierHash == "" {
		return nil, errors.Errorf("%w: incomplete proof", ErrMalformedResponse)
	}
	if !proof.CredentialType.valid() {
		return nil, errors.Errorf("%w: unknown credential type %q", ErrMalformedResponse, proof.CredentialType)
	}
	return proof, nil
}

// DecodeResponseJSON decodes a decrypted response, see DecodeResponse.
func DecodeResponseJSON(data []byte) (Result, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, errors.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if obj == nil {
		return nil, errors.Errorf("%w: not an object", ErrMalformedResponse)
	}
	return DecodeResponse(obj)
}
