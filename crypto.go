package idkit

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"io"

	"github.com/go-errors/errors"

	"github.com/worldcoin/idkit-go/internal/common"
)

const (
	SessionKeyLength = 32
	NonceLength      = 12
	TagLength        = 16
)

var ErrAuthenticationFailed = errors.New("authentication failed")

type (
	// SessionKey is the AES-256 key shared with the World App through the connect URL.
	SessionKey [SessionKeyLength]byte

	// Nonce is the AES-GCM nonce of a single encryption.
	Nonce [NonceLength]byte
)

// EncryptedPayload is the wire form of an encrypted message: the nonce and the
// ciphertext with its appended tag, both base64 encoded.
type EncryptedPayload struct {
	IV      string `json:"iv"`
	Payload string `json:"payload"`
}

func GenerateSessionKey(random io.Reader) (SessionKey, error) {
	var key SessionKey
	b, err := common.RandomBytes(random, SessionKeyLength)
	if err != nil {
		return key, err
	}
	copy(key[:], b)
	return key, nil
}

func GenerateNonce(random io.Reader) (Nonce, error) {
	var nonce Nonce
	b, err := common.RandomBytes(random, NonceLength)
	if err != nil {
		return nonce, err
	}
	copy(nonce[:], b)
	return nonce, nil
}

// Encrypt encrypts the plaintext with AES-GCM, returning the ciphertext and the tag separately.
func Encrypt(key SessionKey, nonce Nonce, plaintext []byte) (ciphertext, tag []byte, err error) {
	sealed, err := Seal(key, nonce, plaintext)
	if err != nil {
		return nil, nil, err
	}
	split := len(sealed) - TagLength
	return sealed[:split], sealed[split:], nil
}

// Seal encrypts the plaintext with AES-GCM, returning the ciphertext with the tag appended.
func Seal(key SessionKey, nonce Nonce, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, nonce[:], plaintext, nil), nil
}

// Decrypt authenticates and decrypts ciphertext || tag. Any failure, including a
// malformed nonce or a message too short to contain a tag, results in ErrAuthenticationFailed.
func Decrypt(key SessionKey, nonce []byte, combined []byte) ([]byte, error) {
	if len(nonce) != NonceLength || len(combined) < TagLength {
		return nil, ErrAuthenticationFailed
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(make([]byte, 0, len(combined)-TagLength), nonce, combined, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

func EncryptPayload(key SessionKey, nonce Nonce, plaintext []byte) (*EncryptedPayload, error) {
	sealed, err := Seal(key, nonce, plaintext)
	if err != nil {
		return nil, err
	}
	return &EncryptedPayload{
		IV:      base64.StdEncoding.EncodeToString(nonce[:]),
		Payload: base64.StdEncoding.EncodeToString(sealed),
	}, nil
}

func DecryptPayload(key SessionKey, payload *EncryptedPayload) ([]byte, error) {
	if payload == nil {
		return nil, ErrAuthenticationFailed
	}
	nonce, err := common.Base64Decode([]byte(payload.IV))
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	combined, err := common.Base64Decode([]byte(payload.Payload))
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return Decrypt(key, nonce, combined)
}

func newGCM(key SessionKey) (cipher.AEAD, error) {
	keyedAes, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to create AES cipher", 0)
	}
	gcm, err := cipher.NewGCM(keyedAes)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to create GCM", 0)
	}
	return gcm, nil
}
