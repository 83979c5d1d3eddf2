package common

import (
	"crypto/rand"
	"encoding/base64"
	"io"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

// RandomBytes reads n bytes from the specified source, or from crypto/rand if r is nil.
func RandomBytes(r io.Reader, n int) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, errors.WrapPrefix(err, "failed to read random bytes", 0)
	}
	return b, nil
}

// Close closes the io.Closer and logs the error if any.
func Close(o io.Closer) {
	if err := o.Close(); err != nil && Logger != nil {
		Logger.Warn(err)
	}
}

// Base64Decode decodes the specified bytes as any of the Base64 dialects:
// standard encoding (+, /) and URL encoding (-, _), with or without padding.
func Base64Decode(b []byte) ([]byte, error) {
	var (
		err       error
		bts       []byte
		encodings = []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding}
	)
	for _, encoding := range encodings {
		if bts, err = encoding.DecodeString(string(b)); err == nil {
			break
		}
	}
	return bts, err
}
