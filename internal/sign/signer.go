// Package sign computes the HMAC-SHA256 request signatures required by
// private endpoints.
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrEmptySecret is returned when constructing a signer without a secret key.
var ErrEmptySecret = errors.New("secret key is empty")

// Signer signs request payloads. The secret lives only in the signer's
// unexported key bytes; nothing else in the process keeps a copy after
// construction.
type Signer struct {
	key []byte
}

// New creates a Signer from the secret key.
func New(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Signer{key: []byte(secret)}, nil
}

// Sign returns the lowercase hex HMAC-SHA256 of payload. The payload must be
// the encoded query exactly as it goes on the wire: parameter order is part
// of the signature, and the server verifies against the bytes it receives.
func (s *Signer) Sign(payload string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
