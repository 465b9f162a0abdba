// Package security handles editor credentials: ids, signing secrets,
// session tokens and password hashes.
package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// signingSecretBytes is the HMAC key size for HS256.
const signingSecretBytes = 32

// NewID returns a ULID for token ids and request ids.
func NewID() string {
	return ulid.Make().String()
}

// NewSigningSecret returns a random hex-encoded HS256 key.
func NewSigningSecret() (string, error) {
	key := make([]byte, signingSecretBytes)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate signing secret: %w", err)
	}
	return hex.EncodeToString(key), nil
}
