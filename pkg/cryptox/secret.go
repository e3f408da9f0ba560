package cryptox

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
)

// SeedSize160 is the recommended HOTP seed size (160 bits, RFC 4226 §4).
const SeedSize160 = 20

// GenerateSeed creates a cryptographically random base32-encoded seed of
// the given byte length, suitable as an HOTP shared secret.
func GenerateSeed(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("seed size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random seed: %w", err)
	}

	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}
