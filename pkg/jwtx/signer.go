// Package jwtx signs and verifies the session claim set with Ed25519.
// The service issues one algorithm from one static key; verification
// rejects anything else.
package jwtx

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("jwtx: invalid token")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
)

// Signer signs and verifies session tokens using an Ed25519 keypair.
type Signer struct {
	kid    string
	key    ed25519.PrivateKey
	pub    ed25519.PublicKey
	issuer string
}

// NewSigner creates a signer from PEM bytes. Ed25519 keys must be in
// PKCS8 format.
func NewSigner(kid, issuer string, pemKey []byte) (*Signer, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for Ed25519 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (Ed25519 requires PKCS8)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}

	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not Ed25519 private key")
	}

	return &Signer{
		kid:    kid,
		key:    key,
		pub:    key.Public().(ed25519.PublicKey),
		issuer: issuer,
	}, nil
}

// NewSignerFromKey wraps an in-memory Ed25519 private key. Used by the
// ephemeral key mode and by tests.
func NewSignerFromKey(kid, issuer string, key ed25519.PrivateKey) (*Signer, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.New("jwtx: invalid Ed25519 private key size")
	}
	return &Signer{
		kid:    kid,
		key:    key,
		pub:    key.Public().(ed25519.PublicKey),
		issuer: issuer,
	}, nil
}

func (s *Signer) KID() string { return s.kid }
func (s *Signer) Alg() string { return jwt.SigningMethodEdDSA.Alg() }

// Sign turns the claims into a signed compact JWT string.
func (s *Signer) Sign(claims SessionClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// Verify validates the JWT string and returns its parsed claims.
func (s *Signer) Verify(tokenStr string) (*SessionClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid != "" && kid != s.kid {
			return nil, fmt.Errorf("jwtx: unknown kid %q", kid)
		}
		return s.pub, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, ErrIssuer
	}

	return claims, nil
}
