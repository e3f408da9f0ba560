package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T, issuer string) *Signer {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signer, err := NewSignerFromKey("test-key", issuer, priv)
	require.NoError(t, err)
	return signer
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t, "syndly-identity")
	now := time.Now().UTC()

	claims := NewSessionClaims(
		"01ACCOUNT",
		PackSummary{ID: "01PACK", Name: "starter", ContractsLimit: 1},
		AccountSummary{ID: "01ACCOUNT", Email: "owner@example.com", Status: "Pending"},
		&ContractorSummary{ID: "01CONTRACTOR", Type: "Natural", Status: "Pending"},
		&StaffSummary{ID: "01STAFF", ContractorID: "01CONTRACTOR", Status: "Pending"},
		[]string{"01CONTRACT"},
		"syndly-identity",
		DefaultSessionTTL,
		now,
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	parsed, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "01ACCOUNT", parsed.Subject)
	require.Equal(t, "owner@example.com", parsed.Account.Email)
	require.Equal(t, []string{"01CONTRACT"}, parsed.ContractIDs)
	require.NotNil(t, parsed.Contractor)
	require.Equal(t, "Natural", parsed.Contractor.Type)
	require.WithinDuration(t, now.Add(DefaultSessionTTL), parsed.ExpiresAt.Time, time.Second)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	t.Parallel()

	a := newTestSigner(t, "syndly-identity")
	b := newTestSigner(t, "syndly-identity")

	claims := NewSessionClaims(
		"01ACCOUNT", PackSummary{ID: "01PACK"},
		AccountSummary{ID: "01ACCOUNT"}, nil, nil, nil,
		"syndly-identity", time.Hour, time.Now(),
	)

	token, err := a.Sign(claims)
	require.NoError(t, err)

	_, err = b.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsIssuerMismatch(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t, "other-issuer")

	claims := NewSessionClaims(
		"01ACCOUNT", PackSummary{},
		AccountSummary{ID: "01ACCOUNT"}, nil, nil, nil,
		"syndly-identity", time.Hour, time.Now(),
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = signer.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t, "syndly-identity")

	claims := NewSessionClaims(
		"01ACCOUNT", PackSummary{},
		AccountSummary{ID: "01ACCOUNT"}, nil, nil, nil,
		"syndly-identity", time.Minute, time.Now().Add(-time.Hour),
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	_, err = signer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
