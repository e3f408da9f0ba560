package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/syndly/syndly/internal/identity/domain"
)

func TestGeneratePassCode(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cred, err := NewCredential("acct-1", now)
	require.NoError(t, err)
	require.Equal(t, uint64(1), cred.Counter)
	require.Zero(t, cred.FailedAttempts)
	require.Len(t, cred.PassCodes, 1)

	code := cred.PassCodes[0]
	require.Len(t, code.Secret, 6)
	require.Equal(t, domain.PassCodePending, code.Status)
	require.Equal(t, now.Add(domain.PassCodeTTL), code.ExpiresAt)

	// Same seed and counter derive the same code; the next counter a
	// different one.
	again, err := GeneratePassCode(cred.Seed, 1, now)
	require.NoError(t, err)
	require.Equal(t, code.Secret, again.Secret)

	next, err := GeneratePassCode(cred.Seed, 2, now)
	require.NoError(t, err)
	require.NotEqual(t, code.Secret, next.Secret)
}

func TestVerifyHappyPath(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)
	accountID := provisionAccount(t, st, "mfa@example.com")

	svc := &TwoFactorService{Store: st, Token: newTestTokenService(t, st)}

	cred, err := st.TwoFactor().GetCredentialByAccount(ctx, accountID)
	require.NoError(t, err)
	secret := cred.PassCodes[0].Secret

	result, err := svc.Verify(ctx, accountID, secret)
	require.NoError(t, err)
	require.Equal(t, VerifyOK, result.Code)
	require.NotEmpty(t, result.Token)

	claims, err := svc.Token.Verify(result.Token)
	require.NoError(t, err)
	require.Equal(t, accountID, claims.Subject)

	cred, err = st.TwoFactor().GetCredentialByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, domain.CredentialVerified, cred.Status)
	require.Equal(t, domain.PassCodeVerified, cred.PassCodes[0].Status)

	account, err := st.Accounts().GetAccountByID(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusOnHold, account.Status)
}

func TestVerifyReplayedSecret(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)
	accountID := provisionAccount(t, st, "mfa@example.com")

	svc := &TwoFactorService{Store: st, Token: newTestTokenService(t, st)}

	cred, err := st.TwoFactor().GetCredentialByAccount(ctx, accountID)
	require.NoError(t, err)
	secret := cred.PassCodes[0].Secret

	result, err := svc.Verify(ctx, accountID, secret)
	require.NoError(t, err)
	require.Equal(t, VerifyOK, result.Code)

	// Double-submit of the same valid form: structured outcome, no token,
	// nothing reissued.
	replay, err := svc.Verify(ctx, accountID, secret)
	require.NoError(t, err)
	require.Equal(t, VerifyConsumed, replay.Code)
	require.Empty(t, replay.Token)

	cred, err = st.TwoFactor().GetCredentialByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, cred.PassCodes, 1)
	require.Equal(t, uint64(1), cred.Counter)
	require.Equal(t, domain.CredentialVerified, cred.Status)
}

func TestVerifyWrongSecretDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)
	accountID := provisionAccount(t, st, "mfa@example.com")

	svc := &TwoFactorService{Store: st, Token: newTestTokenService(t, st)}

	cred, err := st.TwoFactor().GetCredentialByAccount(ctx, accountID)
	require.NoError(t, err)

	wrong := "000000"
	if cred.PassCodes[0].Secret == wrong {
		wrong = "000001"
	}

	result, err := svc.Verify(ctx, accountID, wrong)
	require.NoError(t, err)
	require.Equal(t, VerifyWrong, result.Code)
	require.Empty(t, result.Token)

	after, err := st.TwoFactor().GetCredentialByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, domain.CredentialPending, after.Status)
	require.Equal(t, cred.FailedAttempts, after.FailedAttempts)
	require.Len(t, after.PassCodes, 1)
	require.Equal(t, domain.PassCodePending, after.PassCodes[0].Status)

	account, err := st.Accounts().GetAccountByID(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, account.Status)
}

func TestVerifyExpiredReissues(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)
	accountID := provisionAccount(t, st, "mfa@example.com")

	svc := &TwoFactorService{Store: st, Token: newTestTokenService(t, st)}

	cred, err := st.TwoFactor().GetCredentialByAccount(ctx, accountID)
	require.NoError(t, err)
	originalSecret := cred.PassCodes[0].Secret

	// Kill the live code so the submitted (correct) secret hits the
	// expired branch.
	_, err = st.TwoFactor().ExpirePendingPassCode(ctx, cred.ID)
	require.NoError(t, err)

	result, err := svc.Verify(ctx, accountID, originalSecret)
	require.NoError(t, err)
	require.Equal(t, VerifyExpired, result.Code)
	require.Empty(t, result.Token)

	after, err := st.TwoFactor().GetCredentialByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, after.PassCodes, 2)
	require.Equal(t, uint64(2), after.Counter)

	fresh, ok := after.LastPassCode()
	require.True(t, ok)
	require.Equal(t, domain.PassCodePending, fresh.Status)
	require.NotEqual(t, originalSecret, fresh.Secret)

	// The new secret went out through the outbox: provisioning enqueued
	// one email, the reissue a second.
	emails, err := st.Outbox().ListPendingEmails(ctx, 10)
	require.NoError(t, err)
	require.Len(t, emails, 2)
}

func TestResend(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)
	accountID := provisionAccount(t, st, "mfa@example.com")

	svc := &TwoFactorService{Store: st, Token: newTestTokenService(t, st)}

	before, err := st.TwoFactor().GetCredentialByAccount(ctx, accountID)
	require.NoError(t, err)

	issued, err := svc.Resend(ctx, accountID)
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)
	require.NotEqual(t, before.PassCodes[0].Secret, issued.Secret)

	after, err := st.TwoFactor().GetCredentialByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, after.PassCodes, 2)

	// The Pending tail existed, so the abandoned code counts as a failure.
	require.Equal(t, before.FailedAttempts+1, after.FailedAttempts)
	require.Equal(t, domain.PassCodeExpired, after.PassCodes[0].Status)
	require.Equal(t, domain.PassCodePending, after.PassCodes[1].Status)

	t.Run("no pending tail skips the failed-attempt increment", func(t *testing.T) {
		_, err := st.TwoFactor().ExpirePendingPassCode(ctx, after.ID)
		require.NoError(t, err)

		_, err = svc.Resend(ctx, accountID)
		require.NoError(t, err)

		final, err := st.TwoFactor().GetCredentialByAccount(ctx, accountID)
		require.NoError(t, err)
		require.Equal(t, after.FailedAttempts, final.FailedAttempts)
		require.Len(t, final.PassCodes, 3)
	})
}

func TestIssueForExistingAccount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)
	accountID := provisionAccount(t, st, "mfa@example.com")

	svc := &TwoFactorService{Store: st, Token: newTestTokenService(t, st)}

	// Provisioning already created a credential for this account.
	_, err := svc.Issue(ctx, accountID)
	require.Error(t, err)

	_, err = svc.Issue(ctx, "missing-account")
	require.ErrorIs(t, err, ErrNotFound)
}
