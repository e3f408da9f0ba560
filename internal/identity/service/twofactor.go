package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/syndly/syndly/internal/identity/domain"
	"github.com/syndly/syndly/internal/identity/store"
	"github.com/syndly/syndly/pkg/cryptox"
	"github.com/syndly/syndly/pkg/idx"
	"github.com/syndly/syndly/pkg/slogx"
)

// VerifyCode is the reason code reported to the client so it can decide
// between re-prompting and showing the resend UI.
type VerifyCode string

const (
	VerifyOK       VerifyCode = "ok"
	VerifyWrong    VerifyCode = "secretWrong"
	VerifyExpired  VerifyCode = "secretExpired"
	VerifyConsumed VerifyCode = "secretConsumed"
)

// VerifyResult is the structured outcome of a verification attempt.
type VerifyResult struct {
	Code VerifyCode

	// Token is the fresh session token issued on successful verification.
	Token string
}

// IssuedPassCode is returned right after generation; the secret is only
// exposed here. TODO: drop the Secret field once the client no longer
// needs it echoed back (it travels by email).
type IssuedPassCode struct {
	ID        string    `json:"id"`
	Secret    string    `json:"secret,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type TwoFactorService struct {
	Store store.Store
	Token *TokenService
}

// GeneratePassCode derives the next 6-digit code from the credential's
// HOTP seed. Pure function: no I/O, no clock reads beyond the argument.
func GeneratePassCode(seed string, counter uint64, now time.Time) (domain.PassCode, error) {
	code, err := hotp.GenerateCodeCustom(seed, counter, hotp.ValidateOpts{
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.PassCode{}, fmt.Errorf("generate passcode: %w", err)
	}

	return domain.PassCode{
		ID:          idx.New().String(),
		Secret:      code,
		Status:      domain.PassCodePending,
		GeneratedAt: now,
		ExpiresAt:   now.Add(domain.PassCodeTTL),
	}, nil
}

// NewCredential builds a credential with its first Pending passcode and
// zero failed attempts. The caller persists it (usually inside the
// provisioning transaction) and enqueues the verification email.
func NewCredential(accountID string, now time.Time) (domain.TwoFactorCredential, error) {
	seed, err := cryptox.GenerateSeed(cryptox.SeedSize160)
	if err != nil {
		return domain.TwoFactorCredential{}, err
	}

	code, err := GeneratePassCode(seed, 1, now)
	if err != nil {
		return domain.TwoFactorCredential{}, err
	}

	credID := idx.New().String()
	code.CredentialID = credID

	return domain.TwoFactorCredential{
		ID:              credID,
		AccountID:       accountID,
		Seed:            seed,
		Status:          domain.CredentialPending,
		FailedAttempts:  0,
		Counter:         1,
		LastGeneratedAt: now,
		PassCodes:       []domain.PassCode{code},
	}, nil
}

// Issue creates and persists a credential for an existing account and
// dispatches the verification email through the outbox.
func (s *TwoFactorService) Issue(ctx context.Context, accountID string) (IssuedPassCode, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return IssuedPassCode{}, fmt.Errorf("%w: account %s", ErrNotFound, accountID)
		}
		return IssuedPassCode{}, err
	}

	cred, err := NewCredential(accountID, time.Now().UTC())
	if err != nil {
		return IssuedPassCode{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.TwoFactor().CreateCredential(ctx, cred); err != nil {
			return err
		}
		return tx.Outbox().EnqueueEmail(ctx, verificationEmail(account.Email, cred.PassCodes[0].Secret))
	})
	if err != nil {
		return IssuedPassCode{}, err
	}

	code := cred.PassCodes[0]
	return IssuedPassCode{ID: code.ID, Secret: code.Secret, ExpiresAt: code.ExpiresAt}, nil
}

// Verify checks a submitted secret against the live (last) passcode.
//
// Wrong secret reports VerifyWrong without mutating anything; the resend
// path only triggers on the expired branch. Replaying a code that was
// already consumed reports VerifyConsumed, again without mutation: a
// double-submit of the same form is not an error. An expired code is
// reissued in one transaction and reported as VerifyExpired. A match
// verifies the passcode and the credential, advances the account
// Pending -> OnHold, and issues a fresh session token.
func (s *TwoFactorService) Verify(ctx context.Context, accountID, submitted string) (VerifyResult, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	cred, err := s.Store.TwoFactor().GetCredentialByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return VerifyResult{}, fmt.Errorf("%w: two-factor credential for account %s", ErrNotFound, accountID)
		}
		return VerifyResult{}, err
	}

	last, ok := cred.LastPassCode()
	if ok && submitted != last.Secret {
		log.Info("passcode mismatch", slog.String("account_id", accountID))
		return VerifyResult{Code: VerifyWrong}, nil
	}

	if ok && last.Status == domain.PassCodeVerified {
		log.Info("passcode already consumed", slog.String("account_id", accountID))
		return VerifyResult{Code: VerifyConsumed}, nil
	}

	if !ok || last.Expired(now) {
		// Timed out (or no live code at all): reissue and tell the
		// client to look for the new one.
		if _, err := s.reissue(ctx, cred, accountID, now); err != nil {
			return VerifyResult{}, err
		}
		log.Info("passcode expired, reissued", slog.String("account_id", accountID))
		return VerifyResult{Code: VerifyExpired}, nil
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return VerifyResult{}, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.TwoFactor().VerifyPendingPassCode(ctx, last.ID); err != nil {
			return err
		}
		if err := tx.TwoFactor().UpdateCredentialStatus(ctx, cred.ID, domain.CredentialVerified); err != nil {
			return err
		}
		// First successful verification moves onboarding forward.
		if account.Status == domain.StatusPending {
			if err := tx.Accounts().UpdateAccountStatus(ctx, accountID, domain.StatusOnHold); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return VerifyResult{}, err
	}

	token, err := s.Token.Issue(ctx, accountID)
	if err != nil {
		return VerifyResult{}, err
	}

	log.Info("two-factor verified", slog.String("account_id", accountID))
	return VerifyResult{Code: VerifyOK, Token: token}, nil
}

// Resend expires the current Pending passcode and issues a fresh one.
// Both phases run in a single transaction so a concurrent Verify can
// never observe the window between them. When no Pending code exists the
// failed-attempt increment is skipped but the new code still goes out.
func (s *TwoFactorService) Resend(ctx context.Context, accountID string) (IssuedPassCode, error) {
	cred, err := s.Store.TwoFactor().GetCredentialByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return IssuedPassCode{}, fmt.Errorf("%w: two-factor credential for account %s", ErrNotFound, accountID)
		}
		return IssuedPassCode{}, err
	}

	return s.reissue(ctx, cred, accountID, time.Now().UTC())
}

func (s *TwoFactorService) reissue(
	ctx context.Context,
	cred domain.TwoFactorCredential,
	accountID string,
	now time.Time,
) (IssuedPassCode, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return IssuedPassCode{}, err
	}

	next, err := GeneratePassCode(cred.Seed, cred.Counter+1, now)
	if err != nil {
		return IssuedPassCode{}, err
	}
	next.CredentialID = cred.ID

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		expired, err := tx.TwoFactor().ExpirePendingPassCode(ctx, cred.ID)
		if err != nil {
			return err
		}
		if expired > 0 {
			if err := tx.TwoFactor().IncrementFailedAttempts(ctx, cred.ID); err != nil {
				return err
			}
		}

		if err := tx.TwoFactor().AppendPassCode(ctx, cred.ID, next, cred.Counter+1); err != nil {
			return err
		}

		if err := tx.Outbox().EnqueueEmail(ctx, verificationEmail(account.Email, next.Secret)); err != nil {
			return err
		}

		return tx.Notifications().CreateNotification(ctx, domain.Notification{
			ID:      idx.New().String(),
			Subject: "Verification code reissued",
			Body:    "A new verification code was sent to your email address.",
			Targets: []domain.NotificationTarget{{AccountID: accountID}},
		})
	})
	if err != nil {
		return IssuedPassCode{}, err
	}

	slogx.FromContext(ctx).Info("passcode reissued",
		slog.String("account_id", accountID),
		slog.String("passcode_id", next.ID),
	)

	return IssuedPassCode{ID: next.ID, Secret: next.Secret, ExpiresAt: next.ExpiresAt}, nil
}

func verificationEmail(recipient, secret string) domain.EmailMessage {
	return domain.EmailMessage{
		ID:        idx.New().String(),
		Recipient: recipient,
		Subject:   "Your verification code",
		Body:      fmt.Sprintf("Your verification code is %s. It expires in 2 hours.", secret),
	}
}
