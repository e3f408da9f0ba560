package domain

import "time"

// PassCodeStatus: a passcode transitions Pending -> Verified or
// Pending -> Expired; once non-Pending it is immutable.
type PassCodeStatus string

const (
	PassCodePending  PassCodeStatus = "Pending"
	PassCodeVerified PassCodeStatus = "Verified"
	PassCodeExpired  PassCodeStatus = "Expired"
)

// CredentialStatus mirrors the first successful verification, or an
// administrative disable.
type CredentialStatus string

const (
	CredentialPending  CredentialStatus = "Pending"
	CredentialVerified CredentialStatus = "Verified"
	CredentialDisabled CredentialStatus = "Disabled"
)

// PassCodeTTL is the validity window of an issued passcode.
const PassCodeTTL = 2 * time.Hour

// PassCode is one issued one-time secret. History is append-only; only
// the most recent entry is ever actionable.
type PassCode struct {
	ID           string
	CredentialID string
	Secret       string // 6-digit numeric code
	Status       PassCodeStatus
	GeneratedAt  time.Time
	ExpiresAt    time.Time
}

// Expired reports whether the code is no longer actionable at now.
func (p PassCode) Expired(now time.Time) bool {
	return p.Status == PassCodeExpired || now.Sub(p.GeneratedAt) >= PassCodeTTL
}

// TwoFactorCredential holds the HOTP seed and passcode history for one
// account.
type TwoFactorCredential struct {
	ID              string
	AccountID       string // unique: one credential per account
	Seed            string // base32 HOTP seed, never serialized outward
	Status          CredentialStatus
	FailedAttempts  int
	Counter         uint64 // number of passcodes derived from the seed
	LastGeneratedAt time.Time
	PassCodes       []PassCode // ordered oldest first
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LastPassCode returns the live (most recent) entry, or false when the
// history is empty.
func (c TwoFactorCredential) LastPassCode() (PassCode, bool) {
	if len(c.PassCodes) == 0 {
		return PassCode{}, false
	}
	return c.PassCodes[len(c.PassCodes)-1], true
}
