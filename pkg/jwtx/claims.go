package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the validity window for issued session tokens.
const DefaultSessionTTL = 24 * time.Hour

// PackSummary is the subscription-tier slice embedded in a session token.
type PackSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name,omitempty"`
	ContractsLimit int    `json:"contractsLimit"`
}

// AccountSummary is the outward account projection. It never carries the
// password hash or role lists; consumers re-resolve permissions instead
// of trusting embedded roles.
type AccountSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Status    string `json:"status"`
}

// ContractorSummary is the outward contracting-entity projection.
type ContractorSummary struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// StaffSummary is the outward staff-profile projection.
type StaffSummary struct {
	ID           string `json:"id"`
	ContractorID string `json:"contractingEntityId"`
	Status       string `json:"status"`
}

// SessionClaims is the signed claim set returned to callers after
// authentication. It is the sole input to every subsequent session
// check and to permission resolution.
type SessionClaims struct {
	jwt.RegisteredClaims

	Pack        PackSummary        `json:"pack"`
	Account     AccountSummary     `json:"account"`
	Contractor  *ContractorSummary `json:"contractingEntity,omitempty"`
	Staff       *StaffSummary      `json:"staffProfile,omitempty"`
	ContractIDs []string           `json:"contracts,omitempty"`
}

// NewSessionClaims builds minimally-correct claims; the subject is the
// account id.
func NewSessionClaims(
	accountID string,
	pack PackSummary,
	account AccountSummary,
	contractor *ContractorSummary,
	staff *StaffSummary,
	contractIDs []string,
	issuer string,
	ttl time.Duration,
	now time.Time,
) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Pack:        pack,
		Account:     account,
		Contractor:  contractor,
		Staff:       staff,
		ContractIDs: contractIDs,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
