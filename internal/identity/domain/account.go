package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// AccountStatus is the onboarding lifecycle stage of an account.
// Transitions are owned by the onboarding state machine; an account never
// moves to an earlier stage except into Suspended.
type AccountStatus string

const (
	StatusPending   AccountStatus = "Pending"
	StatusOnHold    AccountStatus = "OnHold"
	StatusActive    AccountStatus = "Active"
	StatusInactive  AccountStatus = "Inactive"
	StatusSuspended AccountStatus = "Suspended"
)

// ErrStatusCompatibility reports a stored status outside the known enum.
// This is data corruption, not user error, and must never be coerced.
var ErrStatusCompatibility = errors.New("domain: account status incompatible with lifecycle")

// ParseAccountStatus validates a stored status value.
func ParseAccountStatus(s string) (AccountStatus, error) {
	switch AccountStatus(s) {
	case StatusPending, StatusOnHold, StatusActive, StatusInactive, StatusSuspended:
		return AccountStatus(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrStatusCompatibility, s)
	}
}

type Account struct {
	ID           string
	FirstName    string
	LastName     string
	Address      string
	Phone        string
	Email        string // unique, lowercase-normalized
	PasswordHash string // argon2id encoded, never serialized
	Status       AccountStatus
	PackID       string
	RoleIDs      []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountView is the outward projection of an account: no secret, no
// role list. Built once here rather than by deleting fields at call sites.
type AccountView struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	PackID    string `json:"packId"`
}

func (a Account) PublicView() AccountView {
	return AccountView{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Status:    string(a.Status),
		PackID:    a.PackID,
	}
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// NormalizeEmail lowercases and trims an address for uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether the (normalized) address has a plausible form.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
