package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/syndly/syndly/internal/identity/domain"
	"github.com/syndly/syndly/internal/identity/store"
	"github.com/syndly/syndly/pkg/cryptox"
	"github.com/syndly/syndly/pkg/idx"
	"github.com/syndly/syndly/pkg/slogx"
)

// ProvisionRequest is one account to create. Secret is the initial
// password in clear; it is hashed before anything touches the store and
// never logged.
type ProvisionRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Email     string `json:"userEmail"`
	Secret    string `json:"secret"`
	Type      string `json:"type"` // Natural or Legal
}

// FieldError names the offending input field so clients can highlight it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ProvisionItem is the per-request result inside a batch.
type ProvisionItem struct {
	Status    ItemStatus   `json:"status"`
	AccountID string       `json:"accountId,omitempty"`
	Errors    []FieldError `json:"errors,omitempty"`
}

// ProvisionResult is the batch-level response: every item in request
// order plus the aggregate outcome.
type ProvisionResult struct {
	Outcome BatchOutcome    `json:"outcome"`
	Items   []ProvisionItem `json:"items"`
}

type ProvisionService struct {
	Store  store.Store
	PackID string // pack every self-service signup lands on
}

// ProvisionAccounts creates one full account aggregate per request, each
// in its own transaction. Requests are independent: one failing rolls
// back only its own writes and the rest of the batch proceeds.
func (s *ProvisionService) ProvisionAccounts(ctx context.Context, reqs []ProvisionRequest) (ProvisionResult, error) {
	log := slogx.FromContext(ctx)

	pack, err := s.Store.Packs().GetPackByID(ctx, s.PackID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// A missing pack is deployment misconfiguration; it fails the
			// whole batch before any account is attempted.
			return ProvisionResult{}, fmt.Errorf("%w: %s", ErrPackNotFound, s.PackID)
		}
		return ProvisionResult{}, err
	}

	result := ProvisionResult{Items: make([]ProvisionItem, 0, len(reqs))}
	var succeeded, failed int

	for i, req := range reqs {
		item := s.provisionOne(ctx, pack, req)
		if item.Status == ItemCreated {
			succeeded++
		} else {
			failed++
			log.Info("provisioning request rejected",
				slog.Int("index", i),
				slog.String("status", string(item.Status)),
			)
		}
		result.Items = append(result.Items, item)
	}

	result.Outcome = outcomeOf(succeeded, failed)
	log.Info("provisioning batch finished",
		slog.String("outcome", string(result.Outcome)),
		slog.Int("succeeded", succeeded),
		slog.Int("failed", failed),
	)
	return result, nil
}

func (s *ProvisionService) provisionOne(ctx context.Context, pack domain.Pack, req ProvisionRequest) ProvisionItem {
	if errs := validateProvisionRequest(req); len(errs) > 0 {
		return ProvisionItem{Status: ItemInvalid, Errors: errs}
	}

	hash, err := cryptox.HashPassword(req.Secret)
	if err != nil {
		return ProvisionItem{Status: ItemFailed, Errors: []FieldError{{Field: "secret", Message: "could not process secret"}}}
	}

	now := time.Now().UTC()
	accountID := idx.New().String()

	account := domain.Account{
		ID:           accountID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Address:      req.Address,
		Phone:        req.Phone,
		Email:        domain.NormalizeEmail(req.Email),
		PasswordHash: hash,
		Status:       domain.StatusPending,
		PackID:       pack.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	contractor := domain.Contractor{
		ID:        idx.New().String(),
		AccountID: accountID,
		Type:      domain.ContractorType(req.Type),
		Status:    domain.StatusPending,
		RoleIDs:   pack.RolesForScope(domain.ScopeAdmin),
		CreatedAt: now,
		UpdatedAt: now,
	}

	staff := domain.StaffProfile{
		ID:           idx.New().String(),
		AccountID:    accountID,
		ContractorID: contractor.ID,
		Status:       domain.StatusPending,
		RoleIDs:      pack.RolesForScope(domain.ScopeManager),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	contract := domain.Contract{
		ID:            idx.New().String(),
		Status:        domain.ContractPending,
		ContractorIDs: []string{contractor.ID},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	cred, err := NewCredential(accountID, now)
	if err != nil {
		return ProvisionItem{Status: ItemFailed, Errors: []FieldError{{Field: "", Message: "could not issue verification code"}}}
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().CreateAccount(ctx, account); err != nil {
			return err
		}
		if err := tx.Contractors().CreateContractor(ctx, contractor); err != nil {
			return err
		}
		if err := tx.StaffProfiles().CreateStaffProfile(ctx, staff); err != nil {
			return err
		}
		if err := tx.Contracts().CreateContract(ctx, contract); err != nil {
			return err
		}
		if err := tx.TwoFactor().CreateCredential(ctx, cred); err != nil {
			return err
		}
		if err := tx.Notifications().CreateNotification(ctx, domain.Notification{
			ID:      idx.New().String(),
			Subject: "Welcome",
			Body:    "Your account was created. Verify your email address to continue.",
			Targets: []domain.NotificationTarget{{AccountID: accountID}},
		}); err != nil {
			return err
		}
		return tx.Outbox().EnqueueEmail(ctx, verificationEmail(account.Email, cred.PassCodes[0].Secret))
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ProvisionItem{
				Status: ItemConflict,
				Errors: []FieldError{{Field: "userEmail", Message: "address already registered"}},
			}
		}
		return ProvisionItem{Status: ItemFailed, Errors: []FieldError{{Field: "", Message: "provisioning failed"}}}
	}

	return ProvisionItem{Status: ItemCreated, AccountID: accountID}
}

const minSecretLength = 8

func validateProvisionRequest(req ProvisionRequest) []FieldError {
	var errs []FieldError

	if req.FirstName == "" {
		errs = append(errs, FieldError{Field: "firstName", Message: "required"})
	}
	if req.LastName == "" {
		errs = append(errs, FieldError{Field: "lastName", Message: "required"})
	}

	email := domain.NormalizeEmail(req.Email)
	if email == "" {
		errs = append(errs, FieldError{Field: "userEmail", Message: "required"})
	} else if !domain.ValidEmail(email) {
		errs = append(errs, FieldError{Field: "userEmail", Message: "malformed address"})
	}

	if len(req.Secret) < minSecretLength {
		errs = append(errs, FieldError{Field: "secret", Message: "too short"})
	}

	switch domain.ContractorType(req.Type) {
	case domain.ContractorNatural, domain.ContractorLegal:
	default:
		errs = append(errs, FieldError{Field: "type", Message: "must be Natural or Legal"})
	}

	return errs
}
