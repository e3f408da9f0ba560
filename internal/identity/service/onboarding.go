package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/syndly/syndly/internal/identity/domain"
	"github.com/syndly/syndly/internal/identity/store"
	"github.com/syndly/syndly/pkg/jwtx"
	"github.com/syndly/syndly/pkg/slogx"
)

// Setup step contexts reported to the client wizard.
const (
	StepSites      = "sites"
	StepBuildings  = "buildings"
	StepApartments = "apartments"
)

// Step is one onboarding requirement: a domain context plus whether it
// has been completed. Explicit tagged state, no live-computed accessors.
type Step struct {
	Context string `json:"context"`
	Done    bool   `json:"done"`
}

// ContextDescriptor is derived, never stored: the remaining onboarding
// steps plus the redirect appropriate to the current status and account
// type.
type ContextDescriptor struct {
	Status   domain.AccountStatus `json:"status"`
	Steps    []Step               `json:"steps"`
	Redirect string               `json:"redirect"`
}

// CompletenessResult is what the external oracle reports for a contract:
// its own derived status plus the counts backing the setup wizard.
type CompletenessResult struct {
	Status string // contract-derived status, may be outside the account enum
	Counts map[string]int
}

// CompletenessOracle supplies counts of registered sites, buildings and
// apartments under a contract. It lives with the property CRUD modules;
// this subsystem only consumes it.
type CompletenessOracle interface {
	DeriveStatus(
		ctx context.Context,
		contract domain.Contract,
		account domain.Account,
		contractor domain.Contractor,
		staff *domain.StaffProfile,
	) (CompletenessResult, error)
}

// ContractStatusOracle derives the account status from the contract's
// own lifecycle stage. It is the stand-in used until the property
// modules register their completeness-aware oracle.
type ContractStatusOracle struct{}

func (ContractStatusOracle) DeriveStatus(
	_ context.Context,
	contract domain.Contract,
	account domain.Account,
	_ domain.Contractor,
	_ *domain.StaffProfile,
) (CompletenessResult, error) {
	status := string(account.Status)
	switch contract.Status {
	case domain.ContractActive:
		status = string(domain.StatusActive)
	case domain.ContractCompleted, domain.ContractStopped:
		status = string(contract.Status)
	}
	return CompletenessResult{Status: status, Counts: map[string]int{}}, nil
}

// derivedStatusExcluded lists oracle statuses that never overwrite the
// stored account status.
var derivedStatusExcluded = map[string]struct{}{
	string(domain.StatusInactive):    {},
	string(domain.ContractCompleted): {},
	string(domain.ContractStopped):   {},
}

// ActivationResult reports an activation attempt. A request from any
// state other than OnHold is a no-op, not an error.
type ActivationResult struct {
	Applied bool                 `json:"applied"`
	Status  domain.AccountStatus `json:"status"`
}

type OnboardingService struct {
	Store  store.Store
	Oracle CompletenessOracle
}

// Activate performs the administrative OnHold -> Active transition. Any
// other current status reports not-applicable and leaves it unchanged.
func (s *OnboardingService) Activate(ctx context.Context, accountID string) (ActivationResult, error) {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ActivationResult{}, fmt.Errorf("%w: account %s", ErrNotFound, accountID)
		}
		return ActivationResult{}, err
	}

	if _, err := domain.ParseAccountStatus(string(account.Status)); err != nil {
		return ActivationResult{}, err
	}

	if account.Status != domain.StatusOnHold {
		log.Info("activation not applicable",
			slog.String("account_id", accountID),
			slog.String("status", string(account.Status)),
		)
		return ActivationResult{Applied: false, Status: account.Status}, nil
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().UpdateAccountStatus(ctx, accountID, domain.StatusActive); err != nil {
			return err
		}
		contractor, err := tx.Contractors().GetContractorByAccount(ctx, accountID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil // account without a contractor: nothing to mirror
			}
			return err
		}
		return tx.Contractors().UpdateContractorStatus(ctx, contractor.ID, domain.StatusActive)
	})
	if err != nil {
		return ActivationResult{}, err
	}

	log.Info("account activated", slog.String("account_id", accountID))
	return ActivationResult{Applied: true, Status: domain.StatusActive}, nil
}

// Check re-evaluates the account's derived status on an authenticated
// request and returns the context descriptor driving the setup wizard.
// With no intervening mutation, repeated calls return the same result.
func (s *OnboardingService) Check(ctx context.Context, claims *jwtx.SessionClaims) (ContextDescriptor, error) {
	log := slogx.FromContext(ctx)

	account, err := s.Store.Accounts().GetAccountByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ContextDescriptor{}, fmt.Errorf("%w: account %s", ErrNotFound, claims.Subject)
		}
		return ContextDescriptor{}, err
	}

	// Anything outside the known enum is corrupted data, never coerced.
	status, err := domain.ParseAccountStatus(string(account.Status))
	if err != nil {
		return ContextDescriptor{}, err
	}

	contractor, err := s.Store.Contractors().GetContractorByAccount(ctx, account.ID)
	if err != nil {
		return ContextDescriptor{}, err
	}

	pack, err := s.Store.Packs().GetPackByID(ctx, account.PackID)
	if err != nil {
		return ContextDescriptor{}, err
	}

	count, err := s.Store.Contracts().CountContractsByContractor(ctx, contractor.ID)
	if err != nil {
		return ContextDescriptor{}, err
	}

	// No contract headroom means the account holds either zero contracts
	// or more than the pack allows; both force Suspended.
	if count < 1 || count > pack.ContractsLimit {
		if status != domain.StatusSuspended {
			if err := s.Store.Accounts().UpdateAccountStatus(ctx, account.ID, domain.StatusSuspended); err != nil {
				return ContextDescriptor{}, err
			}
			log.Warn("account suspended by contract headroom check",
				slog.String("account_id", account.ID),
				slog.Int("contracts", count),
				slog.Int("limit", pack.ContractsLimit),
			)
		}
		return ContextDescriptor{
			Status:   domain.StatusSuspended,
			Redirect: redirectFor(domain.StatusSuspended, contractor.Type),
		}, nil
	}

	contracts, err := s.Store.Contracts().ListContractsByContractor(ctx, contractor.ID)
	if err != nil {
		return ContextDescriptor{}, err
	}

	staff := s.loadStaff(ctx, account.ID)

	result, err := s.Oracle.DeriveStatus(ctx, contracts[0], account, contractor, staff)
	if err != nil {
		return ContextDescriptor{}, err
	}

	if _, excluded := derivedStatusExcluded[result.Status]; !excluded && result.Status != string(status) {
		derived, err := domain.ParseAccountStatus(result.Status)
		if err != nil {
			return ContextDescriptor{}, err
		}
		if err := s.Store.Accounts().UpdateAccountStatus(ctx, account.ID, derived); err != nil {
			return ContextDescriptor{}, err
		}
		log.Info("derived status persisted",
			slog.String("account_id", account.ID),
			slog.String("from", string(status)),
			slog.String("to", string(derived)),
		)
		status = derived
	}

	return ContextDescriptor{
		Status:   status,
		Steps:    deriveSteps(result.Counts),
		Redirect: redirectFor(status, contractor.Type),
	}, nil
}

func (s *OnboardingService) loadStaff(ctx context.Context, accountID string) *domain.StaffProfile {
	staff, err := s.Store.StaffProfiles().GetStaffProfileByAccount(ctx, accountID)
	if err != nil {
		return nil
	}
	return &staff
}

// deriveSteps is a pure function from oracle counts to wizard steps.
func deriveSteps(counts map[string]int) []Step {
	steps := make([]Step, 0, 3)
	for _, name := range []string{StepSites, StepBuildings, StepApartments} {
		steps = append(steps, Step{Context: name, Done: counts[name] > 0})
	}
	return steps
}

// redirectFor picks the client entry point for the current stage.
func redirectFor(status domain.AccountStatus, typ domain.ContractorType) string {
	switch status {
	case domain.StatusPending:
		return "/verify"
	case domain.StatusOnHold:
		return "/onboarding"
	case domain.StatusActive:
		if typ == domain.ContractorLegal {
			return "/dashboard/organization"
		}
		return "/dashboard"
	case domain.StatusSuspended:
		return "/suspended"
	case domain.StatusInactive:
		return "/reactivate"
	default:
		return "/"
	}
}
