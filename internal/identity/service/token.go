package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/syndly/syndly/internal/identity/store"
	"github.com/syndly/syndly/pkg/jwtx"
)

// TokenService assembles and signs the session claim set. Aggregates are
// embedded as public views only; consumers re-resolve permissions via
// the resolver instead of trusting embedded role lists.
type TokenService struct {
	Store      store.Store
	Signer     *jwtx.Signer
	Issuer     string
	SessionTTL time.Duration
}

func (s *TokenService) ttl() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return jwtx.DefaultSessionTTL
}

// Issue loads the account's persona aggregates and returns a signed
// session token.
func (s *TokenService) Issue(ctx context.Context, accountID string) (string, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%w: account %s", ErrNotFound, accountID)
		}
		return "", err
	}

	pack, err := s.Store.Packs().GetPackByID(ctx, account.PackID)
	if err != nil {
		return "", err
	}

	var contractorSummary *jwtx.ContractorSummary
	var staffSummary *jwtx.StaffSummary
	var contractIDs []string

	contractor, err := s.Store.Contractors().GetContractorByAccount(ctx, accountID)
	switch {
	case err == nil:
		view := contractor.PublicView()
		contractorSummary = &jwtx.ContractorSummary{
			ID:     view.ID,
			Type:   view.Type,
			Status: view.Status,
		}

		contracts, err := s.Store.Contracts().ListContractsByContractor(ctx, contractor.ID)
		if err != nil {
			return "", err
		}
		for _, c := range contracts {
			contractIDs = append(contractIDs, c.ID)
		}
	case errors.Is(err, store.ErrNotFound):
		// Staff-only sessions have no contracting entity of their own.
	default:
		return "", err
	}

	staff, err := s.Store.StaffProfiles().GetStaffProfileByAccount(ctx, accountID)
	switch {
	case err == nil:
		view := staff.PublicView()
		staffSummary = &jwtx.StaffSummary{
			ID:           view.ID,
			ContractorID: view.ContractorID,
			Status:       view.Status,
		}
	case errors.Is(err, store.ErrNotFound):
	default:
		return "", err
	}

	accountView := account.PublicView()
	claims := jwtx.NewSessionClaims(
		account.ID,
		jwtx.PackSummary{ID: pack.ID, Name: pack.Name, ContractsLimit: pack.ContractsLimit},
		jwtx.AccountSummary{
			ID:        accountView.ID,
			FirstName: accountView.FirstName,
			LastName:  accountView.LastName,
			Email:     accountView.Email,
			Status:    accountView.Status,
		},
		contractorSummary,
		staffSummary,
		contractIDs,
		s.Issuer,
		s.ttl(),
		time.Now().UTC(),
	)

	return s.Signer.Sign(claims)
}

// Verify parses a presented session token; it is the entry point for
// every authenticated check call.
func (s *TokenService) Verify(token string) (*jwtx.SessionClaims, error) {
	return s.Signer.Verify(token)
}

// BundleFromClaims loads the actor bundle the resolver evaluates for the
// session's personas.
func (s *TokenService) BundleFromClaims(ctx context.Context, claims *jwtx.SessionClaims) (ActorBundle, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, claims.Subject)
	if err != nil {
		return ActorBundle{}, err
	}

	bundle := ActorBundle{Account: account}

	contractor, err := s.Store.Contractors().GetContractorByAccount(ctx, account.ID)
	if err == nil {
		bundle.Contractor = &contractor
	} else if !errors.Is(err, store.ErrNotFound) {
		return ActorBundle{}, err
	}

	staff, err := s.Store.StaffProfiles().GetStaffProfileByAccount(ctx, account.ID)
	if err == nil {
		bundle.Staff = &staff
	} else if !errors.Is(err, store.ErrNotFound) {
		return ActorBundle{}, err
	}

	return bundle, nil
}
