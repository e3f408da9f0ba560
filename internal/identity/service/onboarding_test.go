package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/syndly/syndly/internal/identity/domain"
	"github.com/syndly/syndly/internal/identity/store"
	"github.com/syndly/syndly/pkg/idx"
	"github.com/syndly/syndly/pkg/jwtx"
)

// countingOracle reports a fixed status and records how it was called.
type countingOracle struct {
	status string
	counts map[string]int
	calls  int
}

func (o *countingOracle) DeriveStatus(
	_ context.Context,
	_ domain.Contract,
	_ domain.Account,
	_ domain.Contractor,
	_ *domain.StaffProfile,
) (CompletenessResult, error) {
	o.calls++
	return CompletenessResult{Status: o.status, Counts: o.counts}, nil
}

func claimsFor(accountID string) *jwtx.SessionClaims {
	claims := jwtx.NewSessionClaims(accountID,
		jwtx.PackSummary{}, jwtx.AccountSummary{}, nil, nil, nil,
		"identity-test", time.Hour, time.Now().UTC())
	return &claims
}

func TestActivate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)
	accountID := provisionAccount(t, st, "act@example.com")

	svc := &OnboardingService{Store: st, Oracle: ContractStatusOracle{}}

	t.Run("not applicable from Pending", func(t *testing.T) {
		result, err := svc.Activate(ctx, accountID)
		require.NoError(t, err)
		require.False(t, result.Applied)
		require.Equal(t, domain.StatusPending, result.Status)
	})

	t.Run("applies from OnHold and mirrors the contractor", func(t *testing.T) {
		require.NoError(t, st.Accounts().UpdateAccountStatus(ctx, accountID, domain.StatusOnHold))

		result, err := svc.Activate(ctx, accountID)
		require.NoError(t, err)
		require.True(t, result.Applied)
		require.Equal(t, domain.StatusActive, result.Status)

		contractor, err := st.Contractors().GetContractorByAccount(ctx, accountID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusActive, contractor.Status)
	})

	t.Run("second call is a no-op", func(t *testing.T) {
		result, err := svc.Activate(ctx, accountID)
		require.NoError(t, err)
		require.False(t, result.Applied)
		require.Equal(t, domain.StatusActive, result.Status)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.Activate(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCheckDerivesDescriptor(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)
	accountID := provisionAccount(t, st, "chk@example.com")
	require.NoError(t, st.Accounts().UpdateAccountStatus(ctx, accountID, domain.StatusOnHold))

	oracle := &countingOracle{
		status: string(domain.StatusOnHold),
		counts: map[string]int{StepSites: 1, StepBuildings: 2},
	}
	svc := &OnboardingService{Store: st, Oracle: oracle}

	descriptor, err := svc.Check(ctx, claimsFor(accountID))
	require.NoError(t, err)
	require.Equal(t, domain.StatusOnHold, descriptor.Status)
	require.Equal(t, "/onboarding", descriptor.Redirect)
	require.Equal(t, []Step{
		{Context: StepSites, Done: true},
		{Context: StepBuildings, Done: true},
		{Context: StepApartments, Done: false},
	}, descriptor.Steps)

	t.Run("idempotent without intervening mutation", func(t *testing.T) {
		again, err := svc.Check(ctx, claimsFor(accountID))
		require.NoError(t, err)
		require.Equal(t, descriptor, again)
		require.Equal(t, 2, oracle.calls)
	})
}

func TestCheckPersistsDerivedStatus(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)
	accountID := provisionAccount(t, st, "chk@example.com")
	require.NoError(t, st.Accounts().UpdateAccountStatus(ctx, accountID, domain.StatusOnHold))

	t.Run("persists a lifecycle status", func(t *testing.T) {
		oracle := &countingOracle{status: string(domain.StatusActive), counts: map[string]int{}}
		svc := &OnboardingService{Store: st, Oracle: oracle}

		descriptor, err := svc.Check(ctx, claimsFor(accountID))
		require.NoError(t, err)
		require.Equal(t, domain.StatusActive, descriptor.Status)

		account, err := st.Accounts().GetAccountByID(ctx, accountID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusActive, account.Status)
	})

	t.Run("contract-terminal statuses are never persisted", func(t *testing.T) {
		oracle := &countingOracle{status: string(domain.ContractCompleted), counts: map[string]int{}}
		svc := &OnboardingService{Store: st, Oracle: oracle}

		descriptor, err := svc.Check(ctx, claimsFor(accountID))
		require.NoError(t, err)
		require.Equal(t, domain.StatusActive, descriptor.Status)

		account, err := st.Accounts().GetAccountByID(ctx, accountID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusActive, account.Status)
	})
}

func TestCheckHeadroomForcesSuspension(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st) // ContractsLimit = 1
	accountID := provisionAccount(t, st, "over@example.com")
	require.NoError(t, st.Accounts().UpdateAccountStatus(ctx, accountID, domain.StatusActive))

	contractor, err := st.Contractors().GetContractorByAccount(ctx, accountID)
	require.NoError(t, err)

	// A second contract pushes the account over the pack limit.
	now := time.Now().UTC()
	require.NoError(t, st.Contracts().CreateContract(ctx, domain.Contract{
		ID:            idx.New().String(),
		Status:        domain.ContractPending,
		ContractorIDs: []string{contractor.ID},
		CreatedAt:     now,
		UpdatedAt:     now,
	}))

	svc := &OnboardingService{Store: st, Oracle: ContractStatusOracle{}}

	descriptor, err := svc.Check(ctx, claimsFor(accountID))
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuspended, descriptor.Status)
	require.Equal(t, "/suspended", descriptor.Redirect)
	require.Empty(t, descriptor.Steps)

	account, err := st.Accounts().GetAccountByID(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuspended, account.Status)
}

func TestCheckRejectsUnknownStoredStatus(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)
	accountID := provisionAccount(t, st, "bad@example.com")

	// Corrupt the stored status; nothing may coerce it back silently.
	require.NoError(t, st.Accounts().UpdateAccountStatus(ctx, accountID, domain.AccountStatus("Archived")))

	svc := &OnboardingService{Store: st, Oracle: ContractStatusOracle{}}
	_, err := svc.Check(ctx, claimsFor(accountID))
	require.ErrorIs(t, err, domain.ErrStatusCompatibility)

	_, err = svc.Activate(ctx, accountID)
	require.ErrorIs(t, err, domain.ErrStatusCompatibility)
}

func TestCheckUnknownAccount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)

	svc := &OnboardingService{Store: st, Oracle: ContractStatusOracle{}}
	_, err := svc.Check(ctx, claimsFor("missing"))
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, store.ErrNotFound)
}
