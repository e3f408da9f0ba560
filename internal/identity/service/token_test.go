package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syndly/syndly/internal/identity/domain"
)

func TestTokenIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)
	accountID := provisionAccount(t, st, "tok@example.com")

	svc := newTestTokenService(t, st)

	token, err := svc.Issue(ctx, accountID)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)

	require.Equal(t, accountID, claims.Subject)
	require.Equal(t, testPackID, claims.Pack.ID)
	require.Equal(t, 1, claims.Pack.ContractsLimit)
	require.Equal(t, "tok@example.com", claims.Account.Email)
	require.Equal(t, string(domain.StatusPending), claims.Account.Status)

	require.NotNil(t, claims.Contractor)
	require.Equal(t, string(domain.ContractorNatural), claims.Contractor.Type)
	require.NotNil(t, claims.Staff)
	require.Equal(t, claims.Contractor.ID, claims.Staff.ContractorID)
	require.Len(t, claims.ContractIDs, 1)

	// Secrets and role lists never ride inside the token.
	account, err := st.Accounts().GetAccountByID(ctx, accountID)
	require.NoError(t, err)
	require.NotContains(t, token, account.PasswordHash)
	require.False(t, strings.Contains(token, "roleIds"))
}

func TestTokenBundleFromClaims(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)
	accountID := provisionAccount(t, st, "bun@example.com")

	svc := newTestTokenService(t, st)

	token, err := svc.Issue(ctx, accountID)
	require.NoError(t, err)
	claims, err := svc.Verify(token)
	require.NoError(t, err)

	bundle, err := svc.BundleFromClaims(ctx, claims)
	require.NoError(t, err)
	require.Equal(t, accountID, bundle.Account.ID)
	require.NotNil(t, bundle.Contractor)
	require.NotNil(t, bundle.Staff)
	require.NotEmpty(t, bundle.Contractor.RoleIDs)
	require.NotEmpty(t, bundle.Staff.RoleIDs)
}

func TestTokenIssueUnknownAccount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)

	svc := newTestTokenService(t, st)
	_, err := svc.Issue(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
