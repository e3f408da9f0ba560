package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syndly/syndly/internal/identity/domain"
)

func TestProvisionAccountsCreatesFullAggregate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	pack := seedTestPack(t, st)

	svc := &ProvisionService{Store: st, PackID: testPackID}
	result, err := svc.ProvisionAccounts(ctx, []ProvisionRequest{validRequest("ada@example.com")})
	require.NoError(t, err)
	require.Equal(t, BatchAllSuccess, result.Outcome)
	require.Len(t, result.Items, 1)
	require.Equal(t, ItemCreated, result.Items[0].Status)

	accountID := result.Items[0].AccountID

	account, err := st.Accounts().GetAccountByID(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, account.Status)
	require.Equal(t, "ada@example.com", account.Email)
	require.NotEqual(t, "correct-horse-battery", account.PasswordHash)
	require.True(t, strings.HasPrefix(account.PasswordHash, "$argon2id$"))

	contractor, err := st.Contractors().GetContractorByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, domain.ContractorNatural, contractor.Type)
	require.ElementsMatch(t, pack.RolesForScope(domain.ScopeAdmin), contractor.RoleIDs)

	staff, err := st.StaffProfiles().GetStaffProfileByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, contractor.ID, staff.ContractorID)
	require.ElementsMatch(t, pack.RolesForScope(domain.ScopeManager), staff.RoleIDs)

	contracts, err := st.Contracts().ListContractsByContractor(ctx, contractor.ID)
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	require.Equal(t, domain.ContractPending, contracts[0].Status)

	cred, err := st.TwoFactor().GetCredentialByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Equal(t, domain.CredentialPending, cred.Status)
	require.Len(t, cred.PassCodes, 1)
	require.Equal(t, domain.PassCodePending, cred.PassCodes[0].Status)
	require.Len(t, cred.PassCodes[0].Secret, 6)

	notifications, err := st.Notifications().ListNotificationsByAccount(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)

	emails, err := st.Outbox().ListPendingEmails(ctx, 10)
	require.NoError(t, err)
	require.Len(t, emails, 1)
	require.Equal(t, "ada@example.com", emails[0].Recipient)
	require.Contains(t, emails[0].Body, cred.PassCodes[0].Secret)
}

func TestProvisionAccountsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)

	svc := &ProvisionService{Store: st, PackID: testPackID}

	first := validRequest("dup@example.com")
	second := validRequest("Dup@Example.com") // same address after normalization
	third := validRequest("other@example.com")

	result, err := svc.ProvisionAccounts(ctx, []ProvisionRequest{first, second, third})
	require.NoError(t, err)
	require.Equal(t, BatchPartial, result.Outcome)

	require.Equal(t, ItemCreated, result.Items[0].Status)
	require.Equal(t, ItemConflict, result.Items[1].Status)
	require.Equal(t, "userEmail", result.Items[1].Errors[0].Field)
	require.Equal(t, ItemCreated, result.Items[2].Status)

	// The rejected request's transaction rolled back everything it wrote:
	// only the two created accounts left side effects behind.
	emails, err := st.Outbox().ListPendingEmails(ctx, 10)
	require.NoError(t, err)
	require.Len(t, emails, 2)
}

func TestProvisionAccountsValidation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTestPack(t, st)

	svc := &ProvisionService{Store: st, PackID: testPackID}

	bad := ProvisionRequest{
		FirstName: "",
		LastName:  "Hopper",
		Email:     "not-an-address",
		Secret:    "short",
		Type:      "Partnership",
	}

	result, err := svc.ProvisionAccounts(ctx, []ProvisionRequest{bad})
	require.NoError(t, err)
	require.Equal(t, BatchAllFailed, result.Outcome)
	require.Equal(t, ItemInvalid, result.Items[0].Status)

	fields := make([]string, 0, len(result.Items[0].Errors))
	for _, fe := range result.Items[0].Errors {
		fields = append(fields, fe.Field)
	}
	require.ElementsMatch(t, []string{"firstName", "userEmail", "secret", "type"}, fields)

	// Nothing was written.
	empty, err := st.Accounts().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)
}

func TestProvisionAccountsMissingPackFailsBatch(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	svc := &ProvisionService{Store: st, PackID: "pack-missing"}
	_, err := svc.ProvisionAccounts(ctx, []ProvisionRequest{validRequest("ada@example.com")})
	require.ErrorIs(t, err, ErrPackNotFound)

	empty, err := st.Accounts().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)
}
