package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/syndly/syndly/internal/identity/domain"
	"github.com/syndly/syndly/internal/identity/store"
	"github.com/syndly/syndly/internal/identity/store/drivers/sqlite"
	"github.com/syndly/syndly/pkg/idx"
	"github.com/syndly/syndly/pkg/jwtx"
)

const testPackID = "pack-standard"

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestSigner(t *testing.T) *jwtx.Signer {
	t.Helper()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signer, err := jwtx.NewSignerFromKey("test-key", "identity-test", key)
	require.NoError(t, err)
	return signer
}

func newTestTokenService(t *testing.T, st store.Store) *TokenService {
	t.Helper()
	return &TokenService{
		Store:  st,
		Signer: newTestSigner(t),
		Issuer: "identity-test",
	}
}

// createPermission inserts a catalog entry and returns it.
func createPermission(t *testing.T, st store.Store, permContext, action string) domain.Permission {
	t.Helper()

	p := domain.Permission{
		ID:        idx.New().String(),
		Context:   permContext,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.Permissions().CreatePermission(context.Background(), p))
	return p
}

// createRole inserts a pack-owned role holding the given permissions and
// inheritance edges.
func createRole(t *testing.T, st store.Store, name string, permIDs, inherits []string) domain.Role {
	t.Helper()

	now := time.Now().UTC()
	r := domain.Role{
		ID:               idx.New().String(),
		Name:             name,
		OrganizationType: domain.OrgPack,
		OrganizationID:   testPackID,
		PermissionIDs:    permIDs,
		InheritsFrom:     inherits,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, st.Roles().CreateRole(context.Background(), r))
	return r
}

// seedTestPack installs the standard pack with one ADMIN role carrying
// full apartment permissions and one MANAGER role with read-own.
func seedTestPack(t *testing.T, st store.Store) domain.Pack {
	t.Helper()

	readAll := createPermission(t, st, "apartments", "read-all")
	readOwn := createPermission(t, st, "apartments", "read-own")
	readAny := createPermission(t, st, "apartments", "read-*")

	admin := createRole(t, st, "admin", []string{readAll.ID, readAny.ID}, nil)
	manager := createRole(t, st, "manager", []string{readOwn.ID}, nil)

	now := time.Now().UTC()
	pack := domain.Pack{
		ID:             testPackID,
		Name:           "Standard",
		ContractsLimit: 1,
		RoleTemplates: []domain.PackRoleTemplate{
			{RoleID: admin.ID, Scope: domain.ScopeAdmin},
			{RoleID: manager.ID, Scope: domain.ScopeManager},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Packs().CreatePack(context.Background(), pack))
	return pack
}

func validRequest(email string) ProvisionRequest {
	return ProvisionRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Address:   "12 Analytical Way",
		Phone:     "+61 400 000 000",
		Email:     email,
		Secret:    "correct-horse-battery",
		Type:      string(domain.ContractorNatural),
	}
}

// provisionAccount runs a full single-request provisioning and returns
// the new account id.
func provisionAccount(t *testing.T, st store.Store, email string) string {
	t.Helper()

	svc := &ProvisionService{Store: st, PackID: testPackID}
	result, err := svc.ProvisionAccounts(context.Background(), []ProvisionRequest{validRequest(email)})
	require.NoError(t, err)
	require.Equal(t, BatchAllSuccess, result.Outcome)
	require.Equal(t, ItemCreated, result.Items[0].Status)
	return result.Items[0].AccountID
}
