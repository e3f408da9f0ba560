package http

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/syndly/syndly/internal/identity/domain"
	"github.com/syndly/syndly/internal/identity/service"
	"github.com/syndly/syndly/internal/identity/store"
	"github.com/syndly/syndly/internal/identity/store/drivers/sqlite"
	"github.com/syndly/syndly/pkg/httpx"
	"github.com/syndly/syndly/pkg/idx"
	"github.com/syndly/syndly/pkg/jwtx"
)

const handlerPackID = "pack-standard"

func newHandlerStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func createHandlerPermission(t *testing.T, st store.Store, permContext, action string) domain.Permission {
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

func createHandlerAccount(t *testing.T, st store.Store, email string, status domain.AccountStatus, roleIDs []string) domain.Account {
	t.Helper()

	now := time.Now().UTC()
	a := domain.Account{
		ID:           idx.New().String(),
		FirstName:    "Margaret",
		LastName:     "Hamilton",
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Status:       status,
		PackID:       handlerPackID,
		RoleIDs:      roleIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Accounts().CreateAccount(context.Background(), a))
	return a
}

func newHandlerTokenService(t *testing.T, st store.Store) *service.TokenService {
	t.Helper()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signer, err := jwtx.NewSignerFromKey("test-key", "identity-test", key)
	require.NoError(t, err)

	return &service.TokenService{Store: st, Signer: signer, Issuer: "identity-test"}
}

// activateAs replays the route's post-authn shape: verified claims on
// the context, the account id as a path value.
func activateAs(handler *ActivateHandler, actorID, targetID string) *httptest.ResponseRecorder {
	claims := jwtx.NewSessionClaims(
		actorID,
		jwtx.PackSummary{ID: handlerPackID},
		jwtx.AccountSummary{ID: actorID},
		nil, nil, nil,
		"identity-test", time.Hour, time.Now().UTC(),
	)

	req := httptest.NewRequest(http.MethodPost, "/v1/accounts/"+targetID+"/activate", nil)
	req.SetPathValue("id", targetID)
	req = req.WithContext(context.WithValue(req.Context(), httpx.CtxKeyClaims, &claims))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestActivateRequiresAccountsWritePermission(t *testing.T) {
	ctx := context.Background()
	st := newHandlerStore(t)

	writeAny := createHandlerPermission(t, st, "accounts", "write-*")
	now := time.Now().UTC()
	adminRole := domain.Role{
		ID:               idx.New().String(),
		Name:             "admin",
		OrganizationType: domain.OrgPack,
		OrganizationID:   handlerPackID,
		PermissionIDs:    []string{writeAny.ID},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, st.Roles().CreateRole(ctx, adminRole))
	require.NoError(t, st.Packs().CreatePack(ctx, domain.Pack{
		ID:             handlerPackID,
		Name:           "Standard",
		ContractsLimit: 5,
		CreatedAt:      now,
		UpdatedAt:      now,
	}))

	target := createHandlerAccount(t, st, "target@example.com", domain.StatusOnHold, nil)
	admin := createHandlerAccount(t, st, "admin@example.com", domain.StatusActive, []string{adminRole.ID})
	plain := createHandlerAccount(t, st, "plain@example.com", domain.StatusActive, nil)

	handler := &ActivateHandler{
		OnboardingService: &service.OnboardingService{Store: st, Oracle: service.ContractStatusOracle{}},
		TokenService:      newHandlerTokenService(t, st),
		Resolver:          &service.ResolverService{Store: st},
	}

	t.Run("verified session without the permission is forbidden", func(t *testing.T) {
		rec := activateAs(handler, plain.ID, target.ID)
		require.Equal(t, http.StatusForbidden, rec.Code)

		got, err := st.Accounts().GetAccountByID(ctx, target.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusOnHold, got.Status)
	})

	t.Run("self-activation without the permission is forbidden", func(t *testing.T) {
		rec := activateAs(handler, target.ID, target.ID)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("accounts write grants activation", func(t *testing.T) {
		rec := activateAs(handler, admin.ID, target.ID)
		require.Equal(t, http.StatusOK, rec.Code)

		got, err := st.Accounts().GetAccountByID(ctx, target.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusActive, got.Status)
	})
}
