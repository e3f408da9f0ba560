package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/syndly/syndly/internal/identity/domain"
	"github.com/syndly/syndly/internal/identity/presence"
	"github.com/syndly/syndly/internal/identity/service"
	"github.com/syndly/syndly/pkg/httpx"
	"github.com/syndly/syndly/pkg/jwtx"
	"github.com/syndly/syndly/pkg/slogx"
)

// activatePermission gates the administrative OnHold -> Active step.
// Exact "accounts:write-all" or the "accounts:write-*" wildcard grants.
var activatePermission = service.RequiredPermission{
	Context: "accounts",
	Action:  "write-all",
	Payload: "write",
}

// ActivateHandler handles POST /v1/accounts/{id}/activate. Activation is
// an administrative action: the caller needs the accounts write
// permission on one of its personas, a verified session alone is not
// enough.
type ActivateHandler struct {
	OnboardingService *service.OnboardingService
	TokenService      *service.TokenService
	Resolver          *service.ResolverService
}

func (h *ActivateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID := r.PathValue("id")
	if accountID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "missing account id")
		return
	}

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "missing session")
		return
	}

	allowed, err := h.authorize(ctx, claims)
	if err != nil {
		log.Error("activation authorization failed", "account_id", claims.Subject, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "activation failed")
		return
	}
	if !allowed {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "account administration permission required")
		return
	}

	result, err := h.OnboardingService.Activate(ctx, accountID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "account not found")
			return
		}
		log.Error("activation failed", "account_id", accountID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "activation failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, result)
}

// authorize resolves the caller's bundle and checks the activate
// permission against each persona the session carries.
func (h *ActivateHandler) authorize(ctx context.Context, claims *jwtx.SessionClaims) (bool, error) {
	bundle, err := h.TokenService.BundleFromClaims(ctx, claims)
	if err != nil {
		return false, err
	}

	personas := []domain.Persona{domain.PersonaAccount, domain.PersonaContractor, domain.PersonaStaff}
	for _, persona := range personas {
		ok, err := h.Resolver.HasPermission(ctx, persona, bundle, activatePermission)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// CheckHandler handles GET /v1/session/check: the authenticated client
// polls it to learn its onboarding stage and where to navigate.
type CheckHandler struct {
	OnboardingService *service.OnboardingService
	Presence          *presence.Registry
}

type checkResponse struct {
	service.ContextDescriptor
	Online bool `json:"online"`
}

func (h *CheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "missing session")
		return
	}

	descriptor, err := h.OnboardingService.Check(ctx, claims)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "account not found")
			return
		}
		log.Error("session check failed", "account_id", claims.Subject, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "session check failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, checkResponse{
		ContextDescriptor: descriptor,
		Online:            h.Presence.IsOnline(claims.Subject),
	})
}
