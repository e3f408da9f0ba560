package http

import (
	"net/http"

	"github.com/syndly/syndly/internal/identity/presence"
	"github.com/syndly/syndly/pkg/httpx"
)

// PresenceHandler tracks client connection lifecycle. Web clients call
// connect on page load and disconnect from an unload beacon; the
// registry keeps the account online while any connection remains.
type PresenceHandler struct {
	Registry *presence.Registry
}

func (h *PresenceHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "missing session")
		return
	}

	h.Registry.Connect(claims.Subject)
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"online": true})
}

func (h *PresenceHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "missing session")
		return
	}

	h.Registry.Disconnect(claims.Subject)
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"online": h.Registry.IsOnline(claims.Subject)})
}
