package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/syndly/syndly/internal/identity/service"
	"github.com/syndly/syndly/pkg/httpx"
	"github.com/syndly/syndly/pkg/slogx"
)

const maxProvisionBatch = 100

// ProvisionHandler handles POST /v1/accounts:provision.
type ProvisionHandler struct {
	ProvisionService *service.ProvisionService
}

type provisionBody struct {
	Accounts []service.ProvisionRequest `json:"accounts"`
}

// ServeHTTP creates a batch of accounts. The response status reflects
// the aggregate outcome: 201 all created, 207 partial, 422 all rejected.
func (h *ProvisionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var body provisionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(body.Accounts) == 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "accounts must not be empty")
		return
	}
	if len(body.Accounts) > maxProvisionBatch {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "too many accounts in one batch")
		return
	}

	result, err := h.ProvisionService.ProvisionAccounts(ctx, body.Accounts)
	if err != nil {
		if errors.Is(err, service.ErrPackNotFound) {
			log.Error("provisioning pack missing", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "provisioning unavailable")
			return
		}
		log.Error("provisioning batch failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "provisioning failed")
		return
	}

	status := http.StatusCreated
	switch result.Outcome {
	case service.BatchAllFailed:
		status = http.StatusUnprocessableEntity
	case service.BatchPartial:
		status = http.StatusMultiStatus
	}

	httpx.WriteJSON(w, status, result)
}
