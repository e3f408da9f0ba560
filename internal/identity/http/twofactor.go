package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/syndly/syndly/internal/identity/service"
	"github.com/syndly/syndly/pkg/httpx"
	"github.com/syndly/syndly/pkg/slogx"
)

// TwoFactorHandler handles passcode verification and resend.
type TwoFactorHandler struct {
	TwoFactorService *service.TwoFactorService
}

type verifyBody struct {
	AccountID string `json:"accountId"`
	Secret    string `json:"secret"`
}

type verifyResponse struct {
	Code  service.VerifyCode `json:"code"`
	Token string             `json:"token,omitempty"`
}

// HandleVerify handles POST /v1/twofactor/verify.
//
// Every reason code comes back as 200: the attempt itself succeeded,
// the body tells the client what to do next.
func (h *TwoFactorHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var body verifyBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if body.AccountID == "" || body.Secret == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "accountId and secret are required")
		return
	}

	result, err := h.TwoFactorService.Verify(ctx, body.AccountID, body.Secret)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "no verification in progress")
			return
		}
		log.Error("verification failed", "account_id", body.AccountID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "verification failed")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, verifyResponse{Code: result.Code, Token: result.Token})
}

type resendBody struct {
	AccountID string `json:"accountId"`
}

type resendResponse struct {
	PassCodeID string `json:"passCodeId"`
	ExpiresAt  string `json:"expiresAt"`
}

// HandleResend handles POST /v1/twofactor/resend. The new secret only
// travels by email; the response carries the id and expiry.
func (h *TwoFactorHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var body resendBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if body.AccountID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "accountId is required")
		return
	}

	issued, err := h.TwoFactorService.Resend(ctx, body.AccountID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "no verification in progress")
			return
		}
		log.Error("resend failed", "account_id", body.AccountID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "resend failed")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resendResponse{
		PassCodeID: issued.ID,
		ExpiresAt:  issued.ExpiresAt.Format(time.RFC3339),
	})
}
