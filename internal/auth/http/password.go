package http

import (
	"errors"
	"net/http"

	"github.com/foliolab/folio/internal/auth/service"
	"github.com/foliolab/folio/pkg/httpx"
	"github.com/foliolab/folio/pkg/slogx"
)

type PasswordHandler struct {
	AuthService *service.AuthService
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ServeHTTP changes the caller's password. Every live session is
// revoked on success; the client should log in again.
func (h *PasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		ErrInvalidToken.WriteError(w)
		return
	}

	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		ErrInvalidRequest.WriteError(w)
		return
	}

	err := h.AuthService.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrWeakPassword):
		APIError{
			Code:        "invalid_request",
			Description: "new password is too short",
			Status:      http.StatusBadRequest,
		}.WriteError(w)
	case err != nil:
		log.Error("password change failed", "err", err)
		ErrServerError.WriteError(w)
	default:
		httpx.NoCache(w)
		w.WriteHeader(http.StatusNoContent)
	}
}
