package http

import (
	"net/http"

	"github.com/foliolab/folio/internal/auth/service"
	"github.com/foliolab/folio/pkg/httpx"
	"github.com/foliolab/folio/pkg/slogx"
)

type LogoutHandler struct {
	AuthService *service.AuthService
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutResponse struct {
	OK bool `json:"ok"`
}

// ServeHTTP revokes the presented refresh token. Always 200 for
// well-formed requests, whether or not the token was ever issued.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req logoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AuthService.Logout(ctx, req.RefreshToken); err != nil {
		log.Error("logout failed", "err", err)
		ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, logoutResponse{OK: true})
}
