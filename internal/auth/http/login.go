package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/foliolab/folio/internal/auth/service"
	"github.com/foliolab/folio/pkg/httpx"
	"github.com/foliolab/folio/pkg/slogx"
)

type LoginHandler struct {
	AuthService *service.AuthService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int64       `json:"expires_in"`
	Principal    *meResponse `json:"principal,omitempty"`
}

// ServeHTTP authenticates an email+password pair and returns a token
// pair. All credential failures come back as the same 401.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			ErrInvalidCredentials.WriteError(w)
			return
		}
		log.Error("login failed", "err", err)
		ErrServerError.WriteError(w)
		return
	}

	resp := tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int64(pair.ExpiresIn / time.Second),
	}
	if p := pair.Principal; p != nil {
		resp.Principal = &meResponse{
			UserID:      p.ID,
			Email:       p.Email,
			DisplayName: p.DisplayName,
			Role:        p.Role.String(),
		}
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
