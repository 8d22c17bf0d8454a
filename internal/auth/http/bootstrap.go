package http

import (
	"errors"
	"net/http"

	"github.com/foliolab/folio/internal/auth/domain"
	"github.com/foliolab/folio/internal/auth/service"
	"github.com/foliolab/folio/pkg/httpx"
	"github.com/foliolab/folio/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

type bootstrapRequest struct {
	Token       string `json:"token"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type bootstrapResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// ServeHTTP seeds the first admin account. Only works once, against an
// empty store, with the pre-configured setup token.
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req bootstrapRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		ErrInvalidRequest.WriteError(w)
		return
	}

	admin, err := h.BootstrapService.Bootstrap(ctx, req.Token, domain.BootstrapData{
		AdminEmail:       req.Email,
		AdminDisplayName: req.DisplayName,
		AdminPassword:    req.Password,
	})
	switch {
	case errors.Is(err, service.ErrBootstrapUnauthorized):
		ErrForbidden.WriteError(w)
	case errors.Is(err, service.ErrBootstrapAlready):
		APIError{
			Code:        "already_bootstrapped",
			Description: "an account already exists",
			Status:      http.StatusConflict,
		}.WriteError(w)
	case errors.Is(err, service.ErrBootstrapInvalid):
		ErrInvalidRequest.WriteError(w)
	case err != nil:
		log.Error("bootstrap failed", "err", err)
		ErrServerError.WriteError(w)
	default:
		httpx.WriteJSON(w, http.StatusCreated, bootstrapResponse{
			UserID: admin.ID,
			Email:  admin.Email,
			Role:   admin.Role.String(),
		})
	}
}
