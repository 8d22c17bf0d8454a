package http

import (
	"errors"
	"net/http"

	"github.com/foliolab/folio/internal/auth/store"
	"github.com/foliolab/folio/pkg/httpx"
	"github.com/foliolab/folio/pkg/slogx"
)

type MeHandler struct {
	Store store.Store
}

type meResponse struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
}

// ServeHTTP returns the authenticated principal.
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		ErrInvalidToken.WriteError(w)
		return
	}

	p, err := h.Store.Principals().GetPrincipalByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Token was valid but the account is gone.
			ErrInvalidToken.WriteError(w)
			return
		}
		log.Warn("failed to load principal", "principal_id", userID, "err", err)
		ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, meResponse{
		UserID:      p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Role:        p.Role.String(),
	})
}
