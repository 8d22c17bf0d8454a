package http

import (
	"errors"
	"net/http"

	"github.com/foliolab/folio/internal/auth/store"
	"github.com/foliolab/folio/pkg/httpx"
	"github.com/foliolab/folio/pkg/slogx"
)

type VerifyHandler struct {
	Store store.Store
}

type verifyResponse struct {
	Valid     bool       `json:"valid"`
	Principal meResponse `json:"principal"`
}

// ServeHTTP confirms the bearer access token and echoes the principal it
// belongs to. Collaborator services call this when they want a yes/no
// answer without decoding the token themselves.
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
			ErrInvalidToken.WriteError(w)
			return
		}
		log.Warn("failed to load principal", "principal_id", userID, "err", err)
		ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, verifyResponse{
		Valid: true,
		Principal: meResponse{
			UserID:      p.ID,
			Email:       p.Email,
			DisplayName: p.DisplayName,
			Role:        p.Role.String(),
		},
	})
}
