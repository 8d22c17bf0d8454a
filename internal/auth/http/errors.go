package http

import (
	"net/http"

	"github.com/foliolab/folio/pkg/httpx"
)

// APIError is the JSON error envelope every endpoint returns.
type APIError struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	Status      int    `json:"-"`
}

func (e APIError) Error() string { return e.Code }

// WriteError renders the error as a JSON response.
func (e APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.Status, e)
}

// The uniform error taxonomy. Credential failures never say which part
// was wrong, and token failures never say why the token was bad.
var (
	ErrInvalidCredentials = APIError{
		Code:        "invalid_credentials",
		Description: "email or password is incorrect",
		Status:      http.StatusUnauthorized,
	}
	ErrInvalidToken = APIError{
		Code:        "invalid_token",
		Description: "token is missing, malformed, expired or revoked",
		Status:      http.StatusUnauthorized,
	}
	ErrForbidden = APIError{
		Code:        "forbidden",
		Description: "caller role is not permitted for this resource",
		Status:      http.StatusForbidden,
	}
	ErrInvalidRequest = APIError{
		Code:        "invalid_request",
		Description: "request body is missing or malformed",
		Status:      http.StatusBadRequest,
	}
	ErrServerError = APIError{
		Code:   "server_error",
		Status: http.StatusInternalServerError,
	}
)
