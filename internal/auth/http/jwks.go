package http

import (
	"net/http"

	"github.com/foliolab/folio/pkg/httpx"
	"github.com/foliolab/folio/pkg/jwtx"
)

// JWKSHandler exposes the JSON Web Key Set so resource servers can
// verify access tokens without sharing private keys.
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, keys.JWKS())
	}
}
