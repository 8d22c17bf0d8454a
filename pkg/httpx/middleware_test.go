package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foliolab/folio/pkg/httpx"
	"github.com/foliolab/folio/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://auth.test"

func newVerifier(t *testing.T) (*jwtx.KeyManager, jwtx.Verifier) {
	t.Helper()
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{NumKeys: 1})
	require.NoError(t, err)
	return km, jwtx.NewVerifierEdDSA(km.KeySet(), testIssuer)
}

func signToken(t *testing.T, km *jwtx.KeyManager, role string, ttl time.Duration) string {
	t.Helper()
	claims := jwtx.NewAccessClaims("user-1", "u@example.com", role, ttl, testIssuer, time.Now().UTC())
	token, err := km.Signer().Sign(claims)
	require.NoError(t, err)
	return token
}

func TestChainOrdering(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}),
		mark("outer"), mark("inner"),
	)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestAuthnMiddleware(t *testing.T) {
	km, verifier := newVerifier(t)

	var gotUserID, gotRole string
	handler := httpx.AuthnMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = httpx.UserIDFromContext(r.Context())
		claims, _ := r.Context().Value(httpx.CtxKeyClaims).(jwtx.Claims)
		gotRole = claims.Role
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("rejects missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, km, "user", -time.Minute))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("accepts valid token and populates context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, km, "admin", time.Minute))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "user-1", gotUserID)
		require.Equal(t, "admin", gotRole)
	})
}

func TestRequireRole(t *testing.T) {
	km, verifier := newVerifier(t)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	adminOnly := httpx.Chain(ok,
		httpx.AuthnMiddleware(verifier),
		httpx.RequireRole("admin"),
	)

	t.Run("allows matching role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, km, "admin", time.Minute))
		rec := httptest.NewRecorder()
		adminOnly.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("forbids other roles", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, km, "user", time.Minute))
		rec := httptest.NewRecorder()
		adminOnly.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "forbidden")
	})

	t.Run("forbids unknown roles even when listed twice", func(t *testing.T) {
		either := httpx.Chain(ok,
			httpx.AuthnMiddleware(verifier),
			httpx.RequireRole("admin", "user"),
		)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, km, "superuser", time.Minute))
		rec := httptest.NewRecorder()
		either.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}
