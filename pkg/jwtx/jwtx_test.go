package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://auth.test"

func newTestKeyManager(t *testing.T, n int) *KeyManager {
	t.Helper()
	km, err := NewEphemeralKeyManager(KeyManagerOptions{NumKeys: n})
	require.NoError(t, err)
	return km
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	km := newTestKeyManager(t, 3)
	verifier := NewVerifierEdDSA(km.KeySet(), testIssuer)

	claims := NewAccessClaims("user-1", "admin@example.com", "admin",
		DefaultAccessTokenTTL, testIssuer, time.Now().UTC())

	token, err := km.Signer().Sign(claims)
	require.NoError(t, err)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "admin@example.com", got.Email)
	require.Equal(t, "admin", got.Role)
	require.Equal(t, KindAccess, got.Kind)
	require.NotEmpty(t, got.ID)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	km := newTestKeyManager(t, 1)
	verifier := NewVerifierEdDSA(km.KeySet(), testIssuer)

	claims := NewAccessClaims("user-1", "u@example.com", "user",
		time.Minute, testIssuer, time.Now().UTC())
	token, err := km.Signer().Sign(claims)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	_, err = verifier.Verify(tampered)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	km := newTestKeyManager(t, 1)
	verifier := NewVerifierEdDSA(km.KeySet(), testIssuer)

	claims := NewAccessClaims("user-1", "u@example.com", "user",
		time.Minute, testIssuer, time.Now().UTC().Add(-2*time.Minute))
	token, err := km.Signer().Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	km := newTestKeyManager(t, 1)
	verifier := NewVerifierEdDSA(km.KeySet(), "https://other.test")

	claims := NewAccessClaims("user-1", "u@example.com", "user",
		time.Minute, testIssuer, time.Now().UTC())
	token, err := km.Signer().Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	km := newTestKeyManager(t, 1)
	verifier := NewVerifierEdDSA(km.KeySet(), testIssuer)

	claims := NewAccessClaims("user-1", "u@example.com", "user",
		time.Minute, testIssuer, time.Now().UTC())
	claims.Kind = "session"

	token, err := km.Signer().Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrWrongKind)
}

func TestVerifyRejectsUnknownKID(t *testing.T) {
	signerKM := newTestKeyManager(t, 1)
	otherKM := newTestKeyManager(t, 1)
	verifier := NewVerifierEdDSA(otherKM.KeySet(), testIssuer)

	claims := NewAccessClaims("user-1", "u@example.com", "user",
		time.Minute, testIssuer, time.Now().UTC())
	token, err := signerKM.Signer().Sign(claims)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	km := newTestKeyManager(t, 1)
	verifier := NewVerifierEdDSA(km.KeySet(), testIssuer)

	claims := NewAccessClaims("user-1", "u@example.com", "user",
		time.Minute, testIssuer, time.Now().UTC())
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	unsigned.Header["kid"] = km.Signer().KID()
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestJWKSContainsAllKeys(t *testing.T) {
	km := newTestKeyManager(t, 2)

	doc := km.KeySet().JWKS()
	require.Len(t, doc.Keys, 2)
	for _, k := range doc.Keys {
		require.Equal(t, "OKP", k.Kty)
		require.Equal(t, "Ed25519", k.Crv)
		require.Equal(t, "EdDSA", k.Alg)
		require.NotEmpty(t, k.Kid)
		require.NotEmpty(t, k.X)
	}
}
