package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	SetPepperPath(t.TempDir() + "/pepper")

	hash, err := HashPassword("hunter2!")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, VerifyPassword("hunter2!", hash))
	require.ErrorIs(t, VerifyPassword("hunter3!", hash), ErrPasswordMismatch)
}

func TestHashesAreSalted(t *testing.T) {
	SetPepperPath(t.TempDir() + "/pepper")

	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	SetPepperPath(t.TempDir() + "/pepper")

	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=19456,t=2,p=1$salt",       // too few parts
		"$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA", // wrong algorithm
		"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA", // wrong version
		"$argon2id$v=19$m=x,t=y,p=z$c2FsdA$aGFzaA",     // unparsable params
	} {
		require.Error(t, VerifyPassword("pw", encoded), "hash %q should be rejected", encoded)
	}
}

func TestDecoyHashVerifiesNothing(t *testing.T) {
	SetPepperPath(t.TempDir() + "/pepper")

	decoy := DecoyHash()
	require.NotEmpty(t, decoy)
	// Stable across calls so login never re-derives it.
	require.Equal(t, decoy, DecoyHash())
	require.Error(t, VerifyPassword("any-guess", decoy))
}
