package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrPasswordMismatch is returned when a password does not match its hash.
var ErrPasswordMismatch = errors.New("cryptox: password does not match")

// HashPassword derives a PHC-format Argon2id hash string, embedding the
// salt and parameters so hashes remain verifiable after tuning changes.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(hash),
	), nil
}

// VerifyPassword compares a plaintext password against a PHC-style
// Argon2id hash using a constant-time comparison.
func VerifyPassword(password, encodedHash string) error {
	params, salt, expected, err := decodeHash(encodedHash)
	if err != nil {
		return err
	}

	computed := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		params.iterations,
		params.memory,
		params.parallelism,
		uint32(len(expected)), // #nosec G115 - hash length is bounded by decodeHash
	)

	if subtle.ConstantTimeCompare(computed, expected) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// DecoyHash is a throwaway Argon2id hash of a random password. Login
// verifies candidate passwords against it when no account exists for the
// presented email, so the unknown-email and wrong-password paths stay in
// the same latency class.
func DecoyHash() string {
	decoyOnce.Do(func() {
		token, err := GenerateToken(TokenSize256)
		if err != nil {
			// rand.Read failing means the process cannot do anything
			// cryptographic; bail the same way GetPepper does.
			panic(fmt.Sprintf("cryptox: failed to build decoy hash: %v", err))
		}
		decoy, err = HashPassword(token)
		if err != nil {
			panic(fmt.Sprintf("cryptox: failed to build decoy hash: %v", err))
		}
	})
	return decoy
}

type hashParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

func decodeHash(encodedHash string) (hashParams, []byte, []byte, error) {
	var p hashParams

	// Expected layout: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return p, nil, nil, errors.New("cryptox: invalid hash format")
	}
	if parts[1] != "argon2id" || parts[2] != "v=19" {
		return p, nil, nil, errors.New("cryptox: unsupported hash algorithm or version")
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("cryptox: malformed hash parameters: %w", err)
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("cryptox: malformed salt: %w", err)
	}
	hash, err := b64.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("cryptox: malformed hash: %w", err)
	}
	if len(hash) == 0 || len(hash) > 512 {
		return p, nil, nil, errors.New("cryptox: implausible hash length")
	}

	return p, salt, hash, nil
}
