package jwtx

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mrand "math/rand/v2"

	"github.com/foliolab/folio/pkg/cryptox"
)

// KeyManager holds the service's signing keys. Keys are generated at
// startup and live only in memory; restarting the service invalidates
// all outstanding access tokens, which is acceptable because they are
// short-lived and clients recover via refresh.
type KeyManager struct {
	signers []Signer
	keys    *KeySet
}

// KeyManagerOptions configures key generation.
type KeyManagerOptions struct {
	// NumKeys is how many Ed25519 signing keys to generate. Signing
	// picks one at random per token so no single kid dominates.
	NumKeys int
}

// NewEphemeralKeyManager generates NumKeys fresh Ed25519 keys with
// random kids and registers them in a KeySet.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.NumKeys <= 0 {
		opts.NumKeys = 1
	}

	km := &KeyManager{keys: NewKeySet()}

	for i := 0; i < opts.NumKeys; i++ {
		kid, err := randomKID()
		if err != nil {
			return nil, err
		}

		pemKey, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, fmt.Errorf("jwtx: generate key: %w", err)
		}

		signer, err := NewSignerEdDSA(kid, pemKey)
		if err != nil {
			return nil, err
		}

		km.signers = append(km.signers, signer)
		km.keys.Add(signer.PublicJWK(), signer.pub)
	}

	return km, nil
}

// Signer returns a randomly chosen signing key.
func (km *KeyManager) Signer() Signer {
	return km.signers[mrand.IntN(len(km.signers))]
}

// KeySet exposes the public halves for verification and JWKS.
func (km *KeyManager) KeySet() *KeySet {
	return km.keys
}

func randomKID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("jwtx: generate kid: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}
