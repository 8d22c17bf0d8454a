package jwtx

import (
	"crypto"
	"fmt"
	"sync"
)

// KeySet is a threadsafe kid -> public key lookup used by verifiers
// and the JWKS endpoint.
type KeySet struct {
	mu   sync.RWMutex
	keys map[string]crypto.PublicKey
	jwks map[string]JWK
}

func NewKeySet() *KeySet {
	return &KeySet{
		keys: make(map[string]crypto.PublicKey),
		jwks: make(map[string]JWK),
	}
}

// Add registers a public key under its kid, replacing any previous
// entry for the same kid.
func (ks *KeySet) Add(jwk JWK, pub crypto.PublicKey) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	ks.keys[jwk.Kid] = pub
	ks.jwks[jwk.Kid] = jwk
}

// Get returns the public key registered under kid.
func (ks *KeySet) Get(kid string) (crypto.PublicKey, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	pub, ok := ks.keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
	}
	return pub, nil
}

// IsReady reports whether at least one verification key is loaded.
func (ks *KeySet) IsReady() bool {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return len(ks.keys) > 0
}

// JWKS renders the current key set as a JWKS document.
func (ks *KeySet) JWKS() JWKS {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	out := JWKS{Keys: make([]JWK, 0, len(ks.jwks))}
	for _, jwk := range ks.jwks {
		out.Keys = append(out.Keys, jwk)
	}
	return out
}
