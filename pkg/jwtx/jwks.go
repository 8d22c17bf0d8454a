package jwtx

import (
	"crypto/ed25519"
	"encoding/base64"
)

// JWK is a JSON Web Key as served from the JWKS endpoint. Only the
// OKP/Ed25519 fields are populated since that is the only algorithm
// this service signs with.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv,omitempty"`
	Kid string `json:"kid"`
	Use string `json:"use,omitempty"`
	Alg string `json:"alg,omitempty"`
	X   string `json:"x,omitempty"`
}

// JWKS is the document shape for the /.well-known/jwks.json endpoint.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// NewEd25519JWK encodes an Ed25519 public key as an OKP JWK.
func NewEd25519JWK(kid, use, alg string, pub ed25519.PublicKey) JWK {
	return JWK{
		Kty: "OKP",
		Crv: "Ed25519",
		Kid: kid,
		Use: use,
		Alg: alg,
		X:   base64.RawURLEncoding.EncodeToString(pub),
	}
}
