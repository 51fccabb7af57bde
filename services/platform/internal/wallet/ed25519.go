// Package wallet verifies wallet ownership proofs.
package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"
)

// Ed25519Verifier checks signatures from ed25519 wallets. The address is the
// hex encoded public key and the signature is hex encoded.
type Ed25519Verifier struct{}

func NewEd25519Verifier() *Ed25519Verifier {
	return &Ed25519Verifier{}
}

func (v *Ed25519Verifier) Verify(address, message, signature string) (bool, error) {
	pub, err := decodeHex(address)
	if err != nil {
		return false, fmt.Errorf("invalid wallet address: %w", err)
	}
	if len(pub) != ed25519.PublicKeySize {
		return false, fmt.Errorf("invalid wallet address: want %d bytes, got %d", ed25519.PublicKeySize, len(pub))
	}

	sig, err := decodeHex(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		// A malformed signature is a failed proof, not a server fault.
		return false, nil
	}

	return ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig), nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	return hex.DecodeString(s)
}
