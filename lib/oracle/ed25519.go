// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package oracle

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
)

// Ed25519Verifier verifies result proofs as Ed25519 signatures over
// the deterministic CBOR encoding of (requestId, payload).
type Ed25519Verifier struct {
	public ed25519.PublicKey
}

// NewEd25519Verifier creates a verifier for the given oracle public key.
func NewEd25519Verifier(public ed25519.PublicKey) (*Ed25519Verifier, error) {
	if len(public) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("oracle: public key must be %d bytes, got %d", ed25519.PublicKeySize, len(public))
	}
	return &Ed25519Verifier{public: public}, nil
}

// Verify checks that proof is a valid signature over (id, payload).
func (v *Ed25519Verifier) Verify(id RequestID, payload, proof []byte) error {
	body, err := encodeProofBody(id, payload)
	if err != nil {
		return err
	}
	if len(proof) != ed25519.SignatureSize || !ed25519.Verify(v.public, body, proof) {
		return ErrBadProof
	}
	return nil
}

// Signer is the oracle-side counterpart of Ed25519Verifier. The ledger
// never holds one; it lives with the decryption service and in tests.
type Signer struct {
	private ed25519.PrivateKey
}

// NewSigner creates a signer from an Ed25519 private key.
func NewSigner(private ed25519.PrivateKey) (*Signer, error) {
	if len(private) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("oracle: private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(private))
	}
	return &Signer{private: private}, nil
}

// GenerateSigner generates a fresh keypair and returns the signer with
// its public verification key.
func GenerateSigner() (*Signer, ed25519.PublicKey, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("oracle: generating keypair: %w", err)
	}
	return &Signer{private: private}, public, nil
}

// Sign produces the proof for a result delivery.
func (s *Signer) Sign(id RequestID, payload []byte) ([]byte, error) {
	body, err := encodeProofBody(id, payload)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(s.private, body), nil
}

// Public returns the signer's verification key.
func (s *Signer) Public() ed25519.PublicKey {
	return s.private.Public().(ed25519.PublicKey)
}
