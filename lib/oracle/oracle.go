// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/codec"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe"
)

// RequestID is the unique token the oracle issues for a decryption
// request. Uniqueness is the oracle's responsibility; the ledger only
// uses the token as a lookup key and never derives it locally.
type RequestID string

// Requester is the asynchronous decryption capability the ledger
// consumes. RequestDecryption registers the ciphertext handles with
// the oracle and returns immediately; the plaintext arrives later
// through the ledger's callback entry point, in any order relative to
// other requests.
type Requester interface {
	RequestDecryption(ctx context.Context, handles []fhe.Handle) (RequestID, error)
}

// Verifier authenticates an oracle result delivery. Verify returns nil
// only when proof authenticates (id, payload) as genuinely issued by
// the trusted oracle.
//
// The verifier is pluggable so the trust anchor (Ed25519 today) can be
// swapped without touching the callback state machine.
type Verifier interface {
	Verify(id RequestID, payload, proof []byte) error
}

// Verification errors.
var (
	ErrBadProof = errors.New("oracle: proof does not authenticate the result")
)

// EncodeCount encodes a plaintext count as the canonical cleartext
// payload: deterministic CBOR of the uint64 value.
func EncodeCount(count uint64) ([]byte, error) {
	payload, err := codec.Marshal(count)
	if err != nil {
		return nil, fmt.Errorf("oracle: encoding count: %w", err)
	}
	return payload, nil
}

// DecodeCount decodes a cleartext payload produced by EncodeCount.
func DecodeCount(payload []byte) (uint64, error) {
	var count uint64
	if err := codec.Unmarshal(payload, &count); err != nil {
		return 0, fmt.Errorf("oracle: decoding count payload: %w", err)
	}
	return count, nil
}

// proofBody is the signed preimage of a result proof. The keyasint
// tags pin the wire layout: changing them invalidates every proof.
type proofBody struct {
	RequestID string `cbor:"1,keyasint"`
	Payload   []byte `cbor:"2,keyasint"`
}

func encodeProofBody(id RequestID, payload []byte) ([]byte, error) {
	body, err := codec.Marshal(proofBody{RequestID: string(id), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("oracle: encoding proof body: %w", err)
	}
	return body, nil
}
