// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"testing"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/oracle"
)

// capturedDelivery is one signed oracle result, intercepted before it
// reaches the core so tests can tamper with it.
type capturedDelivery struct {
	id      oracle.RequestID
	payload []byte
	proof   []byte
}

// captureDelivery runs a search and drains the oracle into a capture
// buffer instead of the core's callback.
func captureDelivery(t *testing.T, env *testEnv) capturedDelivery {
	t.Helper()
	env.submit(t, "privileged")
	runSearch(t, env, 1, "privileged")

	var captured []capturedDelivery
	err := env.oracle.DeliverPending(func(id oracle.RequestID, payload, proof []byte) error {
		captured = append(captured, capturedDelivery{id, payload, proof})
		return nil
	})
	if err != nil {
		t.Fatalf("DeliverPending: %v", err)
	}
	if len(captured) != 1 {
		t.Fatalf("captured %d deliveries, want 1", len(captured))
	}
	return captured[0]
}

func TestDeliverUnknownRequest(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.core.DeliverDecryptionResult("no-such-request", nil, nil)
	wantCode(t, err, CodeNotFound)
}

func TestDeliverReplay(t *testing.T) {
	env := newTestEnv(t, nil)
	d := captureDelivery(t, env)

	count, err := env.core.DeliverDecryptionResult(d.id, d.payload, d.proof)
	if err != nil {
		t.Fatalf("DeliverDecryptionResult: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	// The identical, perfectly valid delivery is rejected the second
	// time: a request finalizes exactly once.
	_, err = env.core.DeliverDecryptionResult(d.id, d.payload, d.proof)
	wantCode(t, err, CodeReplay)

	// The first result stands.
	result, err := env.core.SearchResult(d.id)
	if err != nil {
		t.Fatalf("SearchResult: %v", err)
	}
	if !result.Processed || result.Count != 1 {
		t.Errorf("result = %+v, want processed count 1", result)
	}
}

func TestDeliverTamperedState(t *testing.T) {
	env := newTestEnv(t, nil)
	d := captureDelivery(t, env)

	// Corrupt the ciphertext reference the request was bound to. The
	// recomputed state hash no longer matches the one stored at
	// request time.
	ms := env.store.(*MemoryStore)
	ms.mu.Lock()
	handles := ms.requests[d.id].Handles
	handles[0][7] ^= 0xFF
	ms.mu.Unlock()

	_, err := env.core.DeliverDecryptionResult(d.id, d.payload, d.proof)
	wantCode(t, err, CodeIntegrity)

	// The request stays open; nothing was finalized.
	result, err := env.core.SearchResult(d.id)
	if err != nil {
		t.Fatalf("SearchResult: %v", err)
	}
	if result.Processed {
		t.Error("request finalized despite integrity failure")
	}
}

func TestDeliverWrongSigner(t *testing.T) {
	env := newTestEnv(t, nil)
	d := captureDelivery(t, env)

	impostor, _, err := oracle.GenerateSigner()
	if err != nil {
		t.Fatalf("GenerateSigner: %v", err)
	}
	forged, err := impostor.Sign(d.id, d.payload)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	_, err = env.core.DeliverDecryptionResult(d.id, d.payload, forged)
	wantCode(t, err, CodeAuthenticity)
}

func TestDeliverTamperedPayload(t *testing.T) {
	env := newTestEnv(t, nil)
	d := captureDelivery(t, env)

	tampered := append([]byte(nil), d.payload...)
	tampered[len(tampered)-1] ^= 0x01

	_, err := env.core.DeliverDecryptionResult(d.id, tampered, d.proof)
	wantCode(t, err, CodeAuthenticity)
}

func TestDeliverMalformedPayload(t *testing.T) {
	env := newTestEnv(t, nil)
	d := captureDelivery(t, env)

	// Properly signed by the real oracle key, but not a count
	// encoding: the signature check passes, decoding fails.
	garbage := []byte{0xFF, 0xFF, 0xFF}
	proof, err := env.signer.Sign(d.id, garbage)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	_, err = env.core.DeliverDecryptionResult(d.id, garbage, proof)
	wantCode(t, err, CodeValidation)

	// Still deliverable with the genuine result afterwards.
	if _, err := env.core.DeliverDecryptionResult(d.id, d.payload, d.proof); err != nil {
		t.Fatalf("genuine delivery after rejected one: %v", err)
	}
}

// A ledger never accepts a callback meant for another ledger instance,
// even when both share the oracle keypair: the instance identity is
// folded into the request state hash.
func TestDeliverCrossInstance(t *testing.T) {
	env := newTestEnv(t, nil)
	d := captureDelivery(t, env)

	other := newTestEnv(t, func(cfg *Config) {
		cfg.Identity = "other-ledger"
		cfg.Store = env.store
		cfg.Capabilities = env.backend
		cfg.Oracle = env.oracle
	})

	_, err := other.core.DeliverDecryptionResult(d.id, d.payload, d.proof)
	wantCode(t, err, CodeIntegrity)
}
