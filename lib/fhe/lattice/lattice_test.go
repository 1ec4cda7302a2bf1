// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package lattice

import (
	"testing"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe"
)

func newTestBackend(t *testing.T) (*Backend, *CountDecryptor) {
	t.Helper()
	params := TestParameters
	backend, decryptor, err := New(Config{Parameters: &params})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return backend, decryptor
}

func decrypt(t *testing.T, d *CountDecryptor, h fhe.Handle) uint64 {
	t.Helper()
	count, err := d.DecryptCount(h)
	if err != nil {
		t.Fatalf("DecryptCount: %v", err)
	}
	return count
}

func TestEqualsMatchingKeyword(t *testing.T) {
	backend, decryptor := newTestBackend(t)

	a, err := backend.EncryptKeyword("privileged")
	if err != nil {
		t.Fatalf("EncryptKeyword: %v", err)
	}
	b, err := backend.EncryptKeyword("privileged")
	if err != nil {
		t.Fatalf("EncryptKeyword: %v", err)
	}
	if a == b {
		t.Fatal("independent encryptions produced the same handle")
	}

	eq, err := backend.Equals(a, b)
	if err != nil {
		t.Fatalf("Equals: %v", err)
	}
	if got := decrypt(t, decryptor, eq); got != 1 {
		t.Errorf("Equals(same keyword) = %d, want 1", got)
	}
}

func TestEqualsDistinctKeywords(t *testing.T) {
	backend, decryptor := newTestBackend(t)

	// Expectation follows the bucket hash: distinct keywords landing
	// in the same bucket legitimately compare equal.
	k1, k2 := "contract", "deposition"
	want := uint64(0)
	if fhe.Bucket(k1, backend.Buckets()) == fhe.Bucket(k2, backend.Buckets()) {
		want = 1
	}

	a, err := backend.EncryptKeyword(k1)
	if err != nil {
		t.Fatalf("EncryptKeyword: %v", err)
	}
	b, err := backend.EncryptKeyword(k2)
	if err != nil {
		t.Fatalf("EncryptKeyword: %v", err)
	}
	eq, err := backend.Equals(a, b)
	if err != nil {
		t.Fatalf("Equals: %v", err)
	}
	if got := decrypt(t, decryptor, eq); got != want {
		t.Errorf("Equals(%q, %q) = %d, want %d", k1, k2, got, want)
	}
}

func TestCountAggregation(t *testing.T) {
	backend, decryptor := newTestBackend(t)

	query, err := backend.EncryptKeyword("hearing")
	if err != nil {
		t.Fatalf("EncryptKeyword: %v", err)
	}
	documents := []string{"hearing", "exhibit", "hearing", "witness"}

	total, err := backend.EncryptedZero()
	if err != nil {
		t.Fatalf("EncryptedZero: %v", err)
	}
	want := uint64(0)
	for _, doc := range documents {
		if fhe.Bucket(doc, backend.Buckets()) == fhe.Bucket("hearing", backend.Buckets()) {
			want++
		}
		handle, err := backend.EncryptKeyword(doc)
		if err != nil {
			t.Fatalf("EncryptKeyword: %v", err)
		}
		eq, err := backend.Equals(query, handle)
		if err != nil {
			t.Fatalf("Equals: %v", err)
		}
		count, err := backend.SelectAsCount(eq)
		if err != nil {
			t.Fatalf("SelectAsCount: %v", err)
		}
		total, err = backend.Add(total, count)
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	if got := decrypt(t, decryptor, total); got != want {
		t.Errorf("aggregated count = %d, want %d", got, want)
	}
}

func TestEncryptedZeroDecryptsToZero(t *testing.T) {
	backend, decryptor := newTestBackend(t)

	zero, err := backend.EncryptedZero()
	if err != nil {
		t.Fatalf("EncryptedZero: %v", err)
	}
	if got := decrypt(t, decryptor, zero); got != 0 {
		t.Errorf("EncryptedZero decrypts to %d, want 0", got)
	}
}

func TestIsInitialized(t *testing.T) {
	backend, _ := newTestBackend(t)

	if backend.IsInitialized(fhe.Handle{}) {
		t.Error("zero handle reported initialized")
	}

	var bogus fhe.Handle
	bogus[0] = 0xAB
	if backend.IsInitialized(bogus) {
		t.Error("unknown handle reported initialized")
	}

	h, err := backend.EncryptValue(3)
	if err != nil {
		t.Fatalf("EncryptValue: %v", err)
	}
	if !backend.IsInitialized(h) {
		t.Error("registered handle reported uninitialized")
	}
}

func TestUnknownHandleErrors(t *testing.T) {
	backend, decryptor := newTestBackend(t)

	var bogus fhe.Handle
	bogus[0] = 0x01

	known, err := backend.EncryptValue(0)
	if err != nil {
		t.Fatalf("EncryptValue: %v", err)
	}
	if _, err := backend.Equals(known, bogus); err == nil {
		t.Error("Equals with unknown handle succeeded")
	}
	if _, err := backend.Add(known, bogus); err == nil {
		t.Error("Add with unknown handle succeeded")
	}
	if _, err := backend.SelectAsCount(bogus); err == nil {
		t.Error("SelectAsCount with unknown handle succeeded")
	}
	if _, err := decryptor.DecryptCount(bogus); err == nil {
		t.Error("DecryptCount with unknown handle succeeded")
	}
}
