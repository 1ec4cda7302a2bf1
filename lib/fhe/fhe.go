// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package fhe

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/digest"
)

// Handle is an opaque reference to an encrypted value held by a
// backend: the BLAKE3 blob digest of the serialized ciphertext. The
// zero Handle is "uninitialized" — it references nothing and fails
// every capability's validity check.
//
// Handles are the only ciphertext representation that crosses the
// ledger boundary. The ledger stores, hashes, and forwards handles; it
// can never inspect the values behind them.
type Handle digest.Digest

// IsZero reports whether the handle is the uninitialized zero value.
func (h Handle) IsZero() bool { return digest.Digest(h).IsZero() }

// String returns the handle as lowercase hex.
func (h Handle) String() string { return digest.Digest(h).String() }

// Bytes returns the handle's raw 32 bytes.
func (h Handle) Bytes() []byte {
	d := digest.Digest(h)
	return d[:]
}

// ParseHandle decodes a 64-character hex string into a Handle.
func ParseHandle(s string) (Handle, error) {
	d, err := digest.Parse(s)
	if err != nil {
		return Handle{}, fmt.Errorf("fhe: parsing handle: %w", err)
	}
	return Handle(d), nil
}

// Capabilities is the homomorphic capability set the ledger consumes.
// Every operation is a pure function of its ciphertext inputs: the
// plaintext behind the returned handle depends only on the plaintexts
// behind the argument handles.
//
// Implementations must treat unknown handles as errors, never as
// encrypted zeros.
type Capabilities interface {
	// EncryptedZero returns a handle whose plaintext is 0, used as
	// the accumulator seed for match counting.
	EncryptedZero() (Handle, error)

	// Equals returns a handle whose plaintext is 1 when the values
	// behind a and b are equal, 0 otherwise.
	Equals(a, b Handle) (Handle, error)

	// SelectAsCount converts an encrypted boolean into an encrypted
	// 0/1 count suitable for Add.
	SelectAsCount(b Handle) (Handle, error)

	// Add returns a handle whose plaintext is the sum of the values
	// behind a and b.
	Add(a, b Handle) (Handle, error)

	// IsInitialized reports whether h references a valid ciphertext
	// produced by a prior capability call or encryption.
	IsInitialized(h Handle) bool
}

// Encryptor produces ciphertext handles from cleartext keywords. It is
// exposed to submitters (and the service's convenience endpoint), not
// consumed by the ledger core itself.
type Encryptor interface {
	// EncryptKeyword encrypts a keyword and returns its handle. Two
	// calls with the same keyword return distinct handles referencing
	// the same underlying value.
	EncryptKeyword(keyword string) (Handle, error)
}

// Decryptor recovers the plaintext count behind a handle. Only the
// decryption oracle holds one; the interface is deliberately separate
// from Capabilities so the ledger core cannot be handed decryption
// ability by accident.
type Decryptor interface {
	DecryptCount(h Handle) (uint64, error)
}

// Bucket maps a keyword to its equality bucket in [0, buckets). Both
// backends compare keywords by bucket, so the assignment must be
// identical across them: plain BLAKE3 of the keyword bytes, first 8
// bytes as a big-endian integer, reduced mod buckets.
//
// Distinct keywords in the same bucket compare equal. With the default
// backends buckets is at least 2^9, making accidental collisions rare
// but not impossible; callers needing exact equality must pre-screen
// keywords.
func Bucket(keyword string, buckets uint64) uint64 {
	if buckets == 0 {
		panic("fhe: Bucket with zero bucket count")
	}
	sum := blake3.Sum256([]byte(keyword))
	return binary.BigEndian.Uint64(sum[:8]) % buckets
}
