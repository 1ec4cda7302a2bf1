// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/codec"
)

// Digest is a 32-byte BLAKE3 digest. Ciphertext handles and request
// state hashes are both this size.
type Digest [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. Domain
// separation ensures that the same input bytes produce different
// digests in different contexts, so a ciphertext handle can never
// collide with a request state hash.
type domainKey [32]byte

// Domain separation keys. These are fixed protocol constants —
// changing them invalidates every stored handle and state hash. The
// byte values are the ASCII encoding of the domain name, zero-padded
// to 32 bytes, which keeps them inspectable in hex dumps without
// weakening the keyed-hash construction.
var (
	blobDomainKey = domainKey{
		'd', 'i', 's', 'c', 'o', 'v', 'e', 'r', 'y', '.', 'f', 'h', 'e', '.',
		'b', 'l', 'o', 'b', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	stateDomainKey = domainKey{
		'd', 'i', 's', 'c', 'o', 'v', 'e', 'r', 'y', '.', 'r', 'e', 'q', 'u',
		'e', 's', 't', '.', 's', 't', 'a', 't', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// Blob computes the blob-domain digest of a serialized ciphertext.
// This is the value used as the ciphertext's opaque handle: the core
// only ever sees this digest, never the ciphertext bytes.
func Blob(data []byte) Digest {
	return keyedHash(blobDomainKey, data)
}

// stateInput is the canonical preimage of a request state hash. The
// keyasint tags pin the wire layout; reordering or renaming fields
// changes every state hash.
type stateInput struct {
	Handles  [][]byte `cbor:"1,keyasint"`
	Identity string   `cbor:"2,keyasint"`
}

// RequestState computes the state hash binding a decryption request to
// the exact ciphertext handles submitted to the oracle plus the
// ledger's own identity. The callback path recomputes this digest from
// the stored handles and rejects the delivery on mismatch.
func RequestState(handles [][]byte, identity string) Digest {
	preimage, err := codec.Marshal(stateInput{Handles: handles, Identity: identity})
	if err != nil {
		// stateInput contains only byte slices and a string; the
		// deterministic encoder cannot fail on it.
		panic("digest: encoding state hash preimage: " + err.Error())
	}
	return keyedHash(stateDomainKey, preimage)
}

func keyedHash(key domainKey, data []byte) Digest {
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		// NewKeyed fails only on wrong key length; domainKey is
		// always 32 bytes.
		panic("digest: keyed hasher init: " + err.Error())
	}
	hasher.Write(data)

	var out Digest
	hasher.Digest().Read(out[:])
	return out
}

// String returns the digest as lowercase hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest is the all-zero value.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Parse decodes a 64-character hex string into a Digest.
func Parse(s string) (Digest, error) {
	var d Digest
	if len(s) != hex.EncodedLen(len(d)) {
		return Digest{}, fmt.Errorf("digest: wrong length %d, want %d", len(s), hex.EncodedLen(len(d)))
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return Digest{}, fmt.Errorf("digest: %w", err)
	}
	return d, nil
}
