// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/digest"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe"
)

// KeySize is the size of the backend sealing key in bytes.
const KeySize = chacha20poly1305.KeySize

// blobVersion is prepended to every sealed blob and included as
// additional authenticated data, so tampering with the version byte
// causes authentication failure.
const blobVersion byte = 0x01

// DefaultBuckets is the default keyword bucket count. Large enough
// that accidental keyword collisions are negligible in practice.
const DefaultBuckets = uint64(1) << 32

// Config holds the parameters for a simulator backend.
type Config struct {
	// Key is the 32-byte sealing key. Required. Whoever holds it can
	// open every blob, so in a deployed simulator it belongs to the
	// oracle operator, not the ledger.
	Key []byte

	// Buckets is the keyword equality bucket count. Zero means
	// DefaultBuckets.
	Buckets uint64
}

// Backend is a sealed simulator for the homomorphic capability set.
// Each "ciphertext" is an XChaCha20-Poly1305 blob holding the
// plaintext value; handles are blob digests. Homomorphic operations
// open the operand blobs, compute in cleartext, and reseal the result
// under a fresh random nonce — so handles never reveal value equality,
// and nothing that lacks the sealing key can recover a value.
//
// The simulator exists for tests and local runs. It reproduces the
// capability contract's observable behavior exactly, including
// bucketed keyword equality, but provides no homomorphic security.
type Backend struct {
	mu      sync.Mutex
	aead    cipher.AEAD
	buckets uint64
	blobs   map[fhe.Handle][]byte
}

// New creates a simulator backend from the given configuration.
func New(cfg Config) (*Backend, error) {
	if len(cfg.Key) != KeySize {
		return nil, fmt.Errorf("sim: key must be %d bytes, got %d", KeySize, len(cfg.Key))
	}
	aead, err := chacha20poly1305.NewX(cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("sim: initializing AEAD: %w", err)
	}
	buckets := cfg.Buckets
	if buckets == 0 {
		buckets = DefaultBuckets
	}
	return &Backend{
		aead:    aead,
		buckets: buckets,
		blobs:   make(map[fhe.Handle][]byte),
	}, nil
}

// EncryptKeyword seals the keyword's equality bucket.
func (b *Backend) EncryptKeyword(keyword string) (fhe.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seal(fhe.Bucket(keyword, b.buckets))
}

// EncryptValue seals a raw integer value. Values share the keyword
// bucket space: EncryptValue(v) compares equal to any keyword whose
// bucket is v. Used by tests and calibration tooling.
func (b *Backend) EncryptValue(v uint64) (fhe.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seal(v)
}

// EncryptedZero returns a fresh sealed zero.
func (b *Backend) EncryptedZero() (fhe.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seal(0)
}

// Equals compares the values behind a and b, returning a sealed 1 or 0.
func (b *Backend) Equals(x, y fhe.Handle) (fhe.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	vx, err := b.open(x)
	if err != nil {
		return fhe.Handle{}, err
	}
	vy, err := b.open(y)
	if err != nil {
		return fhe.Handle{}, err
	}
	if vx == vy {
		return b.seal(1)
	}
	return b.seal(0)
}

// SelectAsCount converts a sealed boolean into a sealed 0/1 count.
func (b *Backend) SelectAsCount(h fhe.Handle) (fhe.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, err := b.open(h)
	if err != nil {
		return fhe.Handle{}, err
	}
	if v > 1 {
		return fhe.Handle{}, fmt.Errorf("sim: SelectAsCount on non-boolean value %d", v)
	}
	return b.seal(v)
}

// Add returns a sealed sum of the values behind x and y.
func (b *Backend) Add(x, y fhe.Handle) (fhe.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	vx, err := b.open(x)
	if err != nil {
		return fhe.Handle{}, err
	}
	vy, err := b.open(y)
	if err != nil {
		return fhe.Handle{}, err
	}
	return b.seal(vx + vy)
}

// IsInitialized reports whether h references a sealed blob.
func (b *Backend) IsInitialized(h fhe.Handle) bool {
	if h.IsZero() {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[h]
	return ok
}

// DecryptCount opens the blob behind h and returns its value. This is
// the oracle-side capability; the ledger core never holds a reference
// that reaches it.
func (b *Backend) DecryptCount(h fhe.Handle) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open(h)
}

// seal encrypts an 8-byte big-endian value under a fresh random nonce
// and registers the blob under its digest handle. Callers hold b.mu.
func (b *Backend) seal(value uint64) (fhe.Handle, error) {
	var plaintext [8]byte
	binary.BigEndian.PutUint64(plaintext[:], value)

	blob := make([]byte, 1+b.aead.NonceSize(), 1+b.aead.NonceSize()+8+b.aead.Overhead())
	blob[0] = blobVersion
	nonce := blob[1 : 1+b.aead.NonceSize()]
	if _, err := rand.Read(nonce); err != nil {
		return fhe.Handle{}, fmt.Errorf("sim: generating nonce: %w", err)
	}
	blob = b.aead.Seal(blob, nonce, plaintext[:], []byte{blobVersion})

	handle := fhe.Handle(digest.Blob(blob))
	b.blobs[handle] = blob
	return handle, nil
}

// open authenticates and decrypts the blob behind h. Callers hold b.mu.
func (b *Backend) open(h fhe.Handle) (uint64, error) {
	blob, ok := b.blobs[h]
	if !ok {
		return 0, fmt.Errorf("sim: unknown handle %s", h)
	}
	if blob[0] != blobVersion {
		return 0, fmt.Errorf("sim: unsupported blob version %d", blob[0])
	}
	nonce := blob[1 : 1+b.aead.NonceSize()]
	plaintext, err := b.aead.Open(nil, nonce, blob[1+b.aead.NonceSize():], []byte{blobVersion})
	if err != nil {
		return 0, fmt.Errorf("sim: opening blob %s: %w", h, err)
	}
	return binary.BigEndian.Uint64(plaintext), nil
}
