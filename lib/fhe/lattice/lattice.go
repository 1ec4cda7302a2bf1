// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package lattice

import (
	"fmt"
	"sync"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/heint"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/digest"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe"
)

// DefaultParameters is a 128-bit secure BGV parameter set (logN=14,
// logQP=438, 16-bit plaintext modulus). Keyword vectors occupy one
// row of the plaintext matrix, giving 2^13 equality buckets.
var DefaultParameters = heint.ParametersLiteral{
	LogN: 14,
	Q: []uint64{0x10000048001, 0x20008001, 0x1ffc8001,
		0x20040001, 0x1ffc0001, 0x1ffb0001,
		0x20068001, 0x1ff60001, 0x200b0001,
		0x200d0001, 0x1ff18001, 0x200f8001},
	P:                []uint64{0x10000140001, 0x7ffffb0001},
	PlaintextModulus: 0x10001,
}

// TestParameters is an insecure, fast parameter set for tests only
// (lattigo's own test dimensions). 512 equality buckets.
var TestParameters = heint.ParametersLiteral{
	LogN:             10,
	Q:                []uint64{0x3fffffa8001, 0x1000090001, 0x10000c8001, 0x10000f0001, 0xffff00001},
	P:                []uint64{0x7fffffd8001},
	PlaintextModulus: 0xffc001,
}

// Config holds the parameters for a lattice backend. Zero value means
// DefaultParameters.
type Config struct {
	Parameters *heint.ParametersLiteral
}

// Backend implements the homomorphic capability set over lattigo's
// BGV integer scheme.
//
// A keyword is encrypted as a one-hot vector over the backend's hash
// buckets. Encrypted equality is then one relinearized multiplication
// followed by a slot inner sum: the inner product of two one-hot
// vectors, an encrypted 1 when the bucket indices coincide and 0
// otherwise, left in slot 0. Counts accumulate in slot 0 through
// plain ciphertext addition. Equality is therefore bucketed — two
// distinct keywords hashing to the same bucket compare equal; the
// bucket count is half the ring degree (Buckets).
//
// The backend holds only public material (encryption and evaluation
// keys). The secret key lives in the Decryptor returned alongside it,
// which belongs with the decryption oracle.
type Backend struct {
	mu      sync.Mutex
	params  heint.Parameters
	encoder *heint.Encoder
	enc     *rlwe.Encryptor
	eval    *heint.Evaluator
	buckets uint64
	blobs   map[fhe.Handle]*rlwe.Ciphertext
}

// New creates a backend with a fresh keypair, returning the backend
// (public material) and its decryptor (secret material) separately so
// the two can live on opposite sides of the trust boundary.
func New(cfg Config) (*Backend, *CountDecryptor, error) {
	literal := DefaultParameters
	if cfg.Parameters != nil {
		literal = *cfg.Parameters
	}
	params, err := heint.NewParametersFromLiteral(literal)
	if err != nil {
		return nil, nil, fmt.Errorf("lattice: building parameters: %w", err)
	}

	buckets := uint64(params.MaxSlots() / 2)

	kgen := heint.NewKeyGenerator(params)
	sk := kgen.GenSecretKeyNew()
	pk := kgen.GenPublicKeyNew(sk)
	rlk := kgen.GenRelinearizationKeyNew(sk)
	galEls := rlwe.GaloisElementsForInnerSum(params, 1, int(buckets))
	gks := kgen.GenGaloisKeysNew(galEls, sk)
	evk := rlwe.NewMemEvaluationKeySet(rlk, gks...)

	backend := &Backend{
		params:  params,
		encoder: heint.NewEncoder(params),
		enc:     heint.NewEncryptor(params, pk),
		eval:    heint.NewEvaluator(params, evk),
		buckets: buckets,
		blobs:   make(map[fhe.Handle]*rlwe.Ciphertext),
	}
	decryptor := &CountDecryptor{
		backend: backend,
		dec:     heint.NewDecryptor(params, sk),
		encoder: heint.NewEncoder(params),
	}
	return backend, decryptor, nil
}

// Buckets returns the keyword equality bucket count.
func (b *Backend) Buckets() uint64 { return b.buckets }

// EncryptKeyword encrypts a keyword as a one-hot bucket vector.
func (b *Backend) EncryptKeyword(keyword string) (fhe.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.encryptOneHot(fhe.Bucket(keyword, b.buckets))
}

// EncryptValue encrypts a raw bucket index (reduced mod Buckets).
// Used by tests and calibration tooling.
func (b *Backend) EncryptValue(v uint64) (fhe.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.encryptOneHot(v % b.buckets)
}

// EncryptedZero encrypts the all-zero vector: slot 0 carries count 0.
func (b *Backend) EncryptedZero() (fhe.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.encryptVector(make([]uint64, b.params.MaxSlots()))
}

// Equals computes the encrypted inner product of two one-hot keyword
// vectors: 1 in slot 0 when the buckets coincide, 0 otherwise.
func (b *Backend) Equals(x, y fhe.Handle) (fhe.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctX, err := b.lookup(x)
	if err != nil {
		return fhe.Handle{}, err
	}
	ctY, err := b.lookup(y)
	if err != nil {
		return fhe.Handle{}, err
	}

	product, err := b.eval.MulRelinNew(ctX, ctY)
	if err != nil {
		return fhe.Handle{}, fmt.Errorf("lattice: multiplying: %w", err)
	}
	summed := heint.NewCiphertext(b.params, 1, product.Level())
	if err := b.eval.InnerSum(product, 1, int(b.buckets), summed); err != nil {
		return fhe.Handle{}, fmt.Errorf("lattice: inner sum: %w", err)
	}
	return b.register(summed)
}

// SelectAsCount is the identity in this encoding: the Equals output
// already carries the 0/1 count in slot 0.
func (b *Backend) SelectAsCount(h fhe.Handle) (fhe.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.lookup(h); err != nil {
		return fhe.Handle{}, err
	}
	return h, nil
}

// Add sums two count ciphertexts slot-wise.
func (b *Backend) Add(x, y fhe.Handle) (fhe.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctX, err := b.lookup(x)
	if err != nil {
		return fhe.Handle{}, err
	}
	ctY, err := b.lookup(y)
	if err != nil {
		return fhe.Handle{}, err
	}
	sum, err := b.eval.AddNew(ctX, ctY)
	if err != nil {
		return fhe.Handle{}, fmt.Errorf("lattice: adding: %w", err)
	}
	return b.register(sum)
}

// IsInitialized reports whether h references a registered ciphertext.
func (b *Backend) IsInitialized(h fhe.Handle) bool {
	if h.IsZero() {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[h]
	return ok
}

func (b *Backend) encryptOneHot(bucket uint64) (fhe.Handle, error) {
	vector := make([]uint64, b.params.MaxSlots())
	vector[bucket] = 1
	return b.encryptVector(vector)
}

func (b *Backend) encryptVector(vector []uint64) (fhe.Handle, error) {
	pt := heint.NewPlaintext(b.params, b.params.MaxLevel())
	if err := b.encoder.Encode(vector, pt); err != nil {
		return fhe.Handle{}, fmt.Errorf("lattice: encoding: %w", err)
	}
	ct, err := b.enc.EncryptNew(pt)
	if err != nil {
		return fhe.Handle{}, fmt.Errorf("lattice: encrypting: %w", err)
	}
	return b.register(ct)
}

// register stores a ciphertext under the digest of its serialized
// form. The digest is the only representation that leaves the backend.
func (b *Backend) register(ct *rlwe.Ciphertext) (fhe.Handle, error) {
	blob, err := ct.MarshalBinary()
	if err != nil {
		return fhe.Handle{}, fmt.Errorf("lattice: serializing ciphertext: %w", err)
	}
	handle := fhe.Handle(digest.Blob(blob))
	b.blobs[handle] = ct
	return handle, nil
}

func (b *Backend) lookup(h fhe.Handle) (*rlwe.Ciphertext, error) {
	ct, ok := b.blobs[h]
	if !ok {
		return nil, fmt.Errorf("lattice: unknown handle %s", h)
	}
	return ct, nil
}

// CountDecryptor holds the secret key and recovers plaintext counts
// from slot 0. It implements fhe.Decryptor for the oracle side.
type CountDecryptor struct {
	mu      sync.Mutex
	backend *Backend
	dec     *rlwe.Decryptor
	encoder *heint.Encoder
}

// DecryptCount decrypts the ciphertext behind h and returns slot 0.
func (d *CountDecryptor) DecryptCount(h fhe.Handle) (uint64, error) {
	d.backend.mu.Lock()
	ct, err := d.backend.lookup(h)
	d.backend.mu.Unlock()
	if err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	pt := d.dec.DecryptNew(ct)
	values := make([]uint64, d.backend.params.MaxSlots())
	if err := d.encoder.Decode(pt, values); err != nil {
		return 0, fmt.Errorf("lattice: decoding: %w", err)
	}
	return values[0], nil
}
