// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest provides keyed BLAKE3 hashing with domain separation
// for ciphertext handles and decryption-request state hashes.
package digest
