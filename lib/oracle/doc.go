// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

// Package oracle defines the ledger's contract with the external
// decryption service: asynchronous decryption requests keyed by
// oracle-issued tokens, and pluggable verification of the signed
// results it delivers back.
//
// The canonical proof construction is an Ed25519 signature over the
// deterministic CBOR encoding of (requestId, payload), with payload
// itself the deterministic CBOR encoding of the plaintext count.
// Local provides an in-process oracle for tests and single-machine
// deployments.
package oracle
