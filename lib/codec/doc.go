// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides deterministic CBOR encoding and decoding.
//
// All persisted and signed payloads in the ledger (journal frames,
// request state hash inputs, oracle proof bodies) go through this
// package so that the same logical value always encodes to the same
// bytes.
package codec
