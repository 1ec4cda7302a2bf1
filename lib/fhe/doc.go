// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

// Package fhe defines the confidential-computation capability contract
// the ledger consumes: opaque ciphertext handles and the homomorphic
// operations over them (encrypted zero, equality, boolean-to-count
// selection, addition, handle validity).
//
// Two backends implement the contract: package sim, a sealed
// simulator for tests and local runs, and package lattice, a real
// BGV backend over lattigo. The ledger core is indifferent to which
// one it is wired to — it never sees plaintext either way.
package fhe
