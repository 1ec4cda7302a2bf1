// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

// Package ledger implements the confidential batch ledger: a small set
// of authorized submitters contribute documents whose payloads exist
// only as opaque ciphertext handles, an administrator manages batch
// lifecycle and roles, and aggregate equality searches are computed
// homomorphically and revealed only through a verified asynchronous
// decryption-oracle callback.
//
// Every mutating entry point applies the same guard order — paused,
// role, cooldown, domain preconditions — and aborts with a classified
// error and no partial effect when any guard fails. Successful
// mutations emit typed events to a pluggable Notifier.
//
// The ledger core never compares, stores, or logs ciphertext
// payloads. It consumes the homomorphic operations as opaque
// capabilities (package fhe) and holds no decryption ability at all:
// plaintext counts enter the system exclusively through
// DeliverDecryptionResult, after replay, integrity, and authenticity
// checks pass.
package ledger
