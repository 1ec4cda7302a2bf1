// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

// Package journal is the ledger's append-only audit log: every
// notification the core emits is written as a length-prefixed,
// compression-tagged frame of deterministic CBOR. Frames carry their
// own compression tag, so a journal can mix algorithms and still be
// read back with no external metadata.
package journal
