// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides a SQLite connection pool with the
// project-standard pragmas, used by the ledger's persistent store.
package sqlitepool
