// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source with a deterministic
// fake for tests.
package clock
