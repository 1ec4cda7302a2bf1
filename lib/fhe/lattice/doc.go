// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

// Package lattice implements the homomorphic capability set on
// lattigo's BGV integer scheme, with keyword equality computed as an
// encrypted inner product of one-hot bucket vectors.
package lattice
