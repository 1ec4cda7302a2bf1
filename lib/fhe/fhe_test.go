// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package fhe

import (
	"strings"
	"testing"
)

func TestHandleParseRoundTrip(t *testing.T) {
	var h Handle
	for i := range h {
		h[i] = byte(i)
	}

	parsed, err := ParseHandle(h.String())
	if err != nil {
		t.Fatalf("ParseHandle: %v", err)
	}
	if parsed != h {
		t.Errorf("round trip changed the handle")
	}

	for _, bad := range []string{"", "xyz", strings.Repeat("ab", 31), strings.Repeat("ab", 33)} {
		if _, err := ParseHandle(bad); err == nil {
			t.Errorf("ParseHandle(%q) succeeded", bad)
		}
	}
}

func TestHandleIsZero(t *testing.T) {
	var zero Handle
	if !zero.IsZero() {
		t.Error("zero handle not reported zero")
	}
	zero[31] = 1
	if zero.IsZero() {
		t.Error("nonzero handle reported zero")
	}
}

func TestBucket(t *testing.T) {
	const buckets = 512

	a := Bucket("privileged", buckets)
	if a >= buckets {
		t.Fatalf("Bucket = %d, out of range", a)
	}
	if b := Bucket("privileged", buckets); b != a {
		t.Errorf("Bucket is not deterministic: %d vs %d", a, b)
	}

	// Not a collision test; just confirms the hash actually
	// disperses over more than one bucket.
	spread := map[uint64]bool{}
	for _, kw := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		spread[Bucket(kw, buckets)] = true
	}
	if len(spread) < 2 {
		t.Error("all keywords landed in one bucket")
	}
}

func TestBucketZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Bucket(_, 0) did not panic")
		}
	}()
	Bucket("anything", 0)
}
