// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/codec"
)

type testEvent struct {
	Batch uint64 `cbor:"1,keyasint"`
	Actor string `cbor:"2,keyasint"`
}

func TestRoundTripAllTags(t *testing.T) {
	for _, tag := range []CompressionTag{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(tag.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, tag)

			// Repetitive payloads so lz4/zstd actually engage
			// instead of hitting the incompressible fallback.
			events := []testEvent{
				{Batch: 1, Actor: strings.Repeat("submitter-a/", 20)},
				{Batch: 2, Actor: strings.Repeat("submitter-b/", 20)},
				{Batch: 3, Actor: strings.Repeat("submitter-c/", 20)},
			}
			for _, ev := range events {
				if err := w.Append("document.submitted", ev); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}

			r := NewReader(bytes.NewReader(buf.Bytes()))
			for i, want := range events {
				env, err := r.Next()
				if err != nil {
					t.Fatalf("Next[%d]: %v", i, err)
				}
				if env.Kind != "document.submitted" {
					t.Errorf("Kind = %q", env.Kind)
				}
				if env.At == 0 {
					t.Error("At not populated")
				}
				var got testEvent
				if err := codec.Unmarshal(env.Data, &got); err != nil {
					t.Fatalf("decoding event: %v", err)
				}
				if got != want {
					t.Errorf("event[%d] = %+v, want %+v", i, got, want)
				}
			}
			if _, err := r.Next(); !errors.Is(err, io.EOF) {
				t.Errorf("Next past end = %v, want io.EOF", err)
			}
		})
	}
}

func TestIncompressibleFallsBackToNone(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, CompressionZstd)

	// A tiny event will not shrink under zstd; the frame must fall
	// back to the uncompressed tag and still read back.
	if err := w.Append("paused", testEvent{Batch: 1, Actor: "a"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if CompressionTag(buf.Bytes()[0]) != CompressionNone {
		t.Errorf("frame tag = %v, want none fallback", CompressionTag(buf.Bytes()[0]))
	}

	env, err := NewReader(bytes.NewReader(buf.Bytes())).Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if env.Kind != "paused" {
		t.Errorf("Kind = %q, want paused", env.Kind)
	}
}

func TestParseCompressionTag(t *testing.T) {
	cases := map[string]CompressionTag{
		"":     CompressionNone,
		"none": CompressionNone,
		"lz4":  CompressionLZ4,
		"zstd": CompressionZstd,
	}
	for name, want := range cases {
		got, err := ParseCompressionTag(name)
		if err != nil {
			t.Errorf("ParseCompressionTag(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("ParseCompressionTag(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := ParseCompressionTag("brotli"); err == nil {
		t.Error("ParseCompressionTag accepted an unknown name")
	}
}

func TestTruncatedStream(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, CompressionNone)
	if err := w.Append("batch.opened", testEvent{Batch: 1}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	truncated := buf.Bytes()[:buf.Len()-3]
	r := NewReader(bytes.NewReader(truncated))
	if _, err := r.Next(); err == nil {
		t.Fatal("Next succeeded on a truncated frame")
	}
}
