// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"context"
	"testing"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/oracle"
)

// runSearch issues a search for the keyword, advancing the fake clock
// past the search cooldown first.
func runSearch(t *testing.T, env *testEnv, batch BatchID, keyword string) oracle.RequestID {
	t.Helper()
	env.clock.Advance(env.core.Cooldown())
	query := env.encryptKeyword(t, keyword)
	id, err := env.core.SearchKeywordInBatch(context.Background(), submitter, batch, query)
	if err != nil {
		t.Fatalf("SearchKeywordInBatch(%q): %v", keyword, err)
	}
	return id
}

// deliverAll drains the local oracle into the core's callback.
func deliverAll(t *testing.T, env *testEnv) {
	t.Helper()
	err := env.oracle.DeliverPending(func(id oracle.RequestID, payload, proof []byte) error {
		_, err := env.core.DeliverDecryptionResult(id, payload, proof)
		return err
	})
	if err != nil {
		t.Fatalf("DeliverPending: %v", err)
	}
}

func TestSearchRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, content := range []string{"privileged", "exhibit", "privileged"} {
		env.submit(t, content)
	}

	matching := runSearch(t, env, 1, "privileged")
	missing := runSearch(t, env, 1, "subpoena")
	deliverAll(t, env)

	got, err := env.core.SearchResult(matching)
	if err != nil {
		t.Fatalf("SearchResult: %v", err)
	}
	if !got.Processed || got.Count != 2 {
		t.Errorf("result = %+v, want processed count 2", got)
	}

	got, err = env.core.SearchResult(missing)
	if err != nil {
		t.Fatalf("SearchResult: %v", err)
	}
	if !got.Processed || got.Count != 0 {
		t.Errorf("result = %+v, want processed count 0", got)
	}
}

func TestSearchCountsEveryMatch(t *testing.T) {
	env := newTestEnv(t, nil)
	const n = 4
	for i := 0; i < n; i++ {
		env.submit(t, "identical")
	}

	id := runSearch(t, env, 1, "identical")
	deliverAll(t, env)

	count, err := env.core.SearchResult(id)
	if err != nil {
		t.Fatalf("SearchResult: %v", err)
	}
	if count.Count != n {
		t.Errorf("count = %d, want %d", count.Count, n)
	}
}

// Counts round-trip exactly across the whole range a batch can
// produce, not just 0 and 1.
func TestSearchCountRange(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, content := range []string{"alpha", "beta", "beta", "gamma", "gamma", "gamma"} {
		env.submit(t, content)
	}

	queries := map[string]uint64{"delta": 0, "alpha": 1, "beta": 2, "gamma": 3}
	ids := make(map[string]oracle.RequestID, len(queries))
	for keyword := range queries {
		ids[keyword] = runSearch(t, env, 1, keyword)
	}
	deliverAll(t, env)

	for keyword, want := range queries {
		result, err := env.core.SearchResult(ids[keyword])
		if err != nil {
			t.Fatalf("SearchResult(%q): %v", keyword, err)
		}
		if result.Count != want {
			t.Errorf("count for %q = %d, want %d", keyword, result.Count, want)
		}
	}
}

func TestSearchGuards(t *testing.T) {
	env := newTestEnv(t, nil)
	env.submit(t, "memo")
	ctx := context.Background()

	query := env.encryptKeyword(t, "memo")
	env.clock.Advance(env.core.Cooldown())

	_, err := env.core.SearchKeywordInBatch(ctx, outsider, 1, query)
	wantCode(t, err, CodeAuthorization)

	_, err = env.core.SearchKeywordInBatch(ctx, submitter, 1, fhe.Handle{})
	wantCode(t, err, CodeValidation)

	_, err = env.core.SearchKeywordInBatch(ctx, submitter, 99, query)
	wantCode(t, err, CodeLifecycle)

	if err := env.core.Pause(admin); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	_, err = env.core.SearchKeywordInBatch(ctx, submitter, 1, query)
	wantCode(t, err, CodeLifecycle)
	if err := env.core.Unpause(admin); err != nil {
		t.Fatalf("Unpause: %v", err)
	}

	// Search and submission cooldowns are independent: a fresh
	// submission does not gate a search, but two searches back to
	// back are gated.
	if _, err := env.core.SearchKeywordInBatch(ctx, submitter, 1, query); err != nil {
		t.Fatalf("SearchKeywordInBatch: %v", err)
	}
	_, err = env.core.SearchKeywordInBatch(ctx, submitter, 1, query)
	wantCode(t, err, CodeRateLimit)
}

func TestSearchClosedBatch(t *testing.T) {
	env := newTestEnv(t, nil)
	env.submit(t, "memo")
	if err := env.core.CloseCurrentBatch(admin); err != nil {
		t.Fatalf("CloseCurrentBatch: %v", err)
	}

	query := env.encryptKeyword(t, "memo")
	env.clock.Advance(env.core.Cooldown())
	_, err := env.core.SearchKeywordInBatch(context.Background(), submitter, 1, query)
	wantCode(t, err, CodeLifecycle)
}

func TestSearchEmptyBatch(t *testing.T) {
	env := newTestEnv(t, nil)

	query := env.encryptKeyword(t, "anything")
	_, err := env.core.SearchKeywordInBatch(context.Background(), submitter, 1, query)
	wantCode(t, err, CodeValidation)
}

// A search sees the batch as it is at request time: documents added
// after the request do not change the already-computed count.
func TestSearchSnapshotsBatchState(t *testing.T) {
	env := newTestEnv(t, nil)
	env.submit(t, "privileged")

	id := runSearch(t, env, 1, "privileged")
	env.submit(t, "privileged")
	deliverAll(t, env)

	result, err := env.core.SearchResult(id)
	if err != nil {
		t.Fatalf("SearchResult: %v", err)
	}
	if result.Count != 1 {
		t.Errorf("count = %d, want 1 (the batch at request time)", result.Count)
	}
}
