// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"bytes"
	"testing"
	"time"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/clock"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe/sim"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/oracle"
)

const (
	admin     = Actor("@alice:counsel")
	submitter = Actor("@bob:counsel")
	outsider  = Actor("@mallory:opposing")
)

// testEnv wires a core over the simulator backend and an in-process
// oracle, everything injectable a test could want to poke at.
type testEnv struct {
	core    *Core
	backend *sim.Backend
	oracle  *oracle.Local
	signer  *oracle.Signer
	clock   *clock.FakeClock
	events  *Recorder
	store   Store
}

func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()

	backend, err := sim.New(sim.Config{Key: bytes.Repeat([]byte{0x42}, 32)})
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	signer, public, err := oracle.GenerateSigner()
	if err != nil {
		t.Fatalf("GenerateSigner: %v", err)
	}
	verifier, err := oracle.NewEd25519Verifier(public)
	if err != nil {
		t.Fatalf("NewEd25519Verifier: %v", err)
	}

	env := &testEnv{
		backend: backend,
		oracle:  oracle.NewLocal(backend, signer, nil),
		signer:  signer,
		clock:   clock.Fake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		events:  &Recorder{},
		store:   NewMemoryStore(),
	}

	cfg := Config{
		Identity:      "ledger-test",
		Administrator: admin,
		Submitters:    []Actor{submitter},
		Clock:         env.clock,
		Capabilities:  backend,
		Oracle:        env.oracle,
		Verifier:      verifier,
		Store:         env.store,
		Notifier:      env.events,
	}
	if mutate != nil {
		mutate(&cfg)
		env.store = cfg.Store
	}

	core, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	env.core = core
	return env
}

// encryptKeyword encrypts a document keyword through the simulator.
func (env *testEnv) encryptKeyword(t *testing.T, keyword string) fhe.Handle {
	t.Helper()
	h, err := env.backend.EncryptKeyword(keyword)
	if err != nil {
		t.Fatalf("EncryptKeyword(%q): %v", keyword, err)
	}
	return h
}

// submit appends a document with the given content keyword to the
// current batch, advancing the fake clock past the cooldown first.
func (env *testEnv) submit(t *testing.T, content string) {
	t.Helper()
	env.clock.Advance(env.core.Cooldown())
	id := env.encryptKeyword(t, "doc-" + content)
	body := env.encryptKeyword(t, content)
	if err := env.core.SubmitDocument(submitter, id, body); err != nil {
		t.Fatalf("SubmitDocument(%q): %v", content, err)
	}
}

// lastEvent returns the most recently recorded event, failing the test
// if none were recorded.
func (env *testEnv) lastEvent(t *testing.T) Event {
	t.Helper()
	events := env.events.Events()
	if len(events) == 0 {
		t.Fatal("no events recorded")
	}
	return events[len(events)-1]
}

func wantCode(t *testing.T, err error, code Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %q, got nil", code)
	}
	if !HasCode(err, code) {
		t.Fatalf("expected error code %q, got: %v", code, err)
	}
}

func TestNewRequiredFields(t *testing.T) {
	env := newTestEnv(t, nil) // donor of valid components

	base := Config{
		Identity:      "ledger-test",
		Administrator: admin,
		Capabilities:  env.backend,
		Oracle:        env.oracle,
		Verifier:      nopVerifier{},
	}

	for name, mutate := range map[string]func(*Config){
		"identity":      func(c *Config) { c.Identity = "" },
		"administrator": func(c *Config) { c.Administrator = "" },
		"capabilities":  func(c *Config) { c.Capabilities = nil },
		"oracle":        func(c *Config) { c.Oracle = nil },
		"verifier":      func(c *Config) { c.Verifier = nil },
	} {
		cfg := base
		mutate(&cfg)
		if _, err := New(cfg); err == nil {
			t.Errorf("New with missing %s succeeded", name)
		}
	}
}

func TestNewOpensInitialBatch(t *testing.T) {
	env := newTestEnv(t, nil)

	batch, err := env.core.CurrentBatch()
	if err != nil {
		t.Fatalf("CurrentBatch: %v", err)
	}
	if batch.ID != 1 || !batch.Open {
		t.Errorf("initial batch = %+v, want id 1, open", batch)
	}
}

func TestNewResumesExistingStore(t *testing.T) {
	env := newTestEnv(t, nil)
	if _, err := env.core.OpenNewBatch(admin); err != nil {
		t.Fatalf("OpenNewBatch: %v", err)
	}
	if err := env.core.CloseCurrentBatch(admin); err != nil {
		t.Fatalf("CloseCurrentBatch: %v", err)
	}

	// A second core over the same store must pick up batch 2 closed,
	// not open a fresh batch.
	resumed := newTestEnv(t, func(cfg *Config) { cfg.Store = env.store })
	batch, err := resumed.core.CurrentBatch()
	if err != nil {
		t.Fatalf("CurrentBatch after resume: %v", err)
	}
	if batch.ID != 2 || batch.Open {
		t.Errorf("resumed batch = %+v, want id 2, closed", batch)
	}
}

// nopVerifier accepts everything; for constructor validation only.
type nopVerifier struct{}

func (nopVerifier) Verify(oracle.RequestID, []byte, []byte) error { return nil }
