// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/clock"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/oracle"
)

// Actor is an opaque caller identity. How identities are authenticated
// is outside the core; the core only compares them.
type Actor string

// DefaultCooldown applies when the configuration does not set one.
const DefaultCooldown = 60 * time.Second

// Config assembles a Core. Administrator, Capabilities, Oracle,
// Verifier are required; everything else has defaults.
type Config struct {
	// Identity names this ledger instance. It is folded into every
	// request state hash, so two ledgers sharing an oracle can never
	// accept each other's callbacks. Required.
	Identity string

	// Administrator is the initial administrator. Required.
	Administrator Actor

	// Submitters are the initially authorized submitters.
	Submitters []Actor

	// Cooldown is the per-actor minimum interval between submissions
	// and between decryption requests. Zero means DefaultCooldown;
	// it can never be configured to zero.
	Cooldown time.Duration

	// Clock supplies the time for cooldown bookkeeping. Nil means
	// the system clock.
	Clock clock.Clock

	// Capabilities is the homomorphic capability set. Required.
	Capabilities fhe.Capabilities

	// Oracle is the asynchronous decryption capability. Required.
	Oracle oracle.Requester

	// Verifier authenticates oracle result deliveries. Required.
	Verifier oracle.Verifier

	// Store persists batches, documents, and requests. Nil means a
	// fresh in-memory store.
	Store Store

	// Notifier receives emitted events. Nil means discard.
	Notifier Notifier

	// Logger receives operational logs. Nil means discard.
	Logger *slog.Logger
}

// Core is the confidential batch ledger: role-gated mutation over an
// append-only batch/document store, homomorphic match counting, and
// the request/callback protocol with the decryption oracle.
//
// All entry points run to completion under one mutex, so every
// invariant holds as a pre/postcondition of each call — there is no
// partial visibility of in-progress mutations. Checks always run in
// the fixed guard order (paused, role, cooldown, domain) and any
// failure aborts with no effect.
type Core struct {
	mu sync.Mutex

	identity string
	caps     fhe.Capabilities
	oracle   oracle.Requester
	verifier oracle.Verifier
	store    Store
	notifier Notifier
	logger   *slog.Logger
	clock    clock.Clock

	administrator Actor
	submitters    map[Actor]struct{}
	paused        bool
	cooldown      time.Duration

	lastSubmission map[Actor]time.Time
	lastSearch     map[Actor]time.Time
}

// New builds a Core and, if the store holds no batches yet, opens
// batch 1. On a store that already has batches (a restart), the
// existing lifecycle state is picked up as-is.
func New(cfg Config) (*Core, error) {
	if cfg.Identity == "" {
		return nil, fmt.Errorf("ledger: Identity is required")
	}
	if cfg.Administrator == "" {
		return nil, fmt.Errorf("ledger: Administrator is required")
	}
	if cfg.Capabilities == nil {
		return nil, fmt.Errorf("ledger: Capabilities is required")
	}
	if cfg.Oracle == nil {
		return nil, fmt.Errorf("ledger: Oracle is required")
	}
	if cfg.Verifier == nil {
		return nil, fmt.Errorf("ledger: Verifier is required")
	}
	if cfg.Cooldown < 0 {
		return nil, fmt.Errorf("ledger: negative cooldown")
	}

	core := &Core{
		identity:       cfg.Identity,
		caps:           cfg.Capabilities,
		oracle:         cfg.Oracle,
		verifier:       cfg.Verifier,
		store:          cfg.Store,
		notifier:       cfg.Notifier,
		logger:         cfg.Logger,
		clock:          cfg.Clock,
		administrator:  cfg.Administrator,
		submitters:     make(map[Actor]struct{}, len(cfg.Submitters)),
		cooldown:       cfg.Cooldown,
		lastSubmission: make(map[Actor]time.Time),
		lastSearch:     make(map[Actor]time.Time),
	}
	if core.store == nil {
		core.store = NewMemoryStore()
	}
	if core.notifier == nil {
		core.notifier = discardNotifier{}
	}
	if core.logger == nil {
		core.logger = slog.New(slog.DiscardHandler)
	}
	if core.clock == nil {
		core.clock = clock.Real()
	}
	if core.cooldown == 0 {
		core.cooldown = DefaultCooldown
	}
	for _, submitter := range cfg.Submitters {
		core.submitters[submitter] = struct{}{}
	}

	last, err := core.store.LastBatchID()
	if err != nil {
		return nil, fmt.Errorf("ledger: reading batch table: %w", err)
	}
	if last == 0 {
		if err := core.store.AppendBatch(Batch{ID: 1, Open: true}); err != nil {
			return nil, fmt.Errorf("ledger: opening initial batch: %w", err)
		}
		core.logger.Info("initial batch opened", "batch_id", 1)
	}

	return core, nil
}

// Administrator returns the current administrator.
func (c *Core) Administrator() Actor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.administrator
}

// IsSubmitter reports whether the actor is an authorized submitter.
func (c *Core) IsSubmitter(actor Actor) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.submitters[actor]
	return ok
}

// Paused reports whether the global halt flag is set.
func (c *Core) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Cooldown returns the configured cooldown interval.
func (c *Core) Cooldown() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cooldown
}

// Guard predicates. Mutating entry points compose them in the fixed
// order paused → role → cooldown → domain; any failure aborts the
// whole operation before it mutates anything. Callers hold c.mu.

func (c *Core) requireNotPaused(op string) error {
	if c.paused {
		return failf(CodeLifecycle, op, "ledger is paused")
	}
	return nil
}

func (c *Core) requireAdministrator(op string, actor Actor) error {
	if actor != c.administrator {
		return failf(CodeAuthorization, op, "caller %q is not the administrator", actor)
	}
	return nil
}

func (c *Core) requireSubmitter(op string, actor Actor) error {
	if _, ok := c.submitters[actor]; !ok {
		return failf(CodeAuthorization, op, "caller %q is not an authorized submitter", actor)
	}
	return nil
}

// requireCooldown checks the actor's last action time against the
// cooldown. The timestamp is NOT recorded here: the caller records it
// with recordAction only after the gated action has fully succeeded,
// so a failed attempt never consumes the actor's slot.
func (c *Core) requireCooldown(op string, actor Actor, last map[Actor]time.Time) error {
	previous, ok := last[actor]
	if !ok {
		return nil
	}
	now := c.clock.Now()
	if now.Before(previous.Add(c.cooldown)) {
		return failf(CodeRateLimit, op, "caller %q must wait until %s", actor, previous.Add(c.cooldown).Format(time.RFC3339))
	}
	return nil
}

func (c *Core) recordAction(actor Actor, last map[Actor]time.Time) {
	last[actor] = c.clock.Now()
}

// publish delivers an event and mirrors it to the log. Callers hold
// c.mu; notifier implementations must not call back into the core.
func (c *Core) publish(ev Event) {
	c.notifier.Publish(ev)
	c.logger.Info("event", "kind", ev.Kind())
}
