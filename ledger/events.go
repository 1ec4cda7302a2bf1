// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import "sync"

// Event is a notification emitted after a successful mutation. Events
// carry before/after state where the operation has any; they never
// carry ciphertext contents — handles only.
type Event interface {
	// Kind returns the stable event name recorded in the journal.
	Kind() string
}

// Notifier receives events. Delivery is fire-and-forget: the mutation
// has already committed by the time Publish runs, and a slow or
// failing notifier must not be able to roll it back.
type Notifier interface {
	Publish(ev Event)
}

// AdministratorChanged reports an ownership transfer.
type AdministratorChanged struct {
	Previous Actor `cbor:"1,keyasint"`
	New      Actor `cbor:"2,keyasint"`
}

func (AdministratorChanged) Kind() string { return "administrator.changed" }

// SubmitterAdded reports a new authorized submitter.
type SubmitterAdded struct {
	Actor Actor `cbor:"1,keyasint"`
}

func (SubmitterAdded) Kind() string { return "submitter.added" }

// SubmitterRemoved reports a revoked submitter.
type SubmitterRemoved struct {
	Actor Actor `cbor:"1,keyasint"`
}

func (SubmitterRemoved) Kind() string { return "submitter.removed" }

// Paused reports a global halt.
type Paused struct {
	By Actor `cbor:"1,keyasint"`
}

func (Paused) Kind() string { return "paused" }

// Unpaused reports the halt being lifted.
type Unpaused struct {
	By Actor `cbor:"1,keyasint"`
}

func (Unpaused) Kind() string { return "unpaused" }

// CooldownChanged reports a cooldown reconfiguration, in seconds.
type CooldownChanged struct {
	Previous uint64 `cbor:"1,keyasint"`
	New      uint64 `cbor:"2,keyasint"`
}

func (CooldownChanged) Kind() string { return "cooldown.changed" }

// BatchOpened reports a newly opened batch.
type BatchOpened struct {
	BatchID BatchID `cbor:"1,keyasint"`
}

func (BatchOpened) Kind() string { return "batch.opened" }

// BatchClosed reports a batch being closed.
type BatchClosed struct {
	BatchID BatchID `cbor:"1,keyasint"`
}

func (BatchClosed) Kind() string { return "batch.closed" }

// DocumentSubmitted reports an accepted document. It carries the id
// handle, never the content handle.
type DocumentSubmitted struct {
	Submitter Actor   `cbor:"1,keyasint"`
	BatchID   BatchID `cbor:"2,keyasint"`
	IDHandle  string  `cbor:"3,keyasint"`
}

func (DocumentSubmitted) Kind() string { return "document.submitted" }

// SearchRequested reports a registered decryption request.
type SearchRequested struct {
	RequestID   string  `cbor:"1,keyasint"`
	BatchID     BatchID `cbor:"2,keyasint"`
	QueryHandle string  `cbor:"3,keyasint"`
}

func (SearchRequested) Kind() string { return "search.requested" }

// SearchCompleted reports a finalized search with its revealed count.
type SearchCompleted struct {
	RequestID string  `cbor:"1,keyasint"`
	BatchID   BatchID `cbor:"2,keyasint"`
	Count     uint64  `cbor:"3,keyasint"`
}

func (SearchCompleted) Kind() string { return "search.completed" }

// Recorder is a Notifier that keeps every event in memory, for tests
// and introspection.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish appends the event.
func (r *Recorder) Publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// discardNotifier drops every event.
type discardNotifier struct{}

func (discardNotifier) Publish(Event) {}
