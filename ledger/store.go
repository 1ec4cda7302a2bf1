// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"fmt"
	"sync"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/digest"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/oracle"
)

// BatchID identifies a batch. IDs are strictly increasing from 1;
// zero is never a valid batch.
type BatchID uint64

// Batch is a named collection of documents with an open/closed flag.
// Batches are never deleted.
type Batch struct {
	ID   BatchID
	Open bool
}

// Document is one immutable ledger entry: two opaque ciphertext
// handles, appended in insertion order.
type Document struct {
	IDHandle      fhe.Handle
	ContentHandle fhe.Handle
}

// Request is the stored context of a pending or finalized decryption
// request. Processed transitions false→true exactly once and never
// reverts; Count is meaningful only once Processed is true.
type Request struct {
	ID        oracle.RequestID
	BatchID   BatchID
	StateHash digest.Digest
	Handles   []fhe.Handle
	Processed bool
	Count     uint64
}

// Store persists the three ledger tables: batches, documents, and
// decryption requests. All tables are append/update-only — nothing is
// ever deleted. Implementations need not be safe for concurrent use;
// the core serializes access.
type Store interface {
	// AppendBatch records a new batch. The id must be exactly one
	// greater than the last appended id (or 1 for the first).
	AppendBatch(b Batch) error

	// SetBatchOpen updates a batch's open flag.
	SetBatchOpen(id BatchID, open bool) error

	// Batch returns the batch with the given id, if it exists.
	Batch(id BatchID) (Batch, bool, error)

	// LastBatchID returns the highest batch id, or 0 when no batch
	// has been appended yet.
	LastBatchID() (BatchID, error)

	// AppendDocument appends a document to a batch.
	AppendDocument(id BatchID, doc Document) error

	// Documents returns a batch's documents in insertion order.
	Documents(id BatchID) ([]Document, error)

	// PutRequest records a new decryption request context.
	PutRequest(req Request) error

	// Request returns the stored context for an oracle request id.
	Request(id oracle.RequestID) (Request, bool, error)

	// MarkProcessed finalizes a request with its revealed count. It
	// must fail if the request is already processed.
	MarkProcessed(id oracle.RequestID, count uint64) error
}

// MemoryStore is a map-backed Store, the default for tests and
// ephemeral deployments.
type MemoryStore struct {
	mu        sync.Mutex
	batches   []Batch
	documents map[BatchID][]Document
	requests  map[oracle.RequestID]Request
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[BatchID][]Document),
		requests:  make(map[oracle.RequestID]Request),
	}
}

func (s *MemoryStore) AppendBatch(b Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := BatchID(len(s.batches) + 1)
	if b.ID != want {
		return fmt.Errorf("store: batch id %d out of sequence, want %d", b.ID, want)
	}
	s.batches = append(s.batches, b)
	return nil
}

func (s *MemoryStore) SetBatchOpen(id BatchID, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == 0 || int(id) > len(s.batches) {
		return fmt.Errorf("store: unknown batch %d", id)
	}
	s.batches[id-1].Open = open
	return nil
}

func (s *MemoryStore) Batch(id BatchID) (Batch, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == 0 || int(id) > len(s.batches) {
		return Batch{}, false, nil
	}
	return s.batches[id-1], true, nil
}

func (s *MemoryStore) LastBatchID() (BatchID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BatchID(len(s.batches)), nil
}

func (s *MemoryStore) AppendDocument(id BatchID, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == 0 || int(id) > len(s.batches) {
		return fmt.Errorf("store: unknown batch %d", id)
	}
	s.documents[id] = append(s.documents[id], doc)
	return nil
}

func (s *MemoryStore) Documents(id BatchID) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Document(nil), s.documents[id]...), nil
}

func (s *MemoryStore) PutRequest(req Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[req.ID]; exists {
		return fmt.Errorf("store: duplicate request id %q", req.ID)
	}
	req.Handles = append([]fhe.Handle(nil), req.Handles...)
	s.requests[req.ID] = req
	return nil
}

func (s *MemoryStore) Request(id oracle.RequestID) (Request, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	return req, ok, nil
}

func (s *MemoryStore) MarkProcessed(id oracle.RequestID, count uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return fmt.Errorf("store: unknown request id %q", id)
	}
	if req.Processed {
		return fmt.Errorf("store: request %q already processed", id)
	}
	req.Processed = true
	req.Count = count
	s.requests[id] = req
	return nil
}
