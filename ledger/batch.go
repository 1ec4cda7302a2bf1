// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"fmt"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe"
)

// OpenNewBatch allocates the next batch id and opens it.
// Administrator-only, not-paused. It does NOT close the previous
// batch: closing is a separate explicit action, so two batches can be
// open at once (see the package tests documenting this).
func (c *Core) OpenNewBatch(actor Actor) (BatchID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "open_new_batch"
	if err := c.requireNotPaused(op); err != nil {
		return 0, err
	}
	if err := c.requireAdministrator(op, actor); err != nil {
		return 0, err
	}

	last, err := c.store.LastBatchID()
	if err != nil {
		return 0, fmt.Errorf("ledger: %s: %w", op, err)
	}
	id := last + 1
	if err := c.store.AppendBatch(Batch{ID: id, Open: true}); err != nil {
		return 0, fmt.Errorf("ledger: %s: %w", op, err)
	}

	c.publish(BatchOpened{BatchID: id})
	c.logger.Info("batch opened", "batch_id", uint64(id))
	return id, nil
}

// CloseCurrentBatch closes the current (most recently opened) batch.
// Administrator-only, not-paused. A no-op — not an error — when the
// current batch is already closed.
func (c *Core) CloseCurrentBatch(actor Actor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "close_current_batch"
	if err := c.requireNotPaused(op); err != nil {
		return err
	}
	if err := c.requireAdministrator(op, actor); err != nil {
		return err
	}

	current, err := c.currentBatch(op)
	if err != nil {
		return err
	}
	if !current.Open {
		return nil
	}
	if err := c.store.SetBatchOpen(current.ID, false); err != nil {
		return fmt.Errorf("ledger: %s: %w", op, err)
	}

	c.publish(BatchClosed{BatchID: current.ID})
	c.logger.Info("batch closed", "batch_id", uint64(current.ID))
	return nil
}

// SubmitDocument appends a document to the current batch.
// Submitter-only, not-paused, submission-cooldown-gated. Both handles
// must reference valid prior ciphertext constructions, and the current
// batch must be open at the moment of the call.
func (c *Core) SubmitDocument(actor Actor, idHandle, contentHandle fhe.Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "submit_document"
	if err := c.requireNotPaused(op); err != nil {
		return err
	}
	if err := c.requireSubmitter(op, actor); err != nil {
		return err
	}
	if err := c.requireCooldown(op, actor, c.lastSubmission); err != nil {
		return err
	}
	if !c.caps.IsInitialized(idHandle) {
		return failf(CodeValidation, op, "id handle is not initialized")
	}
	if !c.caps.IsInitialized(contentHandle) {
		return failf(CodeValidation, op, "content handle is not initialized")
	}

	current, err := c.currentBatch(op)
	if err != nil {
		return err
	}
	if !current.Open {
		return failf(CodeLifecycle, op, "batch %d is closed", current.ID)
	}

	if err := c.store.AppendDocument(current.ID, Document{IDHandle: idHandle, ContentHandle: contentHandle}); err != nil {
		return fmt.Errorf("ledger: %s: %w", op, err)
	}
	c.recordAction(actor, c.lastSubmission)

	c.publish(DocumentSubmitted{Submitter: actor, BatchID: current.ID, IDHandle: idHandle.String()})
	c.logger.Info("document submitted", "batch_id", uint64(current.ID), "submitter", string(actor))
	return nil
}

// CurrentBatch returns the current (most recently opened) batch.
func (c *Core) CurrentBatch() (Batch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentBatch("current_batch")
}

// BatchDocuments returns a batch's documents in insertion order.
func (c *Core) BatchDocuments(id BatchID) ([]Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "batch_documents"
	if _, ok, err := c.store.Batch(id); err != nil {
		return nil, fmt.Errorf("ledger: %s: %w", op, err)
	} else if !ok {
		return nil, failf(CodeLifecycle, op, "batch %d does not exist", id)
	}
	docs, err := c.store.Documents(id)
	if err != nil {
		return nil, fmt.Errorf("ledger: %s: %w", op, err)
	}
	return docs, nil
}

// currentBatch loads the latest batch. Callers hold c.mu. The
// constructor guarantees at least one batch exists.
func (c *Core) currentBatch(op string) (Batch, error) {
	last, err := c.store.LastBatchID()
	if err != nil {
		return Batch{}, fmt.Errorf("ledger: %s: %w", op, err)
	}
	batch, ok, err := c.store.Batch(last)
	if err != nil {
		return Batch{}, fmt.Errorf("ledger: %s: %w", op, err)
	}
	if !ok {
		return Batch{}, fmt.Errorf("ledger: %s: batch table is empty", op)
	}
	return batch, nil
}
