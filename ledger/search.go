// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"context"
	"fmt"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/digest"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/oracle"
)

// SearchKeywordInBatch computes the encrypted count of documents in
// the batch whose content equals the query, and registers an
// asynchronous decryption request for it. Submitter-only, not-paused,
// decryption-cooldown-gated. The call returns as soon as the request
// context is stored; the plaintext count arrives later through
// DeliverDecryptionResult.
func (c *Core) SearchKeywordInBatch(ctx context.Context, actor Actor, batchID BatchID, queryHandle fhe.Handle) (oracle.RequestID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "search_keyword_in_batch"
	if err := c.requireNotPaused(op); err != nil {
		return "", err
	}
	if err := c.requireSubmitter(op, actor); err != nil {
		return "", err
	}
	if err := c.requireCooldown(op, actor, c.lastSearch); err != nil {
		return "", err
	}

	countHandle, err := c.computeMatchCount(op, batchID, queryHandle)
	if err != nil {
		return "", err
	}

	// Bind the request to the exact ciphertext submitted for
	// decryption plus this ledger's identity. The callback path
	// recomputes the digest from the stored handles and rejects the
	// delivery on mismatch.
	stateHash := digest.RequestState([][]byte{countHandle.Bytes()}, c.identity)

	requestID, err := c.oracle.RequestDecryption(ctx, []fhe.Handle{countHandle})
	if err != nil {
		return "", fmt.Errorf("ledger: %s: requesting decryption: %w", op, err)
	}
	if err := c.store.PutRequest(Request{
		ID:        requestID,
		BatchID:   batchID,
		StateHash: stateHash,
		Handles:   []fhe.Handle{countHandle},
	}); err != nil {
		return "", fmt.Errorf("ledger: %s: %w", op, err)
	}
	c.recordAction(actor, c.lastSearch)

	c.publish(SearchRequested{RequestID: string(requestID), BatchID: batchID, QueryHandle: queryHandle.String()})
	c.logger.Info("search requested",
		"request_id", string(requestID),
		"batch_id", uint64(batchID),
		"caller", string(actor),
	)
	return requestID, nil
}

// computeMatchCount folds the batch's documents into one encrypted
// match count: an encrypted zero accumulator, plus the 0/1 selection
// of (content == query) for every document in insertion order. The
// result's plaintext is a pure function of batch contents and query;
// it is never decrypted here. Callers hold c.mu.
func (c *Core) computeMatchCount(op string, batchID BatchID, queryHandle fhe.Handle) (fhe.Handle, error) {
	if !c.caps.IsInitialized(queryHandle) {
		return fhe.Handle{}, failf(CodeValidation, op, "query handle is not initialized")
	}

	last, err := c.store.LastBatchID()
	if err != nil {
		return fhe.Handle{}, fmt.Errorf("ledger: %s: %w", op, err)
	}
	if batchID == 0 || batchID > last {
		return fhe.Handle{}, failf(CodeLifecycle, op, "batch %d does not exist", batchID)
	}
	batch, ok, err := c.store.Batch(batchID)
	if err != nil {
		return fhe.Handle{}, fmt.Errorf("ledger: %s: %w", op, err)
	}
	if !ok {
		return fhe.Handle{}, failf(CodeLifecycle, op, "batch %d does not exist", batchID)
	}
	if !batch.Open {
		return fhe.Handle{}, failf(CodeLifecycle, op, "batch %d is closed", batchID)
	}

	documents, err := c.store.Documents(batchID)
	if err != nil {
		return fhe.Handle{}, fmt.Errorf("ledger: %s: %w", op, err)
	}
	// A search against no evidence is meaningless, not trivially
	// zero: an empty batch is an explicit failure.
	if len(documents) == 0 {
		return fhe.Handle{}, failf(CodeValidation, op, "batch %d has no documents", batchID)
	}

	accumulator, err := c.caps.EncryptedZero()
	if err != nil {
		return fhe.Handle{}, fmt.Errorf("ledger: %s: encrypted zero: %w", op, err)
	}
	for i, doc := range documents {
		matches, err := c.caps.Equals(doc.ContentHandle, queryHandle)
		if err != nil {
			return fhe.Handle{}, fmt.Errorf("ledger: %s: equality on document %d: %w", op, i, err)
		}
		asCount, err := c.caps.SelectAsCount(matches)
		if err != nil {
			return fhe.Handle{}, fmt.Errorf("ledger: %s: selecting count on document %d: %w", op, i, err)
		}
		accumulator, err = c.caps.Add(accumulator, asCount)
		if err != nil {
			return fhe.Handle{}, fmt.Errorf("ledger: %s: accumulating document %d: %w", op, i, err)
		}
	}
	return accumulator, nil
}
