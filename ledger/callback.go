// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"fmt"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/digest"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/oracle"
)

// DeliverDecryptionResult is the oracle's callback entry point:
// callable by anyone, meaningful only with a valid proof. The five
// verification steps run as one atomic unit — lookup, replay check,
// state-hash integrity check, proof authenticity check, decode — and
// any failure leaves the request unprocessed with no event emitted. On
// success the request finalizes exactly once, permanently.
func (c *Core) DeliverDecryptionResult(id oracle.RequestID, payload, proof []byte) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "deliver_decryption_result"

	request, ok, err := c.store.Request(id)
	if err != nil {
		return 0, fmt.Errorf("ledger: %s: %w", op, err)
	}
	if !ok {
		return 0, failf(CodeNotFound, op, "unknown request id %q", id)
	}

	if request.Processed {
		c.logger.Warn("replayed decryption result rejected", "request_id", string(id))
		return 0, failf(CodeReplay, op, "request %q is already finalized", id)
	}

	// Recompute the state hash from the handles this request was
	// bound to. A mismatch means the stored ciphertext reference was
	// altered after the request was issued, or the callback was
	// misdirected from another ledger instance.
	handleBytes := make([][]byte, len(request.Handles))
	for i, h := range request.Handles {
		handleBytes[i] = h.Bytes()
	}
	if digest.RequestState(handleBytes, c.identity) != request.StateHash {
		c.logger.Warn("state hash mismatch on decryption result", "request_id", string(id))
		return 0, failf(CodeIntegrity, op, "state hash mismatch for request %q", id)
	}

	if err := c.verifier.Verify(id, payload, proof); err != nil {
		c.logger.Warn("unauthentic decryption result rejected", "request_id", string(id), "error", err)
		return 0, failf(CodeAuthenticity, op, "proof verification failed: %v", err)
	}

	count, err := oracle.DecodeCount(payload)
	if err != nil {
		return 0, failf(CodeValidation, op, "malformed cleartext payload: %v", err)
	}

	if err := c.store.MarkProcessed(id, count); err != nil {
		return 0, fmt.Errorf("ledger: %s: %w", op, err)
	}

	c.publish(SearchCompleted{RequestID: string(id), BatchID: request.BatchID, Count: count})
	c.logger.Info("search completed",
		"request_id", string(id),
		"batch_id", uint64(request.BatchID),
		"count", count,
	)
	return count, nil
}

// SearchResult returns the stored state of a decryption request: the
// revealed count when Processed is true, zero otherwise.
func (c *Core) SearchResult(id oracle.RequestID) (Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	const op = "search_result"
	request, ok, err := c.store.Request(id)
	if err != nil {
		return Request{}, fmt.Errorf("ledger: %s: %w", op, err)
	}
	if !ok {
		return Request{}, failf(CodeNotFound, op, "unknown request id %q", id)
	}
	return request, nil
}
