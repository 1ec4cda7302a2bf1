// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package oracle

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe"
)

// ResultHandler receives a finished decryption: the ledger's
// DeliverDecryptionResult entry point has exactly this shape.
type ResultHandler func(id RequestID, payload, proof []byte) error

// Local is an in-process decryption oracle for tests and
// single-machine deployments. It queues requests as they arrive and
// decrypts, signs, and delivers them when DeliverPending is called —
// keeping the request/callback boundary asynchronous even though
// everything runs in one process.
type Local struct {
	mu      sync.Mutex
	dec     fhe.Decryptor
	signer  *Signer
	logger  *slog.Logger
	pending []pendingRequest
}

type pendingRequest struct {
	id      RequestID
	handles []fhe.Handle
}

// NewLocal creates a local oracle over the given decryptor and signer.
func NewLocal(dec fhe.Decryptor, signer *Signer, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Local{dec: dec, signer: signer, logger: logger}
}

// RequestDecryption issues a fresh request token and queues the
// handles for later decryption. It never blocks on the decryption
// itself.
func (l *Local) RequestDecryption(ctx context.Context, handles []fhe.Handle) (RequestID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(handles) == 0 {
		return "", fmt.Errorf("oracle: request with no handles")
	}

	var token [16]byte
	if _, err := rand.Read(token[:]); err != nil {
		return "", fmt.Errorf("oracle: generating request token: %w", err)
	}
	id := RequestID(hex.EncodeToString(token[:]))

	l.mu.Lock()
	l.pending = append(l.pending, pendingRequest{id: id, handles: append([]fhe.Handle(nil), handles...)})
	l.mu.Unlock()

	l.logger.Info("decryption requested", "request_id", string(id), "handles", len(handles))
	return id, nil
}

// DeliverPending decrypts every queued request and hands the signed
// result to handler, in arrival order. A handler error stops delivery
// and leaves the remaining requests queued; the failed request is not
// requeued (the ledger's callback is idempotent against redelivery, so
// dropping is the safe direction).
func (l *Local) DeliverPending(handler ResultHandler) error {
	for {
		l.mu.Lock()
		if len(l.pending) == 0 {
			l.mu.Unlock()
			return nil
		}
		next := l.pending[0]
		l.pending = l.pending[1:]
		l.mu.Unlock()

		count, err := l.dec.DecryptCount(next.handles[0])
		if err != nil {
			return fmt.Errorf("oracle: decrypting request %s: %w", next.id, err)
		}
		payload, err := EncodeCount(count)
		if err != nil {
			return err
		}
		proof, err := l.signer.Sign(next.id, payload)
		if err != nil {
			return err
		}

		if err := handler(next.id, payload, proof); err != nil {
			return fmt.Errorf("oracle: delivering request %s: %w", next.id, err)
		}
		l.logger.Info("decryption delivered", "request_id", string(next.id), "count", count)
	}
}

// PendingCount returns the number of queued, undelivered requests.
func (l *Local) PendingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}
