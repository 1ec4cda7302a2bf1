// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"log/slog"

	"github.com/te6481-4/Legal-Discovery-Fhe/lib/journal"
)

// JournalNotifier appends every published event to an append-only
// journal, giving the ledger a durable audit trail alongside the
// store. Publish runs inside the core's mutex, so a failed append is
// logged rather than surfaced: the mutation it records has already
// happened and must not be rolled back over a journaling error.
type JournalNotifier struct {
	writer *journal.Writer
	logger *slog.Logger
}

// NewJournalNotifier wraps a journal writer as a Notifier. A nil
// logger discards append errors silently.
func NewJournalNotifier(writer *journal.Writer, logger *slog.Logger) *JournalNotifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &JournalNotifier{writer: writer, logger: logger}
}

func (n *JournalNotifier) Publish(ev Event) {
	if err := n.writer.Append(ev.Kind(), ev); err != nil {
		n.logger.Error("journal append failed", "kind", ev.Kind(), "error", err)
	}
}
