// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"errors"
	"fmt"
)

// Code classifies a ledger error. Callers branch on codes via HasCode;
// the HTTP layer maps them to status codes.
type Code string

const (
	// CodeAuthorization: the caller does not hold the required role.
	CodeAuthorization Code = "authorization"

	// CodeLifecycle: the system is paused, or the target batch is
	// closed or does not exist. Retryable once the state changes.
	CodeLifecycle Code = "lifecycle"

	// CodeRateLimit: the caller's cooldown has not elapsed.
	// Retryable by waiting.
	CodeRateLimit Code = "rate_limit"

	// CodeValidation: an uninitialized ciphertext handle, a zero
	// cooldown, or a search against an empty batch.
	CodeValidation Code = "validation"

	// CodeReplay: a decryption result delivered for an already
	// finalized request. Signals an attack or a bug; surface loudly.
	CodeReplay Code = "replay"

	// CodeIntegrity: the recomputed request state hash does not
	// match the stored one. Signals tampering; surface loudly.
	CodeIntegrity Code = "integrity"

	// CodeAuthenticity: the oracle proof failed to verify. Signals
	// an attack or a misconfigured trust anchor; surface loudly.
	CodeAuthenticity Code = "authenticity"

	// CodeNotFound: unknown decryption request id.
	CodeNotFound Code = "not_found"
)

// Error is a classified ledger error. Every failing operation aborts
// with exactly one of these and no partial mutation.
type Error struct {
	// Code is the taxonomy class.
	Code Code
	// Op is the operation that failed (e.g. "submit_document").
	Op string
	// Message describes the specific failure.
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("ledger: %s: %s: %s", e.Op, e.Code, e.Message)
}

// HasCode reports whether err is (or wraps) a ledger Error with the
// given code.
func HasCode(err error, code Code) bool {
	var lerr *Error
	return errors.As(err, &lerr) && lerr.Code == code
}

func failf(code Code, op, format string, args ...any) error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}
