package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrorKind enumerates the abstract error categories of spec §7. CLI and API
// layers branch on Kind rather than on error string content.
type ErrorKind string

const (
	KindInvalidInput               ErrorKind = "InvalidInput"
	KindTransactionValidationFailed ErrorKind = "TransactionValidationFailed"
	KindBlockValidationFailed      ErrorKind = "BlockValidationFailed"
	KindBlockTooLarge              ErrorKind = "BlockTooLarge"
	KindInvalidIndex               ErrorKind = "InvalidIndex"
	KindInvalidPreviousHash        ErrorKind = "InvalidPreviousHash"
	KindInvalidHash                ErrorKind = "InvalidHash"
	KindInvalidProofOfWork         ErrorKind = "InvalidProofOfWork"
	KindInsufficientBalance        ErrorKind = "InsufficientBalance"
	KindContractValidationFailed   ErrorKind = "ContractValidationFailed"
	KindContractExecutionError     ErrorKind = "ContractExecutionError"
	KindOutOfGas                   ErrorKind = "OutOfGas"
	KindConsensusError             ErrorKind = "ConsensusError"
	KindStateCorruption            ErrorKind = "StateCorruption"
	KindNotFound                   ErrorKind = "NotFound"
	KindMempoolFull                ErrorKind = "MempoolFull"
	KindCapacityExceeded           ErrorKind = "CapacityExceeded"
	KindStaleNonce                 ErrorKind = "StaleNonce"
	KindSignatureInvalid           ErrorKind = "SignatureInvalid"
	KindAuthError                  ErrorKind = "AuthError"
	KindRateLimited                ErrorKind = "RateLimited"
	KindStorageError               ErrorKind = "StorageError"
	KindNetworkError                ErrorKind = "NetworkError"
	KindMiningLimitExceeded        ErrorKind = "MiningLimitExceeded"
	KindEmptyState                 ErrorKind = "EmptyState"
	KindStackUnderflow             ErrorKind = "StackUnderflow"
	KindInvalidOpcode              ErrorKind = "InvalidOpcode"
	KindDailyLimitExceeded         ErrorKind = "DailyLimitExceeded"
)

// Error is the concrete error type carrying a Kind alongside a message and
// an optional wrapped cause, so callers can `errors.As` to the kind instead
// of string-matching (spec §7).
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError constructs an *Error with the given kind and formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError constructs an *Error that wraps an underlying cause.
func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the ErrorKind carried by err, if any, and whether one was
// found.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Sanitized returns a message safe to return across an external interface
// boundary (spec §7): StorageError and NetworkError detail is never leaked.
func (e *Error) Sanitized() string {
	if e.Kind == KindStorageError || e.Kind == KindNetworkError {
		return fmt.Sprintf("%s: internal error", e.Kind)
	}
	return e.Error()
}

// WithBackoff retries fn with exponential backoff and jitter, up to
// maxAttempts times, stopping early on context cancellation or on a
// permanent (non-Storage/Network) error. This realizes spec §7's retry
// policy for storage and network errors.
func WithBackoff(ctx context.Context, maxAttempts int, fn func() error) error {
	var lastErr error
	base := 25 * time.Millisecond
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		kind, ok := KindOf(lastErr)
		if ok && kind != KindStorageError && kind != KindNetworkError {
			return lastErr
		}
		if attempt == maxAttempts-1 {
			break
		}
		backoff := base * time.Duration(1<<uint(attempt))
		jitter := time.Duration(rand.Int63n(int64(backoff) + 1))
		sleep := backoff/2 + jitter/2
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
	return lastErr
}
