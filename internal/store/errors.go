package store

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors so the host layer can map each to a
// stable status and code.
type Kind int

const (
	// KindUnknown is the zero value and never returned by the engine.
	KindUnknown Kind = iota
	// KindNotFound: referenced entity does not exist or does not belong
	// to the caller's ledger/user.
	KindNotFound
	// KindValidation: malformed input (split-sum mismatch, non-positive
	// amount, missing charge category, fund switched into itself, ...).
	KindValidation
	// KindInvalidOperation: operation not permitted on this entity
	// state, e.g. posting to a group account.
	KindInvalidOperation
	// KindInsufficientBalance: operation would overdraw an account.
	KindInsufficientBalance
	// KindInsufficientUnits: sell/switch of more fund units than held.
	KindInsufficientUnits
	// KindInsufficientQuantity: sell of more asset quantity than held.
	KindInsufficientQuantity
	// KindConsistency: an internal invariant is violated (e.g. a
	// transfer pair that is not exactly two rows). Indicates data
	// corruption, not user error, and is logged server-side.
	KindConsistency
)

// Error is the engine's error type: a kind plus a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// KindOf extracts the Kind from err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

func errf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) *Error {
	return errf(KindNotFound, format, args...)
}

func validationf(format string, args ...any) *Error {
	return errf(KindValidation, format, args...)
}

func invalidOpf(format string, args ...any) *Error {
	return errf(KindInvalidOperation, format, args...)
}

func consistencyf(format string, args ...any) *Error {
	return errf(KindConsistency, format, args...)
}
