package shop

import (
	"errors"
	"fmt"

	"shoplist/internal/share"
)

// ErrNotFound indicates that a record, blob, or item key has no match.
// Callers treat it as recoverable.
var ErrNotFound = errors.New("not found")

// ErrSessionActive is returned when opening a session for one list while a
// different list's session is still in progress. The caller must cancel or
// finish the open session explicitly.
var ErrSessionActive = errors.New("another shopping session is active")

// ErrNoActiveSession is returned by session mutations when no trip is in
// progress.
var ErrNoActiveSession = errors.New("no active shopping session")

// ErrDuplicateListItem is returned when adding a catalog variant whose key
// is already on the list.
var ErrDuplicateListItem = errors.New("item already on list")

// ErrLastVariant is returned when deleting the only remaining variant of a
// master item.
var ErrLastVariant = errors.New("cannot delete the last variant")

// Codec failures, re-exported so callers can match import errors without
// importing the share package.
var (
	ErrInvalidFormat      = share.ErrInvalidFormat
	ErrUnsupportedVersion = share.ErrUnsupportedVersion
)

// StorageError wraps an underlying I/O failure. It is surfaced to the
// caller as-is; no layer retries automatically.
type StorageError struct {
	Op  string // "put", "get", "delete", "list"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ValidationError rejects a mutation before any state is touched: empty
// required fields, negative prices, duplicate list items, deleting the last
// remaining variant. Err, when set, carries the matching sentinel so
// callers can errors.Is against it.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return e.Err }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
