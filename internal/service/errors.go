// Package service implements the business operations of splitshare:
// authorization checks, split allocation, balance summaries and the
// group/receipt lifecycle, on top of a storage.Store.
package service

import (
	"errors"
	"fmt"
)

// Error taxonomy, checked by the transport layer with errors.Is:
//
//   - ErrNotFound: a referenced entity does not exist
//   - ErrNotAuthorized: the caller may not perform the operation; no
//     further detail is leaked
//   - ErrValidation: the input is rejected before any mutation
//
// Everything else is an internal failure, logged with detail server-side
// and surfaced generically.
var (
	ErrNotFound      = errors.New("not found")
	ErrNotAuthorized = errors.New("not authorized")
	ErrValidation    = errors.New("validation failed")
)

// validationError wraps a descriptive message into the validation class.
func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
