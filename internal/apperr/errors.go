// Package apperr holds sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrIntegrity marks a document set that cannot be published at all,
	// such as two entries sharing one id.
	ErrIntegrity = errors.New("integrity violation")
	ErrInvalid   = errors.New("invalid input")
)
