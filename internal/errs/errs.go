// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateConsent indicates a non-terminal consent record already exists
	// for the (story, site) pair.
	ErrDuplicateConsent = errors.New("duplicate consent")

	// ErrInvalidStateTransition indicates an attempted consent transition that is
	// not an edge of the lifecycle graph. State is left unchanged.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrUnauthorized indicates a bad, expired, or revoked embed token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput indicates a request that is well-formed but semantically
	// invalid, such as an unknown event type or an empty period range.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConcurrencyConflict indicates an optimistic concurrency failure
	// (consent version mismatch) that survived the bounded internal retries.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)
