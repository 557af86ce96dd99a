// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates the entity already exists, such as a duplicate
// partnership between the same two companies.
var ErrConflict = errors.New("conflict: resource already exists")

// ErrValidation indicates malformed or missing input; the caller must
// correct the request before retrying.
var ErrValidation = errors.New("validation failed")

// ErrForbidden indicates the caller is not a party to the resource or an
// access rule denies the action.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidState indicates a lifecycle transition attempted from the wrong
// state, such as accepting a non-pending partnership.
var ErrInvalidState = errors.New("invalid state for transition")

// ErrInactive indicates the partnership exists but is not accepted.
var ErrInactive = errors.New("partnership not active")

// ErrInconsistent indicates a paired write partially failed or a reverse
// partnership record is missing. Surfaced for operator attention.
var ErrInconsistent = errors.New("partnership records inconsistent")
