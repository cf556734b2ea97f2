// Package errors declares the sentinel errors shared by the store,
// the business rules and the transport layer.
package errors

import (
	"fmt"
)

var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrConflict     = fmt.Errorf("conflict")
	ErrUnavailable  = fmt.Errorf("service unavailable")
)

// Store level constraint violations.
var (
	ErrDuplicateKey       = fmt.Errorf("%w: duplicate key", ErrConflict)
	ErrReferenceViolation = fmt.Errorf("%w: record is still referenced", ErrConflict)
)

// Business rule violations.
var (
	ErrDuplicateTaxID        = fmt.Errorf("%w: tax id already registered", ErrConflict)
	ErrAlreadyLinked         = fmt.Errorf("%w: supplier already linked to company", ErrConflict)
	ErrNotLinked             = fmt.Errorf("%w: supplier is not linked to company", ErrConflict)
	ErrMissingIndividualDocs = fmt.Errorf("%w: rg and dataNascimento are required for PF suppliers", ErrInvalidInput)
	ErrUnderage              = fmt.Errorf("%w: underage individual supplier cannot be linked to a company in PR", ErrInvalidInput)
)
