package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrMethodNotFound = fmt.Errorf("%w: method", ErrNotFound)

	// Catalog / configuration errors. These are the only fatal errors in a run.
	ErrCatalogNonCompliant = errors.New("method catalog failed compliance validation")
	ErrNoActiveCategories  = errors.New("no methods registered for any active category")

	// Validation errors
	ErrValidation         = errors.New("validation failed")
	ErrInvalidDescriptor  = errors.New("invalid target descriptor")
	ErrInvalidConstraints = errors.New("invalid selection constraints")
	ErrInvalidCandidateID = errors.New("invalid candidate id")
)

// Error constructors with context
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w for %s: %s", ErrValidation, field, reason)
}

func NewComplianceError(method MethodID, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrCatalogNonCompliant, method, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsCatalogError reports whether err must stop generation before sampling
func IsCatalogError(err error) bool {
	return errors.Is(err, ErrCatalogNonCompliant) ||
		errors.Is(err, ErrNoActiveCategories) ||
		errors.Is(err, ErrMethodNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidDescriptor) ||
		errors.Is(err, ErrInvalidConstraints) ||
		errors.Is(err, ErrInvalidCandidateID)
}
