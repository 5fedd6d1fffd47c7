package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// ConflictError signals that a SKU is already claimed by the other
// resolution path (direct mapping vs combo) for the same marketplace.
type ConflictError struct {
	MarketplaceID uint
	SKU           string
	Reason        string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("mapping conflict for sku %q (marketplace %d): %s", e.SKU, e.MarketplaceID, e.Reason)
}

// UnresolvedComponentError signals that a combo references a component
// msku that does not exist in the catalog.
type UnresolvedComponentError struct {
	ComboSKU string
	MSKU     string
}

func (e *UnresolvedComponentError) Error() string {
	return fmt.Sprintf("combo %q references unknown catalog item %q", e.ComboSKU, e.MSKU)
}

// DuplicateReferenceError signals a re-post of an already-applied
// reference (same reference_id and transaction_type).
type DuplicateReferenceError struct {
	ReferenceID     string
	TransactionType string
}

func (e *DuplicateReferenceError) Error() string {
	return fmt.Sprintf("reference %q already applied as %s", e.ReferenceID, e.TransactionType)
}

// ValidationError signals malformed input (non-positive quantities, empty
// keys, fractional multipliers).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// BackendUnavailableError wraps a storage I/O failure. Retryable.
type BackendUnavailableError struct {
	Op  string
	Err error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("storage backend unavailable during %s: %v", e.Op, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// HTTPStatus maps a domain error to an HTTP status code for API responses.
func HTTPStatus(err error) int {
	var conflict *ConflictError
	var dup *DuplicateReferenceError
	var val *ValidationError
	var unresolved *UnresolvedComponentError
	var backend *BackendUnavailableError
	switch {
	case errors.As(err, &conflict), errors.As(err, &dup):
		return http.StatusConflict
	case errors.As(err, &val), errors.As(err, &unresolved):
		return http.StatusBadRequest
	case errors.As(err, &backend):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
