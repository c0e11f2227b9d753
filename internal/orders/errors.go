package orders

import (
	"errors"
	"fmt"
)

// PurchaseErrorKind classifies why a purchase was rejected or failed.
type PurchaseErrorKind string

const (
	// Caller-input errors, recoverable by retrying with corrected input.
	KindNotFound              PurchaseErrorKind = "NOT_FOUND"
	KindIneligible            PurchaseErrorKind = "INELIGIBLE"
	KindNotYetOnSale          PurchaseErrorKind = "NOT_YET_ON_SALE"
	KindSaleEnded             PurchaseErrorKind = "SALE_ENDED"
	KindLimitExceeded         PurchaseErrorKind = "LIMIT_EXCEEDED"
	KindInsufficientInventory PurchaseErrorKind = "INSUFFICIENT_INVENTORY"

	// Transient conflict, safe to retry the whole purchase once.
	KindConcurrencyConflict PurchaseErrorKind = "CONCURRENCY_CONFLICT"

	// Infrastructure failure, transaction rolled back, not retried here.
	KindStoreFailure PurchaseErrorKind = "STORE_FAILURE"
)

// PurchaseError is the typed rejection returned by the validator and the
// executor. Inventory errors always carry the fresh remaining count.
type PurchaseError struct {
	Kind      PurchaseErrorKind
	Message   string
	Remaining int   // set for KindInsufficientInventory
	Err       error // underlying cause, set for KindStoreFailure
}

func (e *PurchaseError) Error() string {
	if e.Kind == KindInsufficientInventory {
		return fmt.Sprintf("%s (remaining: %d)", e.Message, e.Remaining)
	}
	return e.Message
}

func (e *PurchaseError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may safely retry the purchase.
func (e *PurchaseError) Retryable() bool {
	return e.Kind == KindConcurrencyConflict
}

func NewNotFound(message string) *PurchaseError {
	return &PurchaseError{Kind: KindNotFound, Message: message}
}

func NewIneligible(message string) *PurchaseError {
	return &PurchaseError{Kind: KindIneligible, Message: message}
}

func NewNotYetOnSale(message string) *PurchaseError {
	return &PurchaseError{Kind: KindNotYetOnSale, Message: message}
}

func NewSaleEnded(message string) *PurchaseError {
	return &PurchaseError{Kind: KindSaleEnded, Message: message}
}

func NewLimitExceeded(message string) *PurchaseError {
	return &PurchaseError{Kind: KindLimitExceeded, Message: message}
}

func NewInsufficientInventory(message string, remaining int) *PurchaseError {
	return &PurchaseError{Kind: KindInsufficientInventory, Message: message, Remaining: remaining}
}

func NewConcurrencyConflict(message string) *PurchaseError {
	return &PurchaseError{Kind: KindConcurrencyConflict, Message: message}
}

func NewStoreFailure(err error) *PurchaseError {
	return &PurchaseError{Kind: KindStoreFailure, Message: "purchase failed due to a store error", Err: err}
}

// AsPurchaseError extracts a *PurchaseError from an error chain. Any other
// error is wrapped as a store failure so callers always see the taxonomy.
func AsPurchaseError(err error) *PurchaseError {
	if err == nil {
		return nil
	}
	var perr *PurchaseError
	if errors.As(err, &perr) {
		return perr
	}
	return NewStoreFailure(err)
}
