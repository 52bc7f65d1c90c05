// internal/inventory/errors.go
package inventory

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrConflictingReference = errors.New("conflicting reference")
	ErrStoreUnavailable     = errors.New("store unavailable")

	// ErrEmptyItemList rejects a sale without items before the store is touched.
	ErrEmptyItemList = &ValidationError{Field: "items", Message: "at least one item is required"}
)

// ValidationError reports malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ProductNotFoundError is returned when a single product lookup misses.
type ProductNotFoundError struct {
	ID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID %d not found", e.ID)
}

func (e *ProductNotFoundError) Is(target error) bool { return target == ErrNotFound }

// ProductsNotFoundError lists every product id of a sale that does not exist.
type ProductsNotFoundError struct {
	MissingIDs []int64
}

func (e *ProductsNotFoundError) Error() string {
	ids := make([]string, len(e.MissingIDs))
	for i, id := range e.MissingIDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("products not found: %s", strings.Join(ids, ", "))
}

func (e *ProductsNotFoundError) Is(target error) bool { return target == ErrNotFound }

// TransactionNotFoundError is returned when a ledger lookup misses.
type TransactionNotFoundError struct {
	ID int64
}

func (e *TransactionNotFoundError) Error() string {
	return fmt.Sprintf("transaction with ID %d not found", e.ID)
}

func (e *TransactionNotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError rejects a sale line that asks for more than is on hand.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %d, requested %d", e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// StockAdjustmentError rejects an adjustment that would drive stock negative.
type StockAdjustmentError struct {
	ProductID       int64
	CurrentStock    int
	AttemptedChange int
}

func (e *StockAdjustmentError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: current %d, attempted change %d", e.ProductID, e.CurrentStock, e.AttemptedChange)
}

func (e *StockAdjustmentError) Is(target error) bool { return target == ErrInsufficientStock }

// ProductHasSalesHistoryError blocks deleting a product referenced by line items.
type ProductHasSalesHistoryError struct {
	ProductID int64
}

func (e *ProductHasSalesHistoryError) Error() string {
	return fmt.Sprintf("product %d has sales history and cannot be deleted", e.ProductID)
}

func (e *ProductHasSalesHistoryError) Is(target error) bool { return target == ErrConflictingReference }

// StoreError wraps a persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// Unavailable wraps err as a StoreError unless it already carries a domain
// meaning, in which case it is returned untouched.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrNotFound, ErrValidation, ErrInsufficientStock, ErrConflictingReference, ErrStoreUnavailable} {
		if errors.Is(err, known) {
			return err
		}
	}
	return &StoreError{Op: op, Err: err}
}
