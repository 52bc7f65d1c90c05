package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"umkmpos/internal/inventory"
)

const (
	codeNumericOutOfRange   = "22003"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// translate maps driver errors onto the domain taxonomy. Values the columns
// cannot hold are the caller's fault and become validation errors; anything
// else without a domain meaning becomes a StoreError.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == codeCheckViolation && pqErr.Constraint == "products_stock_non_negative":
			return fmt.Errorf("%s: %w", op, inventory.ErrInsufficientStock)
		case pqErr.Code == codeForeignKeyViolation && pqErr.Table == "sales_transaction_items":
			return fmt.Errorf("%s: %w", op, inventory.ErrConflictingReference)
		case pqErr.Code == codeNumericOutOfRange:
			return inventory.Invalid(op, "value out of range: %s", pqErr.Message)
		case pqErr.Code == codeCheckViolation:
			return inventory.Invalid(op, "%s", pqErr.Message)
		}
	}
	return inventory.Unavailable(op, err)
}
