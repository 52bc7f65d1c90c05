// internal/inventory/money.go
package inventory

import (
	"math"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits kept for currency amounts.
const MoneyPlaces = 2

// MaxQuantity bounds stock levels, thresholds and line quantities to the
// INTEGER columns they are stored in.
const MaxQuantity = math.MaxInt32

var (
	// MaxPrice is the exclusive upper bound of a unit price, NUMERIC(12,2).
	MaxPrice = decimal.New(1, 10)
	// MaxAmount is the exclusive upper bound of a subtotal or a transaction
	// total, NUMERIC(14,2).
	MaxAmount = decimal.New(1, 12)
)

// ValidatePrice checks that price is positive, fits the price column and
// carries no more than two fractional digits.
func ValidatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return Invalid("price", "must be greater than 0")
	}
	if price.GreaterThanOrEqual(MaxPrice) {
		return Invalid("price", "must be less than %s", MaxPrice)
	}
	if !price.Equal(price.Round(MoneyPlaces)) {
		return Invalid("price", "must have at most %d decimal places", MoneyPlaces)
	}
	return nil
}

// ValidateCount checks that n is a storable non-negative count.
func ValidateCount(field string, n int) error {
	if n < 0 {
		return Invalid(field, "must not be negative")
	}
	if n > MaxQuantity {
		return Invalid(field, "must not exceed %d", MaxQuantity)
	}
	return nil
}

// Subtotal is quantity times unitPrice.
func Subtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
