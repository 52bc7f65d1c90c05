// internal/sales/domain.go
package sales

import "time"

// SaleItem is one requested line of a sale.
type SaleItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CommitSaleRequest carries a sale to be committed atomically. A nil
// TransactionDate means the commit time.
type CommitSaleRequest struct {
	Items           []SaleItem `json:"items"`
	Notes           string     `json:"notes,omitempty"`
	TransactionDate *time.Time `json:"transaction_date,omitempty"`
}
