// internal/sales/handler.go
package sales

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"umkmpos/internal/httpapi"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// Routes registers the ledger endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/transactions", h.handleCommitSale)
	r.Get("/transactions", h.handleListTransactions)
	r.Get("/transactions/{id}", h.handleGetTransaction)
	r.Get("/products/with-sales", h.handleProductsWithSales)
}

func (h *Handler) handleCommitSale(w http.ResponseWriter, r *http.Request) {
	var req CommitSaleRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}

	txn, err := h.service.CommitSale(r.Context(), req)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, txn)
}

func (h *Handler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.service.ListTransactions(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, txns)
}

func (h *Handler) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.IDParam(r, "id")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}

	txn, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, txn)
}

func (h *Handler) handleProductsWithSales(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListProductsWithSales(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, rows)
}
