// internal/catalog/handler.go
package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"umkmpos/internal/httpapi"
	"umkmpos/internal/store"
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

// Routes registers the catalog endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/products", h.handleCreateProduct)
	r.Get("/products", h.handleListProducts)
	r.Get("/products/low-stock", h.handleLowStock)
	r.Get("/products/{id}", h.handleGetProduct)
	r.Patch("/products/{id}", h.handleUpdateProduct)
	r.Delete("/products/{id}", h.handleDeleteProduct)
	r.Post("/products/{id}/stock", h.handleAdjustStock)
	r.Get("/products/{id}/movements", h.handleListMovements)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, product)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.IDParam(r, "id")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, product)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.IDParam(r, "id")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	var req UpdateProductRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, product)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.IDParam(r, "id")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.IDParam(r, "id")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	var req AdjustStockRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}

	product, err := h.service.AdjustStock(r.Context(), id, req)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, product)
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListLowStock(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) handleListMovements(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.IDParam(r, "id")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	limit, err := httpapi.IntQuery(r, "limit", store.DefaultMovementLimit)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}

	movements, err := h.service.ListStockMovements(r.Context(), id, limit)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, movements)
}
