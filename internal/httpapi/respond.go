// internal/httpapi/respond.go

// Package httpapi holds the JSON plumbing shared by every HTTP handler.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"umkmpos/internal/inventory"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeNotFound             = "not_found"
	CodeValidationFailed     = "validation_failed"
	CodeInsufficientStock    = "insufficient_stock"
	CodeConflictingReference = "conflicting_reference"
	CodeStoreUnavailable     = "store_unavailable"
	CodeInternal             = "internal"
	CodeRateLimited          = "rate_limited"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto the error taxonomy and writes it.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, body := Classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	WriteJSON(w, status, body)
}

// Classify returns the HTTP status and body for err.
func Classify(err error) (int, ErrorResponse) {
	var (
		missing   *inventory.ProductsNotFoundError
		short     *inventory.InsufficientStockError
		adjust    *inventory.StockAdjustmentError
		invalid   *inventory.ValidationError
		history   *inventory.ProductHasSalesHistoryError
		productNF *inventory.ProductNotFoundError
		txnNF     *inventory.TransactionNotFoundError
	)

	switch {
	case errors.As(err, &missing):
		return http.StatusNotFound, ErrorResponse{
			Error:   missing.Error(),
			Code:    CodeNotFound,
			Details: map[string]any{"missing_ids": missing.MissingIDs},
		}
	case errors.As(err, &productNF):
		return http.StatusNotFound, ErrorResponse{
			Error:   productNF.Error(),
			Code:    CodeNotFound,
			Details: map[string]any{"product_id": productNF.ID},
		}
	case errors.As(err, &txnNF):
		return http.StatusNotFound, ErrorResponse{
			Error:   txnNF.Error(),
			Code:    CodeNotFound,
			Details: map[string]any{"transaction_id": txnNF.ID},
		}
	case errors.Is(err, inventory.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNotFound}
	case errors.As(err, &invalid):
		return http.StatusBadRequest, ErrorResponse{
			Error:   invalid.Error(),
			Code:    CodeValidationFailed,
			Details: map[string]any{"field": invalid.Field},
		}
	case errors.Is(err, inventory.ErrValidation):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeValidationFailed}
	case errors.As(err, &short):
		return http.StatusConflict, ErrorResponse{
			Error: short.Error(),
			Code:  CodeInsufficientStock,
			Details: map[string]any{
				"product_id":   short.ProductID,
				"product_name": short.ProductName,
				"available":    short.Available,
				"requested":    short.Requested,
			},
		}
	case errors.As(err, &adjust):
		return http.StatusConflict, ErrorResponse{
			Error: adjust.Error(),
			Code:  CodeInsufficientStock,
			Details: map[string]any{
				"product_id":       adjust.ProductID,
				"current_stock":    adjust.CurrentStock,
				"attempted_change": adjust.AttemptedChange,
			},
		}
	case errors.Is(err, inventory.ErrInsufficientStock):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: CodeInsufficientStock}
	case errors.As(err, &history):
		return http.StatusConflict, ErrorResponse{
			Error:   history.Error(),
			Code:    CodeConflictingReference,
			Details: map[string]any{"product_id": history.ProductID},
		}
	case errors.Is(err, inventory.ErrConflictingReference):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: CodeConflictingReference}
	case errors.Is(err, inventory.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "store unavailable", Code: CodeStoreUnavailable}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: CodeInternal}
	}
}

// DecodeJSON reads the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &inventory.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}

// IDParam parses a positive int64 URL parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, inventory.Invalid(name, "invalid ID %q", raw)
	}
	return id, nil
}

// IntQuery parses an optional integer query parameter.
func IntQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, inventory.Invalid(name, "not an integer: %q", raw)
	}
	return n, nil
}
