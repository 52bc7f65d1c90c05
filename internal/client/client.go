// internal/client/client.go

// Package client is a typed Go client for the umkmpos HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"umkmpos/internal/catalog"
	"umkmpos/internal/httpapi"
	"umkmpos/internal/inventory"
	"umkmpos/internal/reporting"
	"umkmpos/internal/sales"
)

// APIError is a non-2xx response decoded from the API error body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Is maps the wire error code back onto the domain sentinels, so callers can
// use errors.Is(err, inventory.ErrInsufficientStock) on both sides of the wire.
func (e *APIError) Is(target error) bool {
	switch e.Code {
	case httpapi.CodeNotFound:
		return target == inventory.ErrNotFound
	case httpapi.CodeValidationFailed:
		return target == inventory.ErrValidation
	case httpapi.CodeInsufficientStock:
		return target == inventory.ErrInsufficientStock
	case httpapi.CodeConflictingReference:
		return target == inventory.ErrConflictingReference
	case httpapi.CodeStoreUnavailable:
		return target == inventory.ErrStoreUnavailable
	}
	return false
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a client for the API served at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreateProduct(ctx context.Context, req catalog.CreateProductRequest) (*inventory.Product, error) {
	var p inventory.Product
	if err := c.do(ctx, http.MethodPost, "/api/v1/products", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	var products []inventory.Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns nil without an error when the product does not exist.
func (c *Client) GetProduct(ctx context.Context, id int64) (*inventory.Product, error) {
	var p inventory.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", id), nil, &p); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, req catalog.UpdateProductRequest) (*inventory.Product, error) {
	var p inventory.Product
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/products/%d", id), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", id), nil, nil)
}

func (c *Client) AdjustStock(ctx context.Context, id int64, req catalog.AdjustStockRequest) (*inventory.Product, error) {
	var p inventory.Product
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/products/%d/stock", id), req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListStockMovements(ctx context.Context, id int64, limit int) ([]inventory.StockMovement, error) {
	path := fmt.Sprintf("/api/v1/products/%d/movements", id)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var movements []inventory.StockMovement
	if err := c.do(ctx, http.MethodGet, path, nil, &movements); err != nil {
		return nil, err
	}
	return movements, nil
}

func (c *Client) ListLowStock(ctx context.Context) ([]inventory.LowStockItem, error) {
	var items []inventory.LowStockItem
	if err := c.do(ctx, http.MethodGet, "/api/v1/products/low-stock", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) ListProductsWithSales(ctx context.Context) ([]inventory.ProductWithSales, error) {
	var rows []inventory.ProductWithSales
	if err := c.do(ctx, http.MethodGet, "/api/v1/products/with-sales", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) CommitSale(ctx context.Context, req sales.CommitSaleRequest) (*inventory.Transaction, error) {
	var txn inventory.Transaction
	if err := c.do(ctx, http.MethodPost, "/api/v1/transactions", req, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (c *Client) ListTransactions(ctx context.Context) ([]inventory.Transaction, error) {
	var txns []inventory.Transaction
	if err := c.do(ctx, http.MethodGet, "/api/v1/transactions", nil, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// GetTransaction returns nil without an error when the transaction does not
// exist.
func (c *Client) GetTransaction(ctx context.Context, id int64) (*inventory.Transaction, error) {
	var txn inventory.Transaction
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/transactions/%d", id), nil, &txn); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (c *Client) SalesReport(ctx context.Context, req reporting.ReportRequest) (*reporting.Report, error) {
	q := url.Values{}
	q.Set("period", req.Period)
	q.Set("start_date", req.StartDate)
	if req.EndDate != "" {
		q.Set("end_date", req.EndDate)
	}
	var report reporting.Report
	if err := c.do(ctx, http.MethodGet, "/api/v1/reports/sales?"+q.Encode(), nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Health calls /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body httpapi.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		apiErr.Message = http.StatusText(resp.StatusCode)
		return apiErr
	}
	apiErr.Code = body.Code
	apiErr.Message = body.Error
	apiErr.Details = body.Details
	return apiErr
}

func isNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}
