// internal/reporting/handler.go
package reporting

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

// Routes registers the report endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/reports/sales", h.handleSalesReport)
}

func (h *Handler) handleSalesReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.service.BuildReport(r.Context(), ReportRequest{
		Period:    q.Get("period"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	})
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, report)
}
