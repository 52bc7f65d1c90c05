// internal/reporting/service.go
package reporting

import "context"

// Service defines the interface for the reporting service.
type Service interface {
	BuildReport(ctx context.Context, req ReportRequest) (*Report, error)
}
