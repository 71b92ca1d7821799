package report

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facturo/backend/internal/domain/report"
	"github.com/facturo/backend/internal/domain/shared"
)

// ReportService accepts report-generation requests and tracks their status.
// Generation itself is not implemented; requests are registered as pending
// and can be polled by id. The registry is in-process and not persisted.
type ReportService struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*report.Request
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(logger *zap.Logger) *ReportService {
	return &ReportService{
		requests: make(map[uuid.UUID]*report.Request),
		logger:   logger,
		now:      time.Now,
	}
}

// Enqueue validates and registers a report request, returning it in pending
// state.
func (s *ReportService) Enqueue(_ context.Context, tenantID uuid.UUID, reportType report.Type, period string, format report.Format) (*report.Request, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant id is required")
	}
	if !reportType.IsValid() {
		return nil, shared.NewValidationError("invalid report type: " + string(reportType))
	}
	if format == "" {
		format = report.FormatJSON
	}
	if !format.IsValid() {
		return nil, shared.NewValidationError("invalid report format: " + string(format))
	}

	req := &report.Request{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Type:      reportType,
		Period:    period,
		Format:    format,
		Status:    report.StatusPending,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.requests[req.ID] = req
	s.mu.Unlock()

	s.logger.Info("Report request enqueued",
		zap.String("report_id", req.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("type", string(reportType)),
	)

	return req, nil
}

// Status returns the request by id, scoped to the tenant. Unknown ids and
// other tenants' requests both report not found.
func (s *ReportService) Status(_ context.Context, tenantID, reportID uuid.UUID) (*report.Request, error) {
	s.mu.RLock()
	req, ok := s.requests[reportID]
	s.mu.RUnlock()

	if !ok || req.TenantID != tenantID {
		return nil, shared.NewNotFoundError("report not found: " + reportID.String())
	}

	copied := *req
	return &copied, nil
}
