package report

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/facturo/backend/internal/domain/report"
	"github.com/facturo/backend/internal/domain/shared"
)

func TestReportService_Enqueue(t *testing.T) {
	ctx := context.Background()
	svc := NewReportService(zap.NewNop())

	t.Run("registers a pending request", func(t *testing.T) {
		tenantID := uuid.New()

		req, err := svc.Enqueue(ctx, tenantID, report.TypeRevenue, "2026-08", report.FormatCSV)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, req.ID)
		assert.Equal(t, tenantID, req.TenantID)
		assert.Equal(t, report.StatusPending, req.Status)
		assert.Equal(t, report.FormatCSV, req.Format)
		assert.False(t, req.CreatedAt.IsZero())
	})

	t.Run("defaults format to json", func(t *testing.T) {
		req, err := svc.Enqueue(ctx, uuid.New(), report.TypeInvoices, "2026", "")
		require.NoError(t, err)
		assert.Equal(t, report.FormatJSON, req.Format)
	})

	t.Run("rejects unknown report type", func(t *testing.T) {
		_, err := svc.Enqueue(ctx, uuid.New(), report.Type("payroll"), "2026", report.FormatJSON)
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})

	t.Run("rejects nil tenant", func(t *testing.T) {
		_, err := svc.Enqueue(ctx, uuid.Nil, report.TypeRevenue, "2026", report.FormatJSON)
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})
}

func TestReportService_Status(t *testing.T) {
	ctx := context.Background()
	svc := NewReportService(zap.NewNop())

	tenantID := uuid.New()
	req, err := svc.Enqueue(ctx, tenantID, report.TypeCustomers, "2026-Q3", report.FormatJSON)
	require.NoError(t, err)

	t.Run("finds an enqueued request", func(t *testing.T) {
		got, err := svc.Status(ctx, tenantID, req.ID)
		require.NoError(t, err)
		assert.Equal(t, req.ID, got.ID)
		assert.Equal(t, report.StatusPending, got.Status)
	})

	t.Run("unknown id reports not found", func(t *testing.T) {
		_, err := svc.Status(ctx, tenantID, uuid.New())
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("another tenant cannot see the request", func(t *testing.T) {
		_, err := svc.Status(ctx, uuid.New(), req.ID)
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}
