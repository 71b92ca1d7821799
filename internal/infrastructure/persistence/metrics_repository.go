package persistence

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/facturo/backend/internal/domain/metrics"
	"github.com/facturo/backend/internal/domain/shared"
)

// GormMetricsRepository implements metrics.Repository using GORM.
// Every query is tenant-scoped; aggregates are computed in SQL and only
// compact result sets cross the wire.
type GormMetricsRepository struct {
	db *gorm.DB
}

// NewGormMetricsRepository creates a new GormMetricsRepository
func NewGormMetricsRepository(db *gorm.DB) *GormMetricsRepository {
	return &GormMetricsRepository{db: db}
}

var _ metrics.Repository = (*GormMetricsRepository)(nil)

// PaidRevenueBetween sums total amounts of paid invoices issued within [from, to)
func (r *GormMetricsRepository) PaidRevenueBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}

	err := r.db.WithContext(ctx).
		Table("invoices").
		Select("COALESCE(SUM(total_amount), 0) as total").
		Where("tenant_id = ?", tenantID).
		Where("status = ?", metrics.InvoiceStatusPaid).
		Where("issue_date >= ? AND issue_date < ?", from, to).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, shared.NewDataSourceError("failed to sum paid revenue", err)
	}
	return result.Total, nil
}

// CountInvoicesByStatus counts the tenant's invoices in a single status
func (r *GormMetricsRepository) CountInvoicesByStatus(ctx context.Context, tenantID uuid.UUID, status metrics.InvoiceStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("invoices").
		Where("tenant_id = ?", tenantID).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, shared.NewDataSourceError("failed to count invoices by status", err)
	}
	return count, nil
}

// CountInvoices counts all of the tenant's invoices
func (r *GormMetricsRepository) CountInvoices(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("invoices").
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	if err != nil {
		return 0, shared.NewDataSourceError("failed to count invoices", err)
	}
	return count, nil
}

// InvoiceStatusCounts returns per-status invoice counts. Statuses with no
// invoices are absent from the map; zero-filling is the caller's concern.
func (r *GormMetricsRepository) InvoiceStatusCounts(ctx context.Context, tenantID uuid.UUID) (map[metrics.InvoiceStatus]int64, error) {
	type statusRow struct {
		Status metrics.InvoiceStatus
		Count  int64
	}

	var rows []statusRow
	err := r.db.WithContext(ctx).
		Table("invoices").
		Select("status, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, shared.NewDataSourceError("failed to count invoices per status", err)
	}

	counts := make(map[metrics.InvoiceStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// TopCustomers returns up to limit customers ranked by paid invoice volume,
// descending. Equal totals are broken by customer ID ascending so the
// ordering is deterministic.
func (r *GormMetricsRepository) TopCustomers(ctx context.Context, tenantID uuid.UUID, limit int) ([]metrics.TopCustomer, error) {
	if limit <= 0 {
		return []metrics.TopCustomer{}, nil
	}

	type customerRow struct {
		CustomerID   uuid.UUID
		Name         string
		Kind         metrics.CustomerKind
		TotalAmount  decimal.Decimal
		InvoiceCount int64
	}

	var rows []customerRow
	err := r.db.WithContext(ctx).
		Table("invoices i").
		Select(`
			i.customer_id,
			c.name,
			c.kind,
			COALESCE(SUM(i.total_amount), 0) as total_amount,
			COUNT(i.id) as invoice_count
		`).
		Joins("JOIN customers c ON c.id = i.customer_id").
		Where("i.tenant_id = ?", tenantID).
		Where("i.status = ?", metrics.InvoiceStatusPaid).
		Group("i.customer_id, c.name, c.kind").
		Order("total_amount DESC, i.customer_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, shared.NewDataSourceError("failed to rank top customers", err)
	}

	customers := make([]metrics.TopCustomer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, metrics.TopCustomer{
			CustomerID:   row.CustomerID,
			Name:         row.Name,
			Kind:         row.Kind,
			TotalAmount:  row.TotalAmount,
			InvoiceCount: row.InvoiceCount,
		})
	}
	return customers, nil
}

// CountQuotesBetween counts quotes issued within [from, to)
func (r *GormMetricsRepository) CountQuotesBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("quotes").
		Where("tenant_id = ?", tenantID).
		Where("issue_date >= ? AND issue_date < ?", from, to).
		Count(&count).Error
	if err != nil {
		return 0, shared.NewDataSourceError("failed to count quotes in range", err)
	}
	return count, nil
}

// CountQuotesByStatus counts the tenant's quotes in a single status
func (r *GormMetricsRepository) CountQuotesByStatus(ctx context.Context, tenantID uuid.UUID, status metrics.QuoteStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("quotes").
		Where("tenant_id = ?", tenantID).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, shared.NewDataSourceError("failed to count quotes by status", err)
	}
	return count, nil
}

// QuoteStatusCounts returns per-status quote counts without zero-filling
func (r *GormMetricsRepository) QuoteStatusCounts(ctx context.Context, tenantID uuid.UUID) (map[metrics.QuoteStatus]int64, error) {
	type statusRow struct {
		Status metrics.QuoteStatus
		Count  int64
	}

	var rows []statusRow
	err := r.db.WithContext(ctx).
		Table("quotes").
		Select("status, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, shared.NewDataSourceError("failed to count quotes per status", err)
	}

	counts := make(map[metrics.QuoteStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// PaymentDelays returns, for every paid invoice with at least one recorded
// payment, the delay in whole days between issue and earliest payment.
// Fractional days round up, so a payment 4.2 days after issue counts as 5.
func (r *GormMetricsRepository) PaymentDelays(ctx context.Context, tenantID uuid.UUID) ([]int64, error) {
	type delayRow struct {
		IssueDate   time.Time
		FirstPaidAt time.Time
	}

	var rows []delayRow
	err := r.db.WithContext(ctx).
		Table("invoices i").
		Select("i.issue_date, MIN(p.payment_date) as first_paid_at").
		Joins("JOIN invoice_payments p ON p.invoice_id = i.id").
		Where("i.tenant_id = ?", tenantID).
		Where("i.status = ?", metrics.InvoiceStatusPaid).
		Group("i.id, i.issue_date").
		Scan(&rows).Error
	if err != nil {
		return nil, shared.NewDataSourceError("failed to load payment delays", err)
	}

	delays := make([]int64, 0, len(rows))
	for _, row := range rows {
		days := row.FirstPaidAt.Sub(row.IssueDate).Hours() / 24
		if days < 0 {
			days = 0
		}
		delays = append(delays, int64(math.Ceil(days)))
	}
	return delays, nil
}

// CountCustomers counts all of the tenant's customers
func (r *GormMetricsRepository) CountCustomers(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("customers").
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	if err != nil {
		return 0, shared.NewDataSourceError("failed to count customers", err)
	}
	return count, nil
}

// CountCustomersCreatedBetween counts customers created within [from, to)
func (r *GormMetricsRepository) CountCustomersCreatedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("customers").
		Where("tenant_id = ?", tenantID).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	if err != nil {
		return 0, shared.NewDataSourceError("failed to count new customers", err)
	}
	return count, nil
}

// RevenueStatsBetween returns the paid revenue and paid invoice count for
// invoices issued within [from, to) in a single query.
func (r *GormMetricsRepository) RevenueStatsBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, int64, error) {
	var result struct {
		Total decimal.Decimal
		Count int64
	}

	err := r.db.WithContext(ctx).
		Table("invoices").
		Select("COALESCE(SUM(total_amount), 0) as total, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Where("status = ?", metrics.InvoiceStatusPaid).
		Where("issue_date >= ? AND issue_date < ?", from, to).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, 0, shared.NewDataSourceError("failed to load revenue stats", err)
	}
	return result.Total, result.Count, nil
}

// Ping verifies the underlying database connection
func (r *GormMetricsRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return shared.NewDataSourceError("failed to get underlying sql.DB", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return shared.NewDataSourceError("database ping failed", err)
	}
	return nil
}
