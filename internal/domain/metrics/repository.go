package metrics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the read-only query contract against the transactional
// billing store. Every operation is independent and side-effect-free; the
// aggregation engine fans them out concurrently. Implementations must fail
// with a DATA_SOURCE error when the store is unreachable or a query fails,
// never silently return defaults.
type Repository interface {
	// PaidRevenueBetween sums the gross amount of paid invoices whose
	// invoice date falls within [from, to].
	PaidRevenueBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, error)

	// CountInvoicesByStatus counts the tenant's invoices in a given status
	CountInvoicesByStatus(ctx context.Context, tenantID uuid.UUID, status InvoiceStatus) (int64, error)

	// CountInvoices counts all of the tenant's invoices regardless of status
	CountInvoices(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// InvoiceStatusCounts returns a sparse status histogram: only statuses
	// with at least one invoice are present. Zero-filling the fixed set is
	// the aggregation engine's responsibility.
	InvoiceStatusCounts(ctx context.Context, tenantID uuid.UUID) (map[InvoiceStatus]int64, error)

	// TopCustomers ranks customers by their paid-invoice total, descending,
	// tie-break customer id ascending. Customers without any paid invoice
	// are excluded. limit caps the result size.
	TopCustomers(ctx context.Context, tenantID uuid.UUID, limit int) ([]TopCustomer, error)

	// CountQuotesBetween counts quotes whose quote date falls within [from, to]
	CountQuotesBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error)

	// CountQuotesByStatus counts the tenant's quotes in a given status
	CountQuotesByStatus(ctx context.Context, tenantID uuid.UUID, status QuoteStatus) (int64, error)

	// QuoteStatusCounts returns a sparse quote status histogram
	QuoteStatusCounts(ctx context.Context, tenantID uuid.UUID) (map[QuoteStatus]int64, error)

	// PaymentDelays returns, for every paid invoice that has at least one
	// recorded payment, the delay between issue date and first payment in
	// whole days (ceiling). Invoices without payments are excluded.
	PaymentDelays(ctx context.Context, tenantID uuid.UUID) ([]int64, error)

	// CountCustomers counts all of the tenant's customers
	CountCustomers(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// CountCustomersCreatedBetween counts customers created within [from, to]
	CountCustomersCreatedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error)

	// RevenueStatsBetween returns the paid-invoice revenue sum and invoice
	// count for a window, used by the revenue analytics bucketing.
	RevenueStatsBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (decimal.Decimal, int64, error)

	// Ping verifies the store is reachable with a trivial round-trip
	Ping(ctx context.Context) error
}
