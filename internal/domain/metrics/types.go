package metrics

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
	InvoiceStatusLate      InvoiceStatus = "late"
)

// AllInvoiceStatuses returns the closed invoice status set in display order.
// Histograms enumerate this set in full, zero-filled.
func AllInvoiceStatuses() []InvoiceStatus {
	return []InvoiceStatus{
		InvoiceStatusPending,
		InvoiceStatusSent,
		InvoiceStatusPaid,
		InvoiceStatusCancelled,
		InvoiceStatusLate,
	}
}

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusCancelled, InvoiceStatusLate:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// QuoteStatus represents the lifecycle status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// AllQuoteStatuses returns the closed quote status set in display order
func AllQuoteStatuses() []QuoteStatus {
	return []QuoteStatus{
		QuoteStatusDraft,
		QuoteStatusSent,
		QuoteStatusAccepted,
		QuoteStatusRejected,
		QuoteStatusExpired,
	}
}

// IsValid checks if the status is a valid QuoteStatus
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted,
		QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// String returns the string representation of QuoteStatus
func (s QuoteStatus) String() string {
	return string(s)
}

// CustomerKind distinguishes individual and business customers
type CustomerKind string

const (
	CustomerKindIndividual CustomerKind = "individual"
	CustomerKindCompany    CustomerKind = "company"
)

// StatusCount is one histogram bucket: a status and its occurrence count
type StatusCount[S ~string] struct {
	Status S     `json:"status"`
	Count  int64 `json:"count"`
}

// ZeroFilledHistogram overlays sparse counts onto the full status set so the
// result always enumerates every status, in order, with zeros where the data
// source returned nothing.
func ZeroFilledHistogram[S ~string](all []S, sparse map[S]int64) []StatusCount[S] {
	out := make([]StatusCount[S], len(all))
	for i, status := range all {
		out[i] = StatusCount[S]{Status: status, Count: sparse[status]}
	}
	return out
}

// TopCustomer is one entry of the top-customers ranking
type TopCustomer struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	Name         string          `json:"name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	InvoiceCount int64           `json:"invoice_count"`
	Kind         CustomerKind    `json:"kind"`
}

// RankTopCustomers sorts customers by paid total descending, tie-break by
// customer id ascending, and truncates to limit. The ordering is re-applied
// here so it does not depend on the data source preserving it.
func RankTopCustomers(customers []TopCustomer, limit int) []TopCustomer {
	sort.SliceStable(customers, func(i, j int) bool {
		if !customers[i].TotalAmount.Equal(customers[j].TotalAmount) {
			return customers[i].TotalAmount.GreaterThan(customers[j].TotalAmount)
		}
		return customers[i].CustomerID.String() < customers[j].CustomerID.String()
	})
	if limit > 0 && len(customers) > limit {
		customers = customers[:limit]
	}
	return customers
}

// DashboardSnapshot is the composite KPI result for one tenant at one point
// in time. It is computed on demand, cached with a fixed TTL and never
// mutated in place; a refresh always recomputes and overwrites.
type DashboardSnapshot struct {
	MonthlyRevenue            decimal.Decimal             `json:"monthly_revenue"`
	YearlyRevenue             decimal.Decimal             `json:"yearly_revenue"`
	PendingInvoices           int64                       `json:"pending_invoices"`
	OverdueInvoices           int64                       `json:"overdue_invoices"`
	TopCustomers              []TopCustomer               `json:"top_customers"`
	InvoiceStatusDistribution []StatusCount[InvoiceStatus] `json:"invoice_status_distribution"`
	MonthlyQuotes             int64                       `json:"monthly_quotes"`
	YearlyQuotes              int64                       `json:"yearly_quotes"`
	PendingQuotes             int64                       `json:"pending_quotes"`
	AcceptedQuotes            int64                       `json:"accepted_quotes"`
	QuoteStatusDistribution   []StatusCount[QuoteStatus]  `json:"quote_status_distribution"`
	QuoteToInvoiceRatio       decimal.Decimal             `json:"quote_to_invoice_ratio"`
	AveragePaymentDelay       int64                       `json:"average_payment_delay"`
	TotalCustomers            int64                       `json:"total_customers"`
	NewCustomersThisMonth     int64                       `json:"new_customers_this_month"`
	GrowthRate                decimal.Decimal             `json:"growth_rate"`
}

// PeriodKind is the granularity of a revenue analytics request
type PeriodKind string

const (
	PeriodDaily   PeriodKind = "daily"
	PeriodWeekly  PeriodKind = "weekly"
	PeriodMonthly PeriodKind = "monthly"
	PeriodYearly  PeriodKind = "yearly"
)

// IsValid checks if the kind is a valid PeriodKind
func (p PeriodKind) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// String returns the string representation of PeriodKind
func (p PeriodKind) String() string {
	return string(p)
}

// RevenuePoint is one bucket of a revenue analytics series
type RevenuePoint struct {
	Period            string          `json:"period"`
	PeriodStart       time.Time       `json:"period_start"`
	PeriodEnd         time.Time       `json:"period_end"`
	Revenue           decimal.Decimal `json:"revenue"`
	InvoiceCount      int64           `json:"invoice_count"`
	AvgInvoiceAmount  decimal.Decimal `json:"avg_invoice_amount"`
	GrowthRate        decimal.Decimal `json:"growth_rate"`
	CumulativeRevenue decimal.Decimal `json:"cumulative_revenue"`
}

// HealthStatus reports data source reachability
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
)

// RealTimeMetrics is the lightweight polling payload derived from the
// dashboard snapshot.
type RealTimeMetrics struct {
	Timestamp       time.Time       `json:"timestamp"`
	TodayRevenue    decimal.Decimal `json:"today_revenue"`
	PendingInvoices int64           `json:"pending_invoices"`
	OverdueInvoices int64           `json:"overdue_invoices"`
}
