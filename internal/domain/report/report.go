package report

import (
	"time"

	"github.com/google/uuid"
)

// Type enumerates the report kinds a tenant can request
type Type string

const (
	TypeRevenue   Type = "revenue"
	TypeInvoices  Type = "invoices"
	TypeCustomers Type = "customers"
)

// IsValid checks if the type is a valid report Type
func (t Type) IsValid() bool {
	switch t {
	case TypeRevenue, TypeInvoices, TypeCustomers:
		return true
	}
	return false
}

// Format enumerates supported export formats
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// IsValid checks if the format is a valid Format
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatCSV, FormatPDF:
		return true
	}
	return false
}

// Status is the lifecycle state of a report request
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Request is a tenant's asynchronous report-generation request
type Request struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Type        Type      `json:"type"`
	Period      string    `json:"period"`
	Format      Format    `json:"format"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
	DownloadURL string    `json:"download_url,omitempty"`
}
