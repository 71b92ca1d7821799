package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/facturo/backend/internal/domain/metrics"
)

// CustomerModel is the persistence model for billing customers
type CustomerModel struct {
	TenantModel
	Name  string               `gorm:"type:varchar(200);not null"`
	Email string               `gorm:"type:varchar(255)"`
	Kind  metrics.CustomerKind `gorm:"type:varchar(20);not null;default:'individual'"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// InvoiceModel is the persistence model for invoices
type InvoiceModel struct {
	TenantModel
	InvoiceNumber string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	CustomerID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	Status        metrics.InvoiceStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	TotalAmount   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	IssueDate     time.Time             `gorm:"not null;index"`
	DueDate       *time.Time            `gorm:"index"`
	SentAt        *time.Time
	PaidAt        *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoicePaymentModel is the persistence model for payments against invoices.
// An invoice may be settled across several partial payments; delay metrics
// use the earliest payment date.
type InvoicePaymentModel struct {
	TenantModel
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentDate time.Time       `gorm:"not null;index"`
	Method      string          `gorm:"type:varchar(30)"`
}

// TableName returns the table name for GORM
func (InvoicePaymentModel) TableName() string {
	return "invoice_payments"
}

// QuoteModel is the persistence model for quotes
type QuoteModel struct {
	TenantModel
	QuoteNumber string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_quote_tenant_number,priority:2"`
	CustomerID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status      metrics.QuoteStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	TotalAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	IssueDate   time.Time           `gorm:"not null;index"`
	ExpiryDate  *time.Time
	AcceptedAt  *time.Time
}

// TableName returns the table name for GORM
func (QuoteModel) TableName() string {
	return "quotes"
}
