package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesInvoice is issued once per order when the order completes. Its
// amounts are a copy of the order's final figures.
type SalesInvoice struct {
	ID                   uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID             uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_sales_invoices_tenant_number" json:"tenant_id"`
	OrderID              uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	CustomerID           uuid.UUID          `gorm:"type:uuid;not null;index" json:"customer_id"`
	InvoiceNumber        string             `gorm:"size:100;not null;uniqueIndex:idx_sales_invoices_tenant_number" json:"invoice_number"`
	IssueDate            time.Time          `gorm:"type:date;not null" json:"issue_date"`
	DueDate              *time.Time         `gorm:"type:date" json:"due_date,omitempty"`
	Status               enum.InvoiceStatus `gorm:"size:20;not null" json:"status"`
	Currency             string             `gorm:"size:3;not null" json:"currency"`
	SubtotalAmount       decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"-"`
	TaxAmount            decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"-"`
	DiscountAmount       decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"-"`
	ShippingAmount       decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"-"`
	WithholdingTaxAmount decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"-"`
	TotalAmount          decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"-"`
	CreatedBy            uuid.UUID          `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
	DeletedAt            gorm.DeletedAt     `gorm:"index" json:"-"`
}

// MarshalJSON renders monetary amounts with two fixed decimals
func (si SalesInvoice) MarshalJSON() ([]byte, error) {
	type Alias SalesInvoice
	return json.Marshal(&struct {
		Alias
		IssueDate            string  `json:"issue_date"`
		DueDate              *string `json:"due_date,omitempty"`
		SubtotalAmount       string  `json:"subtotal_amount"`
		TaxAmount            string  `json:"tax_amount"`
		DiscountAmount       string  `json:"discount_amount"`
		ShippingAmount       string  `json:"shipping_amount"`
		WithholdingTaxAmount string  `json:"withholding_tax_amount"`
		TotalAmount          string  `json:"total_amount"`
	}{
		Alias:                Alias(si),
		IssueDate:            si.IssueDate.Format(time.DateOnly),
		DueDate:              formatDate(si.DueDate),
		SubtotalAmount:       si.SubtotalAmount.StringFixed(2),
		TaxAmount:            si.TaxAmount.StringFixed(2),
		DiscountAmount:       si.DiscountAmount.StringFixed(2),
		ShippingAmount:       si.ShippingAmount.StringFixed(2),
		WithholdingTaxAmount: si.WithholdingTaxAmount.StringFixed(2),
		TotalAmount:          si.TotalAmount.StringFixed(2),
	})
}

// BeforeCreate generates a UUID before creating a new sales invoice
func (si *SalesInvoice) BeforeCreate(tx *gorm.DB) error {
	if si.ID == uuid.Nil {
		si.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SalesInvoice model
func (SalesInvoice) TableName() string {
	return "sales_invoices"
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}
