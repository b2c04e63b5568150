package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order represents a sales order. Monetary fields are derived from the
// line snapshots and are never written from client input.
type Order struct {
	ID                   uuid.UUID              `gorm:"type:uuid;primary_key" json:"id"`
	TenantID             uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_orders_tenant_number" json:"tenant_id"`
	OrderNumber          string                 `gorm:"size:100;not null;uniqueIndex:idx_orders_tenant_number" json:"order_number"`
	Status               enum.OrderStatus       `gorm:"size:20;not null;index" json:"status"`
	PaymentStatus        enum.PaymentStatus     `gorm:"size:20;not null" json:"payment_status"`
	FulfillmentStatus    enum.FulfillmentStatus `gorm:"size:20;not null" json:"fulfillment_status"`
	Currency             string                 `gorm:"size:3;not null" json:"currency"`
	CustomerID           uuid.UUID              `gorm:"type:uuid;not null;index" json:"customer_id"`
	SubtotalAmount       decimal.Decimal        `gorm:"type:numeric(14,2);not null" json:"-"`
	TaxAmount            decimal.Decimal        `gorm:"type:numeric(14,2);not null" json:"-"`
	DiscountAmount       decimal.Decimal        `gorm:"type:numeric(14,2);not null" json:"-"`
	ShippingAmount       decimal.Decimal        `gorm:"type:numeric(14,2);not null" json:"-"`
	WithholdingTaxAmount decimal.Decimal        `gorm:"type:numeric(14,2);not null" json:"-"`
	TotalAmount          decimal.Decimal        `gorm:"type:numeric(14,2);not null" json:"-"`
	WithholdingTaxTypeID *uuid.UUID             `gorm:"type:uuid;index" json:"withholding_tax_type_id,omitempty"`
	Notes                *string                `gorm:"type:text" json:"notes,omitempty"`
	StockDeductedAt      *time.Time             `json:"stock_deducted_at,omitempty"`
	CreatedBy            uuid.UUID              `gorm:"type:uuid;not null" json:"created_by"`
	UpdatedBy            *uuid.UUID             `gorm:"type:uuid" json:"updated_by,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
	DeletedAt            gorm.DeletedAt         `gorm:"index" json:"-"`

	// Relationships
	Customer           *Customer           `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items              []OrderLineSnapshot `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Activities         []OrderActivity     `gorm:"foreignKey:OrderID" json:"activities,omitempty"`
	SalesInvoice       *SalesInvoice       `gorm:"foreignKey:OrderID" json:"sales_invoice,omitempty"`
	WithholdingTaxType *WithholdingTaxType `gorm:"foreignKey:WithholdingTaxTypeID" json:"withholding_tax_type,omitempty"`
}

// MarshalJSON renders monetary amounts with two fixed decimals
func (o Order) MarshalJSON() ([]byte, error) {
	type Alias Order
	return json.Marshal(&struct {
		Alias
		SubtotalAmount       string `json:"subtotal_amount"`
		TaxAmount            string `json:"tax_amount"`
		DiscountAmount       string `json:"discount_amount"`
		ShippingAmount       string `json:"shipping_amount"`
		WithholdingTaxAmount string `json:"withholding_tax_amount"`
		TotalAmount          string `json:"total_amount"`
	}{
		Alias:                Alias(o),
		SubtotalAmount:       o.SubtotalAmount.StringFixed(2),
		TaxAmount:            o.TaxAmount.StringFixed(2),
		DiscountAmount:       o.DiscountAmount.StringFixed(2),
		ShippingAmount:       o.ShippingAmount.StringFixed(2),
		WithholdingTaxAmount: o.WithholdingTaxAmount.StringFixed(2),
		TotalAmount:          o.TotalAmount.StringFixed(2),
	})
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// StockTaken reports whether this order has already consumed its stock
func (o *Order) StockTaken() bool {
	return o.StockDeductedAt != nil
}

// IsCompleted reports whether the order has been locked by completion
func (o *Order) IsCompleted() bool {
	return o.Status == enum.OrderStatusCompleted
}

// OrderLineSnapshot is the priced record of one ordered line. ItemID is a
// weak reference: the item may later be repriced or removed.
type OrderLineSnapshot struct {
	ID                  uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	OrderID             uuid.UUID         `gorm:"type:uuid;not null;index" json:"order_id"`
	TenantID            uuid.UUID         `gorm:"type:uuid;not null;index" json:"tenant_id"`
	LineNumber          int               `gorm:"not null" json:"line_number"`
	ItemID              uuid.UUID         `gorm:"type:uuid;not null;index" json:"item_id"`
	ItemName            string            `gorm:"size:255;not null" json:"item_name"`
	ItemType            enum.ItemType     `gorm:"size:20;not null" json:"item_type"`
	UnitPrice           decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"-"`
	DiscountedUnitPrice *decimal.Decimal  `gorm:"type:numeric(14,2)" json:"-"`
	TaxRate             decimal.Decimal   `gorm:"type:numeric(7,4);not null" json:"tax_rate"`
	Quantity            decimal.Decimal   `gorm:"type:numeric(14,3);not null" json:"quantity"`
	LineSubtotal        decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"-"`
	LineDiscount        decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"-"`
	LineTax             decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"-"`
	LineTotal           decimal.Decimal   `gorm:"type:numeric(14,2);not null" json:"-"`
	Metadata            datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
}

// MarshalJSON renders monetary amounts with two fixed decimals
func (s OrderLineSnapshot) MarshalJSON() ([]byte, error) {
	type Alias OrderLineSnapshot
	var discounted *string
	if s.DiscountedUnitPrice != nil {
		v := s.DiscountedUnitPrice.StringFixed(2)
		discounted = &v
	}
	return json.Marshal(&struct {
		Alias
		UnitPrice           string  `json:"unit_price"`
		DiscountedUnitPrice *string `json:"discounted_unit_price"`
		LineSubtotal        string  `json:"line_subtotal"`
		LineDiscount        string  `json:"line_discount"`
		LineTax             string  `json:"line_tax"`
		LineTotal           string  `json:"line_total"`
	}{
		Alias:               Alias(s),
		UnitPrice:           s.UnitPrice.StringFixed(2),
		DiscountedUnitPrice: discounted,
		LineSubtotal:        s.LineSubtotal.StringFixed(2),
		LineDiscount:        s.LineDiscount.StringFixed(2),
		LineTax:             s.LineTax.StringFixed(2),
		LineTotal:           s.LineTotal.StringFixed(2),
	})
}

// BeforeCreate generates a UUID before creating a new line snapshot
func (s *OrderLineSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderLineSnapshot model
func (OrderLineSnapshot) TableName() string {
	return "order_line_snapshots"
}
