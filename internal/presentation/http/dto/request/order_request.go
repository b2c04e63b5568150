package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// OrderLineRequest is one requested order line. Quantity accepts a JSON
// number or a numeric string.
type OrderLineRequest struct {
	ItemID   uuid.UUID              `json:"item_id" binding:"required"`
	Quantity decimal.Decimal        `json:"quantity" binding:"decimal_gt0"`
	Metadata map[string]interface{} `json:"metadata"`
}

// CreateOrderRequest represents an order creation request
type CreateOrderRequest struct {
	OrderNumber          string                  `json:"order_number" binding:"required,max=100"`
	CustomerID           uuid.UUID               `json:"customer_id" binding:"required"`
	Status               *enum.OrderStatus       `json:"status"`
	PaymentStatus        *enum.PaymentStatus     `json:"payment_status"`
	FulfillmentStatus    *enum.FulfillmentStatus `json:"fulfillment_status"`
	ShippingAmount       *decimal.Decimal        `json:"shipping_amount"`
	WithholdingTaxTypeID *uuid.UUID              `json:"withholding_tax_type_id"`
	Notes                *string                 `json:"notes"`
	OrderedItems         []OrderLineRequest      `json:"ordered_items" binding:"required,min=1,dive"`
}

// UpdateOrderRequest represents a partial order update. Absent fields are
// left unchanged; ordered_items replaces every line; an empty
// withholding_tax_type_id removes withholding.
type UpdateOrderRequest struct {
	OrderNumber          *string                 `json:"order_number" binding:"omitempty,max=100"`
	CustomerID           *uuid.UUID              `json:"customer_id"`
	Status               *enum.OrderStatus       `json:"status"`
	PaymentStatus        *enum.PaymentStatus     `json:"payment_status"`
	FulfillmentStatus    *enum.FulfillmentStatus `json:"fulfillment_status"`
	ShippingAmount       *decimal.Decimal        `json:"shipping_amount"`
	WithholdingTaxTypeID *string                 `json:"withholding_tax_type_id"`
	Notes                *string                 `json:"notes"`
	OrderedItems         []OrderLineRequest      `json:"ordered_items" binding:"omitempty,dive"`

	InvoiceNumber    *string `json:"invoice_number" binding:"omitempty,max=100"`
	InvoiceIssueDate *string `json:"invoice_issue_date" binding:"omitempty,dateonly"`
	InvoiceDueDate   *string `json:"invoice_due_date" binding:"omitempty,dateonly"`
}

// OrderFilterRequest represents order list query parameters
type OrderFilterRequest struct {
	Search        string `form:"search"`
	Status        string `form:"status"`
	PaymentStatus string `form:"payment_status"`
	CustomerID    string `form:"customer_id" binding:"omitempty,uuid"`
	StartDate     string `form:"start_date" binding:"omitempty,dateonly"`
	EndDate       string `form:"end_date" binding:"omitempty,dateonly"`
	SortBy        string `form:"sort_by" binding:"omitempty,oneof=created_at order_number total_amount status"`
	SortOrder     string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page          int    `form:"page"`
	PerPage       int    `form:"per_page"`
}
