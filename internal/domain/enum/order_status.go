package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "draft"
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

func (s OrderStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known order status
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// DeductsStockOnConfirm reports whether moving from s into confirmed may
// consume stock. The order's own stock marker decides whether it already has.
func (s OrderStatus) DeductsStockOnConfirm() bool {
	switch s {
	case OrderStatusDraft, OrderStatusPending, OrderStatusProcessing:
		return true
	}
	return false
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = OrderStatus(str)
	return nil
}

func (s OrderStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *OrderStatus) Scan(value interface{}) error {
	if value == nil {
		*s = OrderStatusPending
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = OrderStatus(v)
	case []byte:
		*s = OrderStatus(string(v))
	}
	return nil
}

// PaymentStatus represents how much of an order has been paid
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusRefunded      PaymentStatus = "refunded"
)

func (s PaymentStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known payment status
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartiallyPaid, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = PaymentStatusUnpaid
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = PaymentStatus(v)
	case []byte:
		*s = PaymentStatus(string(v))
	}
	return nil
}

// FulfillmentStatus represents the shipping state of an order
type FulfillmentStatus string

const (
	FulfillmentStatusUnfulfilled        FulfillmentStatus = "unfulfilled"
	FulfillmentStatusPartiallyFulfilled FulfillmentStatus = "partially_fulfilled"
	FulfillmentStatusFulfilled          FulfillmentStatus = "fulfilled"
	FulfillmentStatusReturned           FulfillmentStatus = "returned"
)

func (s FulfillmentStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known fulfillment status
func (s FulfillmentStatus) IsValid() bool {
	switch s {
	case FulfillmentStatusUnfulfilled, FulfillmentStatusPartiallyFulfilled,
		FulfillmentStatusFulfilled, FulfillmentStatusReturned:
		return true
	}
	return false
}

func (s FulfillmentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *FulfillmentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = FulfillmentStatusUnfulfilled
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = FulfillmentStatus(v)
	case []byte:
		*s = FulfillmentStatus(string(v))
	}
	return nil
}
