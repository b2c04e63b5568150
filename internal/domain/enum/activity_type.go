package enum

// ActivityType identifies an entry in an order's audit trail
type ActivityType string

const (
	ActivityOrderCreated        ActivityType = "order_created"
	ActivityOrderConfirmed      ActivityType = "order_confirmed"
	ActivityOrderUpdated        ActivityType = "order_updated"
	ActivityStatusChanged       ActivityType = "status_changed"
	ActivityInventoryDeducted   ActivityType = "inventory_deducted"
	ActivitySalesInvoiceCreated ActivityType = "sales_invoice_created"
	ActivityOrderDeleted        ActivityType = "order_deleted"
)

func (t ActivityType) String() string {
	return string(t)
}
