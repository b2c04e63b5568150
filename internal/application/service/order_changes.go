package service

import (
	"fmt"
	"strings"

	"github.com/sangkips/bizops-api/internal/domain/entity"
	"github.com/sangkips/bizops-api/internal/domain/enum"
)

// trackedFields are diffed after every update, in reporting order
var trackedFields = []string{
	"status",
	"payment_status",
	"fulfillment_status",
	"customer_id",
	"shipping_amount",
	"withholding_tax_type_id",
	"total_amount",
}

func trackedValues(o *entity.Order) map[string]interface{} {
	var withholding interface{}
	if o.WithholdingTaxTypeID != nil {
		withholding = o.WithholdingTaxTypeID.String()
	}
	return map[string]interface{}{
		"status":                  string(o.Status),
		"payment_status":          string(o.PaymentStatus),
		"fulfillment_status":      string(o.FulfillmentStatus),
		"customer_id":             o.CustomerID.String(),
		"shipping_amount":         o.ShippingAmount.StringFixed(2),
		"withholding_tax_type_id": withholding,
		"total_amount":            o.TotalAmount.StringFixed(2),
	}
}

// diffTracked returns {field: {from, to}} for every tracked field that
// changed, plus the changed field names in reporting order
func diffTracked(before, after map[string]interface{}) (map[string]interface{}, []string) {
	changes := make(map[string]interface{})
	var names []string
	for _, field := range trackedFields {
		if before[field] == after[field] {
			continue
		}
		changes[field] = map[string]interface{}{
			"from": before[field],
			"to":   after[field],
		}
		names = append(names, field)
	}
	return changes, names
}

// updateEvents describes an applied update: always one order_updated entry,
// plus status_changed when the status moved
func updateEvents(before, after map[string]interface{}, path string) []ActivityEvent {
	changes, names := diffTracked(before, after)

	description := "No tracked fields changed"
	if len(names) > 0 {
		description = "Changed: " + strings.Join(names, ", ")
	}
	events := []ActivityEvent{{
		ActionType:    enum.ActivityOrderUpdated,
		Title:         "Order updated",
		Description:   description,
		ChangedFields: changes,
		Metadata:      map[string]interface{}{"recompute_path": path},
	}}

	if statusChange, ok := changes["status"]; ok {
		events = append(events, ActivityEvent{
			ActionType:    enum.ActivityStatusChanged,
			Title:         fmt.Sprintf("Status changed from %s to %s", before["status"], after["status"]),
			ChangedFields: map[string]interface{}{"status": statusChange},
		})
	}
	return events
}
