package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/enum"
	"github.com/sangkips/bizops-api/internal/infrastructure/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityLogWriter_Append(t *testing.T) {
	f := newOrderFixture(t, "16")
	orderID := uuid.New()
	actor := uuid.New()

	writer := NewActivityLogWriter(f.store.Activities())
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 123456789, time.UTC)
	writer.now = func() time.Time { return fixed }

	err := writer.Append(f.ctx, f.tenant.ID, orderID, &actor, []ActivityEvent{
		{ActionType: enum.ActivityOrderUpdated, Title: "Order updated", Description: "Changed: status"},
		{ActionType: enum.ActivityStatusChanged, Title: "Status changed", ChangedFields: map[string]interface{}{"status": "confirmed"}},
		{ActionType: enum.ActivityInventoryDeducted, Title: "Inventory deducted", Metadata: map[string]interface{}{"count": 1}},
	})
	require.NoError(t, err)

	activities, err := f.store.Activities().ListByOrderID(f.ctx, f.tenant.ID, orderID)
	require.NoError(t, err)
	require.Len(t, activities, 3)

	assert.Equal(t, enum.ActivityOrderUpdated, activities[0].ActionType)
	assert.Equal(t, enum.ActivityStatusChanged, activities[1].ActionType)
	assert.Equal(t, enum.ActivityInventoryDeducted, activities[2].ActionType)

	require.NotNil(t, activities[0].Description)
	assert.Equal(t, "Changed: status", *activities[0].Description)
	assert.Nil(t, activities[1].Description)
	assert.Equal(t, "confirmed", activities[1].ChangedFields["status"])
	require.NotNil(t, activities[2].ActorID)
	assert.Equal(t, actor, *activities[2].ActorID)

	base := fixed.Truncate(time.Microsecond)
	for i, a := range activities {
		assert.True(t, a.CreatedAt.Equal(base.Add(time.Duration(i)*time.Microsecond)), "activity %d at %s", i, a.CreatedAt)
	}
}

func TestActivityLogWriter_AppendNothing(t *testing.T) {
	f := newOrderFixture(t, "16")
	orderID := uuid.New()

	require.NoError(t, NewActivityLogWriter(f.store.Activities()).Append(f.ctx, f.tenant.ID, orderID, nil, nil))

	activities, err := f.store.Activities().ListByOrderID(f.ctx, f.tenant.ID, orderID)
	require.NoError(t, err)
	assert.Empty(t, activities)
}

func TestUpdateEvents(t *testing.T) {
	before := map[string]interface{}{
		"status":                  "pending",
		"payment_status":          "unpaid",
		"fulfillment_status":      "unfulfilled",
		"customer_id":             "c1",
		"shipping_amount":         "0.00",
		"withholding_tax_type_id": nil,
		"total_amount":            "224.00",
	}

	t.Run("nothing tracked changed", func(t *testing.T) {
		events := updateEvents(before, before, metrics.UpdatePathFieldsOnly)

		require.Len(t, events, 1)
		assert.Equal(t, enum.ActivityOrderUpdated, events[0].ActionType)
		assert.Equal(t, "No tracked fields changed", events[0].Description)
		assert.Empty(t, events[0].ChangedFields)
		assert.Equal(t, metrics.UpdatePathFieldsOnly, events[0].Metadata["recompute_path"])
	})

	t.Run("status and totals changed", func(t *testing.T) {
		after := make(map[string]interface{}, len(before))
		for k, v := range before {
			after[k] = v
		}
		after["status"] = "confirmed"
		after["shipping_amount"] = "10.00"
		after["total_amount"] = "234.00"

		events := updateEvents(before, after, metrics.UpdatePathTotals)

		require.Len(t, events, 2)
		assert.Equal(t, "Changed: status, shipping_amount, total_amount", events[0].Description)
		assert.Equal(t, map[string]interface{}{"from": "0.00", "to": "10.00"}, events[0].ChangedFields["shipping_amount"])

		assert.Equal(t, enum.ActivityStatusChanged, events[1].ActionType)
		assert.Equal(t, "Status changed from pending to confirmed", events[1].Title)
	})
}
