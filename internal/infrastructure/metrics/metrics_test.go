package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOrderMetrics_Counters(t *testing.T) {
	m := NewOrderMetrics(prometheus.NewRegistry())

	m.OrderCreated("pending")
	m.OrderCreated("pending")
	m.OrderCreated("confirmed")
	m.OrderUpdated(UpdatePathItemsReplaced)
	m.StockConflict()
	m.InvoiceCreated()
	m.Notification(NotificationFailed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersCreated.WithLabelValues("pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersCreated.WithLabelValues("confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersUpdated.WithLabelValues(UpdatePathItemsReplaced)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stockConflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invoicesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues(NotificationFailed)))
}

func TestOrderMetrics_NilIsNoop(t *testing.T) {
	var m *OrderMetrics
	assert.NotPanics(t, func() {
		m.OrderCreated("pending")
		m.OrderUpdated(UpdatePathFieldsOnly)
		m.StockConflict()
		m.InvoiceCreated()
		m.Notification(NotificationSent)
		m.NotificationDelay(0.5)
	})
}
