package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recompute paths taken by an order update
const (
	UpdatePathItemsReplaced = "items_replaced"
	UpdatePathTotals        = "totals_recomputed"
	UpdatePathConfirmation  = "confirmation"
	UpdatePathFieldsOnly    = "fields_only"
)

// Outcomes of an order notification
const (
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationDropped = "dropped"
	NotificationSkipped = "skipped"
)

const (
	defaultMetricsNamespace = "bizops"
	defaultMetricsSubsystem = "orders"
)

// OrderMetrics holds the order engine collectors. A nil *OrderMetrics is
// valid and records nothing.
type OrderMetrics struct {
	ordersCreated   *prometheus.CounterVec
	ordersUpdated   *prometheus.CounterVec
	stockConflicts  prometheus.Counter
	invoicesCreated prometheus.Counter
	notifications   *prometheus.CounterVec
	notificationLag prometheus.Histogram
}

// NewOrderMetrics creates the collectors and registers them with reg
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	m := &OrderMetrics{
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: defaultMetricsNamespace,
			Subsystem: defaultMetricsSubsystem,
			Name:      "created_total",
			Help:      "Orders created, by initial status.",
		}, []string{"status"}),
		ordersUpdated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: defaultMetricsNamespace,
			Subsystem: defaultMetricsSubsystem,
			Name:      "updated_total",
			Help:      "Order updates, by recompute path.",
		}, []string{"path"}),
		stockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: defaultMetricsNamespace,
			Subsystem: defaultMetricsSubsystem,
			Name:      "stock_conflicts_total",
			Help:      "Order writes rejected for insufficient stock.",
		}),
		invoicesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: defaultMetricsNamespace,
			Subsystem: defaultMetricsSubsystem,
			Name:      "invoices_created_total",
			Help:      "Sales invoices issued on order completion.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: defaultMetricsNamespace,
			Subsystem: defaultMetricsSubsystem,
			Name:      "notifications_total",
			Help:      "Order created notifications, by outcome.",
		}, []string{"outcome"}),
		notificationLag: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: defaultMetricsNamespace,
			Subsystem: defaultMetricsSubsystem,
			Name:      "notification_delay_seconds",
			Help:      "Time between enqueueing and sending an order notification.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.ordersCreated,
			m.ordersUpdated,
			m.stockConflicts,
			m.invoicesCreated,
			m.notifications,
			m.notificationLag,
		)
	}
	return m
}

// OrderCreated counts a created order
func (m *OrderMetrics) OrderCreated(status string) {
	if m == nil {
		return
	}
	m.ordersCreated.WithLabelValues(status).Inc()
}

// OrderUpdated counts an applied update by recompute path
func (m *OrderMetrics) OrderUpdated(path string) {
	if m == nil {
		return
	}
	m.ordersUpdated.WithLabelValues(path).Inc()
}

// StockConflict counts a write rejected for insufficient stock
func (m *OrderMetrics) StockConflict() {
	if m == nil {
		return
	}
	m.stockConflicts.Inc()
}

// InvoiceCreated counts an issued sales invoice
func (m *OrderMetrics) InvoiceCreated() {
	if m == nil {
		return
	}
	m.invoicesCreated.Inc()
}

// Notification counts a notification outcome
func (m *OrderMetrics) Notification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}

// NotificationDelay records how long a notification waited in the queue
func (m *OrderMetrics) NotificationDelay(seconds float64) {
	if m == nil {
		return
	}
	m.notificationLag.Observe(seconds)
}
