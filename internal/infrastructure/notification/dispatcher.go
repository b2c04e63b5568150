package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sangkips/bizops-api/internal/config"
	"github.com/sangkips/bizops-api/internal/domain/entity"
	"github.com/sangkips/bizops-api/internal/infrastructure/metrics"
	"github.com/sangkips/bizops-api/pkg/email"
	"go.uber.org/zap"
)

// ErrStopped is returned by Stop when called twice
var ErrStopped = errors.New("notification dispatcher already stopped")

// Sender delivers a rendered order email
type Sender interface {
	SendOrderCreatedEmail(ctx context.Context, msg email.OrderCreatedEmail) error
}

type job struct {
	msg        email.OrderCreatedEmail
	orderID    string
	enqueuedAt time.Time
}

// Dispatcher sends order notifications from a bounded queue on a fixed
// set of workers. Enqueueing never blocks; a full queue drops the message.
type Dispatcher struct {
	sender      Sender
	enabled     bool
	workers     int
	sendTimeout time.Duration
	metrics     *metrics.OrderMetrics
	log         *zap.Logger

	queue   chan job
	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool
	stopped bool
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(cfg config.NotificationConfig, sender Sender, orderMetrics *metrics.OrderMetrics, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Dispatcher{
		sender:      sender,
		enabled:     cfg.Enabled && sender != nil,
		workers:     workers,
		sendTimeout: timeout,
		metrics:     orderMetrics,
		log:         log.Named("notification"),
		queue:       make(chan job, queueSize),
	}
}

// Start launches the workers. They run until Stop drains the queue.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.log.Info("notification dispatcher started", zap.Int("workers", d.workers), zap.Int("queue_size", cap(d.queue)))
}

// Stop closes the queue and waits for queued messages to be sent, or for
// ctx to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return ErrStopped
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.log.Info("notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.log.Warn("notification dispatcher stopped before the queue drained", zap.Int("pending", len(d.queue)))
		return ctx.Err()
	}
}

// NotifyOrderCreated queues confirmation emails for a committed order. The
// tenant's notification address and the customer each get one.
func (d *Dispatcher) NotifyOrderCreated(_ context.Context, tenant *entity.Tenant, order *entity.Order) {
	if !d.enabled || tenant == nil || order == nil || !tenant.Settings.EmailNotifications {
		d.metrics.Notification(metrics.NotificationSkipped)
		return
	}

	recipients := Recipients(tenant, order)
	if len(recipients) == 0 {
		d.metrics.Notification(metrics.NotificationSkipped)
		return
	}

	msg := BuildOrderCreatedEmail(tenant, order)
	for _, to := range recipients {
		msg.To = to
		d.enqueue(job{msg: msg, orderID: order.ID.String(), enqueuedAt: time.Now()})
	}
}

func (d *Dispatcher) enqueue(j job) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.metrics.Notification(metrics.NotificationDropped)
		return
	}

	select {
	case d.queue <- j:
	default:
		d.metrics.Notification(metrics.NotificationDropped)
		d.log.Warn("notification queue full, dropping message",
			zap.String("order_id", j.orderID),
			zap.String("to", j.msg.To),
		)
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for j := range d.queue {
		d.metrics.NotificationDelay(time.Since(j.enqueuedAt).Seconds())
		d.send(id, j)
	}
}

func (d *Dispatcher) send(worker int, j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	if err := d.sender.SendOrderCreatedEmail(ctx, j.msg); err != nil {
		d.metrics.Notification(metrics.NotificationFailed)
		d.log.Error("failed to send order notification",
			zap.Int("worker", worker),
			zap.String("order_id", j.orderID),
			zap.String("to", j.msg.To),
			zap.Error(err),
		)
		return
	}

	d.metrics.Notification(metrics.NotificationSent)
	d.log.Debug("order notification sent",
		zap.String("order_id", j.orderID),
		zap.String("to", j.msg.To),
	)
}

// Recipients returns the distinct addresses an order notification goes to
func Recipients(tenant *entity.Tenant, order *entity.Order) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(addr string) {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, addr)
	}

	add(tenant.Settings.NotificationEmail)
	if order.Customer != nil && order.Customer.Email != nil {
		add(*order.Customer.Email)
	}
	return out
}

// BuildOrderCreatedEmail maps an order onto the email template data
func BuildOrderCreatedEmail(tenant *entity.Tenant, order *entity.Order) email.OrderCreatedEmail {
	msg := email.OrderCreatedEmail{
		TenantName:  tenant.Name,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Currency:    order.Currency,
		Subtotal:    order.SubtotalAmount.StringFixed(2),
		Tax:         order.TaxAmount.StringFixed(2),
		Shipping:    order.ShippingAmount.StringFixed(2),
		Withholding: order.WithholdingTaxAmount.StringFixed(2),
		Total:       order.TotalAmount.StringFixed(2),
		CreatedAt:   order.CreatedAt,
	}
	if order.Customer != nil {
		msg.CustomerName = order.Customer.Name
	}
	for _, line := range order.Items {
		msg.Lines = append(msg.Lines, email.OrderEmailLine{
			Name:      line.ItemName,
			Quantity:  line.Quantity.String(),
			UnitPrice: line.UnitPrice.StringFixed(2),
			LineTotal: line.LineTotal.StringFixed(2),
		})
	}
	return msg
}
