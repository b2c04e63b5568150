package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
	"github.com/sangkips/bizops-api/internal/domain/enum"
	"github.com/sangkips/bizops-api/internal/domain/repository"
	"github.com/sangkips/bizops-api/internal/infrastructure/metrics"
	"github.com/sangkips/bizops-api/pkg/apperror"
	"github.com/sangkips/bizops-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderNotifier is told about orders after they are committed. It must not
// block and its failures never reach the caller.
type OrderNotifier interface {
	NotifyOrderCreated(ctx context.Context, tenant *entity.Tenant, order *entity.Order)
}

// OrderService runs order creation and updates as single units of work:
// pricing, stock, invoice and audit trail commit or roll back together.
type OrderService struct {
	store    repository.Store
	notifier OrderNotifier
	metrics  *metrics.OrderMetrics
	log      *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	store repository.Store,
	notifier OrderNotifier,
	orderMetrics *metrics.OrderMetrics,
	log *zap.Logger,
) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		store:    store,
		notifier: notifier,
		metrics:  orderMetrics,
		log:      log.Named("order.service"),
	}
}

// statuses an order may be created in
var creatableStatuses = map[enum.OrderStatus]bool{
	enum.OrderStatusDraft:      true,
	enum.OrderStatusPending:    true,
	enum.OrderStatusConfirmed:  true,
	enum.OrderStatusProcessing: true,
}

// OrderLineInput is one requested line
type OrderLineInput struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
	Metadata map[string]interface{}
}

// CreateOrderInput represents the create order input
type CreateOrderInput struct {
	TenantID             uuid.UUID
	ActorID              uuid.UUID
	OrderNumber          string
	CustomerID           uuid.UUID
	Status               *enum.OrderStatus
	PaymentStatus        *enum.PaymentStatus
	FulfillmentStatus    *enum.FulfillmentStatus
	ShippingAmount       *decimal.Decimal
	WithholdingTaxTypeID *uuid.UUID
	Notes                *string
	Items                []OrderLineInput
}

// UpdateOrderInput represents the update order input. Nil fields are left
// unchanged. A non-nil Items replaces the whole line set.
type UpdateOrderInput struct {
	TenantID             uuid.UUID
	OrderID              uuid.UUID
	ActorID              uuid.UUID
	OrderNumber          *string
	CustomerID           *uuid.UUID
	Status               *enum.OrderStatus
	PaymentStatus        *enum.PaymentStatus
	FulfillmentStatus    *enum.FulfillmentStatus
	ShippingAmount       *decimal.Decimal
	WithholdingTaxTypeID *uuid.UUID
	RemoveWithholdingTax bool
	Notes                *string
	Items                []OrderLineInput

	// Required when Status moves the order to completed
	InvoiceNumber    *string
	InvoiceIssueDate *string
	InvoiceDueDate   *string
}

// CreateOrder prices and persists a new order with its line snapshots.
// Orders created as confirmed take their stock in the same transaction.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.Order, error) {
	status, paymentStatus, fulfillmentStatus, err := validateCreateInput(input)
	if err != nil {
		return nil, err
	}

	var (
		tenant *entity.Tenant
		order  *entity.Order
	)
	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		var err error
		tenant, err = tx.Tenants().GetByID(ctx, input.TenantID)
		if err != nil {
			return err
		}
		if tenant == nil {
			return apperror.NewNotFoundError("Tenant")
		}

		resolver := NewTaxResolver(tx.Tenants(), tx.Taxes())
		vatRate, err := resolver.ResolveVATRate(ctx, input.TenantID)
		if err != nil {
			return err
		}
		withholdingID, withholdingRate, err := resolver.ResolveWithholdingRate(ctx, input.TenantID, input.WithholdingTaxTypeID)
		if err != nil {
			return err
		}

		if err := ensureCustomer(ctx, tx, input.TenantID, input.CustomerID); err != nil {
			return err
		}

		orderNumber := strings.TrimSpace(input.OrderNumber)
		exists, err := tx.Orders().OrderNumberExists(ctx, input.TenantID, orderNumber)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewValidationError("Order number already exists",
				apperror.FieldError{Field: "order_number", Message: "already in use"})
		}

		itemsByID, err := loadRequestedItems(ctx, tx, input.TenantID, input.Items)
		if err != nil {
			return err
		}
		snapshots := buildSnapshots(input.Items, itemsByID, vatRate)

		var (
			movements     []StockMovement
			stockDeducted *time.Time
		)
		if status == enum.OrderStatusConfirmed {
			movements, err = deductStock(ctx, tx, input.TenantID, snapshots, itemsByID)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			stockDeducted = &now
		}

		totals := CalculateOrderTotals(snapshots, shippingOrZero(input.ShippingAmount), vatRate)
		order = &entity.Order{
			TenantID:             input.TenantID,
			OrderNumber:          orderNumber,
			Status:               status,
			PaymentStatus:        paymentStatus,
			FulfillmentStatus:    fulfillmentStatus,
			Currency:             tenant.Currency,
			CustomerID:           input.CustomerID,
			WithholdingTaxTypeID: withholdingID,
			Notes:                input.Notes,
			StockDeductedAt:      stockDeducted,
			CreatedBy:            input.ActorID,
		}
		applyTotals(order, totals, CalculateWithholding(totals.Taxable, withholdingRate))

		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		for i := range snapshots {
			snapshots[i].OrderID = order.ID
		}
		if err := tx.OrderLines().CreateBatch(ctx, snapshots); err != nil {
			return err
		}

		events := []ActivityEvent{{
			ActionType:  enum.ActivityOrderCreated,
			Title:       fmt.Sprintf("Order %s created", order.OrderNumber),
			Description: fmt.Sprintf("%d line(s), total %s %s", len(snapshots), order.Currency, order.TotalAmount.StringFixed(2)),
			Metadata: map[string]interface{}{
				"status":       string(order.Status),
				"total_amount": order.TotalAmount.StringFixed(2),
				"line_count":   len(snapshots),
			},
		}}
		if status == enum.OrderStatusConfirmed {
			events = append(events, ActivityEvent{
				ActionType:  enum.ActivityOrderConfirmed,
				Title:       "Order confirmed",
				Description: fmt.Sprintf("Stock deducted for %d item(s)", len(movements)),
				Metadata:    map[string]interface{}{"stock_movements": movements},
			})
		}

		actor := input.ActorID
		return NewActivityLogWriter(tx.Activities()).Append(ctx, input.TenantID, order.ID, &actor, events)
	})
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	s.metrics.OrderCreated(string(order.Status))
	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("tenant_id", order.TenantID.String()),
		zap.String("status", string(order.Status)),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
	)

	created := s.reload(ctx, order)
	if s.notifier != nil {
		s.notifier.NotifyOrderCreated(ctx, tenant, created)
	}
	return created, nil
}

// UpdateOrder applies an update and recomputes whatever the update touches.
// Exactly one recompute path runs per request: line replacement, totals
// recompute from the stored lines, confirmation of the stored lines, or a
// plain field update.
func (s *OrderService) UpdateOrder(ctx context.Context, input *UpdateOrderInput) (*entity.Order, error) {
	var (
		order *entity.Order
		path  string
	)
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		var err error
		order, err = tx.Orders().GetForUpdate(ctx, input.TenantID, input.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}

		if input.OrderNumber != nil && strings.TrimSpace(*input.OrderNumber) != order.OrderNumber {
			return apperror.NewImmutableFieldError("order_number")
		}
		if order.IsCompleted() {
			return apperror.NewLockedResourceError("Completed orders cannot be modified")
		}
		if err := validateUpdateInput(input); err != nil {
			return err
		}

		before := trackedValues(order)
		previousStatus := order.Status
		nextStatus := order.Status
		if input.Status != nil {
			nextStatus = *input.Status
		}

		var invoice *entity.SalesInvoice
		if nextStatus == enum.OrderStatusCompleted {
			invoice, err = prepareInvoice(ctx, tx, order, input)
			if err != nil {
				return err
			}
		}

		if input.CustomerID != nil && *input.CustomerID != order.CustomerID {
			if err := ensureCustomer(ctx, tx, input.TenantID, *input.CustomerID); err != nil {
				return err
			}
			order.CustomerID = *input.CustomerID
		}

		// stock is taken once per order, however often it re-enters confirmed
		confirming := nextStatus == enum.OrderStatusConfirmed &&
			previousStatus.DeductsStockOnConfirm() && !order.StockTaken()
		withholdingChanged := input.RemoveWithholdingTax || input.WithholdingTaxTypeID != nil
		totalsChanged := input.ShippingAmount != nil || withholdingChanged

		var movements []StockMovement
		switch {
		case input.Items != nil:
			path = metrics.UpdatePathItemsReplaced
			movements, err = s.replaceLines(ctx, tx, order, input, confirming)
		case totalsChanged:
			path = metrics.UpdatePathTotals
			movements, err = s.recomputeTotals(ctx, tx, order, input, confirming)
		case confirming:
			path = metrics.UpdatePathConfirmation
			var lines []entity.OrderLineSnapshot
			lines, err = tx.OrderLines().GetByOrderID(ctx, order.ID)
			if err == nil {
				movements, err = confirmStoredLines(ctx, tx, input.TenantID, lines)
			}
		default:
			path = metrics.UpdatePathFieldsOnly
		}
		if err != nil {
			return err
		}

		if confirming {
			now := time.Now().UTC()
			order.StockDeductedAt = &now
		}
		order.Status = nextStatus
		if input.PaymentStatus != nil {
			order.PaymentStatus = *input.PaymentStatus
		}
		if input.FulfillmentStatus != nil {
			order.FulfillmentStatus = *input.FulfillmentStatus
		}
		if input.Notes != nil {
			order.Notes = input.Notes
		}
		actor := input.ActorID
		order.UpdatedBy = &actor

		if err := tx.Orders().Update(ctx, order); err != nil {
			return err
		}

		events := updateEvents(before, trackedValues(order), path)
		if confirming {
			events = append(events, ActivityEvent{
				ActionType:  enum.ActivityInventoryDeducted,
				Title:       "Inventory deducted",
				Description: fmt.Sprintf("Stock deducted for %d item(s)", len(movements)),
				Metadata:    map[string]interface{}{"stock_movements": movements},
			})
		}

		if invoice != nil {
			copyInvoiceAmounts(invoice, order)
			invoice.CreatedBy = input.ActorID
			if err := tx.Invoices().Create(ctx, invoice); err != nil {
				return err
			}
			events = append(events, ActivityEvent{
				ActionType:  enum.ActivitySalesInvoiceCreated,
				Title:       fmt.Sprintf("Sales invoice %s created", invoice.InvoiceNumber),
				Description: fmt.Sprintf("Invoice issued for %s %s", invoice.Currency, invoice.TotalAmount.StringFixed(2)),
				Metadata: map[string]interface{}{
					"invoice_id":     invoice.ID.String(),
					"invoice_number": invoice.InvoiceNumber,
					"issue_date":     invoice.IssueDate.Format(time.DateOnly),
					"total_amount":   invoice.TotalAmount.StringFixed(2),
				},
			})
		}

		return NewActivityLogWriter(tx.Activities()).Append(ctx, input.TenantID, order.ID, &actor, events)
	})
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	s.metrics.OrderUpdated(path)
	if order.Status == enum.OrderStatusCompleted {
		s.metrics.InvoiceCreated()
	}
	s.log.Info("order updated",
		zap.String("order_id", order.ID.String()),
		zap.String("tenant_id", order.TenantID.String()),
		zap.String("path", path),
		zap.String("status", string(order.Status)),
	)

	return s.reload(ctx, order), nil
}

// replaceLines rebuilds the full snapshot set from the requested lines
func (s *OrderService) replaceLines(ctx context.Context, tx repository.Store, order *entity.Order, input *UpdateOrderInput, confirming bool) ([]StockMovement, error) {
	resolver := NewTaxResolver(tx.Tenants(), tx.Taxes())
	vatRate, err := resolver.ResolveVATRate(ctx, order.TenantID)
	if err != nil {
		return nil, err
	}
	withholdingID, withholdingRate, err := resolver.ResolveWithholdingRate(ctx, order.TenantID, withholdingSelection(order, input))
	if err != nil {
		return nil, err
	}

	itemsByID, err := loadRequestedItems(ctx, tx, order.TenantID, input.Items)
	if err != nil {
		return nil, err
	}
	snapshots := buildSnapshots(input.Items, itemsByID, vatRate)
	for i := range snapshots {
		snapshots[i].OrderID = order.ID
	}

	var movements []StockMovement
	if confirming {
		movements, err = deductStock(ctx, tx, order.TenantID, snapshots, itemsByID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.OrderLines().DeleteByOrderID(ctx, order.ID); err != nil {
		return nil, err
	}
	if err := tx.OrderLines().CreateBatch(ctx, snapshots); err != nil {
		return nil, err
	}

	shipping := order.ShippingAmount
	if input.ShippingAmount != nil {
		shipping = *input.ShippingAmount
	}
	totals := CalculateOrderTotals(snapshots, shipping, vatRate)
	applyTotals(order, totals, CalculateWithholding(totals.Taxable, withholdingRate))
	order.WithholdingTaxTypeID = withholdingID
	return movements, nil
}

// recomputeTotals re-folds the stored lines after a shipping or withholding change
func (s *OrderService) recomputeTotals(ctx context.Context, tx repository.Store, order *entity.Order, input *UpdateOrderInput, confirming bool) ([]StockMovement, error) {
	resolver := NewTaxResolver(tx.Tenants(), tx.Taxes())
	vatRate, err := resolver.ResolveVATRate(ctx, order.TenantID)
	if err != nil {
		return nil, err
	}
	withholdingID, withholdingRate, err := resolver.ResolveWithholdingRate(ctx, order.TenantID, withholdingSelection(order, input))
	if err != nil {
		return nil, err
	}

	lines, err := tx.OrderLines().GetByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	var movements []StockMovement
	if confirming {
		movements, err = confirmStoredLines(ctx, tx, order.TenantID, lines)
		if err != nil {
			return nil, err
		}
	}

	shipping := order.ShippingAmount
	if input.ShippingAmount != nil {
		shipping = *input.ShippingAmount
	}
	totals := CalculateOrderTotals(lines, shipping, vatRate)
	applyTotals(order, totals, CalculateWithholding(totals.Taxable, withholdingRate))
	order.WithholdingTaxTypeID = withholdingID
	return movements, nil
}

// DeleteOrder soft-deletes an order and removes its line snapshots. The
// activity log is kept.
func (s *OrderService) DeleteOrder(ctx context.Context, tenantID, orderID, actorID uuid.UUID) error {
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().GetForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperror.NewNotFoundError("Order")
		}
		if order.IsCompleted() {
			return apperror.NewLockedResourceError("Completed orders cannot be deleted")
		}

		if err := tx.OrderLines().DeleteByOrderID(ctx, order.ID); err != nil {
			return err
		}
		if err := tx.Orders().Delete(ctx, tenantID, order.ID); err != nil {
			return err
		}

		return NewActivityLogWriter(tx.Activities()).Append(ctx, tenantID, order.ID, &actorID, []ActivityEvent{{
			ActionType: enum.ActivityOrderDeleted,
			Title:      fmt.Sprintf("Order %s deleted", order.OrderNumber),
			Metadata: map[string]interface{}{
				"status":       string(order.Status),
				"total_amount": order.TotalAmount.StringFixed(2),
			},
		}})
	})
	if err != nil {
		return err
	}

	s.log.Info("order deleted",
		zap.String("order_id", orderID.String()),
		zap.String("tenant_id", tenantID.String()),
	)
	return nil
}

// GetOrder returns an order with its customer, lines, invoice and activity log
func (s *OrderService) GetOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*entity.Order, error) {
	order, err := s.store.Orders().GetWithDetails(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// ListOrders returns a page of a tenant's orders
func (s *OrderService) ListOrders(ctx context.Context, tenantID uuid.UUID, params *repository.OrderFilterParams) ([]entity.Order, *pagination.Pagination, error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	orders, total, err := s.store.Orders().List(ctx, tenantID, params)
	if err != nil {
		return nil, nil, err
	}
	return orders, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total), nil
}

// ListActivities returns an order's audit trail, oldest first
func (s *OrderService) ListActivities(ctx context.Context, tenantID, orderID uuid.UUID) ([]entity.OrderActivity, error) {
	order, err := s.store.Orders().GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return s.store.Activities().ListByOrderID(ctx, tenantID, orderID)
}

// GetInvoice returns the sales invoice issued for an order
func (s *OrderService) GetInvoice(ctx context.Context, tenantID, orderID uuid.UUID) (*entity.SalesInvoice, error) {
	order, err := s.store.Orders().GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	invoice, err := s.store.Invoices().GetByOrderID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Sales invoice")
	}
	return invoice, nil
}

// reload fetches the committed order with its relations. The write already
// succeeded, so a failed read falls back to the in-memory order.
func (s *OrderService) reload(ctx context.Context, order *entity.Order) *entity.Order {
	loaded, err := s.store.Orders().GetWithDetails(ctx, order.TenantID, order.ID)
	if err != nil || loaded == nil {
		s.log.Warn("failed to reload order after commit",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return order
	}
	return loaded
}

func (s *OrderService) recordFailure(err error) {
	var stockErr *apperror.InsufficientStockError
	if errors.As(err, &stockErr) {
		s.metrics.StockConflict()
	}
}

func validateCreateInput(input *CreateOrderInput) (enum.OrderStatus, enum.PaymentStatus, enum.FulfillmentStatus, error) {
	var fieldErrors []apperror.FieldError
	if strings.TrimSpace(input.OrderNumber) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "order_number", Message: "is required"})
	}
	if input.CustomerID == uuid.Nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "customer_id", Message: "is required"})
	}

	status := enum.OrderStatusPending
	if input.Status != nil {
		status = *input.Status
		if !creatableStatuses[status] {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "status", Message: "orders cannot be created as " + string(status)})
		}
	}
	paymentStatus := enum.PaymentStatusUnpaid
	if input.PaymentStatus != nil {
		paymentStatus = *input.PaymentStatus
		if !paymentStatus.IsValid() {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "payment_status", Message: "is not a valid payment status"})
		}
	}
	fulfillmentStatus := enum.FulfillmentStatusUnfulfilled
	if input.FulfillmentStatus != nil {
		fulfillmentStatus = *input.FulfillmentStatus
		if !fulfillmentStatus.IsValid() {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "fulfillment_status", Message: "is not a valid fulfillment status"})
		}
	}

	if len(input.Items) == 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "ordered_items", Message: "at least one line is required"})
	}
	fieldErrors = append(fieldErrors, validateLines(input.Items)...)

	if len(fieldErrors) > 0 {
		return "", "", "", apperror.NewValidationError("Invalid order", fieldErrors...)
	}
	return status, paymentStatus, fulfillmentStatus, nil
}

func validateUpdateInput(input *UpdateOrderInput) error {
	var fieldErrors []apperror.FieldError
	if input.Status != nil && !input.Status.IsValid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "status", Message: "is not a valid order status"})
	}
	if input.PaymentStatus != nil && !input.PaymentStatus.IsValid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "payment_status", Message: "is not a valid payment status"})
	}
	if input.FulfillmentStatus != nil && !input.FulfillmentStatus.IsValid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "fulfillment_status", Message: "is not a valid fulfillment status"})
	}
	if input.CustomerID != nil && *input.CustomerID == uuid.Nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "customer_id", Message: "is required"})
	}
	if input.Items != nil && len(input.Items) == 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "ordered_items", Message: "at least one line is required"})
	}
	fieldErrors = append(fieldErrors, validateLines(input.Items)...)

	if len(fieldErrors) > 0 {
		return apperror.NewValidationError("Invalid order update", fieldErrors...)
	}
	return nil
}

func validateLines(lines []OrderLineInput) []apperror.FieldError {
	var fieldErrors []apperror.FieldError
	for i, line := range lines {
		if line.ItemID == uuid.Nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field: fmt.Sprintf("ordered_items[%d].item_id", i), Message: "is required",
			})
		}
		if !line.Quantity.Round(3).IsPositive() {
			fieldErrors = append(fieldErrors, apperror.FieldError{
				Field: fmt.Sprintf("ordered_items[%d].quantity", i), Message: "must be greater than zero",
			})
		}
	}
	return fieldErrors
}

func ensureCustomer(ctx context.Context, tx repository.Store, tenantID, customerID uuid.UUID) error {
	customer, err := tx.Customers().GetByID(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return apperror.NewValidationError("Customer not found",
			apperror.FieldError{Field: "customer_id", Message: "does not exist in this organization"})
	}
	return nil
}

// loadRequestedItems fetches every referenced item in one query and fails
// if any of them is not in the tenant's catalog
func loadRequestedItems(ctx context.Context, tx repository.Store, tenantID uuid.UUID, lines []OrderLineInput) (map[uuid.UUID]*entity.Item, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if !seen[line.ItemID] {
			seen[line.ItemID] = true
			ids = append(ids, line.ItemID)
		}
	}

	items, err := tx.Items().GetByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	itemsByID := make(map[uuid.UUID]*entity.Item, len(items))
	for i := range items {
		itemsByID[items[i].ID] = &items[i]
	}

	for i, line := range lines {
		if _, ok := itemsByID[line.ItemID]; !ok {
			return nil, apperror.NewValidationError("Item not found",
				apperror.FieldError{Field: fmt.Sprintf("ordered_items[%d].item_id", i), Message: "does not exist in this organization"})
		}
	}
	return itemsByID, nil
}

func buildSnapshots(lines []OrderLineInput, itemsByID map[uuid.UUID]*entity.Item, vatRate decimal.Decimal) []entity.OrderLineSnapshot {
	snapshots := make([]entity.OrderLineSnapshot, len(lines))
	for i, line := range lines {
		snapshots[i] = BuildLineSnapshot(itemsByID[line.ItemID], line.Quantity, vatRate, line.Metadata)
		snapshots[i].LineNumber = i + 1
	}
	return snapshots
}

// deductStock validates demand against the stock already read, then applies
// it under row locks
func deductStock(ctx context.Context, tx repository.Store, tenantID uuid.UUID, lines []entity.OrderLineSnapshot, itemsByID map[uuid.UUID]*entity.Item) ([]StockMovement, error) {
	demand := BuildDemand(lines, itemsByID)
	if err := EnsureAvailable(itemsByID, demand); err != nil {
		return nil, err
	}
	return NewInventoryGuard(tx.Items()).ApplyDeduction(ctx, tenantID, demand)
}

// confirmStoredLines takes stock for lines that are already persisted
func confirmStoredLines(ctx context.Context, tx repository.Store, tenantID uuid.UUID, lines []entity.OrderLineSnapshot) ([]StockMovement, error) {
	if len(lines) == 0 {
		return nil, apperror.NewValidationError("Order has no line items to confirm")
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ItemID)
	}
	items, err := tx.Items().GetByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	itemsByID := make(map[uuid.UUID]*entity.Item, len(items))
	for i := range items {
		itemsByID[items[i].ID] = &items[i]
	}

	for _, line := range lines {
		if _, ok := itemsByID[line.ItemID]; !ok && line.ItemType.TracksStock() {
			return nil, apperror.NewValidationError(fmt.Sprintf("Item %s on this order no longer exists", line.ItemName))
		}
	}
	return deductStock(ctx, tx, tenantID, lines, itemsByID)
}

func withholdingSelection(order *entity.Order, input *UpdateOrderInput) *uuid.UUID {
	if input.RemoveWithholdingTax {
		return nil
	}
	if input.WithholdingTaxTypeID != nil {
		return input.WithholdingTaxTypeID
	}
	return order.WithholdingTaxTypeID
}

func shippingOrZero(shipping *decimal.Decimal) decimal.Decimal {
	if shipping == nil {
		return decimal.Zero
	}
	return *shipping
}

// prepareInvoice checks the completion preconditions and returns the
// invoice to create once the order's final figures are known
func prepareInvoice(ctx context.Context, tx repository.Store, order *entity.Order, input *UpdateOrderInput) (*entity.SalesInvoice, error) {
	number := ""
	if input.InvoiceNumber != nil {
		number = strings.TrimSpace(*input.InvoiceNumber)
	}
	if number == "" {
		return nil, apperror.NewValidationError("An invoice number is required to complete an order",
			apperror.FieldError{Field: "invoice_number", Message: "is required"})
	}
	if input.InvoiceIssueDate == nil || strings.TrimSpace(*input.InvoiceIssueDate) == "" {
		return nil, apperror.NewValidationError("An invoice issue date is required to complete an order",
			apperror.FieldError{Field: "invoice_issue_date", Message: "is required"})
	}
	issueDate, err := time.Parse(time.DateOnly, strings.TrimSpace(*input.InvoiceIssueDate))
	if err != nil {
		return nil, apperror.NewValidationError("Invalid invoice issue date",
			apperror.FieldError{Field: "invoice_issue_date", Message: "must be in YYYY-MM-DD format"})
	}

	var dueDate *time.Time
	if input.InvoiceDueDate != nil && strings.TrimSpace(*input.InvoiceDueDate) != "" {
		due, err := time.Parse(time.DateOnly, strings.TrimSpace(*input.InvoiceDueDate))
		if err != nil {
			return nil, apperror.NewValidationError("Invalid invoice due date",
				apperror.FieldError{Field: "invoice_due_date", Message: "must be in YYYY-MM-DD format"})
		}
		if due.Before(issueDate) {
			return nil, apperror.NewValidationError("Invalid invoice due date",
				apperror.FieldError{Field: "invoice_due_date", Message: "must not be before the issue date"})
		}
		dueDate = &due
	}

	tenant, err := tx.Tenants().GetByID(ctx, order.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant != nil && tenant.Settings.InvoicePrefix != "" && !strings.HasPrefix(number, tenant.Settings.InvoicePrefix) {
		return nil, apperror.NewValidationError("Invoice number does not match the organization's invoice prefix",
			apperror.FieldError{Field: "invoice_number", Message: "must start with " + tenant.Settings.InvoicePrefix})
	}

	existing, err := tx.Invoices().GetByOrderID(ctx, order.TenantID, order.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewDuplicateInvoiceError("A sales invoice already exists for this order")
	}
	taken, err := tx.Invoices().InvoiceNumberExists(ctx, order.TenantID, number)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.NewDuplicateInvoiceError("Invoice number " + number + " is already in use")
	}

	return &entity.SalesInvoice{
		TenantID:      order.TenantID,
		OrderID:       order.ID,
		InvoiceNumber: number,
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Status:        enum.InvoiceStatusIssued,
	}, nil
}

func copyInvoiceAmounts(invoice *entity.SalesInvoice, order *entity.Order) {
	invoice.CustomerID = order.CustomerID
	invoice.Currency = order.Currency
	invoice.SubtotalAmount = order.SubtotalAmount
	invoice.TaxAmount = order.TaxAmount
	invoice.DiscountAmount = order.DiscountAmount
	invoice.ShippingAmount = order.ShippingAmount
	invoice.WithholdingTaxAmount = order.WithholdingTaxAmount
	invoice.TotalAmount = order.TotalAmount
}
