package service

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sangkips/bizops-api/internal/domain/entity"
	"github.com/sangkips/bizops-api/internal/domain/enum"
	"github.com/sangkips/bizops-api/internal/domain/repository"
	"github.com/sangkips/bizops-api/internal/infrastructure/database"
	"github.com/sangkips/bizops-api/internal/infrastructure/logger"
	"github.com/sangkips/bizops-api/internal/infrastructure/metrics"
	infraRepo "github.com/sangkips/bizops-api/internal/infrastructure/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func statusPtr(s enum.OrderStatus) *enum.OrderStatus {
	return &s
}

// newTestDB opens a private in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.NewGormLogger(zap.NewNop(), "silent", 0),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db, zap.NewNop()))
	return db
}

type recordingNotifier struct {
	mu     sync.Mutex
	orders []*entity.Order
}

func (n *recordingNotifier) NotifyOrderCreated(_ context.Context, _ *entity.Tenant, order *entity.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.orders)
}

// orderFixture is a tenant with a VAT type, one customer and a
// service wired against a fresh database
type orderFixture struct {
	t        *testing.T
	ctx      context.Context
	db       *gorm.DB
	store    repository.Store
	svc      *OrderService
	notifier *recordingNotifier
	metrics  *metrics.OrderMetrics
	tenant   *entity.Tenant
	vat      *entity.TaxType
	customer *entity.Customer
	actorID  uuid.UUID
}

func newOrderFixture(t *testing.T, vatPercent string) *orderFixture {
	t.Helper()

	db := newTestDB(t)
	ctx := context.Background()
	store := infraRepo.NewStore(db)

	tenant := &entity.Tenant{Name: "Acme", Slug: "acme-" + uuid.NewString()[:8], Currency: "KES"}
	require.NoError(t, store.Tenants().Create(ctx, tenant))

	vat := &entity.TaxType{TenantID: tenant.ID, Name: "VAT", Percentage: dec(vatPercent), IsActive: true}
	require.NoError(t, store.Taxes().CreateTaxType(ctx, vat))
	tenant.TaxTypeID = &vat.ID
	require.NoError(t, store.Tenants().Update(ctx, tenant))

	customer := &entity.Customer{TenantID: tenant.ID, Name: "Jane Buyer"}
	require.NoError(t, store.Customers().Create(ctx, customer))

	notifier := &recordingNotifier{}
	orderMetrics := metrics.NewOrderMetrics(prometheus.NewRegistry())

	return &orderFixture{
		t:        t,
		ctx:      ctx,
		db:       db,
		store:    store,
		svc:      NewOrderService(store, notifier, orderMetrics, zap.NewNop()),
		notifier: notifier,
		metrics:  orderMetrics,
		tenant:   tenant,
		vat:      vat,
		customer: customer,
		actorID:  uuid.New(),
	}
}

func (f *orderFixture) product(name, price string, stock int) *entity.Item {
	f.t.Helper()
	item := &entity.Item{TenantID: f.tenant.ID, Name: name, Type: enum.ItemTypeProduct, Price: dec(price), Stock: stock}
	require.NoError(f.t, f.store.Items().Create(f.ctx, item))
	return item
}

func (f *orderFixture) serviceItem(name, price string) *entity.Item {
	f.t.Helper()
	item := &entity.Item{TenantID: f.tenant.ID, Name: name, Type: enum.ItemTypeService, Price: dec(price)}
	require.NoError(f.t, f.store.Items().Create(f.ctx, item))
	return item
}

func (f *orderFixture) withholding(percent string, active bool) *entity.WithholdingTaxType {
	f.t.Helper()
	wht := &entity.WithholdingTaxType{TenantID: f.tenant.ID, Name: "WHT " + percent, Percentage: dec(percent), IsActive: active}
	require.NoError(f.t, f.store.Taxes().CreateWithholdingTaxType(f.ctx, wht))
	return wht
}

func (f *orderFixture) stockOf(item *entity.Item) int {
	f.t.Helper()
	current, err := f.store.Items().GetByID(f.ctx, f.tenant.ID, item.ID)
	require.NoError(f.t, err)
	require.NotNil(f.t, current)
	return current.Stock
}

func (f *orderFixture) createInput(number string, lines ...OrderLineInput) *CreateOrderInput {
	return &CreateOrderInput{
		TenantID:    f.tenant.ID,
		ActorID:     f.actorID,
		OrderNumber: number,
		CustomerID:  f.customer.ID,
		Items:       lines,
	}
}

func (f *orderFixture) mustCreate(input *CreateOrderInput) *entity.Order {
	f.t.Helper()
	order, err := f.svc.CreateOrder(f.ctx, input)
	require.NoError(f.t, err)
	require.NotNil(f.t, order)
	return order
}

func (f *orderFixture) updateInput(order *entity.Order) *UpdateOrderInput {
	return &UpdateOrderInput{
		TenantID: f.tenant.ID,
		OrderID:  order.ID,
		ActorID:  f.actorID,
	}
}

func (f *orderFixture) activityTypes(orderID uuid.UUID) []enum.ActivityType {
	f.t.Helper()
	activities, err := f.store.Activities().ListByOrderID(f.ctx, f.tenant.ID, orderID)
	require.NoError(f.t, err)
	types := make([]enum.ActivityType, len(activities))
	for i, a := range activities {
		types[i] = a.ActionType
	}
	return types
}

func line(item *entity.Item, qty string) OrderLineInput {
	return OrderLineInput{ItemID: item.ID, Quantity: dec(qty)}
}

// staleStore hides committed order and invoice numbers from the existence
// checks, as when two requests race for the same number
type staleStore struct {
	repository.Store
}

func (s staleStore) Orders() repository.OrderRepository {
	return staleOrders{s.Store.Orders()}
}

func (s staleStore) Invoices() repository.SalesInvoiceRepository {
	return staleInvoices{s.Store.Invoices()}
}

func (s staleStore) WithinTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.WithinTransaction(ctx, func(tx repository.Store) error {
		return fn(staleStore{tx})
	})
}

type staleOrders struct {
	repository.OrderRepository
}

func (staleOrders) OrderNumberExists(context.Context, uuid.UUID, string) (bool, error) {
	return false, nil
}

type staleInvoices struct {
	repository.SalesInvoiceRepository
}

func (staleInvoices) InvoiceNumberExists(context.Context, uuid.UUID, string) (bool, error) {
	return false, nil
}
