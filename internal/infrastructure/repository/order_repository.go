package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bizops-api/internal/domain/repository"
	"github.com/sangkips/bizops-api/pkg/apperror"
	"github.com/sangkips/bizops-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderSortColumns whitelists the columns a client may sort orders by
var orderSortColumns = map[string]string{
	"created_at":   "created_at",
	"order_number": "order_number",
	"total_amount": "total_amount",
	"status":       "status",
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
	if isDuplicateKey(err) {
		return apperror.NewValidationError("Order number already exists",
			apperror.FieldError{Field: "order_number", Message: "already in use"})
	}
	return err
}

func (r *orderRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID), ForUpdate()).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) GetWithDetails(ctx context.Context, tenantID, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Preload("Customer").
		Preload("WithholdingTaxType").
		Preload("SalesInvoice").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_number ASC")
		}).
		Preload("Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

// OrderNumberExists includes soft-deleted orders since they still hold
// their number in the unique index
func (r *orderRepository) OrderNumberExists(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&entity.Order{}).
		Scopes(TenantScope(tenantID)).
		Where("order_number = ?", orderNumber).
		Count(&count).Error
	return count > 0, err
}

func (r *orderRepository) Update(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(order).Error
}

func (r *orderRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Delete(&entity.Order{}, "id = ?", id).Error
}

func (r *orderRepository) List(ctx context.Context, tenantID uuid.UUID, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Order{}).Scopes(TenantScope(tenantID))

	if params.Search != "" {
		query = query.Scopes(ContainsScope("order_number", params.Search))
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *params.PaymentStatus)
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}

	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Customer").
		Order(params.Sort.OrderBy(orderSortColumns, "created_at")).
		Find(&orders).Error

	return orders, total, err
}

type orderLineRepository struct {
	db *gorm.DB
}

// NewOrderLineRepository creates a new order line snapshot repository
func NewOrderLineRepository(db *gorm.DB) domainRepo.OrderLineRepository {
	return &orderLineRepository{db: db}
}

func (r *orderLineRepository) CreateBatch(ctx context.Context, lines []entity.OrderLineSnapshot) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *orderLineRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.OrderLineSnapshot, error) {
	var lines []entity.OrderLineSnapshot
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("line_number ASC").
		Find(&lines).Error
	return lines, err
}

func (r *orderLineRepository) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&entity.OrderLineSnapshot{}).Error
}
