package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
	"github.com/sangkips/bizops-api/internal/domain/enum"
	"github.com/sangkips/bizops-api/pkg/pagination"
)

// OrderRepository defines the interface for order data operations.
// Every lookup is scoped to a tenant.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Order, error)
	// GetForUpdate loads the order row and locks it until the surrounding
	// transaction ends. Concurrent updates of one order are serialized here.
	GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*entity.Order, error)
	// GetWithDetails loads the order with customer, line snapshots, invoice
	// and activity log.
	GetWithDetails(ctx context.Context, tenantID, id uuid.UUID) (*entity.Order, error)
	OrderNumberExists(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error)
	// Update writes the order's own columns. Associations are left alone.
	Update(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, params *OrderFilterParams) ([]entity.Order, int64, error)
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination    *pagination.PaginationParams
	Search        string
	Status        *enum.OrderStatus
	PaymentStatus *enum.PaymentStatus
	CustomerID    *uuid.UUID
	StartDate     *time.Time
	EndDate       *time.Time
	Sort          pagination.Sort
}

// OrderLineRepository defines the interface for order line snapshot operations.
// Snapshots are written and removed as a whole set, never edited.
type OrderLineRepository interface {
	CreateBatch(ctx context.Context, lines []entity.OrderLineSnapshot) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.OrderLineSnapshot, error)
	DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error
}
