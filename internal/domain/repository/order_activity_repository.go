package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
)

// OrderActivityRepository is append-only: entries are never updated or deleted
type OrderActivityRepository interface {
	CreateBatch(ctx context.Context, activities []entity.OrderActivity) error
	// ListByOrderID returns the order's activities oldest first
	ListByOrderID(ctx context.Context, tenantID, orderID uuid.UUID) ([]entity.OrderActivity, error)
}
