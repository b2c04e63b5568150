package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
)

// ItemRepository defines the interface for item data operations
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Item, error)
	// GetByIDs retrieves multiple items of a tenant in a single query
	GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]entity.Item, error)
	// GetByIDsForUpdate is GetByIDs with a row lock held until the
	// surrounding transaction ends. Rows are locked in id order.
	GetByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]entity.Item, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error
}
