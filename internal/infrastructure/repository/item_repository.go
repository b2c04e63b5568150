package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bizops-api/internal/domain/repository"
	"gorm.io/gorm"
)

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB) domainRepo.ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Item, error) {
	var item entity.Item
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

// GetByIDs retrieves multiple items by their IDs in a single query
func (r *itemRepository) GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]entity.Item, error) {
	if len(ids) == 0 {
		return []entity.Item{}, nil
	}
	var items []entity.Item
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("id IN ?", ids).
		Find(&items).Error
	return items, err
}

// GetByIDsForUpdate locks the selected rows in a stable order so two
// transactions deducting overlapping items cannot deadlock each other.
func (r *itemRepository) GetByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]entity.Item, error) {
	if len(ids) == 0 {
		return []entity.Item{}, nil
	}
	var items []entity.Item
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID), ForUpdate()).
		Where("id IN ?", ids).
		Order("id").
		Find(&items).Error
	return items, err
}

func (r *itemRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	return r.db.WithContext(ctx).Model(&entity.Item{}).
		Where("id = ?", id).
		Update("stock", stock).Error
}
