package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bizops-api/internal/domain/repository"
	"gorm.io/gorm"
)

type orderActivityRepository struct {
	db *gorm.DB
}

// NewOrderActivityRepository creates a new order activity repository
func NewOrderActivityRepository(db *gorm.DB) domainRepo.OrderActivityRepository {
	return &orderActivityRepository{db: db}
}

func (r *orderActivityRepository) CreateBatch(ctx context.Context, activities []entity.OrderActivity) error {
	if len(activities) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&activities).Error
}

func (r *orderActivityRepository) ListByOrderID(ctx context.Context, tenantID, orderID uuid.UUID) ([]entity.OrderActivity, error) {
	var activities []entity.OrderActivity
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&activities).Error
	return activities, err
}
