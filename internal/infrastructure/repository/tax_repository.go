package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bizops-api/internal/domain/repository"
	"gorm.io/gorm"
)

type taxRepository struct {
	db *gorm.DB
}

// NewTaxRepository creates a new tax configuration repository
func NewTaxRepository(db *gorm.DB) domainRepo.TaxRepository {
	return &taxRepository{db: db}
}

func (r *taxRepository) CreateTaxType(ctx context.Context, taxType *entity.TaxType) error {
	return r.db.WithContext(ctx).Create(taxType).Error
}

func (r *taxRepository) CreateWithholdingTaxType(ctx context.Context, wht *entity.WithholdingTaxType) error {
	return r.db.WithContext(ctx).Create(wht).Error
}

func (r *taxRepository) GetTaxType(ctx context.Context, tenantID, id uuid.UUID) (*entity.TaxType, error) {
	var taxType entity.TaxType
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		First(&taxType, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &taxType, err
}

func (r *taxRepository) GetWithholdingTaxType(ctx context.Context, tenantID, id uuid.UUID) (*entity.WithholdingTaxType, error) {
	var wht entity.WithholdingTaxType
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		First(&wht, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &wht, err
}
