package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
)

// TaxRepository defines read access to a tenant's tax configuration
type TaxRepository interface {
	CreateTaxType(ctx context.Context, taxType *entity.TaxType) error
	CreateWithholdingTaxType(ctx context.Context, wht *entity.WithholdingTaxType) error
	GetTaxType(ctx context.Context, tenantID, id uuid.UUID) (*entity.TaxType, error)
	GetWithholdingTaxType(ctx context.Context, tenantID, id uuid.UUID) (*entity.WithholdingTaxType, error)
}
