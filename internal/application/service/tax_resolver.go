package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/repository"
	"github.com/sangkips/bizops-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// TaxResolver looks up the VAT and withholding rates that apply to a tenant's orders
type TaxResolver struct {
	tenantRepo repository.TenantRepository
	taxRepo    repository.TaxRepository
}

// NewTaxResolver creates a new tax resolver
func NewTaxResolver(tenantRepo repository.TenantRepository, taxRepo repository.TaxRepository) *TaxResolver {
	return &TaxResolver{
		tenantRepo: tenantRepo,
		taxRepo:    taxRepo,
	}
}

// ResolveVATRate returns the percentage of the tenant's active VAT type.
// No order can be priced without one.
func (r *TaxResolver) ResolveVATRate(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	tenant, err := r.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return decimal.Zero, err
	}
	if tenant == nil {
		return decimal.Zero, apperror.NewNotFoundError("Tenant")
	}
	if tenant.TaxTypeID == nil {
		return decimal.Zero, apperror.NewConfigurationError("No VAT type is configured for this organization")
	}

	// scoped to the tenant, so a type owned by another tenant reads as missing
	taxType, err := r.taxRepo.GetTaxType(ctx, tenantID, *tenant.TaxTypeID)
	if err != nil {
		return decimal.Zero, err
	}
	if taxType == nil {
		return decimal.Zero, apperror.NewConfigurationError("No VAT type is configured for this organization")
	}
	if !taxType.IsActive {
		return decimal.Zero, apperror.NewConfigurationError("The organization's VAT type is inactive")
	}
	if taxType.Percentage.IsNegative() {
		return decimal.Zero, apperror.NewConfigurationError("The organization's VAT percentage is negative")
	}

	return taxType.Percentage, nil
}

// ResolveWithholdingRate validates an optional withholding tax type. A nil id
// means no withholding and resolves to a zero rate.
func (r *TaxResolver) ResolveWithholdingRate(ctx context.Context, tenantID uuid.UUID, withholdingTaxTypeID *uuid.UUID) (*uuid.UUID, decimal.Decimal, error) {
	if withholdingTaxTypeID == nil || *withholdingTaxTypeID == uuid.Nil {
		return nil, decimal.Zero, nil
	}

	wht, err := r.taxRepo.GetWithholdingTaxType(ctx, tenantID, *withholdingTaxTypeID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if wht == nil {
		return nil, decimal.Zero, apperror.NewValidationError("Withholding tax type not found",
			apperror.FieldError{Field: "withholding_tax_type_id", Message: "does not exist in this organization"})
	}
	if !wht.IsActive {
		return nil, decimal.Zero, apperror.NewValidationError("Withholding tax type is inactive",
			apperror.FieldError{Field: "withholding_tax_type_id", Message: "is inactive"})
	}
	if wht.Percentage.IsNegative() {
		return nil, decimal.Zero, apperror.NewValidationError("Withholding tax percentage is negative",
			apperror.FieldError{Field: "withholding_tax_type_id", Message: "has a negative percentage"})
	}

	id := wht.ID
	return &id, wht.Percentage, nil
}
