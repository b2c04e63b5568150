package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
	domainRepo "github.com/sangkips/bizops-api/internal/domain/repository"
	"github.com/sangkips/bizops-api/pkg/apperror"
	"gorm.io/gorm"
)

type salesInvoiceRepository struct {
	db *gorm.DB
}

// NewSalesInvoiceRepository creates a new sales invoice repository
func NewSalesInvoiceRepository(db *gorm.DB) domainRepo.SalesInvoiceRepository {
	return &salesInvoiceRepository{db: db}
}

// Create maps a unique index violation to a duplicate invoice error. It is
// the fallback when two completions race past InvoiceNumberExists.
func (r *salesInvoiceRepository) Create(ctx context.Context, invoice *entity.SalesInvoice) error {
	err := r.db.WithContext(ctx).Create(invoice).Error
	if isDuplicateKey(err) {
		return apperror.NewDuplicateInvoiceError("Sales invoice " + invoice.InvoiceNumber + " conflicts with an existing invoice")
	}
	return err
}

func (r *salesInvoiceRepository) GetByOrderID(ctx context.Context, tenantID, orderID uuid.UUID) (*entity.SalesInvoice, error) {
	var invoice entity.SalesInvoice
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(tenantID)).
		First(&invoice, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *salesInvoiceRepository) InvoiceNumberExists(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&entity.SalesInvoice{}).
		Scopes(TenantScope(tenantID)).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error
	return count > 0, err
}
