package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
)

// SalesInvoiceRepository defines the interface for sales invoice operations
type SalesInvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.SalesInvoice) error
	GetByOrderID(ctx context.Context, tenantID, orderID uuid.UUID) (*entity.SalesInvoice, error)
	InvoiceNumberExists(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (bool, error)
}
