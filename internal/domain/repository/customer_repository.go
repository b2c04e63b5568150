package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bizops-api/internal/domain/entity"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Customer, error)
}
