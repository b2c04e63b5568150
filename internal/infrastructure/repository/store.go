package repository

import (
	"context"

	domainRepo "github.com/sangkips/bizops-api/internal/domain/repository"
	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a store whose repositories share one database handle
func NewStore(db *gorm.DB) domainRepo.Store {
	return &gormStore{db: db}
}

func (s *gormStore) Tenants() domainRepo.TenantRepository {
	return NewTenantRepository(s.db)
}

func (s *gormStore) Taxes() domainRepo.TaxRepository {
	return NewTaxRepository(s.db)
}

func (s *gormStore) Customers() domainRepo.CustomerRepository {
	return NewCustomerRepository(s.db)
}

func (s *gormStore) Items() domainRepo.ItemRepository {
	return NewItemRepository(s.db)
}

func (s *gormStore) Orders() domainRepo.OrderRepository {
	return NewOrderRepository(s.db)
}

func (s *gormStore) OrderLines() domainRepo.OrderLineRepository {
	return NewOrderLineRepository(s.db)
}

func (s *gormStore) Invoices() domainRepo.SalesInvoiceRepository {
	return NewSalesInvoiceRepository(s.db)
}

func (s *gormStore) Activities() domainRepo.OrderActivityRepository {
	return NewOrderActivityRepository(s.db)
}

// WithinTransaction runs fn against a store bound to a single transaction.
// Returning an error from fn rolls everything back.
func (s *gormStore) WithinTransaction(ctx context.Context, fn func(tx domainRepo.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
