package repository

import "context"

// Store groups the repositories the order engine writes through. A Store
// handed to a WithinTransaction callback is bound to that transaction, so
// every read and write made through it commits or rolls back together.
type Store interface {
	Tenants() TenantRepository
	Taxes() TaxRepository
	Customers() CustomerRepository
	Items() ItemRepository
	Orders() OrderRepository
	OrderLines() OrderLineRepository
	Invoices() SalesInvoiceRepository
	Activities() OrderActivityRepository

	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}
