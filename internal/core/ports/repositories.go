package ports

import (
	"context"

	"billing-engine/internal/core/domain"
)

// InvoiceRepository defines persistence operations for invoices.
// GetByID and UpdateStatus return nil, nil when the invoice does not exist.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	ListByStatus(ctx context.Context, status domain.InvoiceStatus) ([]domain.Invoice, error)
	List(ctx context.Context) ([]domain.Invoice, error)
	// UpdateStatus atomically sets the status of one invoice and returns
	// the updated row.
	UpdateStatus(ctx context.Context, id int64, status domain.InvoiceStatus) (*domain.Invoice, error)
}

// CustomerRepository defines persistence operations for customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
}
