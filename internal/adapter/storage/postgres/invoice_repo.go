package postgres

import (
	"context"
	"errors"
	"fmt"

	"billing-engine/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// InvoiceRepo implements ports.InvoiceRepository.
type InvoiceRepo struct {
	pool Pool
}

// NewInvoiceRepo creates a new InvoiceRepo.
func NewInvoiceRepo(pool Pool) *InvoiceRepo {
	return &InvoiceRepo{pool: pool}
}

// Create inserts a new invoice.
func (r *InvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	query := `INSERT INTO invoices (id, customer_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		inv.ID, inv.CustomerID, inv.Amount.Amount.String(), string(inv.Amount.Currency), string(inv.Status),
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID fetches an invoice by id. Returns nil, nil when absent.
func (r *InvoiceRepo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	query := `SELECT id, customer_id, amount::text, currency, status FROM invoices WHERE id = $1`

	return scanInvoice(r.pool.QueryRow(ctx, query, id))
}

// ListByStatus fetches all invoices in the given status, in store order.
func (r *InvoiceRepo) ListByStatus(ctx context.Context, status domain.InvoiceStatus) ([]domain.Invoice, error) {
	query := `SELECT id, customer_id, amount::text, currency, status FROM invoices WHERE status = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("list invoices by status: %w", err)
	}
	defer rows.Close()

	return collectInvoices(rows)
}

// List fetches all invoices.
func (r *InvoiceRepo) List(ctx context.Context) ([]domain.Invoice, error) {
	query := `SELECT id, customer_id, amount::text, currency, status FROM invoices ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	return collectInvoices(rows)
}

// UpdateStatus atomically sets the status of one invoice and returns the
// updated row. Returns nil, nil when the invoice does not exist.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id int64, status domain.InvoiceStatus) (*domain.Invoice, error) {
	query := `UPDATE invoices SET status = $1 WHERE id = $2
		RETURNING id, customer_id, amount::text, currency, status`

	return scanInvoice(r.pool.QueryRow(ctx, query, string(status), id))
}

func collectInvoices(rows pgx.Rows) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoiceRow(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice rows: %w", err)
	}
	return invoices, nil
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	inv, err := scanInvoiceRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

func scanInvoiceRow(row pgx.Row) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	var amount, currency, status string
	if err := row.Scan(&inv.ID, &inv.CustomerID, &amount, &currency, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan invoice: %w", err)
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse invoice amount %q: %w", amount, err)
	}
	inv.Amount = domain.Money{Amount: dec, Currency: domain.Currency(currency)}
	inv.Status = domain.InvoiceStatus(status)
	return inv, nil
}
