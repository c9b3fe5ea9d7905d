package postgres

import (
	"context"
	"errors"
	"fmt"

	"billing-engine/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// CustomerRepo implements ports.CustomerRepository.
type CustomerRepo struct {
	pool Pool
}

// NewCustomerRepo creates a new CustomerRepo.
func NewCustomerRepo(pool Pool) *CustomerRepo {
	return &CustomerRepo{pool: pool}
}

// Create inserts a new customer.
func (r *CustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	query := `INSERT INTO customers (id, currency) VALUES ($1, $2)`

	_, err := r.pool.Exec(ctx, query, c.ID, string(c.Currency))
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID fetches a customer by id. Returns nil, nil when absent.
func (r *CustomerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	query := `SELECT id, currency FROM customers WHERE id = $1`

	c := &domain.Customer{}
	var currency string
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &currency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	c.Currency = domain.Currency(currency)
	return c, nil
}

// List fetches all customers.
func (r *CustomerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	query := `SELECT id, currency FROM customers ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		var currency string
		if err := rows.Scan(&c.ID, &currency); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		c.Currency = domain.Currency(currency)
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}
	return customers, nil
}
