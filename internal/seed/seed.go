package seed

import (
	"context"
	"fmt"
	"math/rand"

	"billing-engine/config"
	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var currencies = []domain.Currency{
	domain.CurrencyEUR,
	domain.CurrencyUSD,
	domain.CurrencyDKK,
	domain.CurrencySEK,
	domain.CurrencyGBP,
}

// Run populates the store with demo customers and pending invoices.
// It is a no-op when customers already exist, so restarts do not
// duplicate data.
func Run(ctx context.Context, cfg config.SeedConfig, customers ports.CustomerRepository, invoices ports.InvoiceRepository, log zerolog.Logger) error {
	existing, err := customers.List(ctx)
	if err != nil {
		return fmt.Errorf("checking existing customers: %w", err)
	}
	if len(existing) > 0 {
		log.Info().Int("customers", len(existing)).Msg("store already seeded, skipping")
		return nil
	}

	rnd := rand.New(rand.NewSource(1))
	invoiceID := int64(0)

	for i := 1; i <= cfg.Customers; i++ {
		customer := &domain.Customer{
			ID:       int64(i),
			Currency: currencies[rnd.Intn(len(currencies))],
		}
		if err := customers.Create(ctx, customer); err != nil {
			return fmt.Errorf("seeding customer %d: %w", i, err)
		}

		for j := 0; j < cfg.InvoicesPerCustomer; j++ {
			invoiceID++
			amount := decimal.NewFromFloat(rnd.Float64() * 500).Round(2)
			invoice := &domain.Invoice{
				ID:         invoiceID,
				CustomerID: customer.ID,
				Amount:     domain.Money{Amount: amount, Currency: customer.Currency},
				Status:     domain.StatusPending,
			}
			if err := invoices.Create(ctx, invoice); err != nil {
				return fmt.Errorf("seeding invoice %d: %w", invoiceID, err)
			}
		}
	}

	log.Info().
		Int("customers", cfg.Customers).
		Int64("invoices", invoiceID).
		Msg("demo data seeded")
	return nil
}
