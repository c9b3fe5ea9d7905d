package seed

import (
	"context"
	"testing"

	"billing-engine/config"
	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRun_SeedsCustomersAndInvoices(t *testing.T) {
	ctrl := gomock.NewController(t)
	customers := mocks.NewMockCustomerRepository(ctrl)
	invoices := mocks.NewMockInvoiceRepository(ctrl)

	customers.EXPECT().List(gomock.Any()).Return(nil, nil)

	var seededInvoices []domain.Invoice
	customers.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(3)
	invoices.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *domain.Invoice) error {
			seededInvoices = append(seededInvoices, *inv)
			return nil
		}).Times(6)

	cfg := config.SeedConfig{Enabled: true, Customers: 3, InvoicesPerCustomer: 2}
	err := Run(context.Background(), cfg, customers, invoices, zerolog.Nop())
	require.NoError(t, err)

	require.Len(t, seededInvoices, 6)
	for i, inv := range seededInvoices {
		assert.Equal(t, int64(i+1), inv.ID)
		assert.Equal(t, domain.StatusPending, inv.Status)
		assert.False(t, inv.Amount.Amount.IsNegative())
	}
}

func TestRun_SkipsWhenAlreadySeeded(t *testing.T) {
	ctrl := gomock.NewController(t)
	customers := mocks.NewMockCustomerRepository(ctrl)
	invoices := mocks.NewMockInvoiceRepository(ctrl)

	customers.EXPECT().List(gomock.Any()).
		Return([]domain.Customer{{ID: 1, Currency: domain.CurrencyEUR}}, nil)

	cfg := config.SeedConfig{Enabled: true, Customers: 3, InvoicesPerCustomer: 2}
	err := Run(context.Background(), cfg, customers, invoices, zerolog.Nop())
	require.NoError(t, err)
}
