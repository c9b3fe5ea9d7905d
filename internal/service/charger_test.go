package service

import (
	"context"
	"testing"
	"time"

	"billing-engine/internal/clock"
	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func testInvoice(id int64) domain.Invoice {
	return domain.Invoice{
		ID:         id,
		CustomerID: 1,
		Amount: domain.Money{
			Amount:   decimal.NewFromInt(100),
			Currency: domain.CurrencyEUR,
		},
		Status: domain.StatusPending,
	}
}

type chargerTestDeps struct {
	charger *InvoiceCharger
	gateway *mocks.MockPaymentGateway
	clk     *clock.Fake
	ctrl    *gomock.Controller
}

func setupCharger(t *testing.T, opts ChargerOpts) *chargerTestDeps {
	ctrl := gomock.NewController(t)
	d := &chargerTestDeps{
		gateway: mocks.NewMockPaymentGateway(ctrl),
		clk:     clock.NewFake(time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC)),
		ctrl:    ctrl,
	}
	d.charger = NewInvoiceCharger(d.gateway, d.clk, opts, zerolog.Nop())
	return d
}

func defaultOpts() ChargerOpts {
	return ChargerOpts{
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     time.Minute,
	}
}

func TestChargeInvoice_PaidFirstAttempt(t *testing.T) {
	d := setupCharger(t, defaultOpts())
	inv := testInvoice(5)

	d.gateway.EXPECT().Charge(gomock.Any(), inv).Return(domain.ChargePaid).Times(1)

	status := d.charger.ChargeInvoice(context.Background(), inv)
	assert.Equal(t, domain.StatusPaid, status)
	assert.Empty(t, d.clk.Waits(), "no backoff on success")
}

func TestChargeInvoice_DeclinedIsTerminal(t *testing.T) {
	d := setupCharger(t, defaultOpts())
	inv := testInvoice(4)

	d.gateway.EXPECT().Charge(gomock.Any(), inv).Return(domain.ChargeDeclined).Times(1)

	status := d.charger.ChargeInvoice(context.Background(), inv)
	assert.Equal(t, domain.StatusFailedPaymentMethod, status)
	assert.Empty(t, d.clk.Waits())
}

func TestChargeInvoice_CurrencyMismatch_NoRetry(t *testing.T) {
	d := setupCharger(t, defaultOpts())
	inv := testInvoice(1)

	// Exactly one gateway call regardless of remaining budget.
	d.gateway.EXPECT().Charge(gomock.Any(), inv).Return(domain.ChargeCurrencyMismatch).Times(1)

	status := d.charger.ChargeInvoice(context.Background(), inv)
	assert.Equal(t, domain.StatusFailedCurrencyMismatch, status)
	assert.Empty(t, d.clk.Waits())
}

func TestChargeInvoice_CustomerNotFound_NoRetry(t *testing.T) {
	d := setupCharger(t, defaultOpts())
	inv := testInvoice(2)

	d.gateway.EXPECT().Charge(gomock.Any(), inv).Return(domain.ChargeCustomerNotFound).Times(1)

	status := d.charger.ChargeInvoice(context.Background(), inv)
	assert.Equal(t, domain.StatusFailedCustomerNotFound, status)
}

func TestChargeInvoice_NetworkError_RetriesToExhaustion(t *testing.T) {
	d := setupCharger(t, defaultOpts())
	inv := testInvoice(3)

	// At most 3 gateway calls, then the transient status is final.
	d.gateway.EXPECT().Charge(gomock.Any(), inv).Return(domain.ChargeNetworkError).Times(3)

	status := d.charger.ChargeInvoice(context.Background(), inv)
	assert.Equal(t, domain.StatusFailedNetwork, status)

	waits := d.clk.Waits()
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, waits,
		"backoff should grow exponentially between attempts")
}

func TestChargeInvoice_UnknownError_RetriesToExhaustion(t *testing.T) {
	d := setupCharger(t, defaultOpts())
	inv := testInvoice(6)

	d.gateway.EXPECT().Charge(gomock.Any(), inv).Return(domain.ChargeUnknownError).Times(3)

	status := d.charger.ChargeInvoice(context.Background(), inv)
	assert.Equal(t, domain.StatusFailedUnknown, status)
}

func TestChargeInvoice_TransientThenPaid(t *testing.T) {
	d := setupCharger(t, defaultOpts())
	inv := testInvoice(7)

	gomock.InOrder(
		d.gateway.EXPECT().Charge(gomock.Any(), inv).Return(domain.ChargeNetworkError),
		d.gateway.EXPECT().Charge(gomock.Any(), inv).Return(domain.ChargePaid),
	)

	status := d.charger.ChargeInvoice(context.Background(), inv)
	assert.Equal(t, domain.StatusPaid, status)
	assert.Equal(t, []time.Duration{2 * time.Second}, d.clk.Waits())
}

func TestChargeInvoice_BackoffCappedAtMax(t *testing.T) {
	d := setupCharger(t, ChargerOpts{
		MaxAttempts:    4,
		InitialBackoff: 30 * time.Second,
		MaxBackoff:     time.Minute,
	})
	inv := testInvoice(8)

	d.gateway.EXPECT().Charge(gomock.Any(), inv).Return(domain.ChargeNetworkError).Times(4)

	status := d.charger.ChargeInvoice(context.Background(), inv)
	assert.Equal(t, domain.StatusFailedNetwork, status)
	assert.Equal(t, []time.Duration{30 * time.Second, time.Minute, time.Minute}, d.clk.Waits())
}

// stuckClock never fires After; used to verify cancellation mid-backoff.
type stuckClock struct{}

func (stuckClock) Now() time.Time                       { return time.Time{} }
func (stuckClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

func TestChargeInvoice_CancelledDuringBackoff(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockPaymentGateway(ctrl)
	charger := NewInvoiceCharger(gateway, stuckClock{}, defaultOpts(), zerolog.Nop())
	inv := testInvoice(9)

	ctx, cancel := context.WithCancel(context.Background())
	gateway.EXPECT().Charge(gomock.Any(), inv).DoAndReturn(
		func(context.Context, domain.Invoice) domain.ChargeOutcome {
			cancel()
			return domain.ChargeNetworkError
		}).Times(1)

	status := charger.ChargeInvoice(ctx, inv)
	assert.Equal(t, domain.StatusFailedNetwork, status,
		"cancellation returns the last resolved transient status")
}
