package gateway

import (
	"context"
	"math/rand"
	"sync"

	"billing-engine/config"
	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"

	"github.com/rs/zerolog"
)

// Simulator stands in for an external payment provider. It validates
// the charge against the customer record and then rolls dice for the
// failure modes a real provider exhibits: dropped connections and
// declined payment methods.
type Simulator struct {
	customers ports.CustomerRepository
	cfg       config.GatewayConfig
	log       zerolog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulator creates a simulated gateway seeded from the given source.
func NewSimulator(customers ports.CustomerRepository, cfg config.GatewayConfig, seed int64, log zerolog.Logger) *Simulator {
	return &Simulator{
		customers: customers,
		cfg:       cfg,
		log:       log.With().Str("component", "gateway").Logger(),
		rnd:       rand.New(rand.NewSource(seed)),
	}
}

// Charge attempts to bill the customer's account for the invoice amount.
// It never returns a Go error; every failure mode is a ChargeOutcome.
func (s *Simulator) Charge(ctx context.Context, invoice domain.Invoice) domain.ChargeOutcome {
	if s.roll() < s.cfg.NetworkFailureRate {
		return domain.ChargeNetworkError
	}

	customer, err := s.customers.GetByID(ctx, invoice.CustomerID)
	if err != nil {
		s.log.Error().Err(err).Int64("customer_id", invoice.CustomerID).
			Msg("customer lookup failed during charge")
		return domain.ChargeUnknownError
	}
	if customer == nil {
		return domain.ChargeCustomerNotFound
	}
	if customer.Currency != invoice.Amount.Currency {
		return domain.ChargeCurrencyMismatch
	}

	if s.roll() < s.cfg.DeclineRate {
		return domain.ChargeDeclined
	}
	return domain.ChargePaid
}

func (s *Simulator) roll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}
