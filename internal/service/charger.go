package service

import (
	"context"
	"time"

	"billing-engine/internal/clock"
	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"

	"github.com/rs/zerolog"
)

// InvoiceCharger implements ports.Charger: it calls the payment gateway
// up to MaxAttempts times per invoice, resolving each outcome to a
// status and retrying only transient failures with exponential backoff.
//
// It never returns an error; every failure mode is folded into the
// status value so the worker's write-back path stays uniform. The
// backoff sleep blocks only the calling goroutine and aborts early when
// ctx is cancelled, in which case the last resolved status is returned.
type InvoiceCharger struct {
	gateway        ports.PaymentGateway
	clk            clock.Clock
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	log            zerolog.Logger
}

// ChargerOpts bounds the retry policy.
type ChargerOpts struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// NewInvoiceCharger creates an InvoiceCharger.
func NewInvoiceCharger(gateway ports.PaymentGateway, clk clock.Clock, opts ChargerOpts, log zerolog.Logger) *InvoiceCharger {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &InvoiceCharger{
		gateway:        gateway,
		clk:            clk,
		maxAttempts:    opts.MaxAttempts,
		initialBackoff: opts.InitialBackoff,
		maxBackoff:     opts.MaxBackoff,
		log:            log,
	}
}

// ChargeInvoice attempts to collect payment for one invoice and returns
// the final status to persist. The invoice snapshot is not re-fetched
// between attempts.
func (c *InvoiceCharger) ChargeInvoice(ctx context.Context, invoice domain.Invoice) domain.InvoiceStatus {
	var status domain.InvoiceStatus

	for attempt := 1; ; attempt++ {
		outcome := c.gateway.Charge(ctx, invoice)
		status = ResolveOutcome(outcome)

		c.log.Info().
			Int64("invoice_id", invoice.ID).
			Int("attempt", attempt).
			Str("outcome", outcome.String()).
			Str("status", string(status)).
			Msg("charge attempt")

		if !status.IsTransient() || attempt >= c.maxAttempts {
			return status
		}

		delay := c.backoff(attempt)
		c.log.Debug().
			Int64("invoice_id", invoice.ID).
			Dur("backoff", delay).
			Msg("transient failure, backing off")

		select {
		case <-ctx.Done():
			return status
		case <-c.clk.After(delay):
		}
	}
}

// backoff returns the delay after the given attempt: the initial backoff
// doubled per attempt, capped at maxBackoff.
func (c *InvoiceCharger) backoff(attempt int) time.Duration {
	d := c.initialBackoff << (attempt - 1)
	if d > c.maxBackoff || d <= 0 {
		d = c.maxBackoff
	}
	return d
}
