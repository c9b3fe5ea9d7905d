package service

import (
	"context"
	"fmt"

	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"

	"github.com/rs/zerolog"
)

// WorkDispatcher implements ports.Dispatcher: it bulk-reads every
// PENDING invoice and publishes each id to the billing queue. It never
// mutates invoice state; the store's fetch order is passed through
// as-is with no cross-invoice ordering promise.
type WorkDispatcher struct {
	invoices ports.InvoiceRepository
	queue    ports.BillingQueue
	log      zerolog.Logger
}

// NewWorkDispatcher creates a WorkDispatcher.
func NewWorkDispatcher(invoices ports.InvoiceRepository, queue ports.BillingQueue, log zerolog.Logger) *WorkDispatcher {
	return &WorkDispatcher{
		invoices: invoices,
		queue:    queue,
		log:      log,
	}
}

// Dispatch publishes the id of every PENDING invoice, one message per
// invoice, and returns the count published. An unreachable store fails
// the whole cycle before anything is published; the fetch is a single
// bulk read so partial selection is not possible. A publish failure
// aborts the remainder of the cycle, leaving the already published ids
// to be processed.
func (d *WorkDispatcher) Dispatch(ctx context.Context) (int, error) {
	pending, err := d.invoices.ListByStatus(ctx, domain.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("fetching pending invoices: %w", err)
	}

	published := 0
	for _, inv := range pending {
		if err := d.queue.Publish(ctx, inv.ID); err != nil {
			return published, fmt.Errorf("publishing invoice %d: %w", inv.ID, err)
		}
		published++
	}

	d.log.Info().Int("published", published).Msg("pending invoices dispatched")
	return published, nil
}
