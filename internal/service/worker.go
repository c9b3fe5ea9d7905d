package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"billing-engine/internal/core/ports"

	"github.com/rs/zerolog"
)

// WorkerPool runs N billing consumers draining the billing queue. Each
// worker receives an invoice id, re-fetches the invoice from the store
// (never trusting a cached copy), charges it through the Charger, and
// persists exactly one final status.
//
// Workers share no mutable state beyond the queue, the store, and the
// gateway; one worker sleeping in backoff does not block the others.
type WorkerPool struct {
	queue    ports.BillingQueue
	invoices ports.InvoiceRepository
	charger  ports.Charger
	workers  int
	log      zerolog.Logger

	inFlight atomic.Int64
	wg       sync.WaitGroup
}

// NewWorkerPool creates a WorkerPool with the given number of consumers.
func NewWorkerPool(queue ports.BillingQueue, invoices ports.InvoiceRepository, charger ports.Charger, workers int, log zerolog.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		queue:    queue,
		invoices: invoices,
		charger:  charger,
		workers:  workers,
		log:      log,
	}
}

// Start launches the consumers. They run until ctx is cancelled.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.consume(ctx, id)
		}(i)
	}
}

// Wait blocks until all consumers have exited.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// InFlight returns the number of invoices currently being charged.
func (p *WorkerPool) InFlight() int64 {
	return p.inFlight.Load()
}

func (p *WorkerPool) consume(ctx context.Context, workerID int) {
	log := p.log.With().Int("worker", workerID).Logger()
	for {
		invoiceID, err := p.queue.Consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("consuming from billing queue")
			continue
		}

		p.inFlight.Add(1)
		p.process(ctx, log, invoiceID)
		p.inFlight.Add(-1)
	}
}

// process charges one invoice and writes the final status back. Every
// failure here is structural (store problems), so it is reported and
// the unit of work is skipped rather than retried.
func (p *WorkerPool) process(ctx context.Context, log zerolog.Logger, invoiceID int64) {
	invoice, err := p.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		log.Error().Err(err).Int64("invoice_id", invoiceID).Msg("fetching invoice")
		return
	}
	if invoice == nil {
		log.Warn().Int64("invoice_id", invoiceID).Msg("invoice no longer exists, skipping")
		return
	}

	status := p.charger.ChargeInvoice(ctx, *invoice)

	updated, err := p.invoices.UpdateStatus(ctx, invoiceID, status)
	if err != nil {
		log.Error().Err(err).Int64("invoice_id", invoiceID).Str("status", string(status)).Msg("persisting invoice status")
		return
	}
	if updated == nil {
		log.Warn().Int64("invoice_id", invoiceID).Msg("invoice deleted during charge, status not persisted")
		return
	}

	log.Info().Int64("invoice_id", invoiceID).Str("status", string(status)).Msg("invoice processed")
}
