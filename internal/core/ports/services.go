package ports

import (
	"context"

	"billing-engine/internal/core/domain"

	"github.com/google/uuid"
)

// PaymentGateway is the external payment provider. Charge performs one
// synchronous charge attempt and classifies the result; it never returns
// an error, every failure mode is folded into the outcome.
//
// The provider is assumed idempotent per invoice: re-submitting an
// already-paid invoice yields ChargePaid rather than a double charge.
type PaymentGateway interface {
	Charge(ctx context.Context, invoice domain.Invoice) domain.ChargeOutcome
}

// BillingQueue is the work channel between dispatcher and workers.
// Delivery is at-least-once; no cross-invoice ordering is guaranteed.
type BillingQueue interface {
	// Publish enqueues one invoice id.
	Publish(ctx context.Context, invoiceID int64) error
	// Consume blocks until an id is available or ctx is cancelled.
	Consume(ctx context.Context) (int64, error)
	// Len returns the number of ids currently queued.
	Len(ctx context.Context) (int64, error)
}

// Charger attempts to collect payment for one invoice and returns the
// final status to persist. It never returns an error; all gateway
// failures are absorbed into a status value.
type Charger interface {
	ChargeInvoice(ctx context.Context, invoice domain.Invoice) domain.InvoiceStatus
}

// Dispatcher selects invoices due for charging and hands them off to
// the billing queue.
type Dispatcher interface {
	// Dispatch publishes the id of every PENDING invoice and returns the
	// count published. A store failure aborts the whole cycle.
	Dispatch(ctx context.Context) (int, error)
}

// BillingRunner triggers billing cycles outside the fixed schedule and
// exposes the cycle state machine.
type BillingRunner interface {
	// TriggerRun starts a cycle unless one is already in flight.
	// Returns the run id, or false if a cycle is already running.
	TriggerRun() (uuid.UUID, bool)
	// State returns the current cycle state: IDLE, DISPATCHING or DRAINING.
	State() string
}
