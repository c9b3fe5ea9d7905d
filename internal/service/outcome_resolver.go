package service

import (
	"billing-engine/internal/core/domain"
)

// ResolveOutcome maps the result of one gateway charge call onto the
// invoice status that attempt implies. Pure and total: every outcome has
// exactly one status and unrecognized outcomes classify as unknown.
//
// Currency mismatch and customer-not-found are data errors; retrying
// cannot succeed without intervention, so they resolve to terminal
// statuses. Network and unknown failures leave the gateway state
// uncertain and resolve to transient statuses the caller may retry.
func ResolveOutcome(outcome domain.ChargeOutcome) domain.InvoiceStatus {
	switch outcome {
	case domain.ChargePaid:
		return domain.StatusPaid
	case domain.ChargeDeclined:
		return domain.StatusFailedPaymentMethod
	case domain.ChargeCurrencyMismatch:
		return domain.StatusFailedCurrencyMismatch
	case domain.ChargeCustomerNotFound:
		return domain.StatusFailedCustomerNotFound
	case domain.ChargeNetworkError:
		return domain.StatusFailedNetwork
	default:
		return domain.StatusFailedUnknown
	}
}
