package domain

// ChargeOutcome classifies the result of one payment gateway call.
// It is a tagged value rather than an error so that every gateway
// result, including failures, flows through the same resolution path.
type ChargeOutcome int

const (
	// ChargePaid: the gateway accepted the charge.
	ChargePaid ChargeOutcome = iota
	// ChargeDeclined: the gateway rejected the customer's payment method.
	ChargeDeclined
	// ChargeCurrencyMismatch: invoice currency does not match the customer account.
	ChargeCurrencyMismatch
	// ChargeCustomerNotFound: the gateway has no record of the customer.
	ChargeCustomerNotFound
	// ChargeNetworkError: the gateway was unreachable; charge state unknown.
	ChargeNetworkError
	// ChargeUnknownError: any other gateway failure.
	ChargeUnknownError
)

// String returns the outcome name for logs.
func (o ChargeOutcome) String() string {
	switch o {
	case ChargePaid:
		return "paid"
	case ChargeDeclined:
		return "declined"
	case ChargeCurrencyMismatch:
		return "currency_mismatch"
	case ChargeCustomerNotFound:
		return "customer_not_found"
	case ChargeNetworkError:
		return "network_error"
	default:
		return "unknown_error"
	}
}
