package domain

import (
	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyDKK Currency = "DKK"
	CurrencySEK Currency = "SEK"
	CurrencyGBP Currency = "GBP"
)

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyEUR, CurrencyUSD, CurrencyDKK, CurrencySEK, CurrencyGBP:
		return true
	}
	return false
}

// Money is a monetary value in a given currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	StatusPending                InvoiceStatus = "PENDING"
	StatusPaid                   InvoiceStatus = "PAID"
	StatusFailedCurrencyMismatch InvoiceStatus = "FAILED_CURRENCY_MISMATCH"
	StatusFailedCustomerNotFound InvoiceStatus = "FAILED_CUSTOMER_NOT_FOUND"
	StatusFailedPaymentMethod    InvoiceStatus = "FAILED_PAYMENT_METHOD"
	StatusFailedNetwork          InvoiceStatus = "FAILED_NETWORK"
	StatusFailedUnknown          InvoiceStatus = "FAILED_UNKNOWN"
)

// IsTransient returns true for statuses eligible for automatic retry
// within the same charge cycle.
func (s InvoiceStatus) IsTransient() bool {
	return s == StatusFailedNetwork || s == StatusFailedUnknown
}

// IsTerminal returns true for statuses after which no further automatic
// action is taken this cycle.
func (s InvoiceStatus) IsTerminal() bool {
	switch s {
	case StatusPaid, StatusFailedPaymentMethod, StatusFailedCurrencyMismatch, StatusFailedCustomerNotFound:
		return true
	}
	return false
}

// Valid reports whether s is a known invoice status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailedCurrencyMismatch,
		StatusFailedCustomerNotFound, StatusFailedPaymentMethod,
		StatusFailedNetwork, StatusFailedUnknown:
		return true
	}
	return false
}

// Invoice is a billable charge owed by a customer. Amount is immutable
// once created; Status is the only field mutated by the billing pipeline.
type Invoice struct {
	ID         int64         `json:"id"`
	CustomerID int64         `json:"customer_id"`
	Amount     Money         `json:"amount"`
	Status     InvoiceStatus `json:"status"`
}
