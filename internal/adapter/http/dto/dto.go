package dto

// CreateCustomerRequest is the request body for customer creation.
type CreateCustomerRequest struct {
	ID       int64  `json:"id" binding:"required,gt=0"`
	Currency string `json:"currency" binding:"required,len=3,safe_id"`
}

// CustomerResponse is the response body for a single customer.
type CustomerResponse struct {
	ID       int64  `json:"id"`
	Currency string `json:"currency"`
}

// CreateInvoiceRequest is the request body for invoice creation.
// Amount is a decimal string, e.g. "149.90".
type CreateInvoiceRequest struct {
	ID         int64  `json:"id" binding:"required,gt=0"`
	CustomerID int64  `json:"customer_id" binding:"required,gt=0"`
	Amount     string `json:"amount" binding:"required,max=32"`
	Currency   string `json:"currency" binding:"required,len=3,safe_id"`
}

// InvoiceResponse is the response body for a single invoice.
type InvoiceResponse struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customer_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
}

// InvoiceListResponse wraps an invoice list.
type InvoiceListResponse struct {
	Invoices []InvoiceResponse `json:"invoices"`
	Total    int               `json:"total"`
}

// BillingRunResponse is the response body for a triggered billing run.
type BillingRunResponse struct {
	RunID string `json:"run_id"`
}

// BillingStateResponse reports the billing cycle state machine.
type BillingStateResponse struct {
	State string `json:"state"`
}
