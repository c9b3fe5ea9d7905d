package domain

// Customer is the owner of invoices. Customers are created externally;
// the billing pipeline only reads them.
type Customer struct {
	ID       int64    `json:"id"`
	Currency Currency `json:"currency"`
}
