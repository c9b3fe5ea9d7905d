package integration

import (
	"context"
	"sort"
	"sync"

	"billing-engine/internal/core/domain"
)

// memStore is a thread-safe in-memory stand-in for the PostgreSQL
// repositories. It counts status writes per invoice so tests can assert
// that each invoice reaches exactly one final decision.
type memStore struct {
	mu           sync.Mutex
	customers    map[int64]domain.Customer
	invoices     map[int64]domain.Invoice
	statusWrites map[int64]int
}

func newMemStore() *memStore {
	return &memStore{
		customers:    make(map[int64]domain.Customer),
		invoices:     make(map[int64]domain.Invoice),
		statusWrites: make(map[int64]int),
	}
}

func (s *memStore) invoice(id int64) (domain.Invoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	return inv, ok
}

func (s *memStore) writes(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusWrites[id]
}

// memInvoiceRepo implements ports.InvoiceRepository over a memStore.
type memInvoiceRepo struct {
	store *memStore
}

func (r *memInvoiceRepo) Create(_ context.Context, invoice *domain.Invoice) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.invoices[invoice.ID] = *invoice
	return nil
}

func (r *memInvoiceRepo) GetByID(_ context.Context, id int64) (*domain.Invoice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	inv, ok := r.store.invoices[id]
	if !ok {
		return nil, nil
	}
	out := inv
	return &out, nil
}

func (r *memInvoiceRepo) ListByStatus(_ context.Context, status domain.InvoiceStatus) ([]domain.Invoice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Invoice
	for _, inv := range r.store.invoices {
		if inv.Status == status {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memInvoiceRepo) List(_ context.Context) ([]domain.Invoice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]domain.Invoice, 0, len(r.store.invoices))
	for _, inv := range r.store.invoices {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memInvoiceRepo) UpdateStatus(_ context.Context, id int64, status domain.InvoiceStatus) (*domain.Invoice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	inv, ok := r.store.invoices[id]
	if !ok {
		return nil, nil
	}
	inv.Status = status
	r.store.invoices[id] = inv
	r.store.statusWrites[id]++
	out := inv
	return &out, nil
}

// memCustomerRepo implements ports.CustomerRepository over a memStore.
type memCustomerRepo struct {
	store *memStore
}

func (r *memCustomerRepo) Create(_ context.Context, customer *domain.Customer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.customers[customer.ID] = *customer
	return nil
}

func (r *memCustomerRepo) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.customers[id]
	if !ok {
		return nil, nil
	}
	out := c
	return &out, nil
}

func (r *memCustomerRepo) List(_ context.Context) ([]domain.Customer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]domain.Customer, 0, len(r.store.customers))
	for _, c := range r.store.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// scriptGateway is a deterministic ports.PaymentGateway. The script
// decides the outcome from the invoice and the 1-based attempt number.
type scriptGateway struct {
	mu     sync.Mutex
	calls  map[int64]int
	script func(invoice domain.Invoice, attempt int) domain.ChargeOutcome
}

func newScriptGateway(script func(domain.Invoice, int) domain.ChargeOutcome) *scriptGateway {
	return &scriptGateway{calls: make(map[int64]int), script: script}
}

func (g *scriptGateway) Charge(_ context.Context, invoice domain.Invoice) domain.ChargeOutcome {
	g.mu.Lock()
	g.calls[invoice.ID]++
	attempt := g.calls[invoice.ID]
	g.mu.Unlock()
	return g.script(invoice, attempt)
}

func (g *scriptGateway) attempts(id int64) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[id]
}
