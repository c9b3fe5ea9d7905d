package handler

import (
	"strconv"

	"billing-engine/internal/adapter/http/dto"
	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
	"billing-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// InvoiceHandler handles invoice endpoints.
type InvoiceHandler struct {
	invoices  ports.InvoiceRepository
	customers ports.CustomerRepository
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoices ports.InvoiceRepository, customers ports.CustomerRepository) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, customers: customers}
}

// Create handles POST /rest/v1/invoices. New invoices always start in
// PENDING and are picked up by the next billing cycle.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		response.Error(c, apperror.Validation("amount must be a non-negative decimal string"))
		return
	}

	currency := domain.Currency(req.Currency)
	if !currency.Valid() {
		response.Error(c, apperror.Validation("unsupported currency "+req.Currency))
		return
	}

	customer, err := h.customers.GetByID(c.Request.Context(), req.CustomerID)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}
	if customer == nil {
		response.Error(c, apperror.ErrCustomerNotFound(req.CustomerID))
		return
	}

	invoice := &domain.Invoice{
		ID:         req.ID,
		CustomerID: req.CustomerID,
		Amount:     domain.Money{Amount: amount, Currency: currency},
		Status:     domain.StatusPending,
	}
	if err := h.invoices.Create(c.Request.Context(), invoice); err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}

	response.Created(c, toInvoiceResponse(*invoice))
}

// Get handles GET /rest/v1/invoices/:id.
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("invalid invoice id"))
		return
	}

	invoice, err := h.invoices.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}
	if invoice == nil {
		response.Error(c, apperror.ErrInvoiceNotFound(id))
		return
	}

	response.OK(c, toInvoiceResponse(*invoice))
}

// List handles GET /rest/v1/invoices with an optional ?status= filter.
func (h *InvoiceHandler) List(c *gin.Context) {
	var (
		invoices []domain.Invoice
		err      error
	)

	if raw := c.Query("status"); raw != "" {
		status := domain.InvoiceStatus(raw)
		if !status.Valid() {
			response.Error(c, apperror.ErrInvalidInvoiceStatus(raw))
			return
		}
		invoices, err = h.invoices.ListByStatus(c.Request.Context(), status)
	} else {
		invoices, err = h.invoices.List(c.Request.Context())
	}
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}

	out := make([]dto.InvoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		out = append(out, toInvoiceResponse(invoice))
	}
	response.OK(c, dto.InvoiceListResponse{Invoices: out, Total: len(out)})
}

// Reenroll handles POST /rest/v1/invoices/:id/reenroll. It moves an
// invoice whose retries were exhausted back to PENDING so the next
// billing cycle picks it up again. Terminal decisions (paid, declined,
// mismatched) stay final.
func (h *InvoiceHandler) Reenroll(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("invalid invoice id"))
		return
	}

	invoice, err := h.invoices.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}
	if invoice == nil {
		response.Error(c, apperror.ErrInvoiceNotFound(id))
		return
	}
	if !invoice.Status.IsTransient() {
		response.Error(c, apperror.ErrNotReenrollable(id))
		return
	}

	updated, err := h.invoices.UpdateStatus(c.Request.Context(), id, domain.StatusPending)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}
	if updated == nil {
		response.Error(c, apperror.ErrInvoiceNotFound(id))
		return
	}

	response.OK(c, toInvoiceResponse(*updated))
}

func toInvoiceResponse(invoice domain.Invoice) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		ID:         invoice.ID,
		CustomerID: invoice.CustomerID,
		Amount:     invoice.Amount.Amount.String(),
		Currency:   string(invoice.Amount.Currency),
		Status:     string(invoice.Status),
	}
}
