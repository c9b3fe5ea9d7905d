package handler

import (
	"strconv"

	"billing-engine/internal/adapter/http/dto"
	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
	"billing-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer endpoints.
type CustomerHandler struct {
	customers ports.CustomerRepository
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customers ports.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// Create handles POST /rest/v1/customers.
func (h *CustomerHandler) Create(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	currency := domain.Currency(req.Currency)
	if !currency.Valid() {
		response.Error(c, apperror.Validation("unsupported currency "+req.Currency))
		return
	}

	customer := &domain.Customer{ID: req.ID, Currency: currency}
	if err := h.customers.Create(c.Request.Context(), customer); err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}

	response.Created(c, toCustomerResponse(*customer))
}

// Get handles GET /rest/v1/customers/:id.
func (h *CustomerHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("invalid customer id"))
		return
	}

	customer, err := h.customers.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}
	if customer == nil {
		response.Error(c, apperror.ErrCustomerNotFound(id))
		return
	}

	response.OK(c, toCustomerResponse(*customer))
}

// List handles GET /rest/v1/customers.
func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.customers.List(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}

	out := make([]dto.CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		out = append(out, toCustomerResponse(customer))
	}
	response.OK(c, out)
}

func toCustomerResponse(customer domain.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:       customer.ID,
		Currency: string(customer.Currency),
	}
}
