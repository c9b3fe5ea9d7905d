package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"billing-engine/internal/core/domain"
	"billing-engine/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type routerMocks struct {
	invoices  *mocks.MockInvoiceRepository
	customers *mocks.MockCustomerRepository
	runner    *mocks.MockBillingRunner
}

func newTestRouter(t *testing.T) (*gin.Engine, routerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := routerMocks{
		invoices:  mocks.NewMockInvoiceRepository(ctrl),
		customers: mocks.NewMockCustomerRepository(ctrl),
		runner:    mocks.NewMockBillingRunner(ctrl),
	}
	r := SetupRouter(RouterDeps{
		InvoiceRepo:   m.invoices,
		CustomerRepo:  m.customers,
		BillingRunner: m.runner,
		Logger:        zerolog.Nop(),
	})
	return r, m
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		ErrorCode string `json:"error_code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.ErrorCode
}

func pendingInvoice(id int64) *domain.Invoice {
	return &domain.Invoice{
		ID:         id,
		CustomerID: 7,
		Amount:     domain.Money{Amount: decimal.RequireFromString("99.50"), Currency: domain.CurrencyEUR},
		Status:     domain.StatusPending,
	}
}

func TestCreateCustomer(t *testing.T) {
	r, m := newTestRouter(t)

	m.customers.EXPECT().Create(gomock.Any(), &domain.Customer{ID: 7, Currency: domain.CurrencyDKK}).Return(nil)

	w := doJSON(r, http.MethodPost, "/rest/v1/customers", gin.H{"id": 7, "currency": "DKK"})

	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(7), data["id"])
	assert.Equal(t, "DKK", data["currency"])
}

func TestCreateCustomer_UnsupportedCurrency(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/rest/v1/customers", gin.H{"id": 7, "currency": "XXX"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BIL_003", decodeError(t, w))
}

func TestGetCustomer_NotFound(t *testing.T) {
	r, m := newTestRouter(t)

	m.customers.EXPECT().GetByID(gomock.Any(), int64(99)).Return(nil, nil)

	w := doJSON(r, http.MethodGet, "/rest/v1/customers/99", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "BIL_002", decodeError(t, w))
}

func TestCreateInvoice(t *testing.T) {
	r, m := newTestRouter(t)

	m.customers.EXPECT().GetByID(gomock.Any(), int64(7)).
		Return(&domain.Customer{ID: 7, Currency: domain.CurrencyEUR}, nil)
	m.invoices.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *domain.Invoice) error {
			assert.Equal(t, domain.StatusPending, inv.Status)
			assert.Equal(t, "99.5", inv.Amount.Amount.String())
			return nil
		})

	w := doJSON(r, http.MethodPost, "/rest/v1/invoices", gin.H{
		"id": 1, "customer_id": 7, "amount": "99.50", "currency": "EUR",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "PENDING", data["status"])
}

func TestCreateInvoice_UnknownCustomer(t *testing.T) {
	r, m := newTestRouter(t)

	m.customers.EXPECT().GetByID(gomock.Any(), int64(42)).Return(nil, nil)

	w := doJSON(r, http.MethodPost, "/rest/v1/invoices", gin.H{
		"id": 1, "customer_id": 42, "amount": "10", "currency": "EUR",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "BIL_002", decodeError(t, w))
}

func TestCreateInvoice_BadAmount(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/rest/v1/invoices", gin.H{
		"id": 1, "customer_id": 7, "amount": "ten euros", "currency": "EUR",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetInvoice(t *testing.T) {
	r, m := newTestRouter(t)

	m.invoices.EXPECT().GetByID(gomock.Any(), int64(5)).Return(pendingInvoice(5), nil)

	w := doJSON(r, http.MethodGet, "/rest/v1/invoices/5", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(5), data["id"])
	assert.Equal(t, "99.5", data["amount"])
}

func TestGetInvoice_NotFound(t *testing.T) {
	r, m := newTestRouter(t)

	m.invoices.EXPECT().GetByID(gomock.Any(), int64(5)).Return(nil, nil)

	w := doJSON(r, http.MethodGet, "/rest/v1/invoices/5", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "BIL_001", decodeError(t, w))
}

func TestListInvoices_StatusFilter(t *testing.T) {
	r, m := newTestRouter(t)

	m.invoices.EXPECT().ListByStatus(gomock.Any(), domain.StatusPaid).
		Return([]domain.Invoice{*pendingInvoice(1)}, nil)

	w := doJSON(r, http.MethodGet, "/rest/v1/invoices?status=PAID", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(1), data["total"])
}

func TestListInvoices_InvalidStatus(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/rest/v1/invoices?status=BOGUS", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BIL_003", decodeError(t, w))
}

func TestReenrollInvoice(t *testing.T) {
	r, m := newTestRouter(t)

	failed := pendingInvoice(5)
	failed.Status = domain.StatusFailedNetwork
	reenrolled := pendingInvoice(5)

	m.invoices.EXPECT().GetByID(gomock.Any(), int64(5)).Return(failed, nil)
	m.invoices.EXPECT().UpdateStatus(gomock.Any(), int64(5), domain.StatusPending).Return(reenrolled, nil)

	w := doJSON(r, http.MethodPost, "/rest/v1/invoices/5/reenroll", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "PENDING", data["status"])
}

func TestReenrollInvoice_TerminalStatus(t *testing.T) {
	r, m := newTestRouter(t)

	paid := pendingInvoice(5)
	paid.Status = domain.StatusPaid

	m.invoices.EXPECT().GetByID(gomock.Any(), int64(5)).Return(paid, nil)

	w := doJSON(r, http.MethodPost, "/rest/v1/invoices/5/reenroll", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "BIL_005", decodeError(t, w))
}

func TestTriggerBillingRun(t *testing.T) {
	r, m := newTestRouter(t)

	runID := uuid.New()
	m.runner.EXPECT().TriggerRun().Return(runID, true)

	w := doJSON(r, http.MethodPost, "/rest/v1/billing/runs", nil)

	require.Equal(t, http.StatusAccepted, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, runID.String(), data["run_id"])
}

func TestTriggerBillingRun_AlreadyRunning(t *testing.T) {
	r, m := newTestRouter(t)

	m.runner.EXPECT().TriggerRun().Return(uuid.Nil, false)

	w := doJSON(r, http.MethodPost, "/rest/v1/billing/runs", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "BIL_004", decodeError(t, w))
}

func TestGetBillingState(t *testing.T) {
	r, m := newTestRouter(t)

	m.runner.EXPECT().State().Return("IDLE")

	w := doJSON(r, http.MethodGet, "/rest/v1/billing/state", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "IDLE", data["state"])
}

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealthCheck_Degraded(t *testing.T) {
	r := gin.New()
	r.GET("/health", HealthCheck(
		stubChecker{name: "postgres"},
		stubChecker{name: "redis", err: errors.New("connection refused")},
	))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
}
