package handler

import (
	"billing-engine/internal/adapter/http/dto"
	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
	"billing-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// BillingHandler exposes manual control over billing cycles.
type BillingHandler struct {
	runner ports.BillingRunner
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(runner ports.BillingRunner) *BillingHandler {
	return &BillingHandler{runner: runner}
}

// TriggerRun handles POST /rest/v1/billing/runs. The run executes
// asynchronously; 202 means it was accepted, 409 means a run is
// already in flight.
func (h *BillingHandler) TriggerRun(c *gin.Context) {
	runID, ok := h.runner.TriggerRun()
	if !ok {
		response.Error(c, apperror.ErrRunInProgress())
		return
	}

	response.Accepted(c, dto.BillingRunResponse{RunID: runID.String()})
}

// GetState handles GET /rest/v1/billing/state.
func (h *BillingHandler) GetState(c *gin.Context) {
	response.OK(c, dto.BillingStateResponse{State: h.runner.State()})
}
