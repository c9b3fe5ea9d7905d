package handler

import (
	"billing-engine/internal/adapter/http/middleware"
	"billing-engine/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	InvoiceRepo    ports.InvoiceRepository
	CustomerRepo   ports.CustomerRepository
	BillingRunner  ports.BillingRunner
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	v1 := r.Group("/rest/v1")
	v1.GET("/health", HealthCheck(deps.HealthCheckers...))

	customerHandler := NewCustomerHandler(deps.CustomerRepo)
	customers := v1.Group("/customers")
	{
		customers.POST("", customerHandler.Create)
		customers.GET("", customerHandler.List)
		customers.GET("/:id", customerHandler.Get)
	}

	invoiceHandler := NewInvoiceHandler(deps.InvoiceRepo, deps.CustomerRepo)
	invoices := v1.Group("/invoices")
	{
		invoices.POST("", invoiceHandler.Create)
		invoices.GET("", invoiceHandler.List)
		invoices.GET("/:id", invoiceHandler.Get)
		invoices.POST("/:id/reenroll", invoiceHandler.Reenroll)
	}

	billingHandler := NewBillingHandler(deps.BillingRunner)
	billing := v1.Group("/billing")
	{
		billing.POST("/runs", billingHandler.TriggerRun)
		billing.GET("/state", billingHandler.GetState)
	}

	return r
}
