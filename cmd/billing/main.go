package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"billing-engine/config"
	"billing-engine/internal/adapter/gateway"
	httpHandler "billing-engine/internal/adapter/http/handler"
	queueRedis "billing-engine/internal/adapter/queue/redis"
	pgStorage "billing-engine/internal/adapter/storage/postgres"
	"billing-engine/internal/clock"
	"billing-engine/internal/core/ports"
	"billing-engine/internal/seed"
	"billing-engine/internal/service"
	"billing-engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("schedule", cfg.Billing.Schedule).
		Msg("Starting Billing Engine")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	if err := pgStorage.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize Redis client
	rdb, err := queueRedis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories and queue
	invoiceRepo := pgStorage.NewInvoiceRepo(pool)
	customerRepo := pgStorage.NewCustomerRepo(pool)
	billingQueue := queueRedis.NewBillingQueue(rdb)

	// Seed demo data if requested
	if cfg.Seed.Enabled {
		if err := seed.Run(ctx, cfg.Seed, customerRepo, invoiceRepo, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo data")
		}
	}

	// Initialize the billing pipeline
	clk := clock.System{}
	paymentGateway := gateway.NewSimulator(customerRepo, cfg.Gateway, time.Now().UnixNano(), log)
	charger := service.NewInvoiceCharger(paymentGateway, clk, service.ChargerOpts{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialBackoff: cfg.Retry.InitialBackoff,
		MaxBackoff:     cfg.Retry.MaxBackoff,
	}, logger.Component(log, "charger"))
	dispatcher := service.NewWorkDispatcher(invoiceRepo, billingQueue, logger.Component(log, "dispatcher"))
	workerPool := service.NewWorkerPool(billingQueue, invoiceRepo, charger, cfg.Billing.Workers, logger.Component(log, "worker"))
	scheduler := service.NewBillingScheduler(dispatcher, workerPool, billingQueue, clk, cfg.Billing.DrainPollInterval, logger.Component(log, "scheduler"))

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	workerPool.Start(runCtx)
	if err := scheduler.Start(runCtx, cfg.Billing.Schedule); err != nil {
		log.Fatal().Err(err).Msg("Failed to start billing scheduler")
	}

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := queueRedis.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		InvoiceRepo:    invoiceRepo,
		CustomerRepo:   customerRepo,
		BillingRunner:  scheduler,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	scheduler.Stop()
	cancelRun()
	workerPool.Wait()

	log.Info().Msg("Billing engine exited")
}
