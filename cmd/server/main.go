// Package main is the entry point for the verduleria API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"verduleria/internal/domain/catalogs/client"
	"verduleria/internal/domain/catalogs/product"
	"verduleria/internal/domain/catalogs/unit"
	"verduleria/internal/domain/conversion"
	"verduleria/internal/domain/deliverynote"
	"verduleria/internal/domain/order"
	"verduleria/internal/domain/productunit"
	"verduleria/internal/domain/purchase"
	"verduleria/internal/domain/purchaseorder"
	"verduleria/internal/domain/suggestion"
	"verduleria/internal/infrastructure/database"
	v1 "verduleria/internal/infrastructure/http/v1"
	"verduleria/internal/infrastructure/storage/postgres"
	"verduleria/internal/infrastructure/storage/postgres/catalog_repo"
	"verduleria/internal/infrastructure/storage/postgres/document_repo"
	"verduleria/internal/infrastructure/storage/postgres/register_repo"
	"verduleria/pkg/logger"
	"verduleria/pkg/numerator"
)

func main() {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting verduleria server")

	dsn := mustEnv("DATABASE_URL")

	// --- Migrations ---
	if getEnv("RUN_MIGRATIONS", "true") == "true" {
		migrationsPath := getEnv("MIGRATIONS_PATH", "migrations")
		if err := database.RunMigrations(dsn, migrationsPath); err != nil {
			log.Fatalw("migrations failed", "error", err)
		}
		log.Info("migrations applied")
	}

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(dsn)
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)
	numeratorService := numerator.New(pool)

	// --- Repositories ---
	productRepo := catalog_repo.NewProductRepo(txManager)
	unitRepo := catalog_repo.NewUnitRepo(txManager)
	clientRepo := catalog_repo.NewClientRepo(txManager)
	productUnitRepo := register_repo.NewProductUnitRepo(txManager)
	conversionRepo := register_repo.NewConversionRepo(txManager)
	priceHistoryRepo := register_repo.NewPriceHistoryRepo(txManager)
	orderRepo := document_repo.NewClientOrderRepo(txManager)
	purchaseOrderRepo := document_repo.NewPurchaseOrderRepo(txManager)
	purchaseRepo := document_repo.NewPurchaseRepo(txManager)
	deliveryNoteRepo := document_repo.NewDeliveryNoteRepo(txManager)

	// --- Services ---
	productService := product.NewService(productRepo, txManager)
	unitService := unit.NewService(unitRepo, txManager)
	clientService := client.NewService(clientRepo, txManager)

	productUnitService := productunit.NewService(productUnitRepo, txManager)
	conversionService := conversion.NewService(conversionRepo, productUnitService, txManager)

	orderService := order.NewService(orderRepo, numeratorService, txManager)
	suggestionService := suggestion.NewService(orderRepo, productUnitRepo, conversionRepo)

	purchaseOrderService := purchaseorder.NewService(
		purchaseOrderRepo, orderRepo, suggestionService, priceHistoryRepo,
		numeratorService, txManager)
	purchaseService := purchase.NewService(
		purchaseRepo, purchaseOrderService, productUnitService, priceHistoryRepo,
		numeratorService, txManager)
	// Purchase orders spawn purchases on confirmation; wired late to
	// break the construction cycle.
	purchaseOrderService.SetSpawner(purchaseService)

	deliveryNoteService := deliverynote.NewService(
		deliveryNoteRepo, orderRepo, productUnitRepo, productUnitService,
		priceHistoryRepo, numeratorService, txManager)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}
	purchaseOrderService.SetAuditor(auditService)
	purchaseService.SetAuditor(auditService)
	deliveryNoteService.SetAuditor(auditService)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:   pool,
		Logger: log,

		Products: productService,
		Units:    unitService,
		Clients:  clientService,

		ProductUnits: productUnitService,
		Conversions:  conversionService,

		Orders:         orderService,
		Suggestions:    suggestionService,
		PurchaseOrders: purchaseOrderService,
		Purchases:      purchaseService,
		DeliveryNotes:  deliveryNoteService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
