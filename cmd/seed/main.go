// Package main provides a CLI tool for seeding the database with demo data:
// a handful of units, products, clients, bindings and conversions to play
// with the API locally.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"verduleria/internal/core/apperror"
	"verduleria/internal/domain/catalogs/client"
	"verduleria/internal/domain/catalogs/product"
	"verduleria/internal/domain/catalogs/unit"
	"verduleria/internal/domain/conversion"
	"verduleria/internal/domain/productunit"
	"verduleria/internal/infrastructure/storage/postgres"
	"verduleria/internal/infrastructure/storage/postgres/catalog_repo"
	"verduleria/internal/infrastructure/storage/postgres/register_repo"
	"verduleria/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	units := unit.NewService(catalog_repo.NewUnitRepo(txManager), txManager)
	products := product.NewService(catalog_repo.NewProductRepo(txManager), txManager)
	clients := client.NewService(catalog_repo.NewClientRepo(txManager), txManager)

	bindings := productunit.NewService(register_repo.NewProductUnitRepo(txManager), txManager)
	conversions := conversion.NewService(register_repo.NewConversionRepo(txManager), bindings, txManager)

	if err := seed(ctx, log, units, products, clients, bindings, conversions); err != nil {
		log.Fatalw("seeding failed", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seed(
	ctx context.Context,
	log *logger.Logger,
	units *unit.Service,
	products *product.Service,
	clients *client.Service,
	bindings *productunit.Service,
	conversions *conversion.Service,
) error {
	unitIDs := map[string]int64{}
	for _, u := range []struct{ name, abbr string }{
		{"Kilogram", "kg"},
		{"Crate", "cj"},
		{"Dozen", "dz"},
		{"Piece", "un"},
	} {
		id, err := ensureUnit(ctx, units, u.name, u.abbr)
		if err != nil {
			return fmt.Errorf("seed unit %s: %w", u.name, err)
		}
		unitIDs[u.abbr] = id
	}

	productIDs := map[string]int64{}
	for _, name := range []string{"Tomato", "Lettuce", "Lemon", "Potato"} {
		id, err := ensureProduct(ctx, products, name)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", name, err)
		}
		productIDs[name] = id
	}

	for _, name := range []string{"Greengrocer Rivadavia", "Don Mario Restaurant", "La Huerta Market"} {
		if err := ensureClient(ctx, clients, name); err != nil {
			return fmt.Errorf("seed client %s: %w", name, err)
		}
	}

	// Conversions auto-create bindings for both units. The origin unit
	// becomes the purchase unit when the product has none yet.
	for _, c := range []struct {
		product string
		origin  string
		dest    string
		factor  int64
	}{
		{"Tomato", "kg", "cj", 10},
		{"Lettuce", "un", "cj", 12},
		{"Lemon", "kg", "dz", 6},
	} {
		_, err := conversions.Create(ctx,
			productIDs[c.product], unitIDs[c.origin], unitIDs[c.dest],
			decimal.NewFromInt(c.factor))
		if err != nil && !apperror.IsDuplicateConversion(err) {
			return fmt.Errorf("seed conversion %s %s->%s: %w", c.product, c.origin, c.dest, err)
		}
	}

	// Potato sells loose, kg only
	if _, err := bindings.EnsureBinding(ctx, productIDs["Potato"], unitIDs["kg"]); err != nil {
		return fmt.Errorf("seed potato binding: %w", err)
	}

	log.Infow("demo data in place",
		"units", len(unitIDs),
		"products", len(productIDs),
	)

	return nil
}

func ensureUnit(ctx context.Context, svc *unit.Service, name, abbr string) (int64, error) {
	if existing, err := svc.FindByName(ctx, name); err == nil {
		return existing.ID, nil
	}
	u := unit.NewUnit(name, abbr)
	if err := svc.Create(ctx, u); err != nil {
		return 0, err
	}
	return u.ID, nil
}

func ensureProduct(ctx context.Context, svc *product.Service, name string) (int64, error) {
	if existing, err := svc.FindByName(ctx, name); err == nil {
		return existing.ID, nil
	}
	p := product.NewProduct(name)
	if err := svc.Create(ctx, p); err != nil {
		return 0, err
	}
	return p.ID, nil
}

func ensureClient(ctx context.Context, svc *client.Service, name string) error {
	if _, err := svc.FindByName(ctx, name); err == nil {
		return nil
	}
	return svc.Create(ctx, client.NewClient(name))
}
