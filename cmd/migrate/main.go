// Package main applies database migrations outside the server lifecycle,
// for deployments that run schema changes as a separate step.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"verduleria/internal/infrastructure/database"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}

	if err := database.RunMigrations(dsn, migrationsPath); err != nil {
		fmt.Fprintf(os.Stderr, "migrations failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("migrations applied")
}
