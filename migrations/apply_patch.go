package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"invoice-agent/internal/db"

	"github.com/joho/godotenv"
)

// Applies one SQL file outside the versioned migration history, e.g.
//
//	go run ./migrations migrations/001_invoice_assistant.sql
//
// Use cmd/verify-db for normal schema upgrades.
func main() {
	_ = godotenv.Load()
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./migrations <file.sql>")
		os.Exit(1)
	}
	path := os.Args[1]

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		fmt.Printf("Failed to connect to DB: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	sqlFile, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Failed to read sql file: %v\n", err)
		os.Exit(1)
	}
	if _, err := pool.Exec(ctx, string(sqlFile)); err != nil {
		fmt.Printf("Patch %s failed: %v\n", filepath.Base(path), err)
		os.Exit(1)
	}
	fmt.Println("Patch applied successfully.")
}
