// restore-seed is a one-shot tool that wipes the client and inventory tables
// and reloads the default reference records.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"log"

	"invoice-agent/internal/config"
	"invoice-agent/internal/core"
	"invoice-agent/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	refs := core.NewReferenceService(pool)

	log.Println("Restoring default clients and inventory items...")
	if err := refs.ResetToSeed(ctx); err != nil {
		log.Fatalf("Failed to restore seed data: %v", err)
	}

	clients, err := refs.SearchClients(ctx, "all")
	if err != nil {
		log.Fatalf("Failed to verify clients: %v", err)
	}
	items, err := refs.SearchItems(ctx, "all")
	if err != nil {
		log.Fatalf("Failed to verify items: %v", err)
	}
	log.Printf("Seed restored: %d clients, %d inventory items.", len(clients), len(items))
}
