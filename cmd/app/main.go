package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"invoice-agent/internal/adapters/cli"
	"invoice-agent/internal/adapters/repl"
	"invoice-agent/internal/app"
	"invoice-agent/internal/config"
	"invoice-agent/internal/logging"

	"go.uber.org/zap"
)

// Without arguments app starts the interactive REPL; otherwise it runs one
// CLI command, e.g. app chat "Invoice Acme for 10 hours of consulting".
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// The REPL owns the terminal; logs are only shown with APP_DEBUG.
	logger := zap.NewNop()
	if cfg.Debug {
		if logger, err = logging.New(cfg.Env, true); err != nil {
			log.Fatalf("logger: %v", err)
		}
		defer func() { _ = logger.Sync() }()
	}

	ctx := context.Background()
	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("stores: %v", err)
	}
	defer stores.Close()

	agent, err := app.NewAgent(cfg, stores.References, logger)
	if err != nil {
		log.Fatalf("agent: %v", err)
	}
	svc := app.NewFromConfig(cfg, stores, agent, logger)

	if len(os.Args) > 1 {
		if err := cli.Run(ctx, svc, os.Args[1:], os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}
	repl.Run(ctx, svc, bufio.NewReader(os.Stdin), os.Stdout)
}
