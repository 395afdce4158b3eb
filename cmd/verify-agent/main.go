// verify-agent runs a short scripted conversation against the live model and
// in-memory stores, printing each reply and the resulting draft.
//
// Usage: go run ./cmd/verify-agent
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"invoice-agent/internal/app"
	"invoice-agent/internal/artifact"
	"invoice-agent/internal/config"
	"invoice-agent/internal/core"
	"invoice-agent/internal/logging"
	"invoice-agent/internal/render"
)

var script = []string{
	"Create an invoice for Acme Corp dated 2024-01-15, due 2024-02-14.",
	"Add 10 units of Hosting Server (Basic) at 500 each.",
	"Show me a preview.",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.OpenAI.APIKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}
	logger, err := logging.New(cfg.Env, cfg.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	dir, err := os.MkdirTemp("", "verify-agent-")
	if err != nil {
		log.Fatalf("temp dir: %v", err)
	}
	artifacts, err := artifact.NewFSStore(dir)
	if err != nil {
		log.Fatalf("artifacts: %v", err)
	}

	refs := core.NewMemoryReferenceStore()
	agent, err := app.NewAgent(cfg, refs, logger)
	if err != nil {
		log.Fatalf("agent: %v", err)
	}
	svc := app.NewInvoiceService(app.Deps{
		Agent:        agent,
		Drafts:       core.NewMemoryDraftStore(0, cfg.DraftTTL),
		References:   refs,
		Artifacts:    artifacts,
		Renderer:     render.NewPDFRenderer(),
		Seller:       cfg.Seller,
		Tax:          cfg.Tax,
		AgentTimeout: cfg.AgentTimeout,
		Logger:       logger,
	})

	ctx := context.Background()
	conversationID := ""
	for _, msg := range script {
		fmt.Printf("\nUSER: %s\n", msg)
		res, err := svc.Chat(ctx, app.ChatRequest{ConversationID: conversationID, Message: msg})
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		conversationID = res.ConversationID
		fmt.Printf("AI:   %s\n", res.Response)
		if len(res.MissingFields) > 0 {
			fmt.Printf("      missing: %v\n", res.MissingFields)
		}
		if res.ArtifactPath != "" {
			fmt.Printf("      artifact: %s/%s\n", dir, res.ArtifactPath)
		}
	}

	draft, err := svc.GetDraft(ctx, conversationID)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	fmt.Printf("\n--- DRAFT ---\nClient: %s\nItems: %d\nTotal: %s\n",
		draft.Draft.Client.Name, len(draft.Draft.LineItems), draft.Totals.TotalAmount.StringFixed(2))
}
