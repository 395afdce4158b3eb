package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"invoice-agent/internal/app"
)

// Run executes a one-shot CLI command.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	switch args[0] {
	case "chat", "c":
		// app chat "<message>" [conversation-id]
		if len(args) < 2 {
			return fmt.Errorf("usage: app chat \"<message>\" [conversation-id]")
		}
		req := app.ChatRequest{Message: args[1]}
		if len(args) >= 3 {
			req.ConversationID = args[2]
		}
		result, err := svc.Chat(ctx, req)
		if err != nil {
			return err
		}
		return enc.Encode(chatOutput{
			Response:       result.Response,
			ConversationID: result.ConversationID,
			ArtifactURL:    result.ArtifactURL,
			InvoiceNumber:  result.InvoiceNumber,
			MissingFields:  result.MissingFields,
			IsFinal:        result.IsFinal,
		})

	case "draft":
		if len(args) < 2 {
			return fmt.Errorf("usage: app draft <conversation-id>")
		}
		result, err := svc.GetDraft(ctx, args[1])
		if err != nil {
			return err
		}
		return enc.Encode(result.Draft)

	case "clients":
		result, err := svc.ListClients(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return enc.Encode(result.Clients)

	case "items", "inventory":
		result, err := svc.ListItems(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return enc.Encode(result.Items)

	case "invoices":
		result, err := svc.ListInvoices(ctx)
		if err != nil {
			return err
		}
		for _, f := range result.Invoices {
			fmt.Fprintf(out, "%s\t%s\n", f.Number, f.URL)
		}
		return nil

	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
}

const usage = "Available: chat, draft, clients, items, invoices"

type chatOutput struct {
	Response       string   `json:"response"`
	ConversationID string   `json:"conversationId"`
	ArtifactURL    string   `json:"artifactUrl,omitempty"`
	InvoiceNumber  string   `json:"invoiceNumber,omitempty"`
	MissingFields  []string `json:"missingFields,omitempty"`
	IsFinal        bool     `json:"isFinal,omitempty"`
}
