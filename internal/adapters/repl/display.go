package repl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"invoice-agent/internal/app"
	"invoice-agent/internal/core"
)

func printChat(out io.Writer, result *app.ChatResult) {
	fmt.Fprintf(out, "\n[AI]: %s\n", result.Response)
	if len(result.MissingFields) > 0 {
		fmt.Fprintf(out, "Still needed: %s\n", strings.Join(result.MissingFields, ", "))
	}
	if result.Totals != nil {
		fmt.Fprintf(out, "Subtotal %s  Tax %s  Total %s\n",
			result.Totals.Subtotal.StringFixed(2),
			result.Totals.TaxAmount.StringFixed(2),
			result.Totals.TotalAmount.StringFixed(2))
	}
	if result.ArtifactURL != "" {
		label := "Preview"
		if result.IsFinal {
			label = "Invoice " + result.InvoiceNumber
		}
		fmt.Fprintf(out, "%s: %s\n", label, result.ArtifactURL)
	}
	if result.IsFinal {
		fmt.Fprintln(out, "Invoice finalized. The next message starts a new invoice.")
	}
}

func printDraft(out io.Writer, result *app.DraftResult) {
	d := result.Draft
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintf(out, "  DRAFT %s\n", result.ConversationID)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	if !result.Found && d.IsEmpty() {
		fmt.Fprintln(out, "  Nothing collected yet.")
		fmt.Fprintln(out, strings.Repeat("=", 72))
		return
	}
	fmt.Fprintf(out, "  Seller   : %s (%s)\n", d.Seller.CompanyName, d.Seller.GSTNumber)
	fmt.Fprintf(out, "  Client   : %s <%s>\n", orDash(d.Client.Name), orDash(d.Client.Email))
	fmt.Fprintf(out, "  Address  : %s\n", orDash(d.Client.Address))
	fmt.Fprintf(out, "  Dates    : %s -> %s\n", orDash(d.Dates.InvoiceDate), orDash(d.Dates.DueDate))
	if d.InvoiceNumber != "" {
		fmt.Fprintf(out, "  Number   : %s\n", d.InvoiceNumber)
	}
	fmt.Fprintln(out, strings.Repeat("-", 72))
	fmt.Fprintf(out, "  %-30s %10s %-6s %10s %10s\n", "DESCRIPTION", "QTY", "UNIT", "RATE", "AMOUNT")
	for _, item := range d.LineItems {
		fmt.Fprintf(out, "  %-30s %10s %-6s %10s %10s\n",
			truncate(item.Description, 30), item.Quantity.String(), item.Unit,
			item.Rate.StringFixed(2), item.Amount().StringFixed(2))
	}
	fmt.Fprintln(out, strings.Repeat("-", 72))
	fmt.Fprintf(out, "  Subtotal %s  Tax %s  Total %s\n",
		result.Totals.Subtotal.StringFixed(2),
		result.Totals.TaxAmount.StringFixed(2),
		result.Totals.TotalAmount.StringFixed(2))
	if result.ArtifactURL != "" {
		fmt.Fprintf(out, "  Preview  : %s\n", result.ArtifactURL)
	}
	fmt.Fprintln(out, strings.Repeat("=", 72))
}

func printClients(out io.Writer, result *app.ClientListResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintln(out, "  CLIENTS")
	fmt.Fprintln(out, strings.Repeat("=", 72))
	if len(result.Clients) == 0 {
		fmt.Fprintln(out, "  No clients found.")
		fmt.Fprintln(out, strings.Repeat("=", 72))
		return
	}
	fmt.Fprintf(out, "  %-25s %-28s %-16s\n", "NAME", "EMAIL", "GSTIN")
	fmt.Fprintln(out, strings.Repeat("-", 72))
	for _, c := range result.Clients {
		fmt.Fprintf(out, "  %-25s %-28s %-16s\n", truncate(c.Name, 25), truncate(c.Email, 28), c.GSTNumber)
	}
	fmt.Fprintln(out, strings.Repeat("=", 72))
}

func printItems(out io.Writer, result *app.ItemListResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintln(out, "  INVENTORY")
	fmt.Fprintln(out, strings.Repeat("=", 72))
	if len(result.Items) == 0 {
		fmt.Fprintln(out, "  No items found.")
		fmt.Fprintln(out, strings.Repeat("=", 72))
		return
	}
	fmt.Fprintf(out, "  %-34s %12s %-8s %-8s\n", "NAME", "RATE", "HSN", "UNIT")
	fmt.Fprintln(out, strings.Repeat("-", 72))
	for _, item := range result.Items {
		fmt.Fprintf(out, "  %-34s %12s %-8s %-8s\n", truncate(item.Name, 34), item.Rate.StringFixed(2), item.HSNCode, item.Unit)
	}
	fmt.Fprintln(out, strings.Repeat("=", 72))
}

func printInvoices(out io.Writer, result *app.InvoiceListResult) {
	fmt.Fprintln(out)
	if len(result.Invoices) == 0 {
		fmt.Fprintln(out, "No finalized invoices yet.")
		return
	}
	for _, f := range result.Invoices {
		fmt.Fprintf(out, "  %-24s %s\n", f.Number, f.URL)
	}
}

func printError(out io.Writer, err error) {
	if fields, ok := core.MissingFields(err); ok {
		fmt.Fprintf(out, "Missing: %s\n", strings.Join(fields, ", "))
		return
	}
	if errors.Is(err, app.ErrTurnFailed) {
		fmt.Fprintln(out, "I encountered a system error. Please try again.")
		return
	}
	fmt.Fprintf(out, "Error: %v\n", err)
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `
Commands:
  /draft                      Show the invoice collected so far
  /new                        Discard the draft and start a new invoice
  /clients [query]            List or search clients
  /items [query]              List or search inventory items
  /add-client                 Add a client interactively
  /add-item                   Add an inventory item interactively
  /invoices                   List finalized invoices
  /download <file> [dir]      Save a generated PDF locally
  /help                       Show this help
  /exit                       Quit

Anything else is sent to the assistant, e.g.
  Invoice Acme Corp for 10 units of hosting at 500 each, due in 30 days`)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
