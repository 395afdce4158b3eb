package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"invoice-agent/internal/app"
	"invoice-agent/internal/core"

	"github.com/shopspring/decimal"
)

func prompt(reader *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprintf(out, "  %s: ", label)
	raw, _ := reader.ReadString('\n')
	return strings.TrimSpace(raw)
}

// handleAddClient collects a client record field by field.
func handleAddClient(ctx context.Context, reader *bufio.Reader, out io.Writer, svc app.ApplicationService) {
	fmt.Fprintln(out, "New client. Leave optional fields blank; type 'cancel' to abort.")
	c := core.Client{}
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"Name", &c.Name},
		{"Email", &c.Email},
		{"Address", &c.Address},
		{"GSTIN (optional)", &c.GSTNumber},
		{"State (optional)", &c.State},
		{"State code (optional)", &c.StateCode},
	} {
		v := prompt(reader, out, f.label)
		if strings.EqualFold(v, "cancel") {
			fmt.Fprintln(out, "Cancelled.")
			return
		}
		*f.dst = v
	}

	result, err := svc.CreateClient(ctx, c)
	if err != nil {
		printError(out, err)
		return
	}
	fmt.Fprintf(out, "Client %s <%s> saved.\n", result.Client.Name, result.Client.Email)
}

// handleAddItem collects an inventory item. Rate must be a positive number.
func handleAddItem(ctx context.Context, reader *bufio.Reader, out io.Writer, svc app.ApplicationService) {
	fmt.Fprintln(out, "New inventory item. Type 'cancel' to abort.")
	name := prompt(reader, out, "Name")
	if strings.EqualFold(name, "cancel") {
		fmt.Fprintln(out, "Cancelled.")
		return
	}

	var rate decimal.Decimal
	for {
		raw := prompt(reader, out, "Rate")
		if strings.EqualFold(raw, "cancel") {
			fmt.Fprintln(out, "Cancelled.")
			return
		}
		r, err := decimal.NewFromString(raw)
		if err != nil || !r.IsPositive() {
			fmt.Fprintln(out, "  Invalid rate.")
			continue
		}
		rate = r
		break
	}

	hsn := prompt(reader, out, fmt.Sprintf("HSN/SAC [%s]", core.DefaultHSNCode))
	unit := prompt(reader, out, fmt.Sprintf("Unit [%s]", core.DefaultUnit))

	result, err := svc.CreateItem(ctx, core.InventoryItem{Name: name, Rate: rate, HSNCode: hsn, Unit: unit})
	if err != nil {
		printError(out, err)
		return
	}
	fmt.Fprintf(out, "Item %s @ %s saved.\n", result.Item.Name, result.Item.Rate.StringFixed(2))
}
