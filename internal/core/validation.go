package core

import (
	"fmt"
	"strings"
)

// ValidateClient checks the fields a client record needs before it is stored.
func ValidateClient(c Client) error {
	var missing []string
	if blank(c.Name) {
		missing = append(missing, "name")
	}
	if blank(c.Email) {
		missing = append(missing, "email")
	}
	if blank(c.Address) {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// ValidateItem checks the fields an inventory item needs before it is stored.
func ValidateItem(item InventoryItem) error {
	var missing []string
	if blank(item.Name) {
		missing = append(missing, "name")
	}
	if !item.Rate.IsPositive() {
		missing = append(missing, "rate")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// ValidateForGeneration reports every field that must be present before a
// document can be rendered from d. Field names use the JSON layout of the draft.
func ValidateForGeneration(d InvoiceDraft) error {
	var missing []string
	check := func(v, name string) {
		if blank(v) {
			missing = append(missing, name)
		}
	}
	check(d.Seller.CompanyName, "seller.companyName")
	check(d.Client.Name, "client.name")
	check(d.Client.Email, "client.email")
	check(d.Client.Address, "client.address")
	check(d.Dates.InvoiceDate, "dates.invoiceDate")
	check(d.Dates.DueDate, "dates.dueDate")

	if len(d.LineItems) == 0 {
		missing = append(missing, "lineItems")
	}
	for i, item := range d.LineItems {
		if blank(item.Description) {
			missing = append(missing, fmt.Sprintf("lineItems[%d].description", i))
		}
		if item.Quantity.IsNegative() {
			missing = append(missing, fmt.Sprintf("lineItems[%d].quantity", i))
		}
		if item.Rate.IsNegative() {
			missing = append(missing, fmt.Sprintf("lineItems[%d].rate", i))
		}
	}

	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
