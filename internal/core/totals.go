package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TaxPolicy configures GST. Rate is a fraction (0.18 for 18%).
//
// By default tax is split into equal CGST and SGST halves. With
// SplitInterState set, a supply between two different known state codes is
// charged as a single IGST amount instead.
type TaxPolicy struct {
	Rate            decimal.Decimal
	SplitInterState bool
}

// DefaultTaxPolicy is 18% GST split 9% CGST / 9% SGST.
func DefaultTaxPolicy() TaxPolicy {
	return TaxPolicy{Rate: decimal.RequireFromString("0.18")}
}

// Totals are always derived from line items at render time.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	CGST        decimal.Decimal `json:"cgst"`
	SGST        decimal.Decimal `json:"sgst"`
	IGST        decimal.Decimal `json:"igst"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	InterState  bool            `json:"interState"`
}

// ComputeTotals recomputes subtotal, tax and total for a draft.
// Amounts are rounded to two decimal places.
func ComputeTotals(d InvoiceDraft, policy TaxPolicy) Totals {
	subtotal := decimal.Zero
	for _, item := range d.LineItems {
		subtotal = subtotal.Add(item.Amount())
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(policy.Rate).Round(2)
	t := Totals{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		TotalAmount: subtotal.Add(tax),
		TaxRate:     policy.Rate,
		CGST:        decimal.Zero,
		SGST:        decimal.Zero,
		IGST:        decimal.Zero,
	}

	if policy.SplitInterState && isInterState(d.Seller.StateCode, d.Client.StateCode) {
		t.InterState = true
		t.IGST = tax
		return t
	}
	half := tax.Div(decimal.NewFromInt(2)).Round(2)
	t.CGST = half
	t.SGST = tax.Sub(half)
	return t
}

func isInterState(sellerCode, clientCode string) bool {
	s := strings.TrimSpace(sellerCode)
	c := strings.TrimSpace(clientCode)
	return s != "" && c != "" && s != c
}
