package core_test

import (
	"testing"

	"invoice-agent/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name       string
		items      []core.LineItem
		policy     core.TaxPolicy
		sellerCode string
		clientCode string
		subtotal   string
		cgst       string
		sgst       string
		igst       string
		total      string
	}{
		{
			name:     "single line default policy",
			items:    []core.LineItem{{Quantity: dec("10"), Rate: dec("500")}},
			policy:   core.DefaultTaxPolicy(),
			subtotal: "5000", cgst: "450", sgst: "450", igst: "0", total: "5900",
		},
		{
			name: "multiple lines with fractions",
			items: []core.LineItem{
				{Quantity: dec("3"), Rate: dec("33.33")},
				{Quantity: dec("1.5"), Rate: dec("100")},
			},
			policy:   core.DefaultTaxPolicy(),
			subtotal: "249.99", cgst: "22.5", sgst: "22.5", igst: "0", total: "294.99",
		},
		{
			name:     "no items",
			policy:   core.DefaultTaxPolicy(),
			subtotal: "0", cgst: "0", sgst: "0", igst: "0", total: "0",
		},
		{
			name:       "inter-state split disabled keeps halves",
			items:      []core.LineItem{{Quantity: dec("1"), Rate: dec("1000")}},
			policy:     core.DefaultTaxPolicy(),
			sellerCode: "32", clientCode: "27",
			subtotal: "1000", cgst: "90", sgst: "90", igst: "0", total: "1180",
		},
		{
			name:       "inter-state split enabled charges IGST",
			items:      []core.LineItem{{Quantity: dec("1"), Rate: dec("1000")}},
			policy:     core.TaxPolicy{Rate: dec("0.18"), SplitInterState: true},
			sellerCode: "32", clientCode: "27",
			subtotal: "1000", cgst: "0", sgst: "0", igst: "180", total: "1180",
		},
		{
			name:       "intra-state with split enabled",
			items:      []core.LineItem{{Quantity: dec("1"), Rate: dec("1000")}},
			policy:     core.TaxPolicy{Rate: dec("0.18"), SplitInterState: true},
			sellerCode: "32", clientCode: "32",
			subtotal: "1000", cgst: "90", sgst: "90", igst: "0", total: "1180",
		},
		{
			name:     "configured rate",
			items:    []core.LineItem{{Quantity: dec("2"), Rate: dec("50")}},
			policy:   core.TaxPolicy{Rate: dec("0.05")},
			subtotal: "100", cgst: "2.5", sgst: "2.5", igst: "0", total: "105",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := core.InvoiceDraft{
				Seller:    core.Seller{StateCode: tt.sellerCode},
				Client:    core.Client{StateCode: tt.clientCode},
				LineItems: tt.items,
			}
			got := core.ComputeTotals(d, tt.policy)
			assert.True(t, got.Subtotal.Equal(dec(tt.subtotal)), "subtotal %s", got.Subtotal)
			assert.True(t, got.CGST.Equal(dec(tt.cgst)), "cgst %s", got.CGST)
			assert.True(t, got.SGST.Equal(dec(tt.sgst)), "sgst %s", got.SGST)
			assert.True(t, got.IGST.Equal(dec(tt.igst)), "igst %s", got.IGST)
			assert.True(t, got.TotalAmount.Equal(dec(tt.total)), "total %s", got.TotalAmount)
			assert.True(t, got.TaxAmount.Equal(got.CGST.Add(got.SGST).Add(got.IGST)))
		})
	}
}

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "Zero Rupees"},
		{"7", "Seven Rupees"},
		{"40", "Forty Rupees"},
		{"5900", "Five Thousand Nine Hundred Rupees"},
		{"100.50", "One Hundred Rupees and Fifty Paise"},
		{"100000", "One Lakh Rupees"},
		{"59000", "Fifty Nine Thousand Rupees"},
		{"123456789", "Twelve Crore Thirty Four Lakh Fifty Six Thousand Seven Hundred Eighty Nine Rupees"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, core.AmountInWords(dec(tt.in)))
		})
	}
}
