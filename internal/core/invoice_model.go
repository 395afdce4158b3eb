package core

import "github.com/shopspring/decimal"

// Seller identifies the business issuing the invoice.
type Seller struct {
	CompanyName string `json:"companyName,omitempty"`
	GSTNumber   string `json:"gstNumber,omitempty"`
	State       string `json:"state,omitempty"`
	StateCode   string `json:"stateCode,omitempty"`
}

// Client is the buyer block of an invoice draft.
type Client struct {
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
	GSTNumber string `json:"gstNumber,omitempty"`
	State     string `json:"state,omitempty"`
	StateCode string `json:"stateCode,omitempty"`
}

// Dates holds the invoice and due dates as supplied (YYYY-MM-DD).
type Dates struct {
	InvoiceDate string `json:"invoiceDate,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
}

// LineItem is a single billable row. Quantity and Rate are non-negative
// decimals; the amount is always derived, never stored.
type LineItem struct {
	Description string          `json:"description"`
	HSNCode     string          `json:"hsnCode,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	Rate        decimal.Decimal `json:"rate"`
}

// Amount returns Quantity × Rate.
func (l LineItem) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.Rate)
}

// Payment holds terms and bank details printed at the bottom of the invoice.
type Payment struct {
	Terms             string `json:"terms,omitempty"`
	BankAccountName   string `json:"bankAccountName,omitempty"`
	BankAccountNumber string `json:"bankAccountNumber,omitempty"`
	BankIFSCCode      string `json:"bankIfscCode,omitempty"`
}

// InvoiceDraft is the per-conversation invoice being assembled.
//
// CurrentArtifactPath points at the most recently generated document and is
// cleared whenever any content field changes. IsFinal is set once a
// non-draft document has been produced; the draft is discarded right after.
type InvoiceDraft struct {
	Seller              Seller     `json:"seller"`
	Client              Client     `json:"client"`
	Dates               Dates      `json:"dates"`
	LineItems           []LineItem `json:"lineItems"`
	Payment             Payment    `json:"payment"`
	InvoiceNumber       string     `json:"invoiceNumber,omitempty"`
	CurrentArtifactPath string     `json:"currentArtifactPath,omitempty"`
	IsFinal             bool       `json:"isFinal"`
}

// NewDraft returns an empty draft seeded with the seller identity.
func NewDraft(seller Seller) InvoiceDraft {
	return InvoiceDraft{Seller: seller, LineItems: []LineItem{}}
}

// Clone returns a deep copy so callers never share the line item backing array.
func (d InvoiceDraft) Clone() InvoiceDraft {
	out := d
	if d.LineItems != nil {
		out.LineItems = make([]LineItem, len(d.LineItems))
		copy(out.LineItems, d.LineItems)
	}
	return out
}

// IsEmpty reports whether the draft carries no collected data beyond the seller.
func (d InvoiceDraft) IsEmpty() bool {
	return d.Client == (Client{}) &&
		d.Dates == (Dates{}) &&
		len(d.LineItems) == 0 &&
		d.Payment == (Payment{}) &&
		d.InvoiceNumber == "" &&
		d.CurrentArtifactPath == ""
}
