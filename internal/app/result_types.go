package app

import "invoice-agent/internal/core"

// ChatResult is returned by Chat.
type ChatResult struct {
	Response       string
	ConversationID string
	Draft          core.InvoiceDraft
	// Totals is set when the draft has line items or a document was generated.
	Totals        *core.Totals
	ArtifactURL   string
	ArtifactPath  string
	InvoiceNumber string
	// MissingFields lists what blocked a requested generation.
	MissingFields []string
	IsFinal       bool
}

// DraftResult is returned by GetDraft.
type DraftResult struct {
	ConversationID string
	Draft          core.InvoiceDraft
	Totals         core.Totals
	ArtifactURL    string
	Found          bool
}

// DownloadResult is returned by Download.
type DownloadResult struct {
	Filename string
	Path     string
	Content  []byte
}

// InvoiceFile is one finalized document.
type InvoiceFile struct {
	Number   string
	Filename string
	Path     string
	URL      string
}

// InvoiceListResult is returned by ListInvoices.
type InvoiceListResult struct {
	Invoices []InvoiceFile
}

// ClientListResult is returned by ListClients.
type ClientListResult struct {
	Clients []core.Client
}

// ClientResult is returned by client writes.
type ClientResult struct {
	Client *core.Client
}

// ItemListResult is returned by ListItems.
type ItemListResult struct {
	Items []core.InventoryItem
}

// ItemResult is returned by item writes.
type ItemResult struct {
	Item *core.InventoryItem
}
