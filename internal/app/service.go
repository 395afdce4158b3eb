package app

import (
	"context"
	"errors"

	"invoice-agent/internal/core"
)

// ErrTurnFailed wraps every unexpected failure of a chat turn. Transports show
// a generic message for it and only expose the cause in debug mode.
var ErrTurnFailed = errors.New("chat turn failed")

// Agent is the conversational actor behind a chat turn. Its only contract
// with the controller is the text reply plus typed tool outcomes.
type Agent interface {
	Respond(ctx context.Context, req core.AgentRequest) (*core.AgentReply, error)
}

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// Implementations contain no display logic.
type ApplicationService interface {
	// Chat runs one conversational turn against the draft for req.ConversationID.
	Chat(ctx context.Context, req ChatRequest) (*ChatResult, error)

	// GetDraft returns the persisted draft, or a fresh seller-seeded one.
	GetDraft(ctx context.Context, conversationID string) (*DraftResult, error)

	// ResetDraft discards the persisted draft. Generated artifacts are kept.
	ResetDraft(ctx context.Context, conversationID string) error

	// Download resolves a generated document by file name, permanent
	// invoices first, then previews.
	Download(ctx context.Context, filename string) (*DownloadResult, error)

	// ListInvoices returns the finalized invoice documents.
	ListInvoices(ctx context.Context) (*InvoiceListResult, error)

	ListClients(ctx context.Context, query string) (*ClientListResult, error)
	CreateClient(ctx context.Context, c core.Client) (*ClientResult, error)
	UpdateClient(ctx context.Context, email string, c core.Client) (*ClientResult, error)
	DeleteClient(ctx context.Context, email string) error

	ListItems(ctx context.Context, query string) (*ItemListResult, error)
	CreateItem(ctx context.Context, item core.InventoryItem) (*ItemResult, error)
	UpdateItem(ctx context.Context, name string, item core.InventoryItem) (*ItemResult, error)
	DeleteItem(ctx context.Context, name string) error
}
