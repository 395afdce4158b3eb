package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"invoice-agent/internal/app"
	"invoice-agent/internal/artifact"
	"invoice-agent/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type turnFunc func(ctx context.Context, req core.AgentRequest) (*core.AgentReply, error)

// scriptedAgent plays one turnFunc per call and records every request.
type scriptedAgent struct {
	mu       sync.Mutex
	turns    []turnFunc
	requests []core.AgentRequest
}

func (a *scriptedAgent) Respond(ctx context.Context, req core.AgentRequest) (*core.AgentReply, error) {
	a.mu.Lock()
	a.requests = append(a.requests, req)
	i := len(a.requests) - 1
	a.mu.Unlock()
	if i >= len(a.turns) {
		return &core.AgentReply{Text: "ok"}, nil
	}
	return a.turns[i](ctx, req)
}

func (a *scriptedAgent) lastRequest() core.AgentRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests[len(a.requests)-1]
}

func reply(text string, outcomes ...core.ToolOutcome) turnFunc {
	return func(context.Context, core.AgentRequest) (*core.AgentReply, error) {
		return &core.AgentReply{Text: text, Outcomes: outcomes}, nil
	}
}

func fail(err error) turnFunc {
	return func(context.Context, core.AgentRequest) (*core.AgentReply, error) {
		return nil, err
	}
}

func saveDraft(u core.DraftUpdate) core.ToolOutcome {
	return core.ToolOutcome{Kind: core.OutcomeSaveDraft, Tool: "save_invoice_draft", Update: &u}
}

func generate(isDraft bool, number string) core.ToolOutcome {
	return core.ToolOutcome{
		Kind:     core.OutcomeGenerate,
		Tool:     "generate_invoice_pdf",
		Generate: &core.GenerateRequest{IsDraft: isDraft, InvoiceNumber: number},
	}
}

func reset() core.ToolOutcome {
	return core.ToolOutcome{Kind: core.OutcomeReset, Tool: "start_new_invoice"}
}

type stubRenderer struct {
	mu    sync.Mutex
	err   error
	calls []core.RenderInput
}

func (r *stubRenderer) Render(_ context.Context, in core.RenderInput) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, in)
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-stub " + in.Numbering.Number), nil
}

type harness struct {
	svc       *app.InvoiceService
	agent     *scriptedAgent
	renderer  *stubRenderer
	drafts    core.DraftStore
	artifacts *artifact.MemoryStore
}

func newHarness(t *testing.T, turns ...turnFunc) *harness {
	t.Helper()
	h := &harness{
		agent:     &scriptedAgent{turns: turns},
		renderer:  &stubRenderer{},
		drafts:    core.NewMemoryDraftStore(100, time.Hour),
		artifacts: artifact.NewMemoryStore(),
	}
	clock := func() time.Time { return time.Unix(1700000000, 0) }
	h.svc = app.NewInvoiceService(app.Deps{
		Agent:         h.agent,
		Drafts:        h.drafts,
		References:    core.NewMemoryReferenceStore(),
		Artifacts:     h.artifacts,
		Renderer:      h.renderer,
		Numberer:      core.NewNumberer(clock),
		Seller:        core.DefaultSeller,
		Tax:           core.DefaultTaxPolicy(),
		PublicBaseURL: "http://localhost:8080/",
	})
	return h
}

func (h *harness) exists(t *testing.T, key string) bool {
	t.Helper()
	_, err := h.artifacts.Get(context.Background(), key)
	if errors.Is(err, artifact.ErrNotFound) {
		return false
	}
	require.NoError(t, err)
	return true
}

func str(s string) *string { return &s }

func acmeUpdate(qty int64) core.DraftUpdate {
	return core.DraftUpdate{
		Client: &core.ClientUpdate{
			Name:    str("Acme Corp"),
			Email:   str("accounts@acme.com"),
			Address: str("123 Industrial Estate, Mumbai"),
		},
		Dates: &core.DatesUpdate{InvoiceDate: str("2024-01-15"), DueDate: str("2024-02-14")},
		LineItems: []core.LineItem{
			{Description: "Hosting", Quantity: decimal.NewFromInt(qty), Unit: "Nos", Rate: decimal.NewFromInt(500)},
		},
	}
}

func TestChat_DraftLifecycle(t *testing.T) {
	ctx := context.Background()
	qty20 := core.DraftUpdate{LineItems: []core.LineItem{
		{Description: "Hosting", Quantity: decimal.NewFromInt(20), Unit: "Nos", Rate: decimal.NewFromInt(500)},
	}}
	h := newHarness(t,
		reply("Added Acme and 10 units of Hosting.", saveDraft(acmeUpdate(10))),
		reply("Here is your preview.", generate(true, "")),
		reply("Quantity updated.", saveDraft(qty20)),
		reply("Invoice finalized.", generate(false, "")),
		reply("What would you like to invoice?"),
	)

	// A: first turn collects client and one line item, nothing rendered.
	a, err := h.svc.Chat(ctx, app.ChatRequest{ConversationID: "conv-1", Message: "Add client Acme, 10 units of Hosting at 500 each"})
	require.NoError(t, err)
	assert.Equal(t, "conv-1", a.ConversationID)
	assert.Equal(t, "Acme Corp", a.Draft.Client.Name)
	require.Len(t, a.Draft.LineItems, 1)
	require.NotNil(t, a.Totals)
	assert.Equal(t, "5000", a.Totals.Subtotal.String())
	assert.Empty(t, a.ArtifactURL)
	assert.Empty(t, h.renderer.calls)

	// B: preview lands in temp/ and the draft points at it.
	b, err := h.svc.Chat(ctx, app.ChatRequest{ConversationID: "conv-1", Message: "show me a preview"})
	require.NoError(t, err)
	assert.Equal(t, "DRAFT-1700000000", b.InvoiceNumber)
	assert.Equal(t, "temp/DRAFT-1700000000.pdf", b.ArtifactPath)
	assert.Equal(t, "http://localhost:8080/api/invoices/download/DRAFT-1700000000.pdf", b.ArtifactURL)
	assert.Equal(t, "temp/DRAFT-1700000000.pdf", b.Draft.CurrentArtifactPath)
	assert.False(t, b.IsFinal)
	assert.True(t, h.exists(t, "temp/DRAFT-1700000000.pdf"))
	require.Len(t, h.renderer.calls, 1)
	assert.True(t, h.renderer.calls[0].IsDraft)
	assert.Equal(t, "900", h.renderer.calls[0].Totals.TaxAmount.String())

	// C: a content change invalidates and removes the preview.
	c, err := h.svc.Chat(ctx, app.ChatRequest{ConversationID: "conv-1", Message: "change quantity to 20"})
	require.NoError(t, err)
	assert.Empty(t, c.Draft.CurrentArtifactPath)
	assert.Empty(t, c.ArtifactURL)
	assert.Equal(t, "10000", c.Totals.Subtotal.String())
	assert.False(t, h.exists(t, "temp/DRAFT-1700000000.pdf"))

	// D: finalizing mints an INV- number and ends the draft.
	d, err := h.svc.Chat(ctx, app.ChatRequest{ConversationID: "conv-1", Message: "confirm"})
	require.NoError(t, err)
	assert.True(t, d.IsFinal)
	assert.Equal(t, "INV-1700000001", d.InvoiceNumber)
	assert.Equal(t, "invoices/INV-1700000001.pdf", d.ArtifactPath)
	assert.True(t, h.exists(t, "invoices/INV-1700000001.pdf"))
	assert.True(t, d.Draft.IsEmpty())
	assert.Equal(t, "11800", d.Totals.TotalAmount.String())

	_, found, err := h.drafts.Get(ctx, "conv-1")
	require.NoError(t, err)
	assert.False(t, found)

	// The next turn starts from a fresh, seller-seeded draft.
	_, err = h.svc.Chat(ctx, app.ChatRequest{ConversationID: "conv-1", Message: "new one"})
	require.NoError(t, err)
	next := h.agent.lastRequest().Draft
	assert.True(t, next.IsEmpty())
	assert.Equal(t, core.DefaultSeller, next.Seller)
}

func TestChat_ResetKeepsArtifacts(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t,
		reply("Preview ready.", saveDraft(acmeUpdate(1)), generate(true, "")),
		reply("Starting over.", reset()),
	)

	first, err := h.svc.Chat(ctx, app.ChatRequest{ConversationID: "c", Message: "preview"})
	require.NoError(t, err)
	require.NotEmpty(t, first.ArtifactPath)

	res, err := h.svc.Chat(ctx, app.ChatRequest{ConversationID: "c", Message: "start a new invoice"})
	require.NoError(t, err)
	assert.True(t, res.Draft.IsEmpty())
	assert.Empty(t, res.ArtifactURL)
	assert.Nil(t, res.Totals)
	assert.Empty(t, res.Draft.Seller)
	assert.True(t, h.exists(t, first.ArtifactPath))

	_, found, err := h.drafts.Get(ctx, "c")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestChat_ResetWinsOverOtherOutcomes(t *testing.T) {
	h := newHarness(t, reply("Reset.", saveDraft(acmeUpdate(1)), generate(false, ""), reset()))

	res, err := h.svc.Chat(context.Background(), app.ChatRequest{ConversationID: "c", Message: "reset"})
	require.NoError(t, err)
	assert.True(t, res.Draft.IsEmpty())
	assert.Empty(t, h.renderer.calls)
}

func TestChat_MissingFieldsDoNotFailTurn(t *testing.T) {
	h := newHarness(t, reply("I need a few more details.",
		saveDraft(core.DraftUpdate{Client: &core.ClientUpdate{Name: str("Acme Corp")}}),
		generate(true, ""),
	))

	res, err := h.svc.Chat(context.Background(), app.ChatRequest{ConversationID: "c", Message: "preview"})
	require.NoError(t, err)
	assert.Equal(t, []string{"client.email", "client.address", "dates.invoiceDate", "dates.dueDate", "lineItems"}, res.MissingFields)
	assert.Empty(t, res.ArtifactURL)
	assert.Empty(t, h.renderer.calls)
	assert.Equal(t, "Acme Corp", res.Draft.Client.Name)

	stored, found, err := h.drafts.Get(context.Background(), "c")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Acme Corp", stored.Client.Name)
}

func TestChat_FailureLeavesDraftUntouched(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t,
		reply("Saved.", saveDraft(acmeUpdate(10))),
		fail(errors.New("upstream 500")),
	)

	_, err := h.svc.Chat(ctx, app.ChatRequest{ConversationID: "c", Message: "add acme"})
	require.NoError(t, err)

	_, err = h.svc.Chat(ctx, app.ChatRequest{ConversationID: "c", Message: "change it"})
	require.Error(t, err)
	assert.ErrorIs(t, err, app.ErrTurnFailed)
	assert.Contains(t, err.Error(), "upstream 500")

	stored, found, err := h.drafts.Get(ctx, "c")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "10", stored.LineItems[0].Quantity.String())
}

// flakyDrafts fails writes once failWrites is set.
type flakyDrafts struct {
	core.DraftStore
	failWrites bool
}

func (d *flakyDrafts) Put(ctx context.Context, id string, draft core.InvoiceDraft) error {
	if d.failWrites {
		return errors.New("connection reset")
	}
	return d.DraftStore.Put(ctx, id, draft)
}

func (d *flakyDrafts) Delete(ctx context.Context, id string) error {
	if d.failWrites {
		return errors.New("connection reset")
	}
	return d.DraftStore.Delete(ctx, id)
}

func TestChat_PersistFailureRemovesNewArtifact(t *testing.T) {
	tests := []struct {
		name    string
		isDraft bool
	}{
		{"preview", true},
		{"final", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t,
				reply("Preview ready.", saveDraft(acmeUpdate(1)), generate(true, "")),
				reply("Done.", saveDraft(acmeUpdate(2)), generate(tt.isDraft, "")),
			)
			drafts := &flakyDrafts{DraftStore: h.drafts}
			svc := app.NewInvoiceService(app.Deps{
				Agent:      h.agent,
				Drafts:     drafts,
				References: core.NewMemoryReferenceStore(),
				Artifacts:  h.artifacts,
				Renderer:   h.renderer,
				Numberer:   core.NewNumberer(func() time.Time { return time.Unix(1700000000, 0) }),
				Seller:     core.DefaultSeller,
				Tax:        core.DefaultTaxPolicy(),
			})

			first, err := svc.Chat(ctx, app.ChatRequest{ConversationID: "c", Message: "preview"})
			require.NoError(t, err)
			before, found, err := h.drafts.Get(ctx, "c")
			require.NoError(t, err)
			require.True(t, found)

			drafts.failWrites = true
			_, err = svc.Chat(ctx, app.ChatRequest{ConversationID: "c", Message: "two units please"})
			require.ErrorIs(t, err, app.ErrTurnFailed)
			require.Len(t, h.renderer.calls, 2)

			keys, err := h.artifacts.List(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{first.ArtifactPath}, keys)

			invoices, err := svc.ListInvoices(ctx)
			require.NoError(t, err)
			assert.Empty(t, invoices.Invoices)

			after, found, err := h.drafts.Get(ctx, "c")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, before, after)
		})
	}
}

func TestChat_RenderFailureIsTurnFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, reply("Preview.", saveDraft(acmeUpdate(1)), generate(true, "")))
	h.renderer.err = errors.New("font missing")

	_, err := h.svc.Chat(ctx, app.ChatRequest{ConversationID: "c", Message: "preview"})
	assert.ErrorIs(t, err, app.ErrTurnFailed)

	_, found, err := h.drafts.Get(ctx, "c")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestChat_AgentTimeout(t *testing.T) {
	h := newHarness(t, func(ctx context.Context, _ core.AgentRequest) (*core.AgentReply, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	svc := app.NewInvoiceService(app.Deps{
		Agent:        h.agent,
		Drafts:       h.drafts,
		References:   core.NewMemoryReferenceStore(),
		Artifacts:    h.artifacts,
		Renderer:     h.renderer,
		Seller:       core.DefaultSeller,
		AgentTimeout: 20 * time.Millisecond,
	})

	_, err := svc.Chat(context.Background(), app.ChatRequest{ConversationID: "c", Message: "hello"})
	assert.ErrorIs(t, err, app.ErrTurnFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChat_RegeneratedPreviewReplacesOldOne(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t,
		reply("Preview.", saveDraft(acmeUpdate(1)), generate(true, "")),
		reply("Preview again.", generate(true, "")),
	)

	first, err := h.svc.Chat(ctx, app.ChatRequest{ConversationID: "c", Message: "preview"})
	require.NoError(t, err)
	second, err := h.svc.Chat(ctx, app.ChatRequest{ConversationID: "c", Message: "preview again"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ArtifactPath, second.ArtifactPath)
	assert.False(t, h.exists(t, first.ArtifactPath))
	assert.True(t, h.exists(t, second.ArtifactPath))
}

func TestChat_ManualInvoiceNumber(t *testing.T) {
	h := newHarness(t, reply("Done.", saveDraft(acmeUpdate(1)), generate(false, "TT/2024/001")))

	res, err := h.svc.Chat(context.Background(), app.ChatRequest{ConversationID: "c", Message: "finalize as TT/2024/001"})
	require.NoError(t, err)
	assert.Equal(t, "TT/2024/001", res.InvoiceNumber)
	assert.Equal(t, "invoices/TT-2024-001.pdf", res.ArtifactPath)
	assert.True(t, h.exists(t, "invoices/TT-2024-001.pdf"))
}

func TestChat_FinalizeRemovesPreview(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t,
		reply("Preview.", saveDraft(acmeUpdate(1)), generate(true, "")),
		reply("Final.", generate(false, "")),
	)

	preview, err := h.svc.Chat(ctx, app.ChatRequest{ConversationID: "c", Message: "preview"})
	require.NoError(t, err)
	final, err := h.svc.Chat(ctx, app.ChatRequest{ConversationID: "c", Message: "confirm"})
	require.NoError(t, err)

	assert.False(t, h.exists(t, preview.ArtifactPath))
	assert.True(t, h.exists(t, final.ArtifactPath))
}

func TestChat_RequestValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Chat(context.Background(), app.ChatRequest{Message: "   "})
	fields, ok := core.MissingFields(err)
	require.True(t, ok)
	assert.Equal(t, []string{"message"}, fields)

	res, err := h.svc.Chat(context.Background(), app.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ConversationID)
}

func TestChat_ReseedsMissingSeller(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	require.NoError(t, h.drafts.Put(ctx, "c", core.InvoiceDraft{Client: core.Client{Name: "Acme Corp"}}))

	_, err := h.svc.Chat(ctx, app.ChatRequest{ConversationID: "c", Message: "hi"})
	require.NoError(t, err)
	got := h.agent.lastRequest().Draft
	assert.Equal(t, core.DefaultSeller, got.Seller)
	assert.Equal(t, "Acme Corp", got.Client.Name)
}

func TestDownload_PrefersInvoices(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	require.NoError(t, h.artifacts.Put(ctx, "invoices/INV-1.pdf", []byte("final")))
	require.NoError(t, h.artifacts.Put(ctx, "temp/INV-1.pdf", []byte("preview")))
	require.NoError(t, h.artifacts.Put(ctx, "temp/DRAFT-2.pdf", []byte("draft")))

	tests := []struct {
		name     string
		filename string
		path     string
		content  string
		notFound bool
	}{
		{name: "permanent wins", filename: "INV-1.pdf", path: "invoices/INV-1.pdf", content: "final"},
		{name: "falls back to temp", filename: "DRAFT-2.pdf", path: "temp/DRAFT-2.pdf", content: "draft"},
		{name: "missing", filename: "INV-9.pdf", notFound: true},
		{name: "traversal is reduced to base name", filename: "../../etc/passwd", notFound: true},
		{name: "empty", filename: "", notFound: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.svc.Download(ctx, tt.filename)
			if tt.notFound {
				assert.ErrorIs(t, err, core.ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.path, res.Path)
			assert.Equal(t, tt.content, string(res.Content))
		})
	}
}

func TestListInvoices(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	require.NoError(t, h.artifacts.Put(ctx, "invoices/INV-2.pdf", []byte("b")))
	require.NoError(t, h.artifacts.Put(ctx, "invoices/INV-1.pdf", []byte("a")))
	require.NoError(t, h.artifacts.Put(ctx, "temp/DRAFT-3.pdf", []byte("c")))

	res, err := h.svc.ListInvoices(ctx)
	require.NoError(t, err)
	require.Len(t, res.Invoices, 2)
	assert.Equal(t, "INV-1", res.Invoices[0].Number)
	assert.Equal(t, "http://localhost:8080/api/invoices/download/INV-2.pdf", res.Invoices[1].URL)
}

func TestGetAndResetDraft(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, reply("Saved.", saveDraft(acmeUpdate(2))))

	empty, err := h.svc.GetDraft(ctx, "c")
	require.NoError(t, err)
	assert.False(t, empty.Found)
	assert.Equal(t, core.DefaultSeller, empty.Draft.Seller)

	_, err = h.svc.Chat(ctx, app.ChatRequest{ConversationID: "c", Message: "add"})
	require.NoError(t, err)

	got, err := h.svc.GetDraft(ctx, "c")
	require.NoError(t, err)
	assert.True(t, got.Found)
	assert.Equal(t, "1000", got.Totals.Subtotal.String())

	require.NoError(t, h.svc.ResetDraft(ctx, "c"))
	after, err := h.svc.GetDraft(ctx, "c")
	require.NoError(t, err)
	assert.False(t, after.Found)
}

func TestReferenceCRUD(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	clients, err := h.svc.ListClients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, clients.Clients, 3)

	_, err = h.svc.CreateClient(ctx, core.Client{Name: "Globex", Email: "ap@globex.com", Address: "Pune"})
	require.NoError(t, err)
	_, err = h.svc.CreateClient(ctx, core.Client{Name: "Globex 2", Email: "AP@globex.com", Address: "Pune"})
	assert.ErrorIs(t, err, core.ErrDuplicate)

	items, err := h.svc.ListItems(ctx, "hosting")
	require.NoError(t, err)
	assert.NotEmpty(t, items.Items)

	created, err := h.svc.CreateItem(ctx, core.InventoryItem{Name: "Audit", Rate: decimal.NewFromInt(2500)})
	require.NoError(t, err)
	assert.Equal(t, core.DefaultHSNCode, created.Item.HSNCode)

	require.NoError(t, h.svc.DeleteItem(ctx, "audit"))
	assert.ErrorIs(t, h.svc.DeleteClient(ctx, "nobody@example.com"), core.ErrNotFound)
}
