package repl

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"invoice-agent/internal/app"
	"invoice-agent/internal/artifact"
	"invoice-agent/internal/core"

	"github.com/stretchr/testify/assert"
)

type echoAgent struct{}

func (echoAgent) Respond(_ context.Context, req core.AgentRequest) (*core.AgentReply, error) {
	name := "Acme Corp"
	return &core.AgentReply{
		Text: "noted: " + req.Message,
		Outcomes: []core.ToolOutcome{
			{Kind: core.OutcomeSaveDraft, Update: &core.DraftUpdate{Client: &core.ClientUpdate{Name: &name}}},
			{Kind: core.OutcomeGenerate, Generate: &core.GenerateRequest{IsDraft: true}},
		},
	}, nil
}

func newService() *app.InvoiceService {
	return app.NewInvoiceService(app.Deps{
		Agent:      echoAgent{},
		Drafts:     core.NewMemoryDraftStore(10, time.Hour),
		References: core.NewMemoryReferenceStore(),
		Artifacts:  artifact.NewMemoryStore(),
		Seller:     core.DefaultSeller,
	})
}

func runScript(t *testing.T, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	Run(context.Background(), newService(), reader, &out)
	return out.String()
}

func TestRun_ChatAndDraft(t *testing.T) {
	out := runScript(t, "bill acme", "/draft", "/exit")

	assert.Contains(t, out, "[AI]: noted: bill acme")
	assert.Contains(t, out, "Still needed: client.email")
	assert.Contains(t, out, "Client   : Acme Corp")
	assert.Contains(t, out, "Goodbye!")
}

func TestRun_ReferenceCommands(t *testing.T) {
	out := runScript(t,
		"/clients acme",
		"/add-item",
		"Audit",
		"abc",
		"2500",
		"",
		"",
		"/items audit",
		"/bogus",
	)

	assert.Contains(t, out, "Acme Corp")
	assert.Contains(t, out, "Invalid rate.")
	assert.Contains(t, out, "Item Audit @ 2500.00 saved.")
	assert.Contains(t, out, "9983")
	assert.Contains(t, out, "Unknown command: /bogus")
}

func TestRun_AddClientValidation(t *testing.T) {
	out := runScript(t, "/add-client", "Globex", "", "", "", "", "")
	assert.Contains(t, out, "Missing: email, address")
}

func TestRun_NewResetsConversation(t *testing.T) {
	out := runScript(t, "bill acme", "/new", "/draft")
	assert.Contains(t, out, "Started a new invoice.")
	assert.Contains(t, out, "Nothing collected yet.")
}
