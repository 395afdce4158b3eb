package app

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"invoice-agent/internal/artifact"
	"invoice-agent/internal/core"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DownloadRoute is the URL path generated artifacts are served under.
const DownloadRoute = "/api/invoices/download/"

// Deps are the collaborators of InvoiceService.
type Deps struct {
	Agent      Agent
	Drafts     core.DraftStore
	References core.ReferenceStore
	Artifacts  artifact.Store
	Renderer   core.Renderer
	Numberer   *core.Numberer
	Seller     core.Seller
	Tax        core.TaxPolicy
	// PublicBaseURL prefixes artifact links; empty yields relative links.
	PublicBaseURL string
	// AgentTimeout bounds the agent call of a turn; zero means no extra bound.
	AgentTimeout time.Duration
	Logger       *zap.Logger
}

// InvoiceService is the draft lifecycle controller. It is the only error
// seam of a chat turn: persistence happens once at the end of the turn, so a
// failed or abandoned turn leaves the prior draft untouched.
type InvoiceService struct {
	agent     Agent
	drafts    core.DraftStore
	refs      core.ReferenceStore
	artifacts artifact.Store
	renderer  core.Renderer
	numberer  *core.Numberer
	seller    core.Seller
	tax       core.TaxPolicy
	baseURL   string
	timeout   time.Duration
	log       *zap.Logger
	locks     *keyedMutex
}

var _ ApplicationService = (*InvoiceService)(nil)

// NewInvoiceService wires the controller. Nil Numberer and Logger get defaults.
func NewInvoiceService(d Deps) *InvoiceService {
	numberer := d.Numberer
	if numberer == nil {
		numberer = core.NewNumberer(nil)
	}
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tax := d.Tax
	if tax.Rate.IsZero() && !tax.SplitInterState {
		tax = core.DefaultTaxPolicy()
	}
	return &InvoiceService{
		agent:     d.Agent,
		drafts:    d.Drafts,
		refs:      d.References,
		artifacts: d.Artifacts,
		renderer:  d.Renderer,
		numberer:  numberer,
		seller:    d.Seller,
		tax:       tax,
		baseURL:   strings.TrimRight(d.PublicBaseURL, "/"),
		timeout:   d.AgentTimeout,
		log:       log,
		locks:     newKeyedMutex(),
	}
}

// Chat runs one turn: load, ask the agent, apply outcomes, persist.
func (s *InvoiceService) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, &core.ValidationError{Fields: []string{"message"}}
	}
	convID := strings.TrimSpace(req.ConversationID)
	if convID == "" {
		convID = uuid.NewString()
	}

	unlock := s.locks.Lock(convID)
	defer unlock()

	log := s.log.With(zap.String("conversation_id", convID))
	res, err := s.turn(ctx, log, convID, message)
	if err != nil {
		log.Error("chat turn failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrTurnFailed, err)
	}
	return res, nil
}

func (s *InvoiceService) turn(ctx context.Context, log *zap.Logger, convID, message string) (*ChatResult, error) {
	draft, _, err := s.loadDraft(ctx, convID)
	if err != nil {
		return nil, err
	}

	agentCtx, cancel := s.agentContext(ctx)
	reply, err := s.agent.Respond(agentCtx, core.AgentRequest{
		ConversationID: convID,
		Message:        message,
		Draft:          draft.Clone(),
	})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}

	res := &ChatResult{Response: reply.Text, ConversationID: convID}

	if hasReset(reply.Outcomes) {
		if err := s.drafts.Delete(ctx, convID); err != nil {
			return nil, fmt.Errorf("discard draft: %w", err)
		}
		log.Info("draft reset")
		res.Draft = core.InvoiceDraft{LineItems: []core.LineItem{}}
		return res, nil
	}

	loadedPath := draft.CurrentArtifactPath
	var superseded []string
	var gen *core.GenerateRequest
	for _, o := range reply.Outcomes {
		switch o.Kind {
		case core.OutcomeSaveDraft:
			if o.Update == nil {
				continue
			}
			var mr core.MergeResult
			draft, mr = core.Merge(draft, *o.Update)
			if mr.Stale {
				superseded = appendRemovable(superseded, mr.SupersededPath)
			}
		case core.OutcomeGenerate:
			if o.Generate != nil {
				gen = o.Generate
			}
		}
	}

	// written is the artifact this turn created; it is rolled back when the
	// draft cannot be persisted. A rewrite of the stored draft's own file is
	// never rolled back.
	var written string
	if gen != nil {
		draft, superseded, err = s.generate(ctx, log, draft, *gen, superseded, res)
		if err != nil {
			return nil, err
		}
		if key := draft.CurrentArtifactPath; key != loadedPath && key != "" {
			written = key
		}
	}

	if draft.IsFinal {
		if err := s.drafts.Delete(ctx, convID); err != nil {
			s.rollbackArtifact(ctx, log, written)
			return nil, fmt.Errorf("discard finalized draft: %w", err)
		}
		s.removeArtifacts(ctx, log, superseded)
		log.Info("invoice finalized", zap.String("invoice_number", draft.InvoiceNumber))
		res.IsFinal = true
		res.InvoiceNumber = draft.InvoiceNumber
		res.ArtifactPath = draft.CurrentArtifactPath
		res.ArtifactURL = s.artifactURL(draft.CurrentArtifactPath)
		res.Draft = core.NewDraft(s.seller)
		return res, nil
	}

	if err := s.drafts.Put(ctx, convID, draft); err != nil {
		s.rollbackArtifact(ctx, log, written)
		return nil, fmt.Errorf("persist draft: %w", err)
	}
	s.removeArtifacts(ctx, log, superseded)

	res.Draft = draft
	res.InvoiceNumber = draft.InvoiceNumber
	res.ArtifactPath = draft.CurrentArtifactPath
	res.ArtifactURL = s.artifactURL(draft.CurrentArtifactPath)
	if res.Totals == nil && len(draft.LineItems) > 0 {
		t := core.ComputeTotals(draft, s.tax)
		res.Totals = &t
	}
	return res, nil
}

// generate validates, numbers, renders and stores a document for draft.
// Missing fields are reported on res and do not fail the turn, nor does a
// failed artifact write; a render error does.
func (s *InvoiceService) generate(
	ctx context.Context,
	log *zap.Logger,
	draft core.InvoiceDraft,
	gen core.GenerateRequest,
	superseded []string,
	res *ChatResult,
) (core.InvoiceDraft, []string, error) {
	if err := core.ValidateForGeneration(draft); err != nil {
		fields, ok := core.MissingFields(err)
		if !ok {
			return draft, superseded, err
		}
		res.MissingFields = fields
		return draft, superseded, nil
	}

	prior := strings.TrimSpace(gen.InvoiceNumber)
	if prior == "" {
		prior = draft.InvoiceNumber
	}
	numbering := s.numberer.Decide(prior, gen.IsDraft)
	totals := core.ComputeTotals(draft, s.tax)

	content, err := s.renderer.Render(ctx, core.RenderInput{
		Draft:     draft,
		Numbering: numbering,
		IsDraft:   gen.IsDraft,
		Totals:    totals,
	})
	if err != nil {
		return draft, superseded, fmt.Errorf("render %s: %w", numbering.Number, err)
	}

	key := core.ArtifactPath(numbering)
	if err := s.artifacts.Put(ctx, key, content); err != nil {
		log.Warn("artifact write failed", zap.String("path", key), zap.Error(err))
		return draft, superseded, nil
	}

	if prev := draft.CurrentArtifactPath; prev != "" && prev != key {
		superseded = appendRemovable(superseded, prev)
	}
	draft.InvoiceNumber = numbering.Number
	draft.CurrentArtifactPath = key
	draft.IsFinal = !gen.IsDraft
	res.Totals = &totals

	log.Info("document generated",
		zap.String("invoice_number", numbering.Number),
		zap.String("path", key),
		zap.Bool("is_draft", gen.IsDraft),
	)
	return draft, superseded, nil
}

// GetDraft returns the persisted draft or a fresh one.
func (s *InvoiceService) GetDraft(ctx context.Context, conversationID string) (*DraftResult, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, &core.ValidationError{Fields: []string{"conversationId"}}
	}
	draft, found, err := s.loadDraft(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return &DraftResult{
		ConversationID: conversationID,
		Draft:          draft,
		Totals:         core.ComputeTotals(draft, s.tax),
		ArtifactURL:    s.artifactURL(draft.CurrentArtifactPath),
		Found:          found,
	}, nil
}

// ResetDraft discards the persisted draft without touching artifacts.
func (s *InvoiceService) ResetDraft(ctx context.Context, conversationID string) error {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return &core.ValidationError{Fields: []string{"conversationId"}}
	}
	unlock := s.locks.Lock(conversationID)
	defer unlock()
	if err := s.drafts.Delete(ctx, conversationID); err != nil {
		return fmt.Errorf("reset draft: %w", err)
	}
	return nil
}

// Download looks filename up under invoices/ first, then temp/.
func (s *InvoiceService) Download(ctx context.Context, filename string) (*DownloadResult, error) {
	name := path.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == "/" || name == ".." {
		return nil, core.ErrNotFound
	}
	for _, ns := range []core.Namespace{core.NamespaceInvoices, core.NamespaceTemp} {
		key := string(ns) + "/" + name
		content, err := s.artifacts.Get(ctx, key)
		if errors.Is(err, artifact.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		return &DownloadResult{Filename: name, Path: key, Content: content}, nil
	}
	return nil, fmt.Errorf("%s: %w", name, core.ErrNotFound)
}

// ListInvoices returns the finalized documents, sorted by key.
func (s *InvoiceService) ListInvoices(ctx context.Context) (*InvoiceListResult, error) {
	keys, err := s.artifacts.List(ctx, string(core.NamespaceInvoices))
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	out := make([]InvoiceFile, 0, len(keys))
	for _, key := range keys {
		name := path.Base(key)
		if path.Ext(name) != ".pdf" {
			continue
		}
		out = append(out, InvoiceFile{
			Number:   strings.TrimSuffix(name, ".pdf"),
			Filename: name,
			Path:     key,
			URL:      s.artifactURL(key),
		})
	}
	return &InvoiceListResult{Invoices: out}, nil
}

func (s *InvoiceService) ListClients(ctx context.Context, query string) (*ClientListResult, error) {
	clients, err := s.refs.SearchClients(ctx, query)
	if err != nil {
		return nil, err
	}
	return &ClientListResult{Clients: clients}, nil
}

func (s *InvoiceService) CreateClient(ctx context.Context, c core.Client) (*ClientResult, error) {
	saved, err := s.refs.SaveClient(ctx, c)
	if err != nil {
		return nil, err
	}
	return &ClientResult{Client: saved}, nil
}

func (s *InvoiceService) UpdateClient(ctx context.Context, email string, c core.Client) (*ClientResult, error) {
	saved, err := s.refs.UpdateClient(ctx, email, c)
	if err != nil {
		return nil, err
	}
	return &ClientResult{Client: saved}, nil
}

func (s *InvoiceService) DeleteClient(ctx context.Context, email string) error {
	return s.refs.DeleteClient(ctx, email)
}

func (s *InvoiceService) ListItems(ctx context.Context, query string) (*ItemListResult, error) {
	items, err := s.refs.SearchItems(ctx, query)
	if err != nil {
		return nil, err
	}
	return &ItemListResult{Items: items}, nil
}

func (s *InvoiceService) CreateItem(ctx context.Context, item core.InventoryItem) (*ItemResult, error) {
	saved, err := s.refs.SaveItem(ctx, item)
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: saved}, nil
}

func (s *InvoiceService) UpdateItem(ctx context.Context, name string, item core.InventoryItem) (*ItemResult, error) {
	saved, err := s.refs.UpdateItem(ctx, name, item)
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: saved}, nil
}

func (s *InvoiceService) DeleteItem(ctx context.Context, name string) error {
	return s.refs.DeleteItem(ctx, name)
}

// loadDraft returns the stored draft, seeding the seller when it is new or
// lost its seller block.
func (s *InvoiceService) loadDraft(ctx context.Context, convID string) (core.InvoiceDraft, bool, error) {
	draft, found, err := s.drafts.Get(ctx, convID)
	if err != nil {
		return core.InvoiceDraft{}, false, fmt.Errorf("load draft: %w", err)
	}
	if !found {
		return core.NewDraft(s.seller), false, nil
	}
	if strings.TrimSpace(draft.Seller.CompanyName) == "" {
		draft.Seller = s.seller
	}
	if draft.LineItems == nil {
		draft.LineItems = []core.LineItem{}
	}
	return draft, true, nil
}

func (s *InvoiceService) agentContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// removeArtifacts deletes superseded previews. Failures are logged only.
func (s *InvoiceService) removeArtifacts(ctx context.Context, log *zap.Logger, keys []string) {
	for _, key := range keys {
		if err := s.artifacts.Delete(ctx, key); err != nil {
			log.Warn("failed to delete superseded artifact", zap.String("path", key), zap.Error(err))
		}
	}
}

// rollbackArtifact deletes a document written by a turn that then failed.
func (s *InvoiceService) rollbackArtifact(ctx context.Context, log *zap.Logger, key string) {
	if key == "" {
		return
	}
	if err := s.artifacts.Delete(ctx, key); err != nil {
		log.Warn("failed to roll back artifact", zap.String("path", key), zap.Error(err))
	}
}

func (s *InvoiceService) artifactURL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + DownloadRoute + path.Base(key)
}

func hasReset(outcomes []core.ToolOutcome) bool {
	for _, o := range outcomes {
		if o.Kind == core.OutcomeReset {
			return true
		}
	}
	return false
}

// appendRemovable skips empty paths, duplicates and permanent invoices.
func appendRemovable(keys []string, key string) []string {
	if key == "" || core.IsPermanentPath(key) {
		return keys
	}
	for _, k := range keys {
		if k == key {
			return keys
		}
	}
	return append(keys, key)
}
