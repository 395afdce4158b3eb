package core

import "context"

// OutcomeKind tags what a tool call asks the draft controller to do.
type OutcomeKind string

const (
	OutcomeSearch     OutcomeKind = "search"
	OutcomeSaveRecord OutcomeKind = "save_record"
	OutcomeSaveDraft  OutcomeKind = "save_draft"
	OutcomeGenerate   OutcomeKind = "generate_document"
	OutcomeReset      OutcomeKind = "reset"
)

// MutatesDraft reports whether the controller acts on outcomes of this kind.
// Search and save_record outcomes are informational only.
func (k OutcomeKind) MutatesDraft() bool {
	return k == OutcomeSaveDraft || k == OutcomeGenerate || k == OutcomeReset
}

// GenerateRequest is the payload of a generate_document outcome.
type GenerateRequest struct {
	IsDraft bool
	// InvoiceNumber is an optional manual number; ignored for drafts and when
	// it carries the draft prefix.
	InvoiceNumber string
}

// ToolOutcome is one typed result of a tool call made by the agent.
type ToolOutcome struct {
	Kind     OutcomeKind
	Tool     string
	Update   *DraftUpdate     // set for OutcomeSaveDraft
	Generate *GenerateRequest // set for OutcomeGenerate
}

// AgentRequest is what the controller hands the conversational agent each turn.
type AgentRequest struct {
	ConversationID string
	Message        string
	Draft          InvoiceDraft
}

// AgentReply is the agent's text answer plus every tool outcome, in call order.
type AgentReply struct {
	Text     string
	Outcomes []ToolOutcome
}

// RenderInput is everything a renderer needs to draw one document.
type RenderInput struct {
	Draft     InvoiceDraft
	Numbering Numbering
	IsDraft   bool
	Totals    Totals
}

// Renderer turns a complete field set into document bytes. It knows nothing
// about the draft lifecycle.
type Renderer interface {
	Render(ctx context.Context, in RenderInput) ([]byte, error)
}
