package ai

import (
	"context"
	"fmt"
	"time"

	"invoice-agent/internal/core"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
)

// maxToolRounds bounds the model calls made for a single user message.
const maxToolRounds = 8

const defaultModel = "gpt-4o"

// responder is the slice of the OpenAI client the agent needs.
type responder interface {
	New(ctx context.Context, body responses.ResponseNewParams, opts ...option.RequestOption) (*responses.Response, error)
}

// Config configures the OpenAI-backed agent.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// SessionCacheSize bounds how many conversations keep a previous response id.
	SessionCacheSize int
	TaxPolicy        core.TaxPolicy
}

// Agent runs the tool-calling loop against the OpenAI Responses API. It keeps
// the last response id per conversation so follow-up turns continue the same
// model conversation.
type Agent struct {
	responses responder
	model     string
	tools     *ToolRegistry
	sessions  *lru.Cache[string, string]
	policy    core.TaxPolicy
	log       *zap.Logger
	now       func() time.Time
}

func NewAgent(cfg Config, refs core.ReferenceStore, log *zap.Logger) (*Agent, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return newAgent(&client.Responses, cfg, NewInvoiceToolRegistry(refs), log)
}

func newAgent(r responder, cfg Config, tools *ToolRegistry, log *zap.Logger) (*Agent, error) {
	size := cfg.SessionCacheSize
	if size <= 0 {
		size = 4096
	}
	sessions, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	policy := cfg.TaxPolicy
	if policy.Rate.IsZero() {
		policy = core.DefaultTaxPolicy()
	}
	return &Agent{
		responses: r,
		model:     model,
		tools:     tools,
		sessions:  sessions,
		policy:    policy,
		log:       log,
		now:       time.Now,
	}, nil
}

// Respond sends the user's message with the current draft as context, runs
// every tool the model calls, and returns the final text and the collected
// tool outcomes in call order.
func (a *Agent) Respond(ctx context.Context, req core.AgentRequest) (*core.AgentReply, error) {
	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(a.model),
		Instructions: openai.String(buildInstructions(req.Draft, a.policy, a.now())),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(req.Message),
		},
		Tools: a.tools.ToOpenAITools(),
	}
	if prev, ok := a.sessions.Get(req.ConversationID); ok {
		params.PreviousResponseID = openai.String(prev)
	}

	reply := &core.AgentReply{}
	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.responses.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("openai responses error: %w", err)
		}

		calls := functionCalls(resp)
		if len(calls) == 0 {
			a.sessions.Add(req.ConversationID, resp.ID)
			reply.Text = resp.OutputText()
			return reply, nil
		}

		outputs := make(responses.ResponseInputParam, 0, len(calls))
		for _, call := range calls {
			result, outcomes := a.tools.Dispatch(ctx, call.Name, call.Arguments)
			a.log.Debug("tool call",
				zap.String("conversation_id", req.ConversationID),
				zap.String("tool", call.Name),
				zap.Int("outcomes", len(outcomes)),
			)
			reply.Outcomes = append(reply.Outcomes, outcomes...)
			outputs = append(outputs, responses.ResponseInputItemParamOfFunctionCallOutput(call.CallID, result))
		}

		params.PreviousResponseID = openai.String(resp.ID)
		params.Input = responses.ResponseNewParamsInputUnion{OfInputItemList: outputs}
	}
	return nil, fmt.Errorf("agent exceeded %d tool rounds", maxToolRounds)
}

type functionCall struct {
	CallID    string
	Name      string
	Arguments string
}

func functionCalls(resp *responses.Response) []functionCall {
	var calls []functionCall
	for _, item := range resp.Output {
		if item.Type != "function_call" {
			continue
		}
		fc := item.AsFunctionCall()
		calls = append(calls, functionCall{CallID: fc.CallID, Name: fc.Name, Arguments: fc.Arguments})
	}
	return calls
}
