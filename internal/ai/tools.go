package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"invoice-agent/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

// ToolResult is what a handler hands back: Output is JSON-encoded and returned
// to the model, Outcomes are collected for the draft controller.
type ToolResult struct {
	Output   any
	Outcomes []core.ToolOutcome
}

// ToolHandler executes one tool call with the raw JSON arguments from the model.
type ToolHandler func(ctx context.Context, args json.RawMessage) (ToolResult, error)

// ToolDefinition describes a single tool in the registry.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any // JSON Schema for the tool's input parameters
	Kind        core.OutcomeKind
	Handler     ToolHandler
}

// ToolRegistry holds all tools available to the agent.
type ToolRegistry struct {
	tools []ToolDefinition
}

// NewToolRegistry creates an empty ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{}
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(t ToolDefinition) {
	r.tools = append(r.tools, t)
}

// Get returns the ToolDefinition for a given tool name, and whether it was found.
func (r *ToolRegistry) Get(name string) (ToolDefinition, bool) {
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolDefinition{}, false
}

// All returns all registered tools.
func (r *ToolRegistry) All() []ToolDefinition {
	return r.tools
}

// ToOpenAITools converts the registry to the OpenAI Responses API tool format.
// Strict mode stays off because most arguments are optional.
func (r *ToolRegistry) ToOpenAITools() []responses.ToolUnionParam {
	out := make([]responses.ToolUnionParam, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  t.InputSchema,
				Strict:      openai.Bool(false),
			},
		})
	}
	return out
}

// Dispatch runs the named tool and always produces a JSON string for the model.
// Unknown tools, bad arguments and handler errors become {"error": ...}; they
// never abort the turn.
func (r *ToolRegistry) Dispatch(ctx context.Context, name string, args string) (string, []core.ToolOutcome) {
	def, ok := r.Get(name)
	if !ok {
		return errorJSON(fmt.Errorf("unknown tool %q", name)), nil
	}
	if args == "" {
		args = "{}"
	}
	if !json.Valid([]byte(args)) {
		return errorJSON(fmt.Errorf("arguments for %s are not valid JSON", name)), nil
	}

	res, err := def.Handler(ctx, json.RawMessage(args))
	if err != nil {
		return errorJSON(err), nil
	}
	out, err := json.Marshal(res.Output)
	if err != nil {
		return errorJSON(fmt.Errorf("encode %s result: %w", name, err)), nil
	}
	for i := range res.Outcomes {
		res.Outcomes[i].Tool = name
	}
	return string(out), res.Outcomes
}

func errorJSON(err error) string {
	out, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(out)
}

// generateSchema reflects v into a JSON schema map suitable for function parameters.
func generateSchema(v any) map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	raw, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		panic(fmt.Sprintf("marshal tool schema: %v", err))
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		panic(fmt.Sprintf("unmarshal tool schema: %v", err))
	}
	delete(schema, "$schema")
	delete(schema, "$id")
	return schema
}
