// Package agent turns a user utterance into a bounded sequence of tool
// invocations and a final reply. It tolerates malformed model output,
// provider/credential failures, and a textual fallback call syntax.
package agent

import (
	"context"
	"fmt"

	"bengkelbot/models"

	"github.com/google/generative-ai-go/genai"
)

// ToolHandler executes one tool call. args has already been through identity
// scrubbing but is otherwise untrusted; handlers validate before use. caller
// is the authoritative transport identity.
type ToolHandler func(ctx context.Context, args map[string]any, caller models.CallerIdentity) (any, error)

// Tool is a callable capability with its declared parameter schema.
type Tool struct {
	Name        string
	Description string
	Parameters  *genai.Schema
	Handler     ToolHandler
}

// Registry maps tool names to callables. It is immutable after construction
// and injected into the dispatch loop, so tests can swap in fakes.
type Registry struct {
	tools map[string]*Tool
	order []string
}

// NewRegistry builds a registry from a fixed tool list.
func NewRegistry(tools ...*Tool) *Registry {
	r := &Registry{tools: make(map[string]*Tool, len(tools))}
	for _, t := range tools {
		if _, exists := r.tools[t.Name]; exists {
			continue
		}
		r.tools[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// List returns the tools in registration order.
func (r *Registry) List() []*Tool {
	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Dispatch runs one tool call and always produces a result entry. Handler
// errors and panics become error payloads the model can recover from; they
// never terminate the loop.
func (r *Registry) Dispatch(ctx context.Context, call models.ToolCall, caller models.CallerIdentity) models.ToolResult {
	result := models.ToolResult{CallID: call.ID, Name: call.Name}

	tool, ok := r.tools[call.Name]
	if !ok {
		result.Payload = map[string]any{"error": fmt.Sprintf("unknown tool %q", call.Name)}
		return result
	}

	payload, err := func() (payload any, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("tool panicked: %v", rec)
			}
		}()
		return tool.Handler(ctx, call.Args, caller)
	}()
	if err != nil {
		result.Payload = map[string]any{"error": err.Error()}
		return result
	}
	result.Payload = payload
	return result
}
