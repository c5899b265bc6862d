package agent

import (
	"context"
	"encoding/json"
	"strings"

	"bengkelbot/models"

	"go.uber.org/zap"
)

// User-facing replies for terminal conditions. The loop always degrades to a
// safe message instead of leaking internals.
const (
	// FallbackReply is returned when the iteration ceiling is reached
	// without a terminal reply.
	FallbackReply = "Maaf, saya belum bisa menyelesaikan permintaan itu. Boleh dijelaskan sekali lagi?"
	// DefaultApology replaces a reply that was nothing but directive syntax.
	DefaultApology = "Maaf, bisa diulangi pesannya?"
	// ProviderErrorReply is sent when every provider option failed.
	ProviderErrorReply = "Maaf, sistem sedang mengalami gangguan. Silakan coba beberapa saat lagi."
)

// DefaultMaxIterations bounds the number of provider round-trips per turn.
const DefaultMaxIterations = 8

// Model-supplied identity fields are discarded in favor of the transport
// identity; a hallucinated sender must never reach a tool.
var (
	identityNumberKeys = []string{"customer_number", "customernumber", "phone", "phone_number", "number", "sender", "sender_id", "user_id"}
	identityNameKeys   = []string{"customer_name", "customername", "name", "sender_name", "user_name"}
)

// Loop is the tool-dispatch loop: provider call, tool dispatch, repeat until
// a final reply or the iteration ceiling.
type Loop struct {
	Registry      *Registry
	Chain         *FallbackChain
	MaxIterations int
	Logger        *zap.Logger
}

// RunInput is one conversational turn.
type RunInput struct {
	System   string
	History  []ChatMessage
	UserText string
	Caller   models.CallerIdentity
}

// Run executes the turn and always produces a sendable reply. The returned
// error, when non-nil, is for operator logging; the reply string is already a
// safe user-facing degradation.
func (l *Loop) Run(ctx context.Context, in RunInput) (string, error) {
	maxIter := l.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	transcript := make([]ChatMessage, 0, len(in.History)+1)
	transcript = append(transcript, in.History...)
	transcript = append(transcript, ChatMessage{Role: roleUser, Content: in.UserText})

	for iter := 0; iter < maxIter; iter++ {
		resp, err := l.Chain.Invoke(ctx, in.System, transcript, l.Registry.List())
		if err != nil {
			l.Logger.Error("provider call failed", zap.Int("iteration", iter), zap.Error(err))
			return ProviderErrorReply, err
		}

		if len(resp.ToolCalls) > 0 {
			transcript = l.dispatchCalls(ctx, transcript, resp.Text, resp.ToolCalls, in.Caller)
			continue
		}

		text := resp.Text
		if call, ok := ParseDirective(text); ok {
			if _, known := l.Registry.Get(call.Name); known {
				transcript = l.dispatchCalls(ctx, transcript, "", []models.ToolCall{*call}, in.Caller)
				continue
			}
			// Unknown tool: scrub the directive syntax and return whatever
			// readable text remains.
			l.Logger.Warn("directive names unknown tool", zap.String("tool", call.Name))
			if cleaned := SanitizeDirectives(text); cleaned != "" {
				return cleaned, nil
			}
			return DefaultApology, nil
		}

		return strings.TrimSpace(text), nil
	}

	l.Logger.Warn("iteration ceiling reached", zap.Int("ceiling", maxIter))
	return FallbackReply, nil
}

// dispatchCalls records the assistant turn, dispatches each call, and appends
// the results in the order the calls were issued.
func (l *Loop) dispatchCalls(ctx context.Context, transcript []ChatMessage, text string, calls []models.ToolCall, caller models.CallerIdentity) []ChatMessage {
	for i := range calls {
		calls[i].Args = normalizeArgs(calls[i])
		overrideIdentity(calls[i].Args, caller)
	}
	transcript = append(transcript, ChatMessage{Role: roleModel, Content: text, ToolCalls: calls})

	results := make([]models.ToolResult, 0, len(calls))
	for _, call := range calls {
		l.Logger.Debug("dispatching tool", zap.String("tool", call.Name), zap.Any("args", call.Args))
		results = append(results, l.Registry.Dispatch(ctx, call, caller))
	}
	return append(transcript, ChatMessage{Role: roleTool, ToolResults: results})
}

// normalizeArgs tolerates a JSON-encoded string argument payload. A string
// that fails to parse is passed through raw so the tool can reject it on
// schema grounds instead of the loop aborting the call.
func normalizeArgs(call models.ToolCall) map[string]any {
	if call.Args != nil {
		return call.Args
	}
	if call.RawArgs == "" {
		return map[string]any{}
	}
	decoded := map[string]any{}
	if err := json.Unmarshal([]byte(call.RawArgs), &decoded); err == nil {
		return decoded
	}
	return map[string]any{"raw": call.RawArgs}
}

// overrideIdentity force-overwrites caller-identity fields with the
// transport-supplied values.
func overrideIdentity(args map[string]any, caller models.CallerIdentity) {
	for _, key := range identityNumberKeys {
		if _, present := args[key]; present {
			args[key] = caller.Number
		}
	}
	for _, key := range identityNameKeys {
		if _, present := args[key]; present {
			args[key] = caller.Name
		}
	}
}
