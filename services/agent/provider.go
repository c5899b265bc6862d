package agent

import (
	"context"
	"errors"
	"strings"

	"bengkelbot/models"
)

// Transcript roles understood by providers.
const (
	roleUser  = "user"
	roleModel = "model"
	roleTool  = "tool"
)

// ChatMessage is one transcript entry handed to the provider: a user turn, an
// assistant turn (optionally carrying tool calls), or a batch of tool results.
type ChatMessage struct {
	Role        string
	Content     string
	ToolCalls   []models.ToolCall
	ToolResults []models.ToolResult
}

// UserMessage builds a user transcript turn.
func UserMessage(text string) ChatMessage {
	return ChatMessage{Role: roleUser, Content: text}
}

// AssistantMessage builds an assistant transcript turn.
func AssistantMessage(text string) ChatMessage {
	return ChatMessage{Role: roleModel, Content: text}
}

// ProviderResponse is what one provider call yields. Text may legitimately be
// empty when tool calls are present; a response with neither is invalid and
// treated as retryable by the fallback chain.
type ProviderResponse struct {
	Text      string
	ToolCalls []models.ToolCall
}

// Provider is the language-model collaborator. Implementations must return
// errors the chain can classify as retryable or fatal.
type Provider interface {
	Invoke(ctx context.Context, system string, transcript []ChatMessage, tools []*Tool, credential, model string) (*ProviderResponse, error)
}

// ErrEmptyResponse marks a provider response with no text and no tool calls.
var ErrEmptyResponse = errors.New("provider returned empty response")

// retryableSignatures are message patterns that indicate the failure is tied
// to the credential/model pair and worth retrying with the next one.
var retryableSignatures = []string{
	"quota",
	"rate limit",
	"resource_exhausted",
	"resource has been exhausted",
	"429",
	"api key",
	"api_key",
	"permission_denied",
	"unauthenticated",
	"401",
	"403",
	"malformed",
	"empty response",
	"internal error",
	"503",
	"overloaded",
	"deadline exceeded",
	"context deadline",
}

// isRetryable classifies a provider error by message-pattern matching.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range retryableSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
