package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"bengkelbot/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GeminiProvider implements Provider on top of the Gemini API. Clients are
// built lazily per credential so the fallback chain can rotate API keys.
type GeminiProvider struct {
	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewGeminiProvider returns an empty provider; clients are created on first
// use of each credential.
func NewGeminiProvider() *GeminiProvider {
	return &GeminiProvider{clients: make(map[string]*genai.Client)}
}

// Close releases every cached client.
func (g *GeminiProvider) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.clients {
		c.Close()
	}
	g.clients = make(map[string]*genai.Client)
}

func (g *GeminiProvider) clientFor(ctx context.Context, credential string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[credential]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(credential))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	g.clients[credential] = c
	return c, nil
}

// Invoke sends the transcript and tool schema to one credential/model pair.
func (g *GeminiProvider) Invoke(ctx context.Context, system string, transcript []ChatMessage, tools []*Tool, credential, modelName string) (*ProviderResponse, error) {
	client, err := g.clientFor(ctx, credential)
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(modelName)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if decls := toFunctionDeclarations(tools); len(decls) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	contents := toContents(transcript)
	if len(contents) == 0 {
		return nil, fmt.Errorf("empty transcript")
	}

	session := model.StartChat()
	session.History = contents[:len(contents)-1]
	resp, err := session.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate error: %w", err)
	}
	return fromResponse(resp)
}

func toFunctionDeclarations(tools []*Tool) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	return decls
}

// toContents maps the provider-agnostic transcript onto Gemini contents.
// Tool results ride as FunctionResponse parts; assistant tool calls are
// replayed as FunctionCall parts so the history stays coherent.
func toContents(transcript []ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(transcript))
	for _, msg := range transcript {
		switch msg.Role {
		case roleModel:
			var parts []genai.Part
			if msg.Content != "" {
				parts = append(parts, genai.Text(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, genai.FunctionCall{Name: call.Name, Args: call.Args})
			}
			if len(parts) == 0 {
				parts = append(parts, genai.Text(""))
			}
			contents = append(contents, &genai.Content{Role: "model", Parts: parts})

		case roleTool:
			var parts []genai.Part
			for _, res := range msg.ToolResults {
				parts = append(parts, genai.FunctionResponse{
					Name:     res.Name,
					Response: toResponseMap(res.Payload),
				})
			}
			contents = append(contents, &genai.Content{Role: "function", Parts: parts})

		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}
	return contents
}

func toResponseMap(payload any) map[string]any {
	if m, ok := payload.(map[string]any); ok {
		return m
	}
	return map[string]any{"result": payload}
}

func fromResponse(resp *genai.GenerateContentResponse) (*ProviderResponse, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}

	out := &ProviderResponse{}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			sb.WriteString(string(p))
		case genai.FunctionCall:
			out.ToolCalls = append(out.ToolCalls, models.ToolCall{
				ID:   uuid.New().String(),
				Name: p.Name,
				Args: p.Args,
			})
		}
	}
	out.Text = sb.String()

	// Empty text with tool calls is a valid response; neither is not.
	if out.Text == "" && len(out.ToolCalls) == 0 {
		return nil, ErrEmptyResponse
	}
	return out, nil
}
