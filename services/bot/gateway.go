package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// GatewayTransport talks to the chat gateway's REST API. The gateway bridges
// to the actual messaging channel; this side only knows numbers and text.
type GatewayTransport struct {
	BaseURL string
	Token   string
	Client  *http.Client
	Logger  *zap.Logger
}

// NewGatewayTransport returns a transport for the given gateway endpoint.
func NewGatewayTransport(baseURL, token string, logger *zap.Logger) *GatewayTransport {
	return &GatewayTransport{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 15 * time.Second},
		Logger:  logger,
	}
}

// SendText delivers one outbound message.
func (t *GatewayTransport) SendText(ctx context.Context, number, text string) error {
	return t.post(ctx, "/api/send/text", map[string]string{
		"number": number,
		"text":   text,
	})
}

// SendSeen marks the conversation as read.
func (t *GatewayTransport) SendSeen(ctx context.Context, number string) error {
	return t.post(ctx, "/api/send/seen", map[string]string{"number": number})
}

// StartTyping shows the typing indicator.
func (t *GatewayTransport) StartTyping(ctx context.Context, number string) error {
	return t.post(ctx, "/api/send/typing-start", map[string]string{"number": number})
}

// StopTyping hides the typing indicator.
func (t *GatewayTransport) StopTyping(ctx context.Context, number string) error {
	return t.post(ctx, "/api/send/typing-stop", map[string]string{"number": number})
}

func (t *GatewayTransport) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal gateway payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.Token)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned %d for %s: %s", resp.StatusCode, path, string(snippet))
	}
	return nil
}
