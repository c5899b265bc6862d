package bot

import (
	"context"

	"bengkelbot/models"
)

// InboundMessage is one raw event from the chat gateway.
type InboundMessage struct {
	SenderNumber string              `json:"sender_number"`
	SenderName   string              `json:"sender_name"`
	Text         string              `json:"text"`
	IsMedia      bool                `json:"is_media"`
	MediaNote    string              `json:"media_note,omitempty"`
	Location     *models.LocationFix `json:"location,omitempty"`
}

// Transport sends outbound traffic to the chat gateway. Presence calls
// (seen, typing) are best-effort; delivery failures there never abort a
// reply.
type Transport interface {
	SendText(ctx context.Context, number, text string) error
	SendSeen(ctx context.Context, number string) error
	StartTyping(ctx context.Context, number string) error
	StopTyping(ctx context.Context, number string) error
}
